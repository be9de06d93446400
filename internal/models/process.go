package models

type ProcessStatus string

const (
	StatusUninitialized ProcessStatus = "UNINITIALIZED"
	StatusLoaded        ProcessStatus = "LOADED"
	StatusStarted       ProcessStatus = "STARTED"
	StatusPaused        ProcessStatus = "PAUSED"
	StatusFinished      ProcessStatus = "FINISHED"
)

// Process tracks where the recipe currently is.
type Process struct {
	Status        ProcessStatus `json:"status"`
	ActiveStep    int           `json:"active_step"`
	StepStartedAt int64         `json:"step_started_at"` // unix seconds, meaningful while STARTED
}
