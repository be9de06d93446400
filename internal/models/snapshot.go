package models

import "time"

// Fault codes carried on a snapshot.
const (
	FaultSensor   = "SENSOR_FAULT"
	FaultActuator = "ACTUATOR_FAULT"
	FaultClock    = "CLOCK_SKEW"
)

// Snapshot is a point-in-time copy of process, goal and actuator state.
// Consumers must treat it as read-only.
type Snapshot struct {
	Seq              uint64    `json:"seq"`
	Actuators        []bool    `json:"actuators"`         // full bank: heaters first, then fluid actuators
	TemperatureGoals []float64 `json:"temperature_goals"` // goals the regulator is following
	Temperatures     []float64 `json:"temperatures"`      // last measured, °C
	Recipe           Recipe    `json:"recipe"`
	Process          Process   `json:"process"`
	Degraded         bool      `json:"degraded"`
	Faults           []string  `json:"faults,omitempty"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Clone returns a deep copy so the original can be shared safely.
func (s Snapshot) Clone() Snapshot {
	s.Actuators = append([]bool(nil), s.Actuators...)
	s.TemperatureGoals = append([]float64(nil), s.TemperatureGoals...)
	s.Temperatures = append([]float64(nil), s.Temperatures...)
	s.Faults = append([]string(nil), s.Faults...)
	s.Recipe = s.Recipe.Clone()
	return s
}
