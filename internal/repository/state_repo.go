package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"brewing_control/internal/models"
)

// StateSQLite keeps the process checkpoint in a single-row table.
type StateSQLite struct {
	db  *sql.DB
	now func() time.Time
}

func NewStateSQLite(db *sql.DB) *StateSQLite {
	return &StateSQLite{db: db, now: time.Now}
}

var _ StateRepo = (*StateSQLite)(nil)

const (
	processStateRowID = 1

	upsertCheckpointSQL = `
		INSERT INTO process_state (id, status, active_step, step_started_at, steps, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status=excluded.status,
			active_step=excluded.active_step,
			step_started_at=excluded.step_started_at,
			steps=excluded.steps,
			updated_at=excluded.updated_at
	`

	selectCheckpointSQL = `
		SELECT status, active_step, step_started_at, steps
		FROM process_state WHERE id=?
	`
)

// marshalSteps converts the recipe steps to a JSON string.
func marshalSteps(steps []models.RecipeStep) (string, error) {
	if steps == nil {
		steps = []models.RecipeStep{}
	}
	b, err := json.Marshal(steps)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// unmarshalSteps parses a JSON string into recipe steps.
func unmarshalSteps(s string) ([]models.RecipeStep, error) {
	if s == "" {
		return nil, nil
	}
	var steps []models.RecipeStep
	if err := json.Unmarshal([]byte(s), &steps); err != nil {
		return nil, err
	}
	if len(steps) == 0 {
		return nil, nil
	}
	return steps, nil
}

// SaveCheckpoint upserts the process_state row (id always 1).
func (r *StateSQLite) SaveCheckpoint(ctx context.Context, recipe models.Recipe, proc models.Process) error {
	stepsJSON, err := marshalSteps(recipe.Steps)
	if err != nil {
		return fmt.Errorf("marshal recipe steps: %w", err)
	}

	_, err = r.db.ExecContext(ctx, upsertCheckpointSQL,
		processStateRowID,
		string(proc.Status),
		proc.ActiveStep,
		proc.StepStartedAt,
		stepsJSON,
		r.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

// LoadCheckpoint fetches the checkpoint. With no row yet it returns an
// UNINITIALIZED process and no error.
func (r *StateSQLite) LoadCheckpoint(ctx context.Context) (models.Recipe, models.Process, error) {
	row := r.db.QueryRowContext(ctx, selectCheckpointSQL, processStateRowID)

	var (
		status    string
		proc      models.Process
		stepsJSON string
	)
	if err := row.Scan(&status, &proc.ActiveStep, &proc.StepStartedAt, &stepsJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Recipe{}, models.Process{Status: models.StatusUninitialized}, nil
		}
		return models.Recipe{}, models.Process{}, fmt.Errorf("load checkpoint: %w", err)
	}

	steps, err := unmarshalSteps(stepsJSON)
	if err != nil {
		return models.Recipe{}, models.Process{}, fmt.Errorf("decode checkpoint steps: %w", err)
	}
	proc.Status = models.ProcessStatus(status)
	switch proc.Status {
	case models.StatusUninitialized, models.StatusLoaded, models.StatusStarted,
		models.StatusPaused, models.StatusFinished:
	default:
		return models.Recipe{}, models.Process{}, fmt.Errorf("load checkpoint: unknown status %q", status)
	}
	return models.Recipe{Steps: steps}, proc, nil
}
