package service

import (
	"context"

	"brewing_control/internal/control"
	"brewing_control/internal/logger"
	"brewing_control/internal/models"
	"brewing_control/internal/recipe"
)

type ProcessService struct {
	engine Engine
	log    *logger.Logger
}

func NewProcessService(engine Engine, log *logger.Logger) *ProcessService {
	if log == nil {
		log = logger.NewNop()
	}
	return &ProcessService{engine: engine, log: log}
}

func (s *ProcessService) LoadRecipe(ctx context.Context, steps []models.RecipeStep) (models.Snapshot, error) {
	return s.engine.Submit(ctx, control.LoadRecipe{Steps: steps})
}

// ImportRecipe parses a YAML or JSON recipe document and loads its steps.
func (s *ProcessService) ImportRecipe(ctx context.Context, document []byte) (models.Snapshot, error) {
	parsed, err := recipe.Parse(document)
	if err != nil {
		return models.Snapshot{}, err
	}
	s.log.Infow("recipe_imported", "name", parsed.Name, "steps", len(parsed.Steps))
	return s.LoadRecipe(ctx, parsed.Steps)
}

func (s *ProcessService) Start(ctx context.Context) (models.Snapshot, error) {
	return s.engine.Submit(ctx, control.Start{})
}

func (s *ProcessService) Pause(ctx context.Context) (models.Snapshot, error) {
	return s.engine.Submit(ctx, control.Pause{})
}

func (s *ProcessService) Skip(ctx context.Context) (models.Snapshot, error) {
	return s.engine.Submit(ctx, control.Skip{})
}

func (s *ProcessService) Stop(ctx context.Context) (models.Snapshot, error) {
	return s.engine.Submit(ctx, control.Stop{})
}

func (s *ProcessService) SetTemperatureGoals(ctx context.Context, goals []float64) (models.Snapshot, error) {
	return s.engine.Submit(ctx, control.SetTemperatureGoals{Goals: goals})
}

func (s *ProcessService) SetActuatorGoals(ctx context.Context, goals []bool) (models.Snapshot, error) {
	return s.engine.Submit(ctx, control.SetActuatorGoals{Goals: goals})
}

func (s *ProcessService) OverrideTemperature(ctx context.Context, index int, value float64) (models.Snapshot, error) {
	return s.engine.Submit(ctx, control.OverrideSingleTemperature{Index: index, Value: value})
}

func (s *ProcessService) OverrideActuator(ctx context.Context, index int, state bool) (models.Snapshot, error) {
	return s.engine.Submit(ctx, control.OverrideSingleActuator{Index: index, State: state})
}

func (s *ProcessService) OverrideDuration(ctx context.Context, seconds uint64) (models.Snapshot, error) {
	return s.engine.Submit(ctx, control.OverrideStepDuration{Seconds: seconds})
}
