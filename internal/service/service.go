package service

import (
	"context"
	"fmt"

	"brewing_control/internal/control"
	"brewing_control/internal/logger"
	"brewing_control/internal/models"
	"brewing_control/internal/repository"
)

type Authorization interface {
	SignUp(ctx context.Context, username, password string) (int, error)
	GenerateToken(ctx context.Context, username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Process submits commands to the running engine. Every call returns the
// snapshot published after the command was applied.
type Process interface {
	LoadRecipe(ctx context.Context, steps []models.RecipeStep) (models.Snapshot, error)
	ImportRecipe(ctx context.Context, document []byte) (models.Snapshot, error)
	Start(ctx context.Context) (models.Snapshot, error)
	Pause(ctx context.Context) (models.Snapshot, error)
	Skip(ctx context.Context) (models.Snapshot, error)
	Stop(ctx context.Context) (models.Snapshot, error)
	SetTemperatureGoals(ctx context.Context, goals []float64) (models.Snapshot, error)
	SetActuatorGoals(ctx context.Context, goals []bool) (models.Snapshot, error)
	OverrideTemperature(ctx context.Context, index int, value float64) (models.Snapshot, error)
	OverrideActuator(ctx context.Context, index int, state bool) (models.Snapshot, error)
	OverrideDuration(ctx context.Context, seconds uint64) (models.Snapshot, error)
}

// Monitoring exposes read-only views of the latest snapshot.
type Monitoring interface {
	GetState(ctx context.Context) (models.Snapshot, error)
	RecipeStatus(ctx context.Context) (RecipeStatus, error)
	Actuators(ctx context.Context) ([]ActuatorState, error)
	Watch() Stream
}

// Recipes is the stored recipe library.
type Recipes interface {
	Save(ctx context.Context, name string, steps []models.RecipeStep) (models.StoredRecipe, error)
	SaveDocument(ctx context.Context, name string, document []byte) (models.StoredRecipe, error)
	List(ctx context.Context) ([]models.StoredRecipe, error)
	Get(ctx context.Context, id string) (models.StoredRecipe, error)
	Delete(ctx context.Context, id string) error
	LoadStored(ctx context.Context, id string) (models.Snapshot, error)
}

// Stream delivers snapshots in publish order; intermediate ones may be skipped.
type Stream interface {
	C() <-chan models.Snapshot
	Close()
}

// Engine is the part of control.Engine the services depend on.
type Engine interface {
	Submit(ctx context.Context, cmd control.Command) (models.Snapshot, error)
	Current() models.Snapshot
	Subscribe() *control.Subscription
	Layout() control.Layout
}

type Service struct {
	Process
	Monitoring
	Recipes
	Authorization
}

// NewService wires the repositories and the engine into concrete services.
func NewService(repos *repository.Repository, engine Engine, auth AuthConfig, log *logger.Logger) (*Service, error) {
	authService, err := NewAuthService(repos.Auth, auth)
	if err != nil {
		return nil, fmt.Errorf("auth service: %w", err)
	}
	return &Service{
		Process:       NewProcessService(engine, log),
		Monitoring:    NewMonitoringService(engine),
		Recipes:       NewRecipeService(repos.RecipeRepo, engine, log),
		Authorization: authService,
	}, nil
}
