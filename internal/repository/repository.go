package repository

import (
	"context"
	"database/sql"
	"errors"

	"brewing_control/internal/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

type Authorization interface {
	Create(ctx context.Context, username, hash string) (int, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// StateRepo stores the single process checkpoint.
type StateRepo interface {
	SaveCheckpoint(ctx context.Context, recipe models.Recipe, proc models.Process) error
	LoadCheckpoint(ctx context.Context) (models.Recipe, models.Process, error)
}

// RecipeRepo is the library of named recipes.
type RecipeRepo interface {
	Create(ctx context.Context, name string, steps []models.RecipeStep) (models.StoredRecipe, error)
	Get(ctx context.Context, id string) (models.StoredRecipe, error)
	List(ctx context.Context) ([]models.StoredRecipe, error)
	Delete(ctx context.Context, id string) error
}

type Repository struct {
	StateRepo  StateRepo
	RecipeRepo RecipeRepo
	Auth       Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		StateRepo:  NewStateSQLite(db),
		RecipeRepo: NewRecipeSQLite(db),
		Auth:       NewUserRepository(db),
	}
}
