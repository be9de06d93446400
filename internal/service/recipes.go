package service

import (
	"context"
	"fmt"
	"strings"

	"brewing_control/internal/control"
	"brewing_control/internal/logger"
	"brewing_control/internal/models"
	"brewing_control/internal/recipe"
	"brewing_control/internal/repository"
)

type RecipeService struct {
	repo   repository.RecipeRepo
	engine Engine
	log    *logger.Logger
}

func NewRecipeService(repo repository.RecipeRepo, engine Engine, log *logger.Logger) *RecipeService {
	if log == nil {
		log = logger.NewNop()
	}
	return &RecipeService{repo: repo, engine: engine, log: log}
}

// Save validates steps against the rig layout and stores them.
func (s *RecipeService) Save(ctx context.Context, name string, steps []models.RecipeStep) (models.StoredRecipe, error) {
	if strings.TrimSpace(name) == "" {
		return models.StoredRecipe{}, fmt.Errorf("%w: name is required", control.ErrInvalidRecipe)
	}
	if err := recipe.Validate(steps, s.engine.Layout()); err != nil {
		return models.StoredRecipe{}, err
	}
	rec, err := s.repo.Create(ctx, name, steps)
	if err != nil {
		return models.StoredRecipe{}, err
	}
	s.log.Infow("recipe_saved", "id", rec.ID, "name", rec.Name, "steps", len(rec.Steps))
	return rec, nil
}

// SaveDocument parses a recipe document and stores it. An empty name falls
// back to the name inside the document.
func (s *RecipeService) SaveDocument(ctx context.Context, name string, document []byte) (models.StoredRecipe, error) {
	parsed, err := recipe.Parse(document)
	if err != nil {
		return models.StoredRecipe{}, err
	}
	if strings.TrimSpace(name) == "" {
		name = parsed.Name
	}
	return s.Save(ctx, name, parsed.Steps)
}

func (s *RecipeService) List(ctx context.Context) ([]models.StoredRecipe, error) {
	return s.repo.List(ctx)
}

func (s *RecipeService) Get(ctx context.Context, id string) (models.StoredRecipe, error) {
	return s.repo.Get(ctx, id)
}

func (s *RecipeService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Infow("recipe_deleted", "id", id)
	return nil
}

// LoadStored submits a stored recipe to the engine as LoadRecipe.
func (s *RecipeService) LoadStored(ctx context.Context, id string) (models.Snapshot, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return models.Snapshot{}, err
	}
	snap, err := s.engine.Submit(ctx, control.LoadRecipe{Steps: rec.Steps})
	if err != nil {
		return models.Snapshot{}, err
	}
	s.log.Infow("recipe_loaded", "id", rec.ID, "name", rec.Name)
	return snap, nil
}
