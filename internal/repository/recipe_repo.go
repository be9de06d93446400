package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"brewing_control/internal/models"
)

// RecipeSQLite is the recipe library.
type RecipeSQLite struct {
	db  *sql.DB
	now func() time.Time
}

func NewRecipeSQLite(db *sql.DB) *RecipeSQLite {
	return &RecipeSQLite{db: db, now: time.Now}
}

var _ RecipeRepo = (*RecipeSQLite)(nil)

const (
	insertRecipeSQL = `INSERT INTO recipes (id, name, steps, created_at) VALUES (?, ?, ?, ?)`
	selectRecipeSQL = `SELECT id, name, steps, created_at FROM recipes WHERE id = ?`
	listRecipesSQL  = `SELECT id, name, steps, created_at FROM recipes ORDER BY created_at ASC, name ASC`
	deleteRecipeSQL = `DELETE FROM recipes WHERE id = ?`
)

// Create stores steps under a new ID.
func (r *RecipeSQLite) Create(ctx context.Context, name string, steps []models.RecipeStep) (models.StoredRecipe, error) {
	name = strings.TrimSpace(name)
	stepsJSON, err := marshalSteps(steps)
	if err != nil {
		return models.StoredRecipe{}, fmt.Errorf("marshal recipe %q: %w", name, err)
	}
	rec := models.StoredRecipe{
		ID:        uuid.NewString(),
		Name:      name,
		Steps:     models.Recipe{Steps: steps}.Clone().Steps,
		CreatedAt: r.now().UTC().Unix(),
	}
	if _, err := r.db.ExecContext(ctx, insertRecipeSQL, rec.ID, rec.Name, stepsJSON, rec.CreatedAt); err != nil {
		return models.StoredRecipe{}, fmt.Errorf("insert recipe %q: %w", name, err)
	}
	return rec, nil
}

// Get returns ErrNotFound for an unknown ID.
func (r *RecipeSQLite) Get(ctx context.Context, id string) (models.StoredRecipe, error) {
	rec, err := scanRecipe(r.db.QueryRowContext(ctx, selectRecipeSQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.StoredRecipe{}, fmt.Errorf("recipe %s: %w", id, ErrNotFound)
		}
		return models.StoredRecipe{}, fmt.Errorf("select recipe %s: %w", id, err)
	}
	return rec, nil
}

// List returns every stored recipe, oldest first.
func (r *RecipeSQLite) List(ctx context.Context) ([]models.StoredRecipe, error) {
	rows, err := r.db.QueryContext(ctx, listRecipesSQL)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	defer rows.Close()

	out := make([]models.StoredRecipe, 0, 16)
	for rows.Next() {
		rec, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return out, nil
}

// Delete removes a recipe; ErrNotFound if it did not exist.
func (r *RecipeSQLite) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, deleteRecipeSQL, id)
	if err != nil {
		return fmt.Errorf("delete recipe %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete recipe %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("recipe %s: %w", id, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecipe(row rowScanner) (models.StoredRecipe, error) {
	var (
		rec       models.StoredRecipe
		stepsJSON string
	)
	if err := row.Scan(&rec.ID, &rec.Name, &stepsJSON, &rec.CreatedAt); err != nil {
		return models.StoredRecipe{}, err
	}
	steps, err := unmarshalSteps(stepsJSON)
	if err != nil {
		return models.StoredRecipe{}, fmt.Errorf("decode steps of %s: %w", rec.ID, err)
	}
	rec.Steps = steps
	return rec, nil
}
