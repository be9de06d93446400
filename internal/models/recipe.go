package models

import "math"

// Unbounded marks a step that never advances on its own; it waits for Skip.
const Unbounded uint64 = math.MaxUint64

// RecipeStep is one phase of a recipe.
type RecipeStep struct {
	Temperatures []float64 `json:"temperatures"` // goal per thermal zone, °C
	Actuators    []bool    `json:"actuators"`    // goal per fluid-path actuator
	DurationSec  uint64    `json:"duration_sec"` // Unbounded = hold until skipped
	Autostart    bool      `json:"autostart"`
}

// Clone returns a deep copy of the step.
func (s RecipeStep) Clone() RecipeStep {
	s.Temperatures = append([]float64(nil), s.Temperatures...)
	s.Actuators = append([]bool(nil), s.Actuators...)
	return s
}

// Recipe is the ordered list of steps. Steps are never reordered once loaded.
type Recipe struct {
	Steps []RecipeStep `json:"steps"`
}

// Clone returns a deep copy of the recipe.
func (r Recipe) Clone() Recipe {
	if r.Steps == nil {
		return Recipe{}
	}
	out := Recipe{Steps: make([]RecipeStep, len(r.Steps))}
	for i, s := range r.Steps {
		out.Steps[i] = s.Clone()
	}
	return out
}

// StoredRecipe is a named recipe kept in the recipe library.
type StoredRecipe struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Steps     []RecipeStep `json:"steps"`
	CreatedAt int64        `json:"created_at"` // unix seconds
}
