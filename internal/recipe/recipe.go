// Package recipe reads and writes the recipe import format.
//
// A recipe file is YAML (JSON is accepted as a YAML subset):
//
//	name: pale ale
//	steps:
//	  - temperatures: [66.0, 78.0]
//	    actuators: [true, false]
//	    duration: 3600
//	    autostart: true
//
// A bare list of steps is accepted too. A duration of -1 holds the step until
// it is skipped. "automatic" is read as an alias for "autostart".
package recipe

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"brewing_control/internal/control"
	"brewing_control/internal/models"
)

// HoldDuration is the file value for a step that never advances on its own.
const HoldDuration int64 = -1

type stepDoc struct {
	Temperatures []float64 `yaml:"temperatures"`
	Actuators    []bool    `yaml:"actuators"`
	Duration     *int64    `yaml:"duration"`
	Autostart    *bool     `yaml:"autostart,omitempty"`
	Automatic    *bool     `yaml:"automatic,omitempty"`
}

type document struct {
	Name  string    `yaml:"name,omitempty"`
	Steps []stepDoc `yaml:"steps"`
}

// Parsed is a decoded recipe file.
type Parsed struct {
	Name  string
	Steps []models.RecipeStep
}

// Parse decodes a recipe document. It checks values but not the rig layout;
// see Validate.
func Parse(data []byte) (Parsed, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return Parsed{}, fmt.Errorf("%w: %v", control.ErrInvalidRecipe, err)
	}
	if len(root.Content) == 0 {
		return Parsed{}, fmt.Errorf("%w: empty document", control.ErrInvalidRecipe)
	}

	var doc document
	var target any
	switch root.Content[0].Kind {
	case yaml.SequenceNode:
		target = &doc.Steps
	case yaml.MappingNode:
		target = &doc
	default:
		return Parsed{}, fmt.Errorf("%w: expected a mapping or a list of steps", control.ErrInvalidRecipe)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(target); err != nil {
		return Parsed{}, fmt.Errorf("%w: %v", control.ErrInvalidRecipe, err)
	}

	if len(doc.Steps) == 0 {
		return Parsed{}, fmt.Errorf("%w: no steps", control.ErrInvalidRecipe)
	}
	out := Parsed{Name: doc.Name, Steps: make([]models.RecipeStep, 0, len(doc.Steps))}
	for i, s := range doc.Steps {
		step, err := s.toModel()
		if err != nil {
			return Parsed{}, fmt.Errorf("%w: step %d: %v", control.ErrInvalidRecipe, i, err)
		}
		out.Steps = append(out.Steps, step)
	}
	return out, nil
}

// ParseFile reads and decodes a recipe file.
func ParseFile(path string) (Parsed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Parsed{}, fmt.Errorf("failed to read recipe: %w", err)
	}
	return Parse(data)
}

func (s stepDoc) toModel() (models.RecipeStep, error) {
	if s.Duration == nil {
		return models.RecipeStep{}, errors.New("duration is required")
	}
	var dur uint64
	switch d := *s.Duration; {
	case d == HoldDuration:
		dur = models.Unbounded
	case d < 0:
		return models.RecipeStep{}, fmt.Errorf("duration %d is negative", d)
	default:
		dur = uint64(d)
	}

	autostart := false
	switch {
	case s.Autostart != nil:
		autostart = *s.Autostart
	case s.Automatic != nil:
		autostart = *s.Automatic
	}

	temps := append([]float64{}, s.Temperatures...)
	for z, v := range temps {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return models.RecipeStep{}, fmt.Errorf("zone %d temperature is not finite", z)
		}
	}
	return models.RecipeStep{
		Temperatures: temps,
		Actuators:    append([]bool{}, s.Actuators...),
		DurationSec:  dur,
		Autostart:    autostart,
	}, nil
}

// Validate checks every step against the rig layout.
func Validate(steps []models.RecipeStep, layout control.Layout) error {
	return control.ValidateSteps(layout, steps)
}

// Encode writes steps in the import format.
func Encode(name string, steps []models.RecipeStep) ([]byte, error) {
	doc := document{Name: name, Steps: make([]stepDoc, 0, len(steps))}
	for _, s := range steps {
		dur := HoldDuration
		if s.DurationSec != models.Unbounded {
			if s.DurationSec > math.MaxInt64 {
				return nil, fmt.Errorf("duration %d does not fit the file format", s.DurationSec)
			}
			dur = int64(s.DurationSec)
		}
		autostart := s.Autostart
		doc.Steps = append(doc.Steps, stepDoc{
			Temperatures: s.Temperatures,
			Actuators:    s.Actuators,
			Duration:     &dur,
			Autostart:    &autostart,
		})
	}
	return yaml.Marshal(doc)
}
