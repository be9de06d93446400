package control

import (
	"fmt"
	"math"

	"brewing_control/internal/clock"
	"brewing_control/internal/logger"
	"brewing_control/internal/models"
)

// Layout is the fixed shape of the rig: one heater per zone plus the
// fluid-path actuators addressed by recipe steps.
type Layout struct {
	Zones     int
	Actuators int
}

// Goals are targets a transition hands to the regulator and the actuator
// follower. A nil slice means "unchanged".
type Goals struct {
	Temperatures []float64
	Actuators    []bool
}

func (g Goals) IsZero() bool {
	return g.Temperatures == nil && g.Actuators == nil
}

// Machine is the recipe state machine. It is owned by the processor loop and
// is not safe for concurrent use.
type Machine struct {
	layout Layout
	clock  clock.Clock
	log    *logger.Logger

	recipe models.Recipe
	proc   models.Process
}

func NewMachine(layout Layout, clk clock.Clock, log *logger.Logger) *Machine {
	return &Machine{
		layout: layout,
		clock:  clk,
		log:    log,
		proc:   models.Process{Status: models.StatusUninitialized},
	}
}

// Recipe returns a copy of the loaded recipe.
func (m *Machine) Recipe() models.Recipe {
	return m.recipe.Clone()
}

func (m *Machine) Process() models.Process {
	return m.proc
}

// Restore reinstates a checkpointed recipe. A recipe that was running comes
// back PAUSED so heating never resumes without an operator.
func (m *Machine) Restore(recipe models.Recipe, proc models.Process) error {
	if proc.Status == models.StatusUninitialized {
		return nil
	}
	if err := m.ValidateSteps(recipe.Steps); err != nil {
		return err
	}
	m.recipe = recipe.Clone()
	m.proc = proc
	if m.proc.Status == models.StatusStarted {
		m.proc.Status = models.StatusPaused
	}
	m.clampIndex()
	return nil
}

// ValidateSteps checks step shapes against the layout.
func (m *Machine) ValidateSteps(steps []models.RecipeStep) error {
	return ValidateSteps(m.layout, steps)
}

// ValidateSteps checks that a recipe is non-empty and every step has one
// finite temperature per zone and one goal per fluid actuator.
func ValidateSteps(layout Layout, steps []models.RecipeStep) error {
	if len(steps) == 0 {
		return fmt.Errorf("%w: no steps", ErrInvalidRecipe)
	}
	for i, s := range steps {
		if len(s.Temperatures) != layout.Zones {
			return fmt.Errorf("%w: step %d has %d temperatures, want %d",
				ErrInvalidRecipe, i, len(s.Temperatures), layout.Zones)
		}
		if len(s.Actuators) != layout.Actuators {
			return fmt.Errorf("%w: step %d has %d actuators, want %d",
				ErrInvalidRecipe, i, len(s.Actuators), layout.Actuators)
		}
		for z, v := range s.Temperatures {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: step %d zone %d temperature is not finite", ErrInvalidRecipe, i, z)
			}
		}
	}
	return nil
}

// Load replaces the recipe, or appends to it while one is in progress.
func (m *Machine) Load(steps []models.RecipeStep) error {
	if err := m.ValidateSteps(steps); err != nil {
		return err
	}
	cloned := models.Recipe{Steps: steps}.Clone().Steps

	switch m.proc.Status {
	case models.StatusStarted, models.StatusPaused:
		m.recipe.Steps = append(m.recipe.Steps, cloned...)
	default:
		m.recipe = models.Recipe{Steps: cloned}
		m.proc = models.Process{Status: models.StatusLoaded}
	}
	return nil
}

// Start (re)starts the active step: its goals apply and its timer restarts.
func (m *Machine) Start() (Goals, error) {
	switch m.proc.Status {
	case models.StatusLoaded, models.StatusPaused:
	default:
		return Goals{}, m.transitionErr("start")
	}
	now, err := clock.UnixSeconds(m.clock)
	if err != nil {
		return Goals{}, err
	}
	m.clampIndex()
	m.proc.Status = models.StatusStarted
	m.proc.StepStartedAt = now
	return m.stepGoals(), nil
}

func (m *Machine) Pause() error {
	if m.proc.Status != models.StatusStarted {
		return m.transitionErr("pause")
	}
	m.proc.Status = models.StatusPaused
	return nil
}

// Stop pauses a running step. It is valid in every status; the caller turns
// the actuators off.
func (m *Machine) Stop() {
	if m.proc.Status == models.StatusStarted {
		m.proc.Status = models.StatusPaused
	}
}

// Skip advances immediately. It is a no-op once FINISHED.
func (m *Machine) Skip() (Goals, error) {
	switch m.proc.Status {
	case models.StatusFinished:
		return Goals{}, nil
	case models.StatusStarted, models.StatusPaused:
	default:
		return Goals{}, m.transitionErr("skip")
	}
	now, err := clock.UnixSeconds(m.clock)
	if err != nil {
		return Goals{}, err
	}
	m.clampIndex()
	return m.advance(now), nil
}

// Evaluate advances the recipe if the active step's duration has elapsed.
// It advances at most one step per call, and a fresh timer on the new step
// prevents repeated calls from advancing again.
func (m *Machine) Evaluate() (Goals, error) {
	if m.proc.Status != models.StatusStarted {
		return Goals{}, nil
	}
	now, err := clock.UnixSeconds(m.clock)
	if err != nil {
		return Goals{}, err
	}
	m.clampIndex()

	step := m.recipe.Steps[m.proc.ActiveStep]
	if step.DurationSec == models.Unbounded {
		return Goals{}, nil
	}
	elapsed := now - m.proc.StepStartedAt
	if elapsed < 0 {
		elapsed = 0
	}
	if uint64(elapsed) < step.DurationSec {
		return Goals{}, nil
	}
	return m.advance(now), nil
}

// advance moves to the next step or finishes on the last one.
func (m *Machine) advance(now int64) Goals {
	if m.proc.ActiveStep >= len(m.recipe.Steps)-1 {
		m.proc.Status = models.StatusFinished
		return Goals{}
	}
	m.proc.ActiveStep++
	if m.recipe.Steps[m.proc.ActiveStep].Autostart {
		m.proc.Status = models.StatusStarted
		m.proc.StepStartedAt = now
		return m.stepGoals()
	}
	m.proc.Status = models.StatusPaused
	return Goals{}
}

func (m *Machine) SetTemperatures(goals []float64) (Goals, error) {
	step, err := m.activeStep()
	if err != nil {
		return Goals{}, err
	}
	if len(goals) != m.layout.Zones {
		return Goals{}, fmt.Errorf("%w: got %d temperatures, want %d", ErrInvalidGoals, len(goals), m.layout.Zones)
	}
	step.Temperatures = append(step.Temperatures[:0], goals...)
	return m.forwardTemperatures(step), nil
}

func (m *Machine) SetActuators(goals []bool) (Goals, error) {
	step, err := m.activeStep()
	if err != nil {
		return Goals{}, err
	}
	if len(goals) != m.layout.Actuators {
		return Goals{}, fmt.Errorf("%w: got %d actuators, want %d", ErrInvalidGoals, len(goals), m.layout.Actuators)
	}
	step.Actuators = append(step.Actuators[:0], goals...)
	return m.forwardActuators(step), nil
}

func (m *Machine) OverrideTemperature(index int, value float64) (Goals, error) {
	step, err := m.activeStep()
	if err != nil {
		return Goals{}, err
	}
	if index < 0 || index >= len(step.Temperatures) {
		return Goals{}, fmt.Errorf("%w: temperature %d of %d", ErrIndexOutOfRange, index, len(step.Temperatures))
	}
	step.Temperatures[index] = value
	return m.forwardTemperatures(step), nil
}

func (m *Machine) OverrideActuator(index int, state bool) (Goals, error) {
	step, err := m.activeStep()
	if err != nil {
		return Goals{}, err
	}
	if index < 0 || index >= len(step.Actuators) {
		return Goals{}, fmt.Errorf("%w: actuator %d of %d", ErrIndexOutOfRange, index, len(step.Actuators))
	}
	step.Actuators[index] = state
	return m.forwardActuators(step), nil
}

func (m *Machine) OverrideDuration(seconds uint64) error {
	step, err := m.activeStep()
	if err != nil {
		return err
	}
	step.DurationSec = seconds
	return nil
}

// Overridden goals only reach the rig while the step is running; otherwise
// they wait for the next Start.
func (m *Machine) forwardTemperatures(step *models.RecipeStep) Goals {
	if m.proc.Status != models.StatusStarted {
		return Goals{}
	}
	return Goals{Temperatures: append([]float64(nil), step.Temperatures...)}
}

func (m *Machine) forwardActuators(step *models.RecipeStep) Goals {
	if m.proc.Status != models.StatusStarted {
		return Goals{}
	}
	return Goals{Actuators: append([]bool(nil), step.Actuators...)}
}

func (m *Machine) activeStep() (*models.RecipeStep, error) {
	if m.proc.Status == models.StatusUninitialized || len(m.recipe.Steps) == 0 {
		return nil, fmt.Errorf("%w: no recipe loaded", ErrInvalidTransition)
	}
	m.clampIndex()
	return &m.recipe.Steps[m.proc.ActiveStep], nil
}

func (m *Machine) stepGoals() Goals {
	step := m.recipe.Steps[m.proc.ActiveStep]
	return Goals{
		Temperatures: append([]float64(nil), step.Temperatures...),
		Actuators:    append([]bool(nil), step.Actuators...),
	}
}

// clampIndex keeps the active index inside the recipe. An out-of-range index
// is a bug; the loop logs it and continues on the last valid step.
func (m *Machine) clampIndex() {
	last := len(m.recipe.Steps) - 1
	if m.proc.ActiveStep > last {
		m.log.Errorw("active_step_out_of_range", "active_step", m.proc.ActiveStep, "steps", len(m.recipe.Steps))
		m.proc.ActiveStep = last
	}
	if m.proc.ActiveStep < 0 {
		m.log.Errorw("active_step_out_of_range", "active_step", m.proc.ActiveStep, "steps", len(m.recipe.Steps))
		m.proc.ActiveStep = 0
	}
}

func (m *Machine) transitionErr(op string) error {
	return fmt.Errorf("%w: cannot %s while %s", ErrInvalidTransition, op, m.proc.Status)
}
