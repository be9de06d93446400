package control

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brewing_control/internal/clock"
	"brewing_control/internal/logger"
	"brewing_control/internal/models"
)

func newTestMachine(zones, actuators int) (*Machine, *clock.Manual) {
	c := newManualClock()
	return NewMachine(Layout{Zones: zones, Actuators: actuators}, c, logger.NewNop()), c
}

func TestMachine_TwoStepScenario(t *testing.T) {
	m, clk := newTestMachine(1, 1)
	require.NoError(t, m.Load([]models.RecipeStep{
		step([]float64{66}, []bool{true}, 5, true),
		step([]float64{78}, []bool{false}, 10, false),
	}))

	goals, err := m.Start()
	require.NoError(t, err)
	assert.Equal(t, []float64{66}, goals.Temperatures)
	assert.Equal(t, []bool{true}, goals.Actuators)
	assert.Equal(t, models.StatusStarted, m.Process().Status)
	assert.Equal(t, 0, m.Process().ActiveStep)

	clk.Advance(4 * time.Second)
	goals, err = m.Evaluate()
	require.NoError(t, err)
	assert.True(t, goals.IsZero())
	assert.Equal(t, 0, m.Process().ActiveStep)

	clk.Advance(1 * time.Second)
	goals, err = m.Evaluate()
	require.NoError(t, err)
	assert.True(t, goals.IsZero(), "non-autostart step must not apply goals")
	assert.Equal(t, models.StatusPaused, m.Process().Status)
	assert.Equal(t, 1, m.Process().ActiveStep)

	clk.Advance(30 * time.Second)
	_, err = m.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaused, m.Process().Status, "paused step does not time out")

	goals, err = m.Start()
	require.NoError(t, err)
	assert.Equal(t, []float64{78}, goals.Temperatures)
	startedAt := m.Process().StepStartedAt
	assert.Equal(t, t0.Unix()+35, startedAt)

	clk.Advance(9 * time.Second)
	_, err = m.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, models.StatusStarted, m.Process().Status)

	clk.Advance(1 * time.Second)
	goals, err = m.Evaluate()
	require.NoError(t, err)
	assert.True(t, goals.IsZero())
	assert.Equal(t, models.StatusFinished, m.Process().Status)
	assert.Equal(t, 1, m.Process().ActiveStep)
}

func TestMachine_SkipReachesFinished(t *testing.T) {
	for _, n := range []int{1, 2, 3, 5} {
		for start := 0; start < n; start++ {
			m, _ := newTestMachine(1, 0)
			steps := make([]models.RecipeStep, n)
			for i := range steps {
				steps[i] = step([]float64{float64(50 + i)}, []bool{}, 60, i%2 == 0)
			}
			require.NoError(t, m.Load(steps))
			_, err := m.Start()
			require.NoError(t, err)
			for i := 0; i < start; i++ {
				_, err := m.Skip()
				require.NoError(t, err)
			}
			require.Equal(t, start, m.Process().ActiveStep)

			for i := 0; i < n-start; i++ {
				require.NotEqual(t, models.StatusFinished, m.Process().Status, "n=%d start=%d skip=%d", n, start, i)
				_, err := m.Skip()
				require.NoError(t, err)
			}
			assert.Equal(t, models.StatusFinished, m.Process().Status, "n=%d start=%d", n, start)

			_, err = m.Skip()
			require.NoError(t, err)
			assert.Equal(t, models.StatusFinished, m.Process().Status)
			assert.Equal(t, n-1, m.Process().ActiveStep)
		}
	}
}

func TestMachine_NoDoubleAdvance(t *testing.T) {
	m, clk := newTestMachine(1, 0)
	require.NoError(t, m.Load([]models.RecipeStep{
		step([]float64{50}, []bool{}, 5, true),
		step([]float64{60}, []bool{}, 5, true),
		step([]float64{70}, []bool{}, 5, true),
	}))
	_, err := m.Start()
	require.NoError(t, err)

	clk.Advance(5 * time.Second)
	for i := 0; i < 100; i++ {
		_, err := m.Evaluate()
		require.NoError(t, err)
	}
	assert.Equal(t, 1, m.Process().ActiveStep)
	assert.Equal(t, models.StatusStarted, m.Process().Status)
}

func TestMachine_ZeroAndUnboundedDurations(t *testing.T) {
	m, clk := newTestMachine(1, 0)
	require.NoError(t, m.Load([]models.RecipeStep{
		step([]float64{50}, []bool{}, 0, true),
		step([]float64{60}, []bool{}, models.Unbounded, true),
	}))
	_, err := m.Start()
	require.NoError(t, err)

	goals, err := m.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, []float64{60}, goals.Temperatures)
	assert.Equal(t, 1, m.Process().ActiveStep)

	clk.Advance(1_000_000 * time.Second)
	_, err = m.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, models.StatusStarted, m.Process().Status)
	assert.Equal(t, 1, m.Process().ActiveStep)
}

func TestMachine_OverrideTemperatureChangesOnlyIndex(t *testing.T) {
	m, _ := newTestMachine(4, 2)
	orig := []float64{61.25, 72.5, 0.1, -3}
	require.NoError(t, m.Load([]models.RecipeStep{step(append([]float64(nil), orig...), []bool{true, false}, 60, true)}))
	_, err := m.Start()
	require.NoError(t, err)

	goals, err := m.OverrideTemperature(2, 99)
	require.NoError(t, err)
	want := []float64{61.25, 72.5, 99, -3}
	assert.Equal(t, want, goals.Temperatures)
	assert.Equal(t, want, m.Recipe().Steps[0].Temperatures)
	assert.Equal(t, []bool{true, false}, m.Recipe().Steps[0].Actuators)
	assert.Equal(t, models.StatusStarted, m.Process().Status)

	_, err = m.OverrideTemperature(4, 1)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	_, err = m.OverrideTemperature(-1, 1)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	assert.Equal(t, want, m.Recipe().Steps[0].Temperatures)
}

func TestMachine_OverridesForwardOnlyWhileStarted(t *testing.T) {
	m, _ := newTestMachine(1, 2)
	require.NoError(t, m.Load([]models.RecipeStep{step([]float64{60}, []bool{false, false}, 60, true)}))

	goals, err := m.OverrideActuator(1, true)
	require.NoError(t, err)
	assert.True(t, goals.IsZero())
	assert.Equal(t, []bool{false, true}, m.Recipe().Steps[0].Actuators)

	goals, err = m.Start()
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true}, goals.Actuators)

	goals, err = m.OverrideActuator(0, true)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true}, goals.Actuators)
	assert.Nil(t, goals.Temperatures)

	require.NoError(t, m.Pause())
	goals, err = m.SetTemperatures([]float64{70})
	require.NoError(t, err)
	assert.True(t, goals.IsZero())
	assert.Equal(t, models.StatusPaused, m.Process().Status)
}

func TestMachine_SetGoalsLengthChecked(t *testing.T) {
	m, _ := newTestMachine(2, 1)
	_, err := m.SetTemperatures([]float64{1, 2})
	assert.True(t, errors.Is(err, ErrInvalidTransition), "no recipe loaded")

	require.NoError(t, m.Load([]models.RecipeStep{step([]float64{1, 2}, []bool{true}, 60, true)}))
	_, err = m.SetTemperatures([]float64{1})
	assert.True(t, errors.Is(err, ErrInvalidGoals))
	_, err = m.SetActuators([]bool{true, true})
	assert.True(t, errors.Is(err, ErrInvalidGoals))
}

func TestMachine_OverrideDuration(t *testing.T) {
	m, clk := newTestMachine(1, 0)
	require.NoError(t, m.Load([]models.RecipeStep{step([]float64{60}, []bool{}, 100, true)}))
	_, err := m.Start()
	require.NoError(t, err)

	clk.Advance(10 * time.Second)
	require.NoError(t, m.OverrideDuration(10))
	_, err = m.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, models.StatusFinished, m.Process().Status)
}

func TestMachine_LoadReplacesOrAppends(t *testing.T) {
	m, _ := newTestMachine(1, 0)
	a := step([]float64{50}, []bool{}, 10, true)
	b := step([]float64{60}, []bool{}, 10, true)

	require.NoError(t, m.Load([]models.RecipeStep{a}))
	assert.Equal(t, models.StatusLoaded, m.Process().Status)
	require.NoError(t, m.Load([]models.RecipeStep{b}))
	assert.Len(t, m.Recipe().Steps, 1, "LOADED replaces")

	_, err := m.Start()
	require.NoError(t, err)
	require.NoError(t, m.Load([]models.RecipeStep{a, a}))
	assert.Len(t, m.Recipe().Steps, 3, "STARTED appends")
	assert.Equal(t, models.StatusStarted, m.Process().Status)

	for i := 0; i < 3; i++ {
		_, err := m.Skip()
		require.NoError(t, err)
	}
	require.Equal(t, models.StatusFinished, m.Process().Status)
	require.NoError(t, m.Load([]models.RecipeStep{b}))
	assert.Equal(t, models.StatusLoaded, m.Process().Status)
	assert.Equal(t, 0, m.Process().ActiveStep)
	assert.Len(t, m.Recipe().Steps, 1, "FINISHED replaces")
}

func TestMachine_LoadValidates(t *testing.T) {
	m, _ := newTestMachine(2, 1)
	tests := []struct {
		name  string
		steps []models.RecipeStep
	}{
		{"empty", nil},
		{"temperature count", []models.RecipeStep{step([]float64{1}, []bool{true}, 1, true)}},
		{"actuator count", []models.RecipeStep{step([]float64{1, 2}, []bool{}, 1, true)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.Load(tt.steps)
			assert.True(t, errors.Is(err, ErrInvalidRecipe))
			assert.Equal(t, models.StatusUninitialized, m.Process().Status)
		})
	}
}

func TestMachine_InvalidTransitions(t *testing.T) {
	m, _ := newTestMachine(1, 0)
	_, err := m.Start()
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	_, err = m.Skip()
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.True(t, errors.Is(m.Pause(), ErrInvalidTransition))

	require.NoError(t, m.Load([]models.RecipeStep{step([]float64{1}, []bool{}, 1, true)}))
	assert.True(t, errors.Is(m.Pause(), ErrInvalidTransition))
	_, err = m.Start()
	require.NoError(t, err)
	_, err = m.Start()
	assert.True(t, errors.Is(err, ErrInvalidTransition))
}

func TestMachine_ClockBeforeEpoch(t *testing.T) {
	c := newManualClock()
	m := NewMachine(Layout{Zones: 1}, c, logger.NewNop())
	require.NoError(t, m.Load([]models.RecipeStep{step([]float64{1}, []bool{}, 1, true)}))

	c.Set(time.Unix(-5, 0))
	_, err := m.Start()
	assert.True(t, errors.Is(err, ErrClockBeforeEpoch))
	assert.Equal(t, models.StatusLoaded, m.Process().Status)
}

func TestMachine_RestoreResumesPaused(t *testing.T) {
	m, _ := newTestMachine(1, 0)
	recipe := models.Recipe{Steps: []models.RecipeStep{
		step([]float64{50}, []bool{}, 10, true),
		step([]float64{60}, []bool{}, 10, true),
	}}
	require.NoError(t, m.Restore(recipe, models.Process{Status: models.StatusStarted, ActiveStep: 1, StepStartedAt: 5}))
	assert.Equal(t, models.StatusPaused, m.Process().Status)
	assert.Equal(t, 1, m.Process().ActiveStep)
}

func TestMachine_ClampsActiveIndex(t *testing.T) {
	m, _ := newTestMachine(1, 0)
	recipe := models.Recipe{Steps: []models.RecipeStep{
		step([]float64{50}, []bool{}, 10, true),
		step([]float64{60}, []bool{}, 10, true),
	}}
	require.NoError(t, m.Restore(recipe, models.Process{Status: models.StatusPaused, ActiveStep: 7}))
	assert.Equal(t, 1, m.Process().ActiveStep)

	goals, err := m.Start()
	require.NoError(t, err)
	assert.Equal(t, []float64{60}, goals.Temperatures)
}

func TestMachine_StopPausesRunningStep(t *testing.T) {
	m, _ := newTestMachine(1, 0)
	m.Stop()
	assert.Equal(t, models.StatusUninitialized, m.Process().Status)

	require.NoError(t, m.Load([]models.RecipeStep{step([]float64{50}, []bool{}, 10, true)}))
	_, err := m.Start()
	require.NoError(t, err)
	m.Stop()
	assert.Equal(t, models.StatusPaused, m.Process().Status)
}
