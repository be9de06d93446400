package control

import (
	"context"
	"sync"
	"time"

	"brewing_control/internal/clock"
	"brewing_control/internal/models"
)

var t0 = time.Unix(1_700_000_000, 0)

// fakeRig records pulses per pin and serves canned temperatures.
type fakeRig struct {
	mu         sync.Mutex
	temps      []float64
	readErr    error
	triggerErr error
	pulses     map[int]int
}

func newFakeRig(temps ...float64) *fakeRig {
	return &fakeRig{temps: temps, pulses: make(map[int]int)}
}

func (f *fakeRig) ReadTemperatures(ctx context.Context) ([]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	return append([]float64(nil), f.temps...), nil
}

func (f *fakeRig) TriggerActuator(ctx context.Context, pin int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.triggerErr != nil {
		return f.triggerErr
	}
	f.pulses[pin]++
	return nil
}

func (f *fakeRig) setTemps(temps ...float64) {
	f.mu.Lock()
	f.temps = temps
	f.mu.Unlock()
}

func (f *fakeRig) setReadErr(err error) {
	f.mu.Lock()
	f.readErr = err
	f.mu.Unlock()
}

func (f *fakeRig) setTriggerErr(err error) {
	f.mu.Lock()
	f.triggerErr = err
	f.mu.Unlock()
}

func (f *fakeRig) pulseCount(pin int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pulses[pin]
}

// fakeStore keeps the last checkpoint.
type fakeStore struct {
	mu     sync.Mutex
	saves  int
	recipe models.Recipe
	proc   models.Process
}

func (s *fakeStore) SaveCheckpoint(ctx context.Context, recipe models.Recipe, proc models.Process) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	s.recipe = recipe
	s.proc = proc
	return nil
}

func (s *fakeStore) last() (models.Recipe, models.Process, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recipe, s.proc, s.saves
}

type fixedSkew bool

func (s fixedSkew) Skewed() bool { return bool(s) }

func step(temps []float64, acts []bool, dur uint64, autostart bool) models.RecipeStep {
	return models.RecipeStep{Temperatures: temps, Actuators: acts, DurationSec: dur, Autostart: autostart}
}

func newManualClock() *clock.Manual {
	return clock.NewManual(t0)
}
