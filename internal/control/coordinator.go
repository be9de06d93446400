package control

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"brewing_control/internal/logger"
	"brewing_control/internal/peripheral"
)

// DefaultPulseWidth is how long an actuator stays locked after a trigger.
const DefaultPulseWidth = 50 * time.Millisecond

// Coordinator owns the actuator bank. Every state change goes through Apply,
// which serializes per actuator and never pulses a relay redundantly.
type Coordinator struct {
	trigger peripheral.Trigger
	pins    []int
	pulse   time.Duration
	log     *logger.Logger

	locks []sync.Mutex

	mu     sync.RWMutex
	states []bool
	failed []bool
}

// NewCoordinator builds a bank with one actuator per pin, all recorded off.
func NewCoordinator(trigger peripheral.Trigger, pins []int, pulse time.Duration, log *logger.Logger) *Coordinator {
	return &Coordinator{
		trigger: trigger,
		pins:    append([]int(nil), pins...),
		pulse:   pulse,
		log:     log,
		locks:   make([]sync.Mutex, len(pins)),
		states:  make([]bool, len(pins)),
		failed:  make([]bool, len(pins)),
	}
}

func (c *Coordinator) Len() int { return len(c.pins) }

// Apply drives actuator index to desired. A matching recorded state is a
// no-op; otherwise exactly one pulse fires and the recorded state flips. The
// actuator stays locked for the pulse width so back-to-back calls cannot
// overlap pulses.
func (c *Coordinator) Apply(ctx context.Context, index int, desired bool) error {
	if index < 0 || index >= len(c.pins) {
		return fmt.Errorf("%w: actuator %d of %d", ErrIndexOutOfRange, index, len(c.pins))
	}

	c.locks[index].Lock()
	defer c.locks[index].Unlock()

	if c.state(index) == desired {
		return nil
	}
	if err := c.trigger.TriggerActuator(ctx, c.pins[index]); err != nil {
		c.setFailed(index, true)
		return fmt.Errorf("trigger actuator %d (pin %d): %w", index, c.pins[index], err)
	}

	c.mu.Lock()
	c.states[index] = desired
	c.failed[index] = false
	c.mu.Unlock()

	if c.pulse > 0 {
		t := time.NewTimer(c.pulse)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
		}
	}
	return nil
}

// ApplyAll drives a contiguous range of the bank starting at offset.
// Different actuators pulse in parallel.
func (c *Coordinator) ApplyAll(ctx context.Context, offset int, desired []bool) error {
	var g errgroup.Group
	for j, want := range desired {
		index := offset + j
		g.Go(func() error {
			if err := c.Apply(ctx, index, want); err != nil {
				c.log.Warnw("actuator_apply_failed", "index", index, "desired", want, "err", err)
				return err
			}
			return nil
		})
	}
	return g.Wait()
}

// Shutdown forces every actuator off and reports every failure.
func (c *Coordinator) Shutdown(ctx context.Context) error {
	errs := make([]error, len(c.pins))
	var wg sync.WaitGroup
	for i := range c.pins {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = c.Apply(ctx, i, false)
		}(i)
	}
	wg.Wait()

	err := errors.Join(errs...)
	if err != nil {
		c.log.Errorw("actuator_shutdown_failed", "err", err)
		return err
	}
	c.log.Infow("actuators_off", "count", len(c.pins))
	return nil
}

// Follow applies fluid-actuator goal vectors as they arrive on goals until
// ctx is done. Failures are logged and retried with the next vector.
func (c *Coordinator) Follow(ctx context.Context, goals *Latest[[]bool], offset int) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case g := <-goals.C():
			_ = c.ApplyAll(ctx, offset, g)
		}
	}
}

// States returns a copy of the recorded bank.
func (c *Coordinator) States() []bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]bool(nil), c.states...)
}

// Faulted reports whether the last drive attempt of any actuator failed.
func (c *Coordinator) Faulted() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, f := range c.failed {
		if f {
			return true
		}
	}
	return false
}

func (c *Coordinator) state(index int) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.states[index]
}

func (c *Coordinator) setFailed(index int, v bool) {
	c.mu.Lock()
	c.failed[index] = v
	c.mu.Unlock()
}
