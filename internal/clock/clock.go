// Package clock provides the time source used to time recipe steps and a
// background NTP check that reports when the local clock drifts.
package clock

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrBeforeEpoch is returned when the time source reports a time before the
// unix epoch. Step timing cannot continue on such a clock.
var ErrBeforeEpoch = errors.New("clock: time is before unix epoch")

// Clock is the time source.
type Clock interface {
	Now() time.Time
}

// System reads the host wall clock.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// UnixSeconds returns whole seconds since the epoch.
func UnixSeconds(c Clock) (int64, error) {
	now := c.Now()
	if now.Before(time.Unix(0, 0)) {
		return 0, fmt.Errorf("%w: %s", ErrBeforeEpoch, now.UTC().Format(time.RFC3339))
	}
	return now.Unix(), nil
}

// Manual is a settable clock for tests and simulations.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Set moves the clock to t.
func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	m.now = t
	m.mu.Unlock()
}

// Advance moves the clock forward by d.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}
