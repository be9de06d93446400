// Package sim is a simulated brewing rig: heater relays warm their zone, and
// zones drift back to ambient when the heater is off. It satisfies
// peripheral.Peripheral and is used for development and tests.
package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"brewing_control/internal/clock"
	"brewing_control/internal/peripheral"
)

// ----------- Simulation constants -----------
const (
	AmbientC      = 20.0  // ambient temperature °C
	BoilC         = 100.0 // water does not get hotter than this
	HeatCPerSec   = 0.5   // °C per second with the heater energized
	DriftCPerSec  = 0.05  // °C per second cooling drift toward ambient
	maxStepPerSec = 3600  // cap on elapsed time folded into one update
)

// ErrSensorFault is returned by ReadTemperatures while a fault is injected.
var ErrSensorFault = errors.New("sim: sensor read failed")

type zone struct {
	tempC     float64
	heaterPin int
}

// Rig simulates the thermal zones and relay bank.
type Rig struct {
	mu        sync.Mutex
	clock     clock.Clock
	zones     []zone
	relays    map[int]bool
	pulses    map[int]int
	failReads int
	updatedAt time.Time
}

// New builds a rig whose zone i is heated by heaterPins[i]. actuatorPins are
// the fluid-path relays; they have no thermal effect.
func New(c clock.Clock, heaterPins, actuatorPins []int) *Rig {
	r := &Rig{
		clock:     c,
		zones:     make([]zone, len(heaterPins)),
		relays:    make(map[int]bool, len(heaterPins)+len(actuatorPins)),
		pulses:    make(map[int]int, len(heaterPins)+len(actuatorPins)),
		updatedAt: c.Now(),
	}
	for i, pin := range heaterPins {
		r.zones[i] = zone{tempC: AmbientC, heaterPin: pin}
		r.relays[pin] = false
	}
	for _, pin := range actuatorPins {
		r.relays[pin] = false
	}
	return r
}

// ReadTemperatures advances the model to now and returns one reading per zone.
func (r *Rig) ReadTemperatures(ctx context.Context) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.advance(r.clock.Now())
	if r.failReads > 0 {
		r.failReads--
		return nil, ErrSensorFault
	}
	out := make([]float64, len(r.zones))
	for i, z := range r.zones {
		out[i] = z.tempC
	}
	return out, nil
}

// TriggerActuator toggles the relay on pin.
func (r *Rig) TriggerActuator(ctx context.Context, pin int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.relays[pin]
	if !ok {
		return fmt.Errorf("%w: %d", peripheral.ErrUnknownPin, pin)
	}
	// fold in the time spent under the previous relay state first
	r.advance(r.clock.Now())
	r.relays[pin] = !state
	r.pulses[pin]++
	return nil
}

// Relay reports whether the relay on pin is energized.
func (r *Rig) Relay(pin int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.relays[pin]
}

// Pulses returns how many pulses pin has received.
func (r *Rig) Pulses(pin int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pulses[pin]
}

// SetTemperature forces a zone reading.
func (r *Rig) SetTemperature(zoneIdx int, tempC float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if zoneIdx >= 0 && zoneIdx < len(r.zones) {
		r.zones[zoneIdx].tempC = tempC
	}
}

// FailReads makes the next n temperature reads fail.
func (r *Rig) FailReads(n int) {
	r.mu.Lock()
	r.failReads = n
	r.mu.Unlock()
}

// advance applies heating/drift for the time since the last update.
func (r *Rig) advance(now time.Time) {
	elapsed := now.Sub(r.updatedAt).Seconds()
	if elapsed <= 0 {
		return
	}
	if elapsed > maxStepPerSec {
		elapsed = maxStepPerSec
	}
	for i := range r.zones {
		z := &r.zones[i]
		if r.relays[z.heaterPin] {
			handleHeat(z, elapsed)
		} else {
			driftToAmbient(z, elapsed)
		}
	}
	r.updatedAt = now
}

// handleHeat ramps a zone up, clamped at boiling.
func handleHeat(z *zone, elapsed float64) {
	z.tempC = minFloat(z.tempC+HeatCPerSec*elapsed, BoilC)
}

// driftToAmbient cools toward ambient; it never undershoots.
func driftToAmbient(z *zone, elapsed float64) {
	if z.tempC > AmbientC {
		z.tempC = maxFloat(z.tempC-DriftCPerSec*elapsed, AmbientC)
	}
}

// helpers
func maxFloat(a, b float64) float64 {
	if a >= b {
		return a
	}
	return b
}

func minFloat(a, b float64) float64 {
	if a <= b {
		return a
	}
	return b
}
