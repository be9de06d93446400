// Package peripheral defines the hardware boundary of the rig: temperature
// sensors and pulse-triggered actuator relays.
package peripheral

import (
	"context"
	"errors"
)

// ErrUnknownPin is returned when a trigger targets a pin the driver does not know.
var ErrUnknownPin = errors.New("peripheral: unknown pin")

// TemperatureSensor reads one temperature per zone, in zone order.
type TemperatureSensor interface {
	ReadTemperatures(ctx context.Context) ([]float64, error)
}

// Trigger fires a single pulse on an actuator relay. Each pulse toggles the
// relay. Callers must not trigger the same pin concurrently or redundantly.
type Trigger interface {
	TriggerActuator(ctx context.Context, pin int) error
}

// Peripheral is the full hardware contract consumed by the control engine.
type Peripheral interface {
	TemperatureSensor
	Trigger
}
