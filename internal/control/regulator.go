package control

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"brewing_control/internal/logger"
	"brewing_control/internal/peripheral"
)

// Switch is the regulator's decision for one heater.
type Switch int8

const (
	Hold Switch = iota
	On
	Off
)

func (s Switch) String() string {
	switch s {
	case On:
		return "on"
	case Off:
		return "off"
	default:
		return "hold"
	}
}

// Decide compares each zone's measured temperature with its goal. Inside the
// band [goal-cooling, goal+heating] the heater keeps its current state.
func Decide(goals, current []float64, heatingBuffer, coolingBuffer float64) []Switch {
	n := min(len(goals), len(current))
	out := make([]Switch, n)
	for i := 0; i < n; i++ {
		switch {
		case current[i] > goals[i]+heatingBuffer:
			out[i] = Off
		case current[i] < goals[i]-coolingBuffer:
			out[i] = On
		default:
			out[i] = Hold
		}
	}
	return out
}

// Reading is one regulator sample handed to the processor.
type Reading struct {
	Temperatures []float64
	SensorFault  bool
}

type RegulatorConfig struct {
	Zones          int
	Interval       time.Duration
	HeatingBuffer  float64
	CoolingBuffer  float64
	FaultThreshold int
}

// Regulator samples the sensors on a fixed cadence and switches the zone
// heaters (bank indexes 0..zones-1) toward the latest goal.
type Regulator struct {
	sensor   peripheral.TemperatureSensor
	coord    *Coordinator
	goals    *Latest[[]float64]
	readings *Latest[Reading]
	cfg      RegulatorConfig
	log      *logger.Logger

	goal     []float64
	last     []float64
	failures int
}

func NewRegulator(
	sensor peripheral.TemperatureSensor,
	coord *Coordinator,
	goals *Latest[[]float64],
	readings *Latest[Reading],
	cfg RegulatorConfig,
	log *logger.Logger,
) *Regulator {
	if cfg.FaultThreshold < 1 {
		cfg.FaultThreshold = 1
	}
	return &Regulator{
		sensor:   sensor,
		coord:    coord,
		goals:    goals,
		readings: readings,
		cfg:      cfg,
		log:      log,
	}
}

// Run samples until ctx is done. A new goal is acted on at once; otherwise
// the loop keeps regulating against the last goal it saw.
func (r *Regulator) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	r.sample(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case g := <-r.goals.C():
			r.goal = g
			r.sample(ctx)
		case <-ticker.C:
			r.sample(ctx)
		}
	}
}

func (r *Regulator) sample(ctx context.Context) {
	temps, err := r.sensor.ReadTemperatures(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		r.failures++
		fault := r.failures >= r.cfg.FaultThreshold
		r.log.Warnw("temperature_read_failed", "err", err, "consecutive_failures", r.failures)
		r.readings.Set(Reading{Temperatures: append([]float64(nil), r.last...), SensorFault: fault})
		if fault {
			// Heaters stay off until readings return.
			r.switchAll(ctx, false)
		}
		return
	}
	if r.failures >= r.cfg.FaultThreshold {
		r.log.Infow("temperature_read_recovered", "after_failures", r.failures)
	}
	r.failures = 0
	r.last = append(r.last[:0], temps...)
	r.readings.Set(Reading{Temperatures: append([]float64(nil), temps...)})

	if len(r.goal) == 0 {
		r.switchAll(ctx, false)
		return
	}
	decisions := Decide(r.goal, temps, r.cfg.HeatingBuffer, r.cfg.CoolingBuffer)

	var g errgroup.Group
	for zone, d := range decisions {
		if d == Hold {
			continue
		}
		g.Go(func() error {
			return r.apply(ctx, zone, d == On)
		})
	}
	_ = g.Wait()
}

func (r *Regulator) switchAll(ctx context.Context, on bool) {
	var g errgroup.Group
	for zone := 0; zone < min(r.cfg.Zones, r.coord.Len()); zone++ {
		g.Go(func() error {
			return r.apply(ctx, zone, on)
		})
	}
	_ = g.Wait()
}

func (r *Regulator) apply(ctx context.Context, zone int, on bool) error {
	if err := r.coord.Apply(ctx, zone, on); err != nil {
		r.log.Warnw("heater_switch_failed", "zone", zone, "on", on, "err", err)
		return err
	}
	return nil
}
