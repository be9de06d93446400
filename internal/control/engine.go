// Package control is the process-control core of the rig: the recipe state
// machine, the heater regulator, the actuator coordinator, the command
// processor and the status publisher, wired together by Engine.
package control

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"brewing_control/internal/clock"
	"brewing_control/internal/logger"
	"brewing_control/internal/models"
	"brewing_control/internal/peripheral"
)

type Config struct {
	HeaterPins      []int // one per zone
	ActuatorPins    []int // fluid-path actuators
	PulseWidth      time.Duration
	Regulator       RegulatorConfig
	Processor       ProcessorConfig
	ShutdownTimeout time.Duration
}

func (c Config) Layout() Layout {
	return Layout{Zones: len(c.HeaterPins), Actuators: len(c.ActuatorPins)}
}

// Engine runs the processor, regulator and actuator follower loops and
// guarantees the actuator bank is switched off when they stop.
type Engine struct {
	cfg   Config
	log   *logger.Logger
	proc  *Processor
	reg   *Regulator
	coord *Coordinator
	pub   *Publisher

	machine    *Machine
	fluidGoals *Latest[[]bool]
}

func NewEngine(
	cfg Config,
	dev peripheral.Peripheral,
	clk clock.Clock,
	store Checkpointer,
	skew SkewReporter,
	log *logger.Logger,
) (*Engine, error) {
	if len(cfg.HeaterPins) == 0 {
		return nil, errors.New("control: at least one heater pin is required")
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
	if cfg.Regulator.Interval <= 0 {
		cfg.Regulator.Interval = time.Second
	}
	layout := cfg.Layout()
	cfg.Regulator.Zones = layout.Zones

	pins := append(append([]int(nil), cfg.HeaterPins...), cfg.ActuatorPins...)
	seen := make(map[int]bool, len(pins))
	for _, pin := range pins {
		if seen[pin] {
			return nil, fmt.Errorf("control: pin %d assigned twice", pin)
		}
		seen[pin] = true
	}

	tempGoals := NewLatest[[]float64]()
	fluidGoals := NewLatest[[]bool]()
	readings := NewLatest[Reading]()

	coord := NewCoordinator(dev, pins, cfg.PulseWidth, log.Named("coordinator"))
	machine := NewMachine(layout, clk, log.Named("machine"))
	pub := NewPublisher(models.Snapshot{
		Actuators: make([]bool, len(pins)),
		Process:   models.Process{Status: models.StatusUninitialized},
		UpdatedAt: clk.Now().UTC(),
	})
	reg := NewRegulator(dev, coord, tempGoals, readings, cfg.Regulator, log.Named("regulator"))
	proc := NewProcessor(ProcessorDeps{
		Machine:    machine,
		Coord:      coord,
		TempGoals:  tempGoals,
		FluidGoals: fluidGoals,
		Readings:   readings,
		Publisher:  pub,
		Layout:     layout,
		Clock:      clk,
		Store:      store,
		Skew:       skew,
		Log:        log.Named("processor"),
	}, cfg.Processor)

	return &Engine{
		cfg:        cfg,
		log:        log,
		proc:       proc,
		reg:        reg,
		coord:      coord,
		pub:        pub,
		machine:    machine,
		fluidGoals: fluidGoals,
	}, nil
}

// Restore loads a checkpoint. It must be called before Run.
func (e *Engine) Restore(recipe models.Recipe, proc models.Process) error {
	if err := e.machine.Restore(recipe, proc); err != nil {
		return fmt.Errorf("restore checkpoint: %w", err)
	}
	restored := e.machine.Process()
	e.log.Infow("checkpoint_restored", "status", restored.Status, "active_step", restored.ActiveStep, "steps", len(recipe.Steps))
	return nil
}

func (e *Engine) Layout() Layout { return e.cfg.Layout() }

// Submit applies cmd and returns the snapshot published for it.
func (e *Engine) Submit(ctx context.Context, cmd Command) (models.Snapshot, error) {
	return e.proc.Submit(ctx, cmd)
}

func (e *Engine) Current() models.Snapshot { return e.pub.Current() }

func (e *Engine) Subscribe() *Subscription { return e.pub.Subscribe() }

// Run blocks until ctx is done or a loop fails, then switches every actuator
// off and closes all subscriptions.
func (e *Engine) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return e.proc.Run(gctx) })
	g.Go(func() error { return e.reg.Run(gctx) })
	g.Go(func() error { return e.coord.Follow(gctx, e.fluidGoals, e.cfg.Layout().Zones) })

	e.log.Infow("engine_started", "zones", len(e.cfg.HeaterPins), "actuators", len(e.cfg.ActuatorPins))
	err := g.Wait()
	if err != nil {
		e.log.Errorw("engine_aborted", "err", err)
	}

	sctx, cancel := context.WithTimeout(context.Background(), e.cfg.ShutdownTimeout)
	defer cancel()
	if serr := e.coord.Shutdown(sctx); serr != nil {
		err = errors.Join(err, serr)
	}
	e.pub.Close()
	e.log.Infow("engine_stopped")
	return err
}
