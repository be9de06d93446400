package control

import (
	"context"
	"errors"
	"fmt"
	"time"

	"brewing_control/internal/clock"
	"brewing_control/internal/logger"
	"brewing_control/internal/models"
)

// Checkpointer persists recipe progress so a restart can resume it.
type Checkpointer interface {
	SaveCheckpoint(ctx context.Context, recipe models.Recipe, proc models.Process) error
}

// SkewReporter reports whether the wall clock is known to be off.
type SkewReporter interface {
	Skewed() bool
}

type ProcessorConfig struct {
	Tick      time.Duration
	QueueSize int
}

type envelope struct {
	cmd   Command
	reply chan result
}

type result struct {
	snap models.Snapshot
	err  error
}

// Processor is the single writer of recipe and process state. Commands are
// applied one at a time in arrival order; between commands the loop keeps
// evaluating step progression on a ticker.
type Processor struct {
	machine    *Machine
	coord      *Coordinator
	tempGoals  *Latest[[]float64]
	fluidGoals *Latest[[]bool]
	readings   *Latest[Reading]
	pub        *Publisher
	layout     Layout
	clock      clock.Clock
	store      Checkpointer
	skew       SkewReporter
	cfg        ProcessorConfig
	log        *logger.Logger

	inbox chan envelope
	done  chan struct{}

	// owned by the Run goroutine
	goalTemps   []float64
	temps       []float64
	sensorFault bool
	seq         uint64
}

type ProcessorDeps struct {
	Machine    *Machine
	Coord      *Coordinator
	TempGoals  *Latest[[]float64]
	FluidGoals *Latest[[]bool]
	Readings   *Latest[Reading]
	Publisher  *Publisher
	Layout     Layout
	Clock      clock.Clock
	Store      Checkpointer // optional
	Skew       SkewReporter // optional
	Log        *logger.Logger
}

func NewProcessor(d ProcessorDeps, cfg ProcessorConfig) *Processor {
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 1
	}
	if cfg.Tick <= 0 {
		cfg.Tick = time.Second
	}
	return &Processor{
		machine:    d.Machine,
		coord:      d.Coord,
		tempGoals:  d.TempGoals,
		fluidGoals: d.FluidGoals,
		readings:   d.Readings,
		pub:        d.Publisher,
		layout:     d.Layout,
		clock:      d.Clock,
		store:      d.Store,
		skew:       d.Skew,
		cfg:        cfg,
		log:        d.Log,
		inbox:      make(chan envelope, cfg.QueueSize),
		done:       make(chan struct{}),
	}
}

// Submit queues cmd and waits until it has been applied. The returned
// snapshot is the one published for this command.
func (p *Processor) Submit(ctx context.Context, cmd Command) (models.Snapshot, error) {
	env := envelope{cmd: cmd, reply: make(chan result, 1)}
	select {
	case p.inbox <- env:
	case <-p.done:
		return models.Snapshot{}, ErrEngineStopped
	case <-ctx.Done():
		return models.Snapshot{}, ctx.Err()
	}
	select {
	case r := <-env.reply:
		return r.snap, r.err
	case <-p.done:
		return models.Snapshot{}, ErrEngineStopped
	case <-ctx.Done():
		return models.Snapshot{}, ctx.Err()
	}
}

// Run drains commands and evaluates progression until ctx is done. It
// returns an error only when the clock can no longer time steps.
func (p *Processor) Run(ctx context.Context) error {
	defer close(p.done)

	ticker := time.NewTicker(p.cfg.Tick)
	defer ticker.Stop()

	p.publish()
	for {
		select {
		case <-ctx.Done():
			return nil
		case env := <-p.inbox:
			snap, err := p.handle(ctx, env.cmd)
			env.reply <- result{snap: snap, err: err}
			if errors.Is(err, ErrClockBeforeEpoch) {
				return err
			}
		case r := <-p.readings.C():
			p.temps = r.Temperatures
			p.sensorFault = r.SensorFault
			if err := p.progress(ctx); err != nil {
				return err
			}
			p.publish()
		case <-ticker.C:
			before := p.machine.Process()
			if err := p.progress(ctx); err != nil {
				return err
			}
			if p.machine.Process() != before {
				p.publish()
			}
		}
	}
}

func (p *Processor) handle(ctx context.Context, cmd Command) (models.Snapshot, error) {
	goals, err := p.apply(ctx, cmd)
	if err != nil {
		p.log.Warnw("command_rejected", "command", cmd.Name(), "status", p.machine.Process().Status, "err", err)
		return models.Snapshot{}, fmt.Errorf("%s: %w", cmd.Name(), err)
	}
	p.forward(goals)
	if err := p.progress(ctx); err != nil {
		return models.Snapshot{}, err
	}
	p.checkpoint(ctx)

	proc := p.machine.Process()
	p.log.Infow("command_applied", "command", cmd.Name(), "status", proc.Status, "active_step", proc.ActiveStep)
	return p.publish(), nil
}

// apply mutates the machine for one command and returns the goals to forward.
func (p *Processor) apply(ctx context.Context, cmd Command) (Goals, error) {
	switch c := cmd.(type) {
	case LoadRecipe:
		return Goals{}, p.machine.Load(c.Steps)
	case Start:
		return p.machine.Start()
	case Pause:
		return Goals{}, p.machine.Pause()
	case Skip:
		return p.transition(ctx, p.machine.Skip)
	case Stop:
		p.machine.Stop()
		p.switchOff(ctx)
		return Goals{}, nil
	case SetTemperatureGoals:
		return p.machine.SetTemperatures(c.Goals)
	case SetActuatorGoals:
		return p.machine.SetActuators(c.Goals)
	case OverrideSingleTemperature:
		return p.machine.OverrideTemperature(c.Index, c.Value)
	case OverrideSingleActuator:
		return p.machine.OverrideActuator(c.Index, c.State)
	case OverrideStepDuration:
		return Goals{}, p.machine.OverrideDuration(c.Seconds)
	default:
		return Goals{}, fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
	}
}

// progress runs one duration check and checkpoints any change, including an
// advance into a step that waits for Start.
func (p *Processor) progress(ctx context.Context) error {
	before := p.machine.Process()
	goals, err := p.transition(ctx, p.machine.Evaluate)
	if err != nil {
		return err
	}
	p.forward(goals)
	if p.machine.Process() != before {
		p.checkpoint(ctx)
	}
	return nil
}

// transition runs an advancing step and switches the rig off when it
// reaches FINISHED.
func (p *Processor) transition(ctx context.Context, step func() (Goals, error)) (Goals, error) {
	before := p.machine.Process()
	goals, err := step()
	if err != nil {
		if errors.Is(err, ErrClockBeforeEpoch) {
			p.log.Errorw("clock_before_epoch", "err", err)
		}
		return Goals{}, err
	}
	after := p.machine.Process()
	if after != before {
		p.log.Infow("step_transition",
			"from_status", before.Status, "to_status", after.Status,
			"from_step", before.ActiveStep, "to_step", after.ActiveStep)
	}
	if before.Status != models.StatusFinished && after.Status == models.StatusFinished {
		p.switchOff(ctx)
	}
	return goals, nil
}

// forward hands new goals to the regulator and the actuator follower.
func (p *Processor) forward(g Goals) {
	if g.Temperatures != nil {
		p.goalTemps = append([]float64(nil), g.Temperatures...)
		p.tempGoals.Set(append([]float64(nil), g.Temperatures...))
	}
	if g.Actuators != nil {
		p.fluidGoals.Set(append([]bool(nil), g.Actuators...))
	}
}

// switchOff clears every goal and forces the bank off. The goal slots are
// overwritten first so neither loop re-applies a stale goal afterwards.
func (p *Processor) switchOff(ctx context.Context) {
	p.goalTemps = nil
	p.tempGoals.Set(nil)
	p.fluidGoals.Set(make([]bool, p.layout.Actuators))
	if err := p.coord.Shutdown(ctx); err != nil {
		p.log.Errorw("switch_off_failed", "err", err)
	}
}

func (p *Processor) checkpoint(ctx context.Context) {
	if p.store == nil {
		return
	}
	cctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := p.store.SaveCheckpoint(cctx, p.machine.Recipe(), p.machine.Process()); err != nil {
		p.log.Warnw("checkpoint_failed", "err", err)
	}
}

func (p *Processor) snapshot() models.Snapshot {
	var faults []string
	if p.sensorFault {
		faults = append(faults, models.FaultSensor)
	}
	if p.coord.Faulted() {
		faults = append(faults, models.FaultActuator)
	}
	if p.skew != nil && p.skew.Skewed() {
		faults = append(faults, models.FaultClock)
	}
	return models.Snapshot{
		Actuators:        p.coord.States(),
		TemperatureGoals: append([]float64(nil), p.goalTemps...),
		Temperatures:     append([]float64(nil), p.temps...),
		Recipe:           p.machine.Recipe(),
		Process:          p.machine.Process(),
		Degraded:         len(faults) > 0,
		Faults:           faults,
		UpdatedAt:        p.clock.Now().UTC(),
	}
}

func (p *Processor) publish() models.Snapshot {
	p.seq++
	s := p.snapshot()
	s.Seq = p.seq
	p.pub.Publish(s)
	return s
}
