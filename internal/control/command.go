package control

import "brewing_control/internal/models"

// Command is one inbound request for the processor. The set is closed; every
// variant is handled explicitly in Processor.apply.
type Command interface {
	Name() string
	isCommand()
}

// LoadRecipe replaces the recipe (UNINITIALIZED, LOADED, FINISHED) or appends
// to it (STARTED, PAUSED).
type LoadRecipe struct {
	Steps []models.RecipeStep
}

type Start struct{}

type Pause struct{}

type Skip struct{}

// Stop switches every actuator off and pauses the recipe.
type Stop struct{}

// SetTemperatureGoals replaces all zone goals of the active step.
type SetTemperatureGoals struct {
	Goals []float64
}

// SetActuatorGoals replaces all fluid actuator goals of the active step.
type SetActuatorGoals struct {
	Goals []bool
}

type OverrideSingleTemperature struct {
	Index int
	Value float64
}

type OverrideSingleActuator struct {
	Index int
	State bool
}

type OverrideStepDuration struct {
	Seconds uint64
}

func (LoadRecipe) Name() string                { return "LOAD_RECIPE" }
func (Start) Name() string                     { return "START" }
func (Pause) Name() string                     { return "PAUSE" }
func (Skip) Name() string                      { return "SKIP" }
func (Stop) Name() string                      { return "STOP" }
func (SetTemperatureGoals) Name() string       { return "SET_TEMPERATURE_GOALS" }
func (SetActuatorGoals) Name() string          { return "SET_ACTUATOR_GOALS" }
func (OverrideSingleTemperature) Name() string { return "OVERRIDE_TEMPERATURE" }
func (OverrideSingleActuator) Name() string    { return "OVERRIDE_ACTUATOR" }
func (OverrideStepDuration) Name() string      { return "OVERRIDE_DURATION" }

func (LoadRecipe) isCommand()                {}
func (Start) isCommand()                     {}
func (Pause) isCommand()                     {}
func (Skip) isCommand()                      {}
func (Stop) isCommand()                      {}
func (SetTemperatureGoals) isCommand()       {}
func (SetActuatorGoals) isCommand()          {}
func (OverrideSingleTemperature) isCommand() {}
func (OverrideSingleActuator) isCommand()    {}
func (OverrideStepDuration) isCommand()      {}
