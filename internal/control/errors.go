package control

import (
	"errors"

	"brewing_control/internal/clock"
)

// Input errors are reported to the command's caller and leave state untouched.
var (
	ErrInvalidRecipe     = errors.New("invalid recipe")
	ErrIndexOutOfRange   = errors.New("index out of range")
	ErrInvalidGoals      = errors.New("goal vector length mismatch")
	ErrInvalidTransition = errors.New("command not allowed in current status")
	ErrUnknownCommand    = errors.New("unknown command")
)

// ErrEngineStopped is returned to callers once the processor loop has exited.
var ErrEngineStopped = errors.New("control engine stopped")

// ErrClockBeforeEpoch aborts the engine: step timing is meaningless on such a clock.
var ErrClockBeforeEpoch = clock.ErrBeforeEpoch
