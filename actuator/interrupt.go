package actuator

import (
	"context"

	"stepperact/units"
)

// InterruptReason explains why an interruptor stopped a movement.
type InterruptReason uint8

const (
	// ReasonEndReached signals a physical or virtual end was hit.
	ReasonEndReached InterruptReason = iota
	// ReasonOverload signals the component was overloaded mid-move.
	ReasonOverload
	// ReasonError signals the interruptor itself failed, e.g. a bad pin
	// read.
	ReasonError
)

func (r InterruptReason) String() string {
	switch r {
	case ReasonEndReached:
		return "end reached"
	case ReasonOverload:
		return "overload"
	default:
		return "error"
	}
}

// Interruptor is a per-step predicate polled by the drive loop that can
// force a stop, most commonly an endstop.
type Interruptor interface {
	// Direction reports which movement direction the interruptor watches.
	// nil means it is active regardless of direction.
	Direction() *units.Direction

	// SetTempDir marks a transient lockout direction after a trigger, so a
	// direction-independent interruptor does not block the axis from
	// backing off. nil clears the lockout.
	SetTempDir(dir *units.Direction)

	// Check polls the interruptor at the given position and returns a
	// reason to stop, or false to let the movement continue.
	Check(ctx context.Context, pos units.PositionRad) (InterruptReason, bool)
}
