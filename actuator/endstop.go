package actuator

import (
	"context"

	"go.viam.com/rdk/components/board"

	"stepperact/units"
)

// EndStop is the reference interruptor: a digital input that stops the axis
// when its level matches the configured trigger polarity.
type EndStop struct {
	pin     board.GPIOPin
	trigger bool

	dir     *units.Direction
	tempDir *units.Direction
}

var _ Interruptor = (*EndStop)(nil)

// NewEndStop wraps a digital input pin. trigger is the level that counts as
// pressed; dir restricts the switch to one movement direction, nil watches
// both.
func NewEndStop(pin board.GPIOPin, trigger bool, dir *units.Direction) *EndStop {
	return &EndStop{
		pin:     pin,
		trigger: trigger,
		dir:     dir,
	}
}

// Direction reports the watched direction: the configured one, or, while
// the switch is held, the direction that triggered it. The temporary
// direction keeps a direction-independent switch from blocking the axis
// while it backs off.
func (e *EndStop) Direction() *units.Direction {
	if e.dir != nil {
		return e.dir
	}
	return e.tempDir
}

// SetTempDir marks or clears (nil) the transient lockout direction.
func (e *EndStop) SetTempDir(dir *units.Direction) {
	e.tempDir = dir
}

// Check reads the input. A read failure surfaces as ReasonError so the
// drive loop stops rather than running into an unobserved end.
func (e *EndStop) Check(ctx context.Context, _ units.PositionRad) (InterruptReason, bool) {
	level, err := e.pin.Get(ctx, nil)
	if err != nil {
		return ReasonError, true
	}
	if level == e.trigger {
		return ReasonEndReached, true
	}
	return 0, false
}
