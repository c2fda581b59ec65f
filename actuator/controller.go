package actuator

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/rdk/components/board"

	"stepperact/units"
)

// MinPulseTime is the shortest step interval the GPIO controller will emit.
// Shorter valid requests are stretched to it; driver chips do not register
// narrower pulses reliably.
const MinPulseTime units.Seconds = 1.0 / 100_000.0

// StepperController is the thin capability a builder-driven motor steps
// through: a direction line and a step line.
type StepperController interface {
	// Direction is the currently commanded direction.
	Direction() units.Direction

	// SetDir physically commands the direction line.
	SetDir(ctx context.Context, dir units.Direction) error

	// Step asserts the step line, holds it for half the duration, then
	// deasserts for the other half.
	Step(ctx context.Context, duration units.Seconds) error
}

// GPIOController drives a step/direction interface through two digital
// output pins.
type GPIOController struct {
	dirPin  board.GPIOPin
	stepPin board.GPIOPin
	dir     units.Direction
}

var _ StepperController = (*GPIOController)(nil)

// NewGPIOController wires a controller to its direction and step pins.
func NewGPIOController(dirPin, stepPin board.GPIOPin) *GPIOController {
	return &GPIOController{
		dirPin:  dirPin,
		stepPin: stepPin,
		dir:     units.CW,
	}
}

// Direction returns the currently commanded direction.
func (g *GPIOController) Direction() units.Direction {
	return g.dir
}

// SetDir commands the direction line, CW mapping to high.
func (g *GPIOController) SetDir(ctx context.Context, dir units.Direction) error {
	if err := g.dirPin.Set(ctx, dir.Bool(), nil); err != nil {
		return errors.Wrap(err, "setting direction pin")
	}
	g.dir = dir
	return nil
}

// Step emits one step pulse of the given total duration.
func (g *GPIOController) Step(ctx context.Context, duration units.Seconds) error {
	if !units.IsFinite(duration) || duration <= 0 {
		return &InvalidTimeError{Time: duration}
	}
	if duration < MinPulseTime {
		duration = MinPulseTime
	}

	half := time.Duration(float64(duration) / 2 * float64(time.Second))

	if err := g.stepPin.Set(ctx, true, nil); err != nil {
		return errors.Wrap(err, "asserting step pin")
	}
	time.Sleep(half)
	if err := g.stepPin.Set(ctx, false, nil); err != nil {
		return errors.Wrap(err, "deasserting step pin")
	}
	time.Sleep(half)

	return nil
}

// Release drives both lines low, leaving the driver idle.
func (g *GPIOController) Release(ctx context.Context) error {
	return multierr.Combine(
		g.stepPin.Set(ctx, false, nil),
		g.dirPin.Set(ctx, false, nil),
	)
}
