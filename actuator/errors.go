// Package actuator implements the stepper actuation pipeline: drive-mode
// scheduling through lazy step-interval builders, the blocking drive loop,
// interruptors and endstops, and ratio decorators for gears, linear axes and
// conveyors.
package actuator

import (
	"fmt"

	"github.com/pkg/errors"

	"stepperact/units"
)

// ErrOverload reports that the current load cannot be moved in the requested
// direction; no stepping has occurred.
var ErrOverload = errors.New("motor is overloaded by the applied load")

// InvalidRelativeDistanceError rejects a non-finite or otherwise unusable
// relative distance.
type InvalidRelativeDistanceError struct {
	Distance units.Radians
}

func (e *InvalidRelativeDistanceError) Error() string {
	return fmt.Sprintf("invalid relative distance: %v rad", float32(e.Distance))
}

// InvalidVelocityError rejects a NaN, zero or negative velocity cap.
type InvalidVelocityError struct {
	Velocity units.RadPerSecond
}

func (e *InvalidVelocityError) Error() string {
	return fmt.Sprintf("invalid velocity: %v rad/s", float32(e.Velocity))
}

// VelocityTooHighError rejects a velocity beyond the presently achievable
// maximum.
type VelocityTooHighError struct {
	Requested units.RadPerSecond
	Max       units.RadPerSecond
}

func (e *VelocityTooHighError) Error() string {
	return fmt.Sprintf("requested velocity %v rad/s exceeds the achievable maximum %v rad/s",
		float32(e.Requested), float32(e.Max))
}

// InvalidAccelerationError rejects a NaN, zero or negative acceleration cap.
type InvalidAccelerationError struct {
	Acceleration units.RadPerSecond2
}

func (e *InvalidAccelerationError) Error() string {
	return fmt.Sprintf("invalid acceleration: %v rad/s^2", float32(e.Acceleration))
}

// InvalidJoltError rejects a NaN or negative jolt cap.
type InvalidJoltError struct {
	Jolt units.RadPerSecond3
}

func (e *InvalidJoltError) Error() string {
	return fmt.Sprintf("invalid jolt: %v rad/s^3", float32(e.Jolt))
}

// InvalidTimeError rejects a non-positive or non-finite step interval.
type InvalidTimeError struct {
	Time units.Seconds
}

func (e *InvalidTimeError) Error() string {
	return fmt.Sprintf("invalid step time: %v s", float32(e.Time))
}
