// Package motion holds the pure data and closed-form physics of a stepper
// axis: nameplate constants, operating-point config, load variables and the
// kinematic solvers the step planners are built on.
package motion

import (
	"strconv"

	"github.com/pkg/errors"
)

// MicroSteps is the power-of-two subdivision of a full step applied by the
// driver chip (1, 2, 4, ... 256). Semantically it divides the motor's
// natural full-step angle.
type MicroSteps uint16

// DefaultMicroSteps is full stepping.
const DefaultMicroSteps MicroSteps = 1

// NewMicroSteps validates value as a microstep divider.
func NewMicroSteps(value uint16) (MicroSteps, error) {
	if value == 0 || value > 256 || value&(value-1) != 0 {
		return 0, errors.Errorf("number of microsteps must be a power of 2 up to 256, got %d", value)
	}
	return MicroSteps(value), nil
}

// MustMicroSteps is NewMicroSteps for statically known values; it panics on
// an invalid divider.
func MustMicroSteps(value uint16) MicroSteps {
	ms, err := NewMicroSteps(value)
	if err != nil {
		panic(err)
	}
	return ms
}

// ParseMicroSteps reads a microstep divider from its decimal representation.
func ParseMicroSteps(s string) (MicroSteps, error) {
	value, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, errors.Wrap(err, "parsing microsteps")
	}
	return NewMicroSteps(uint16(value))
}

// AsUint16 returns the raw divider value.
func (ms MicroSteps) AsUint16() uint16 {
	return uint16(ms)
}

func (ms MicroSteps) String() string {
	return strconv.Itoa(int(ms))
}
