package actuator

import (
	"context"
	"fmt"

	"stepperact/motion"
	"stepperact/units"
)

// DefaultMaxSpeedLevel is the default staircase depth of the RampedBuilder.
const DefaultMaxSpeedLevel = 10

// DriveModeKind discriminates the drive-mode variants.
type DriveModeKind uint8

const (
	// ModeInactive yields no further intervals.
	ModeInactive DriveModeKind = iota
	// ModeConstVelocity maintains a signed velocity indefinitely.
	ModeConstVelocity
	// ModeConstFactor maintains a fraction of the achievable maximum.
	ModeConstFactor
	// ModeFixedDistance travels a fixed relative distance.
	ModeFixedDistance
	// ModeStop decelerates to rest as fast as admissible.
	ModeStop
)

func (k DriveModeKind) String() string {
	switch k {
	case ModeConstVelocity:
		return "const-velocity"
	case ModeConstFactor:
		return "const-factor"
	case ModeFixedDistance:
		return "fixed-distance"
	case ModeStop:
		return "stop"
	default:
		return "inactive"
	}
}

// DriveMode is the tagged request a builder schedules steps for.
type DriveMode struct {
	Kind DriveModeKind

	// Velocity is the signed target of ModeConstVelocity.
	Velocity units.RadPerSecond
	// Factor limits ModeConstFactor and ModeFixedDistance to a fraction of
	// the achievable maximum.
	Factor units.Factor
	// Direction is the driving direction of ModeConstFactor.
	Direction units.Direction
	// Distance is the signed relative distance of ModeFixedDistance.
	Distance units.Radians
	// ExitVelocity is the velocity ModeFixedDistance finishes at.
	ExitVelocity units.RadPerSecond
}

// ConstVelocity drives at the signed velocity v indefinitely.
func ConstVelocity(v units.RadPerSecond) DriveMode {
	return DriveMode{Kind: ModeConstVelocity, Velocity: v}
}

// ConstFactor drives at the fraction f of the achievable maximum in the
// given direction, indefinitely.
func ConstFactor(f units.Factor, dir units.Direction) DriveMode {
	return DriveMode{Kind: ModeConstFactor, Factor: f, Direction: dir}
}

// FixedDistance travels the signed distance d, finishing at vExit, peaking
// at the fraction f of the achievable maximum.
func FixedDistance(d units.Radians, vExit units.RadPerSecond, f units.Factor) DriveMode {
	return DriveMode{Kind: ModeFixedDistance, Distance: d, ExitVelocity: vExit, Factor: f}
}

// Stop decelerates to rest as fast as admissible, then becomes inactive.
func Stop() DriveMode {
	return DriveMode{Kind: ModeStop}
}

// Inactive yields no further intervals.
func Inactive() DriveMode {
	return DriveMode{Kind: ModeInactive}
}

func (m DriveMode) String() string {
	switch m.Kind {
	case ModeConstVelocity:
		return fmt.Sprintf("const-velocity(%v rad/s)", float32(m.Velocity))
	case ModeConstFactor:
		return fmt.Sprintf("const-factor(%v, %v)", m.Factor, m.Direction)
	case ModeFixedDistance:
		return fmt.Sprintf("fixed-distance(%v rad, %v)", float32(m.Distance), m.Factor)
	default:
		return m.Kind.String()
	}
}

// StepperBuilder schedules step intervals for a drive mode under kinematic
// and physical limits. It is a lazy external iterator: Next yields one
// interval per step and false once the current mode has run out; false is
// sticky until a new drive mode is set.
//
// Setters either apply fully or leave the builder's previously valid state
// untouched and return an error.
type StepperBuilder interface {
	// Next yields the next step interval, or false when the current mode
	// is exhausted.
	Next() (units.Seconds, bool)

	// StepAngle is the distance of one scheduled step.
	StepAngle() units.Radians
	// Direction is the current movement direction.
	Direction() units.Direction
	// DriveMode is the currently active mode.
	DriveMode() DriveMode

	Microsteps() motion.MicroSteps
	SetMicrosteps(microsteps motion.MicroSteps) error

	// VelocityMax is the user-imposed velocity cap, nil if unset.
	VelocityMax() *units.RadPerSecond
	SetVelocityMax(velocity *units.RadPerSecond) error

	// AccelerationMax is the user-imposed acceleration cap, nil if unset.
	AccelerationMax() *units.RadPerSecond2
	SetAccelerationMax(acceleration *units.RadPerSecond2) error

	// JoltMax is the user-imposed jolt cap, nil if unset.
	JoltMax() *units.RadPerSecond3
	SetJoltMax(jolt *units.RadPerSecond3) error

	// SetDriveMode validates the mode against the current limits and, when
	// a direction change is required, commands the controller. In the
	// RampedBuilder a direction change while active is replaced by an
	// internal Stop that re-arms the requested mode once rest is reached;
	// the StartStopBuilder switches direction at once.
	SetDriveMode(ctx context.Context, mode DriveMode, ctrl StepperController) error

	// Consts, Vars and Config expose the physics inputs of the builder.
	Consts() *motion.StepperConst
	Vars() *motion.ActuatorVars
	Config() *motion.StepperConfig

	// SetConfig replaces the operating point and recomputes the plan.
	SetConfig(config motion.StepperConfig) error
	// SetOverloadCurrent adjusts the torque-scaling current.
	SetOverloadCurrent(current *float32) error

	// ApplyGenForce applies an opposing torque acting in both directions.
	ApplyGenForce(force units.NewtonMeters) error
	// ApplyDirForce applies a directional torque; positive opposes CW.
	ApplyDirForce(force units.NewtonMeters) error
	// ApplyInertia applies a load inertia.
	ApplyInertia(inertia units.KgMeter2) error

	// PtpTimeForDistance estimates the travel time between two positions
	// under the current plan.
	PtpTimeForDistance(from, to units.PositionRad) units.Seconds
}
