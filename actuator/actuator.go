package actuator

import (
	"context"

	"stepperact/motion"
	"stepperact/units"
)

// SyncActuator is a rotary axis driven synchronously: every drive call
// blocks until the movement has come to rest or was stopped.
type SyncActuator interface {
	Pos() units.PositionRad
	OverwritePos(pos units.PositionRad)

	VelocityMax() *units.RadPerSecond
	SetVelocityMax(velocity *units.RadPerSecond) error
	AccelerationMax() *units.RadPerSecond2
	SetAccelerationMax(acceleration *units.RadPerSecond2) error
	JoltMax() *units.RadPerSecond3
	SetJoltMax(jolt *units.RadPerSecond3) error

	LimitMin() *units.PositionRad
	LimitMax() *units.PositionRad
	SetPosLimits(min, max *units.PositionRad)
	OverwritePosLimits(min, max *units.PositionRad)
	SetEndpos(pos units.PositionRad)
	ResolvePosLimitsFor(pos units.PositionRad) units.Radians

	DriveRelBlocking(ctx context.Context, relDist units.Radians, speed units.Factor) error
	DriveAbsBlocking(ctx context.Context, pos units.PositionRad, speed units.Factor) error
	DriveFactor(ctx context.Context, speed units.Factor, direction units.Direction) error
	DriveSpeed(ctx context.Context, speed units.RadPerSecond) error

	State() *StepperState
}

// AdvancedActuator can be told about the load it is moving.
type AdvancedActuator interface {
	ForceGen() units.NewtonMeters
	ForceDir() units.NewtonMeters
	Inertia() units.KgMeter2

	ApplyGenForce(force units.NewtonMeters) error
	ApplyDirForce(force units.NewtonMeters) error
	ApplyInertia(inertia units.KgMeter2) error
}

// Interruptible lets per-step stop predicates be attached.
type Interruptible interface {
	AddInterruptor(intr Interruptor)
	IntrReason() *InterruptReason
}

// StepperActuator exposes the stepping geometry of a stepper-driven axis.
type StepperActuator interface {
	SyncActuator

	Microsteps() motion.MicroSteps
	SetMicrosteps(microsteps motion.MicroSteps) error
	StepDistance() units.Radians
}

// Actuator is the full rotary surface the ratio decorators wrap and expose,
// so decorators stack freely.
type Actuator interface {
	StepperActuator
	AdvancedActuator
	Interruptible

	Direction() units.Direction
	PtpTimeForDistance(from, to units.PositionRad) units.Seconds
}

// LinearActuator is the linear-unit surface of an axis that converts rotary
// motion into travel (spindles, belts, conveyors).
type LinearActuator interface {
	Pos() units.PositionMM
	OverwritePos(pos units.PositionMM)

	VelocityMax() *units.MMPerSecond
	SetVelocityMax(velocity *units.MMPerSecond) error
	AccelerationMax() *units.MMPerSecond2
	SetAccelerationMax(acceleration *units.MMPerSecond2) error
	JoltMax() *units.MMPerSecond3
	SetJoltMax(jolt *units.MMPerSecond3) error

	LimitMin() *units.PositionMM
	LimitMax() *units.PositionMM
	SetPosLimits(min, max *units.PositionMM)
	OverwritePosLimits(min, max *units.PositionMM)
	SetEndpos(pos units.PositionMM)
	ResolvePosLimitsFor(pos units.PositionMM) units.Millimeters

	DriveRelBlocking(ctx context.Context, relDist units.Millimeters, speed units.Factor) error
	DriveAbsBlocking(ctx context.Context, pos units.PositionMM, speed units.Factor) error
	DriveFactor(ctx context.Context, speed units.Factor, direction units.Direction) error
	DriveSpeed(ctx context.Context, speed units.MMPerSecond) error

	State() *StepperState
}
