package actuator

import (
	"context"

	"stepperact/motion"
	"stepperact/units"
)

// StartStopBuilder schedules every step inside the motor's start-stop
// velocity window, so each step runs at the plateau velocity immediately and
// stopping needs no deceleration ramp. Best with full stepping and modest
// loads; zero ramp-up cost.
type StartStopBuilder struct {
	builderCore

	// velocityStartStop is recomputed on every mutation of microsteps,
	// config or load.
	velocityStartStop units.RadPerSecond

	distance        uint64
	distanceCounter uint64
}

var _ StepperBuilder = (*StartStopBuilder)(nil)

// NewStartStopBuilder plans for the given motor at the given operating
// point. Fails with ErrOverload if the motor cannot hold the (initially
// zero) load.
func NewStartStopBuilder(consts motion.StepperConst, config motion.StepperConfig) (*StartStopBuilder, error) {
	b := &StartStopBuilder{
		builderCore: newBuilderCore(consts, config),
	}
	if err := b.updateStartStop(); err != nil {
		return nil, err
	}
	return b, nil
}

// updateStartStop recomputes the start-stop window from the current
// physics inputs. It only commits on success.
func (b *StartStopBuilder) updateStartStop() error {
	vss, ok := b.consts.VelocityStartStop(&b.vars, &b.config, b.microsteps)
	if !ok {
		return ErrOverload
	}
	b.velocityStartStop = vss
	return nil
}

// AccelerationByMaxJolt is the acceleration reachable over a single step
// when ramping at the jolt cap, or nil when no jolt cap is set.
func (b *StartStopBuilder) AccelerationByMaxJolt() *units.RadPerSecond2 {
	if b.joltMax == nil {
		return nil
	}
	a := motion.AccelerationForDistanceOnlyJolt(b.stepAngle, *b.joltMax)
	return &a
}

// AccelerationAllowed is the effective per-step acceleration ceiling,
// infinite when neither an acceleration nor a jolt cap is set.
func (b *StartStopBuilder) AccelerationAllowed() units.RadPerSecond2 {
	return units.Min(
		capOr(b.accelerationMax, units.Inf[units.RadPerSecond2]()),
		capOr(b.AccelerationByMaxJolt(), units.Inf[units.RadPerSecond2]()),
	)
}

// VelocityByMaxAcceleration is the velocity reachable over a single step
// under the allowed acceleration; infinite when no cap is set.
func (b *StartStopBuilder) VelocityByMaxAcceleration() units.RadPerSecond {
	return motion.VelocityForDistanceNoV0(b.stepAngle, b.AccelerationAllowed())
}

// VelocityPossible is the plateau velocity currently achievable: the least
// of the start-stop window, the inductance-limited ceiling, the user's
// velocity cap and the acceleration-derived ceiling.
func (b *StartStopBuilder) VelocityPossible() units.RadPerSecond {
	return units.Min(
		units.Min(b.velocityStartStop, b.consts.VelocityMax(b.config.Voltage)),
		units.Min(
			capOr(b.velocityMax, units.Inf[units.RadPerSecond]()),
			b.VelocityByMaxAcceleration(),
		),
	)
}

// Next yields the next step interval. Every interval is emitted at the
// plateau velocity of the current mode.
func (b *StartStopBuilder) Next() (units.Seconds, bool) {
	var velocity units.RadPerSecond

	switch b.mode.Kind {
	case ModeConstVelocity:
		// Feasibility was checked in SetDriveMode.
		velocity = units.Abs(b.mode.Velocity)
	case ModeConstFactor:
		velocity = b.VelocityPossible().Mul(float32(b.mode.Factor))
	case ModeFixedDistance:
		b.distanceCounter++
		if b.distanceCounter > b.distance {
			b.mode = Inactive()
			return 0, false
		}
		velocity = b.VelocityPossible().Mul(float32(b.mode.Factor))
	case ModeStop:
		// Stopping within the start-stop window is immediate.
		b.mode = Inactive()
		return 0, false
	default:
		return 0, false
	}

	return b.consts.StepTime(velocity, b.microsteps), true
}

// SetMicrosteps updates the step angle and recomputes the window.
func (b *StartStopBuilder) SetMicrosteps(microsteps motion.MicroSteps) error {
	oldMicro, oldAngle := b.microsteps, b.stepAngle
	b.microsteps = microsteps
	b.stepAngle = b.consts.StepAngle(microsteps)
	if err := b.updateStartStop(); err != nil {
		b.microsteps, b.stepAngle = oldMicro, oldAngle
		return err
	}
	return nil
}

// SetVelocityMax sets or clears (nil) the velocity cap.
func (b *StartStopBuilder) SetVelocityMax(velocity *units.RadPerSecond) error {
	checked, err := checkVelocityCap(velocity)
	if err != nil {
		return err
	}
	b.velocityMax = checked
	return nil
}

// SetAccelerationMax sets or clears (nil) the acceleration cap.
func (b *StartStopBuilder) SetAccelerationMax(acceleration *units.RadPerSecond2) error {
	checked, err := checkAccelerationCap(acceleration)
	if err != nil {
		return err
	}
	b.accelerationMax = checked
	return nil
}

// SetJoltMax sets or clears (nil) the jolt cap. Beyond the single-step
// velocity ceiling the cap has no effect here: a start-stop motor never
// ramps.
func (b *StartStopBuilder) SetJoltMax(jolt *units.RadPerSecond3) error {
	checked, err := checkJoltCap(jolt)
	if err != nil {
		return err
	}
	b.joltMax = checked
	return nil
}

// SetConfig replaces the operating point.
func (b *StartStopBuilder) SetConfig(config motion.StepperConfig) error {
	old := b.config
	b.config = config
	if err := b.updateStartStop(); err != nil {
		b.config = old
		return err
	}
	return nil
}

// SetOverloadCurrent adjusts the torque-scaling current.
func (b *StartStopBuilder) SetOverloadCurrent(current *float32) error {
	old := b.config.OverloadCurrent
	b.config.OverloadCurrent = current
	if err := b.updateStartStop(); err != nil {
		b.config.OverloadCurrent = old
		return err
	}
	return nil
}

// ApplyGenForce applies an opposing torque acting in both directions.
func (b *StartStopBuilder) ApplyGenForce(force units.NewtonMeters) error {
	old := b.vars.ForceLoadGen
	b.vars.ForceLoadGen = force
	if err := b.updateStartStop(); err != nil {
		b.vars.ForceLoadGen = old
		return err
	}
	return nil
}

// ApplyDirForce applies a directional torque; positive opposes CW.
func (b *StartStopBuilder) ApplyDirForce(force units.NewtonMeters) error {
	old := b.vars.ForceLoadDir
	b.vars.ForceLoadDir = force
	if err := b.updateStartStop(); err != nil {
		b.vars.ForceLoadDir = old
		return err
	}
	return nil
}

// ApplyInertia applies a load inertia.
func (b *StartStopBuilder) ApplyInertia(inertia units.KgMeter2) error {
	old := b.vars.InertiaLoad
	b.vars.InertiaLoad = inertia
	if err := b.updateStartStop(); err != nil {
		b.vars.InertiaLoad = old
		return err
	}
	return nil
}

// SetDriveMode validates and installs the next mode, commanding the
// direction line where the mode implies one.
func (b *StartStopBuilder) SetDriveMode(ctx context.Context, mode DriveMode, ctrl StepperController) error {
	switch mode.Kind {
	case ModeConstVelocity:
		dir := units.DirectionOf(mode.Velocity)
		speed := units.Abs(mode.Velocity)
		if possible := b.VelocityPossible(); speed > possible {
			return &VelocityTooHighError{Requested: speed, Max: possible}
		}
		b.dir = dir
		if err := ctrl.SetDir(ctx, dir); err != nil {
			return err
		}

	case ModeConstFactor:
		b.dir = mode.Direction
		if err := ctrl.SetDir(ctx, mode.Direction); err != nil {
			return err
		}

	case ModeFixedDistance:
		if exit := units.Abs(mode.ExitVelocity); exit > b.VelocityPossible() {
			return &VelocityTooHighError{Requested: exit, Max: b.VelocityPossible()}
		}
		b.distance = b.consts.StepsFromAngleAbs(mode.Distance, b.microsteps)
		b.distanceCounter = 0
		b.dir = units.DirectionOf(mode.Distance)
		if err := ctrl.SetDir(ctx, b.dir); err != nil {
			return err
		}
	}

	b.mode = mode
	return nil
}

// PtpTimeForDistance is the plateau travel time between two positions.
func (b *StartStopBuilder) PtpTimeForDistance(from, to units.PositionRad) units.Seconds {
	return units.Abs(to.Sub(from)).DivVelocity(b.VelocityPossible())
}
