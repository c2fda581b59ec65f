package actuator

import (
	"context"

	"github.com/pkg/errors"

	"stepperact/motion"
	"stepperact/units"
)

// RampedBuilder accelerates through a staircase of discrete speed levels: an
// ordered sequence of velocities and the per-step intervals taken to climb
// between them, recomputed live whenever microsteps, config or load change.
// Suited for microstepping and heavier loads; stopping schedules a symmetric
// descent through the same levels.
type RampedBuilder struct {
	builderCore

	// ctrl is the controller of the most recent SetDriveMode; needed to
	// command the direction line when a cached mode is re-armed after a
	// direction-change stop.
	ctrl StepperController

	cachedMode *DriveMode

	speedLevels []units.RadPerSecond
	times       []units.Seconds
	timeSums    []units.Seconds

	maxSpeedLevel     int
	currentSpeedLevel int

	distance        uint64
	distanceCounter uint64
}

var _ StepperBuilder = (*RampedBuilder)(nil)

// NewRampedBuilder plans for the given motor at the given operating point.
// Fails with ErrOverload if the motor cannot hold the (initially zero) load.
func NewRampedBuilder(consts motion.StepperConst, config motion.StepperConfig) (*RampedBuilder, error) {
	b := &RampedBuilder{
		builderCore:   newBuilderCore(consts, config),
		maxSpeedLevel: DefaultMaxSpeedLevel,
	}
	if err := b.update(); err != nil {
		return nil, err
	}
	return b, nil
}

// update rebuilds the staircase from the current physics inputs. It only
// commits on success, leaving the previous plan intact on overload.
func (b *RampedBuilder) update() error {
	velocityCap := b.velocityCap()

	speedLevels := make([]units.RadPerSecond, 0, b.maxSpeedLevel)
	times := make([]units.Seconds, 0, b.maxSpeedLevel)
	timeSums := make([]units.Seconds, 0, b.maxSpeedLevel)

	var velocity units.RadPerSecond
	var lastAccel units.RadPerSecond2
	var timeSum units.Seconds

	for level := 0; level < b.maxSpeedLevel; level++ {
		accel, ok := b.accelerationPossible(velocity)
		if !ok {
			return ErrOverload
		}

		moveTime := motion.TimeForDistance(b.stepAngle, velocity, accel)

		// Correct the step with the jolt cap if climbing to accel within
		// one step would exceed it.
		if b.joltMax != nil && accel.Sub(lastAccel).DivTime(moveTime) > *b.joltMax {
			moveTime = motion.TimeForDistanceJolt(b.stepAngle, velocity, lastAccel, *b.joltMax)
			accel = lastAccel.Add(b.joltMax.MulTime(moveTime))
		}

		velocityNew := velocity.Add(accel.MulTime(moveTime))

		if velocityNew > velocityCap {
			// Cap reached: retime the final climb onto the cap.
			var prev units.RadPerSecond
			if len(speedLevels) > 0 {
				prev = speedLevels[len(speedLevels)-1]
			}
			moveTime = b.stepAngle.Mul(2).DivVelocity(prev.Add(velocityCap))

			timeSum = timeSum.Add(moveTime)
			speedLevels = append(speedLevels, velocityCap)
			times = append(times, moveTime)
			timeSums = append(timeSums, timeSum)
			break
		}

		timeSum = timeSum.Add(moveTime)
		speedLevels = append(speedLevels, velocityNew)
		times = append(times, moveTime)
		timeSums = append(timeSums, timeSum)

		lastAccel = accel
		velocity = velocityNew
	}

	b.speedLevels = speedLevels
	b.times = times
	b.timeSums = timeSums
	return nil
}

// accelerationPossible is the lesser of the acceleration the motor can still
// deliver at the given velocity and the user's cap, or false on overload.
func (b *RampedBuilder) accelerationPossible(velocity units.RadPerSecond) (units.RadPerSecond2, bool) {
	accel, ok := b.consts.AccelerationMaxForVelocity(&b.vars, &b.config, velocity, b.dir)
	if !ok {
		return 0, false
	}
	return units.Min(accel, capOr(b.accelerationMax, units.Inf[units.RadPerSecond2]())), true
}

// VelocityCurrent is the velocity of the level the builder sits on.
func (b *RampedBuilder) VelocityCurrent() units.RadPerSecond {
	if b.currentSpeedLevel == 0 {
		return 0
	}
	return b.speedLevels[b.currentSpeedLevel-1]
}

// velocityCap is the lesser of the user cap and the inductance-limited
// physical ceiling.
func (b *RampedBuilder) velocityCap() units.RadPerSecond {
	return units.Min(
		capOr(b.velocityMax, units.Inf[units.RadPerSecond]()),
		b.consts.VelocityMax(b.config.Voltage),
	)
}

// VelocityPossible is the top of the current staircase, bounded by the cap.
func (b *RampedBuilder) VelocityPossible() units.RadPerSecond {
	var top units.RadPerSecond
	if len(b.speedLevels) > 0 {
		top = b.speedLevels[len(b.speedLevels)-1]
	}
	return units.Min(b.velocityCap(), top)
}

// gotoVelocity advances the builder one level toward target and returns the
// velocity to step at.
func (b *RampedBuilder) gotoVelocity(target units.RadPerSecond) (units.RadPerSecond, error) {
	var velocityBelow units.RadPerSecond
	if b.currentSpeedLevel >= 2 {
		velocityBelow = b.speedLevels[b.currentSpeedLevel-2]
	}

	switch {
	case target > b.VelocityCurrent():
		if b.currentSpeedLevel >= len(b.times) {
			var top units.RadPerSecond
			if len(b.speedLevels) > 0 {
				top = b.speedLevels[len(b.speedLevels)-1]
			}
			return 0, &VelocityTooHighError{Requested: target, Max: top}
		}
		t := b.times[b.currentSpeedLevel]
		b.currentSpeedLevel++
		return b.consts.Velocity(t, b.microsteps), nil

	case target < velocityBelow || (target == 0 && b.currentSpeedLevel > 0):
		// Out of the current level's band: step one level down, emitting
		// the mirror of the interval that climbed it.
		b.currentSpeedLevel--
		return b.consts.Velocity(b.times[b.currentSpeedLevel], b.microsteps), nil

	default:
		// Inside the band of the current level.
		return target, nil
	}
}

// Next yields the next step interval.
func (b *RampedBuilder) Next() (units.Seconds, bool) {
	var velocity units.RadPerSecond
	emit := true

	switch b.mode.Kind {
	case ModeConstVelocity:
		v, err := b.gotoVelocity(units.Abs(b.mode.Velocity))
		if err != nil {
			return 0, false
		}
		velocity = v

	case ModeConstFactor:
		v, err := b.gotoVelocity(b.VelocityPossible().Mul(float32(b.mode.Factor)))
		if err != nil {
			return 0, false
		}
		velocity = v

	case ModeFixedDistance:
		b.distanceCounter++

		// A one-step distance is a single climb onto the first level.
		if b.distance == 1 && b.distanceCounter == 1 {
			if len(b.times) == 0 {
				return 0, false
			}
			return b.times[0], true
		}

		switch {
		case b.distanceCounter+uint64(b.currentSpeedLevel) == b.distance && b.distance%2 == 1:
			// Odd step counts get one extra plateau step between the
			// symmetric ramps.
			level := b.currentSpeedLevel
			if level > 0 {
				level--
			}
			velocity = b.speedLevels[level]
		case b.distanceCounter+uint64(b.currentSpeedLevel) > b.distance:
			v, err := b.gotoVelocity(0)
			if err != nil {
				return 0, false
			}
			velocity = v
		default:
			v, err := b.gotoVelocity(b.VelocityPossible().Mul(float32(b.mode.Factor)))
			if err != nil {
				return 0, false
			}
			velocity = v
		}

	case ModeStop:
		v, err := b.gotoVelocity(0)
		if err != nil {
			return 0, false
		}
		velocity = v

	default:
		return 0, false
	}

	if velocity == 0 {
		emit = false
	}

	if !emit {
		if b.mode.Kind == ModeStop && b.cachedMode != nil {
			// Rest reached: re-arm the request that forced this stop.
			cached := *b.cachedMode
			b.cachedMode = nil
			b.mode = Inactive()
			if err := b.SetDriveMode(context.Background(), cached, b.ctrl); err != nil {
				return 0, false
			}
			return b.Next()
		}
		b.mode = Inactive()
		return 0, false
	}

	return b.consts.StepTime(velocity, b.microsteps), true
}

// stopWithMode interposes a Stop and caches the requested mode until rest.
func (b *RampedBuilder) stopWithMode(mode DriveMode) {
	b.mode = Stop()
	b.cachedMode = &mode
}

// SetMicrosteps updates the step angle and rebuilds the staircase.
func (b *RampedBuilder) SetMicrosteps(microsteps motion.MicroSteps) error {
	oldMicro, oldAngle := b.microsteps, b.stepAngle
	b.microsteps = microsteps
	b.stepAngle = b.consts.StepAngle(microsteps)
	if err := b.update(); err != nil {
		b.microsteps, b.stepAngle = oldMicro, oldAngle
		return err
	}
	return nil
}

// SetVelocityMax sets or clears (nil) the velocity cap.
func (b *RampedBuilder) SetVelocityMax(velocity *units.RadPerSecond) error {
	checked, err := checkVelocityCap(velocity)
	if err != nil {
		return err
	}
	old := b.velocityMax
	b.velocityMax = checked
	if err := b.update(); err != nil {
		b.velocityMax = old
		return err
	}
	return nil
}

// SetAccelerationMax sets or clears (nil) the acceleration cap.
func (b *RampedBuilder) SetAccelerationMax(acceleration *units.RadPerSecond2) error {
	checked, err := checkAccelerationCap(acceleration)
	if err != nil {
		return err
	}
	old := b.accelerationMax
	b.accelerationMax = checked
	if err := b.update(); err != nil {
		b.accelerationMax = old
		return err
	}
	return nil
}

// SetJoltMax sets or clears (nil) the jolt cap.
func (b *RampedBuilder) SetJoltMax(jolt *units.RadPerSecond3) error {
	checked, err := checkJoltCap(jolt)
	if err != nil {
		return err
	}
	old := b.joltMax
	b.joltMax = checked
	if err := b.update(); err != nil {
		b.joltMax = old
		return err
	}
	return nil
}

// SetMaxSpeedLevel bounds the staircase depth.
func (b *RampedBuilder) SetMaxSpeedLevel(levels int) error {
	if levels < 1 {
		return errors.Errorf("staircase needs at least one speed level, got %d", levels)
	}
	old := b.maxSpeedLevel
	b.maxSpeedLevel = levels
	if err := b.update(); err != nil {
		b.maxSpeedLevel = old
		return err
	}
	return nil
}

// SetConfig replaces the operating point.
func (b *RampedBuilder) SetConfig(config motion.StepperConfig) error {
	old := b.config
	b.config = config
	if err := b.update(); err != nil {
		b.config = old
		return err
	}
	return nil
}

// SetOverloadCurrent adjusts the torque-scaling current.
func (b *RampedBuilder) SetOverloadCurrent(current *float32) error {
	old := b.config.OverloadCurrent
	b.config.OverloadCurrent = current
	if err := b.update(); err != nil {
		b.config.OverloadCurrent = old
		return err
	}
	return nil
}

// ApplyGenForce applies an opposing torque acting in both directions.
func (b *RampedBuilder) ApplyGenForce(force units.NewtonMeters) error {
	old := b.vars.ForceLoadGen
	b.vars.ForceLoadGen = force
	if err := b.update(); err != nil {
		b.vars.ForceLoadGen = old
		return err
	}
	return nil
}

// ApplyDirForce applies a directional torque; positive opposes CW.
func (b *RampedBuilder) ApplyDirForce(force units.NewtonMeters) error {
	old := b.vars.ForceLoadDir
	b.vars.ForceLoadDir = force
	if err := b.update(); err != nil {
		b.vars.ForceLoadDir = old
		return err
	}
	return nil
}

// ApplyInertia applies a load inertia.
func (b *RampedBuilder) ApplyInertia(inertia units.KgMeter2) error {
	old := b.vars.InertiaLoad
	b.vars.InertiaLoad = inertia
	if err := b.update(); err != nil {
		b.vars.InertiaLoad = old
		return err
	}
	return nil
}

// SetDriveMode validates and installs the next mode. A velocity- or
// factor-mode request that needs the opposite direction while the builder is
// active is replaced by an internal Stop; the request is cached and re-armed
// once the builder reaches rest.
func (b *RampedBuilder) SetDriveMode(ctx context.Context, mode DriveMode, ctrl StepperController) error {
	b.ctrl = ctrl

	switch mode.Kind {
	case ModeConstVelocity:
		dir := units.DirectionOf(mode.Velocity)
		speed := units.Abs(mode.Velocity)
		if possible := b.VelocityPossible(); speed > possible {
			return &VelocityTooHighError{Requested: speed, Max: possible}
		}
		if b.mode.Kind != ModeInactive && dir != b.dir {
			b.stopWithMode(mode)
			return nil
		}
		b.dir = dir
		if err := ctrl.SetDir(ctx, dir); err != nil {
			return err
		}

	case ModeConstFactor:
		if b.mode.Kind != ModeInactive && mode.Direction != b.dir {
			b.stopWithMode(mode)
			return nil
		}
		b.dir = mode.Direction
		if err := ctrl.SetDir(ctx, mode.Direction); err != nil {
			return err
		}

	case ModeFixedDistance:
		if exit := units.Abs(mode.ExitVelocity); exit > b.VelocityPossible() {
			return &VelocityTooHighError{Requested: exit, Max: b.VelocityPossible()}
		}

		distance := b.consts.StepsFromAngleAbs(mode.Distance, b.microsteps)
		if distance < uint64(b.currentSpeedLevel) {
			// Too short to descend from the current level.
			return &InvalidRelativeDistanceError{Distance: mode.Distance}
		}
		b.distance = distance
		b.distanceCounter = 0

		b.dir = units.DirectionOf(mode.Distance)
		if err := ctrl.SetDir(ctx, b.dir); err != nil {
			return err
		}

	case ModeStop:
		// An explicit stop wins over any pending direction-change redirect.
		b.cachedMode = nil
	}

	b.mode = mode
	return nil
}

// PtpTimeForDistance estimates the travel time between two positions under
// the current staircase: symmetric ramps plus a plateau for long moves, a
// truncated climb for short ones.
func (b *RampedBuilder) PtpTimeForDistance(from, to units.PositionRad) units.Seconds {
	distance := b.consts.StepsFromAngleAbs(to.Sub(from), b.microsteps)

	if distance == 0 {
		return 0
	}
	if distance == 1 {
		if len(b.times) == 0 {
			return units.Inf[units.Seconds]()
		}
		return b.times[0]
	}

	halfLevels := distance / 2
	if halfLevels > 0 {
		halfLevels--
	}

	if halfLevels < uint64(len(b.speedLevels)) {
		return b.timeSums[halfLevels].Mul(2).
			Add(b.consts.StepTime(b.speedLevels[halfLevels], b.microsteps))
	}

	rest := distance - uint64(len(b.times))*2
	var rampTime units.Seconds
	if len(b.timeSums) > 0 {
		rampTime = b.timeSums[len(b.timeSums)-1]
	}
	return b.consts.StepTime(b.VelocityPossible(), b.microsteps).Mul(float32(rest)).
		Add(rampTime.Mul(2))
}
