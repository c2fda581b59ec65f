package actuator

import (
	"context"

	"github.com/pkg/errors"
	"go.viam.com/rdk/logging"

	"stepperact/motion"
	"stepperact/units"
)

// StepperMotor binds a builder to a controller: it pulls step intervals,
// polls interruptors between steps, commands the step line, tracks the
// absolute position atomically and enforces position limits. All drive
// operations block on the caller's goroutine; step jitter directly becomes
// motion error, so nothing here spawns tasks of its own.
type StepperMotor struct {
	builder StepperBuilder
	ctrl    StepperController
	logger  logging.Logger

	state *StepperState

	limitMin *units.PositionRad
	limitMax *units.PositionRad

	interruptors []Interruptor
	intrReason   *InterruptReason
}

var _ Actuator = (*StepperMotor)(nil)

// NewMotor binds an explicit builder to a controller.
func NewMotor(builder StepperBuilder, ctrl StepperController, logger logging.Logger) *StepperMotor {
	return &StepperMotor{
		builder: builder,
		ctrl:    ctrl,
		logger:  logger,
		state:   NewStepperState(),
	}
}

// NewStartStopMotor builds a motor scheduling inside the start-stop window.
func NewStartStopMotor(
	ctrl StepperController, consts motion.StepperConst, config motion.StepperConfig, logger logging.Logger,
) (*StepperMotor, error) {
	builder, err := NewStartStopBuilder(consts, config)
	if err != nil {
		return nil, err
	}
	return NewMotor(builder, ctrl, logger), nil
}

// NewRampedMotor builds a motor accelerating through speed levels.
func NewRampedMotor(
	ctrl StepperController, consts motion.StepperConst, config motion.StepperConfig, logger logging.Logger,
) (*StepperMotor, error) {
	builder, err := NewRampedBuilder(consts, config)
	if err != nil {
		return nil, err
	}
	return NewMotor(builder, ctrl, logger), nil
}

// handleBuilder is the drive loop: it runs the builder dry, interleaving
// interruptor polls, halt requests and limit checks between steps.
func (m *StepperMotor) handleBuilder(ctx context.Context) error {
	m.state.setMoving(true)
	defer m.state.setMoving(false)

	for {
		interval, ok := m.builder.Next()
		if !ok {
			return nil
		}

		direction := m.builder.Direction()
		mode := m.builder.DriveMode()

		if mode.Kind != ModeStop {
			if err := m.pollInterruptors(ctx, direction); err != nil {
				return err
			}

			if m.state.stopRequested() || ctx.Err() != nil {
				if err := m.builder.SetDriveMode(ctx, Stop(), m.ctrl); err != nil {
					return err
				}
			}
		}

		if err := m.ctrl.Step(ctx, interval); err != nil {
			return errors.Wrap(err, "stepping")
		}

		// The step happened; its position update must be observable before
		// the next poll.
		if direction.Bool() {
			m.state.addPos(m.builder.StepAngle())
			if limit := m.limitMax; limit != nil && m.Pos() > *limit {
				if err := m.builder.SetDriveMode(ctx, Stop(), m.ctrl); err != nil {
					return err
				}
			}
		} else {
			m.state.addPos(-m.builder.StepAngle())
			if limit := m.limitMin; limit != nil && m.Pos() < *limit {
				if err := m.builder.SetDriveMode(ctx, Stop(), m.ctrl); err != nil {
					return err
				}
			}
		}
	}
}

// pollInterruptors checks every interruptor watching the given direction and
// schedules a stop on the first trigger.
func (m *StepperMotor) pollInterruptors(ctx context.Context, direction units.Direction) error {
	for _, intr := range m.interruptors {
		if watched := intr.Direction(); watched != nil && *watched != direction {
			continue
		}

		reason, triggered := intr.Check(ctx, m.Pos())
		if !triggered {
			intr.SetTempDir(nil)
			continue
		}

		dir := direction
		intr.SetTempDir(&dir)
		m.intrReason = &reason
		m.logger.Debugf("interruptor triggered at %v rad: %s", float32(m.Pos()), reason)

		if err := m.builder.SetDriveMode(ctx, Stop(), m.ctrl); err != nil {
			return err
		}
	}
	return nil
}

// Direction is the current movement direction.
func (m *StepperMotor) Direction() units.Direction {
	return m.builder.Direction()
}

// Position and state.

// Pos is the current absolute position.
func (m *StepperMotor) Pos() units.PositionRad {
	return m.state.Pos()
}

// OverwritePos overwrites the absolute position without moving.
func (m *StepperMotor) OverwritePos(pos units.PositionRad) {
	m.state.storePos(pos)
}

// State shares the motor's observable state. Observers may hold it beyond
// the motor's drive calls and request halts through it.
func (m *StepperMotor) State() *StepperState {
	return m.state
}

// Kinematic caps, delegated to the builder.

// VelocityMax is the user-imposed velocity cap, nil if unset.
func (m *StepperMotor) VelocityMax() *units.RadPerSecond { return m.builder.VelocityMax() }

// SetVelocityMax sets or clears (nil) the velocity cap.
func (m *StepperMotor) SetVelocityMax(velocity *units.RadPerSecond) error {
	return m.builder.SetVelocityMax(velocity)
}

// AccelerationMax is the user-imposed acceleration cap, nil if unset.
func (m *StepperMotor) AccelerationMax() *units.RadPerSecond2 { return m.builder.AccelerationMax() }

// SetAccelerationMax sets or clears (nil) the acceleration cap.
func (m *StepperMotor) SetAccelerationMax(acceleration *units.RadPerSecond2) error {
	return m.builder.SetAccelerationMax(acceleration)
}

// JoltMax is the user-imposed jolt cap, nil if unset.
func (m *StepperMotor) JoltMax() *units.RadPerSecond3 { return m.builder.JoltMax() }

// SetJoltMax sets or clears (nil) the jolt cap.
func (m *StepperMotor) SetJoltMax(jolt *units.RadPerSecond3) error {
	return m.builder.SetJoltMax(jolt)
}

// Position limits.

// LimitMin is the lower absolute position bound, nil if unset.
func (m *StepperMotor) LimitMin() *units.PositionRad { return m.limitMin }

// LimitMax is the upper absolute position bound, nil if unset.
func (m *StepperMotor) LimitMax() *units.PositionRad { return m.limitMax }

// SetPosLimits replaces the given bounds; nil arguments keep the current
// value.
func (m *StepperMotor) SetPosLimits(min, max *units.PositionRad) {
	if min != nil {
		v := *min
		m.limitMin = &v
	}
	if max != nil {
		v := *max
		m.limitMax = &v
	}
}

// OverwritePosLimits replaces both bounds, clearing those passed as nil.
func (m *StepperMotor) OverwritePosLimits(min, max *units.PositionRad) {
	m.limitMin = nil
	m.limitMax = nil
	m.SetPosLimits(min, max)
}

// SetEndpos calibrates the axis against a just-reached end: the absolute
// position is overwritten and the limit on the trailing side of the current
// direction is clamped so the axis cannot run past the end again.
func (m *StepperMotor) SetEndpos(pos units.PositionRad) {
	m.OverwritePos(pos)

	if m.Direction().Bool() {
		m.SetPosLimits(nil, &pos)
	} else {
		m.SetPosLimits(&pos, nil)
	}
}

// ResolvePosLimitsFor reports how far the given position lies beyond the
// configured bounds: zero inside them, the signed overshoot outside, NaN
// when no bounds are set.
func (m *StepperMotor) ResolvePosLimitsFor(pos units.PositionRad) units.Radians {
	if m.limitMin == nil && m.limitMax == nil {
		return units.NaN[units.Radians]()
	}
	if m.limitMin != nil && pos < *m.limitMin {
		return pos.Sub(*m.limitMin)
	}
	if m.limitMax != nil && pos > *m.limitMax {
		return pos.Sub(*m.limitMax)
	}
	return 0
}

// Drive operations. All block until the builder runs dry.

// DriveRelBlocking travels the signed relative distance, peaking at the
// given fraction of the achievable maximum, and comes to rest.
func (m *StepperMotor) DriveRelBlocking(ctx context.Context, relDist units.Radians, speed units.Factor) error {
	if !units.IsFinite(relDist) {
		return &InvalidRelativeDistanceError{Distance: relDist}
	}

	if err := m.builder.SetDriveMode(ctx, FixedDistance(relDist, 0, speed), m.ctrl); err != nil {
		return err
	}

	m.state.clearRequests()
	m.intrReason = nil
	return m.handleBuilder(ctx)
}

// DriveAbsBlocking travels to the given absolute position.
func (m *StepperMotor) DriveAbsBlocking(ctx context.Context, pos units.PositionRad, speed units.Factor) error {
	return m.DriveRelBlocking(ctx, pos.Sub(m.Pos()), speed)
}

// DriveFactor drives at the fraction of the achievable maximum in the given
// direction until halted externally.
func (m *StepperMotor) DriveFactor(ctx context.Context, speed units.Factor, direction units.Direction) error {
	if err := m.builder.SetDriveMode(ctx, ConstFactor(speed, direction), m.ctrl); err != nil {
		return err
	}

	m.state.clearRequests()
	m.intrReason = nil
	return m.handleBuilder(ctx)
}

// DriveSpeed drives at the signed velocity until halted externally.
func (m *StepperMotor) DriveSpeed(ctx context.Context, speed units.RadPerSecond) error {
	if err := m.builder.SetDriveMode(ctx, ConstVelocity(speed), m.ctrl); err != nil {
		return err
	}

	m.state.clearRequests()
	m.intrReason = nil
	return m.handleBuilder(ctx)
}

// Interruptors.

// AddInterruptor registers a per-step stop predicate.
func (m *StepperMotor) AddInterruptor(intr Interruptor) {
	m.interruptors = append(m.interruptors, intr)
}

// IntrReason returns and clears the reason of the last interruptor trigger.
func (m *StepperMotor) IntrReason() *InterruptReason {
	reason := m.intrReason
	m.intrReason = nil
	return reason
}

// Stepping geometry.

// Microsteps is the current microstep divider.
func (m *StepperMotor) Microsteps() motion.MicroSteps {
	return m.builder.Microsteps()
}

// SetMicrosteps changes the microstep divider. The absolute position is kept
// as an angle, so no counter rescaling is needed here.
func (m *StepperMotor) SetMicrosteps(microsteps motion.MicroSteps) error {
	return m.builder.SetMicrosteps(microsteps)
}

// StepDistance is the distance of a single step.
func (m *StepperMotor) StepDistance() units.Radians {
	return m.builder.StepAngle()
}

// Loads.

// ForceGen is the applied general opposing torque.
func (m *StepperMotor) ForceGen() units.NewtonMeters { return m.builder.Vars().ForceLoadGen }

// ForceDir is the applied directional torque.
func (m *StepperMotor) ForceDir() units.NewtonMeters { return m.builder.Vars().ForceLoadDir }

// Inertia is the applied load inertia.
func (m *StepperMotor) Inertia() units.KgMeter2 { return m.builder.Vars().InertiaLoad }

// ApplyGenForce applies an opposing torque acting in both directions.
func (m *StepperMotor) ApplyGenForce(force units.NewtonMeters) error {
	return m.builder.ApplyGenForce(force)
}

// ApplyDirForce applies a directional torque; positive opposes CW.
func (m *StepperMotor) ApplyDirForce(force units.NewtonMeters) error {
	return m.builder.ApplyDirForce(force)
}

// ApplyInertia applies a load inertia.
func (m *StepperMotor) ApplyInertia(inertia units.KgMeter2) error {
	return m.builder.ApplyInertia(inertia)
}

// PtpTimeForDistance estimates the travel time between two positions under
// the current plan.
func (m *StepperMotor) PtpTimeForDistance(from, to units.PositionRad) units.Seconds {
	return m.builder.PtpTimeForDistance(from, to)
}
