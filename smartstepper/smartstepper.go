// Package smartstepper exposes the actuation pipeline as viam motor models.
//
// Two models are registered. Both drive a step/direction interface through
// board GPIO pins and plan every step from the motor's electrical nameplate,
// the supply voltage and the applied load:
//
//	stepperact:stepper:start-stop  plateau stepping inside the start-stop window
//	stepperact:stepper:ramped      staircase acceleration through speed levels
package smartstepper

import (
	"context"
	"math"
	"sync"

	"github.com/pkg/errors"
	"go.viam.com/rdk/components/board"
	"go.viam.com/rdk/components/motor"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/operation"
	"go.viam.com/rdk/resource"
	"go.viam.com/utils"

	"stepperact/actuator"
	"stepperact/motion"
	"stepperact/units"
)

// Models for the two planning strategies.
var (
	ModelStartStop = resource.NewModel("stepperact", "stepper", "start-stop")
	ModelRamped    = resource.NewModel("stepperact", "stepper", "ramped")
)

const radPerRev = 2 * math.Pi

// PinConfig defines where the driver's control lines are wired.
type PinConfig struct {
	Direction string `json:"dir"`
	Step      string `json:"step"`
}

// EndStopConfig defines one endstop switch.
type EndStopConfig struct {
	Pin string `json:"pin"`
	// TriggerHigh is the level that counts as pressed.
	TriggerHigh bool `json:"trigger_high"`
	// Direction restricts the switch to "cw" or "ccw" movement; empty
	// watches both.
	Direction string `json:"direction,omitempty"`
}

// Config describes the configuration of a motor.
type Config struct {
	Pins      PinConfig `json:"pins"`
	BoardName string    `json:"board"`

	// Electrical and mechanical nameplate of the motor.
	StepsPerRotation  int     `json:"steps_per_rotation"`
	CurrentAmps       float64 `json:"current_amps"`
	InductanceHenries float64 `json:"inductance_henries"`
	ResistanceOhms    float64 `json:"resistance_ohms"`
	TorqueStallNm     float64 `json:"torque_stall_nm"`
	InertiaKgM2       float64 `json:"inertia_kgm2"`

	// Operating point.
	Voltage             float64  `json:"voltage"`
	OverloadCurrentAmps *float64 `json:"overload_current_amps,omitempty"`
	Microsteps          int      `json:"microsteps,omitempty"`

	// Optional user caps, in motor units.
	MaxRPM                   float64 `json:"max_rpm,omitempty"`
	MaxAccelerationRPMPerSec float64 `json:"max_acceleration_rpm_per_sec,omitempty"`

	// Optional absolute position bounds in revolutions.
	LimitMinRev *float64 `json:"limit_min_rev,omitempty"`
	LimitMaxRev *float64 `json:"limit_max_rev,omitempty"`

	EndStops []EndStopConfig `json:"endstops,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) ([]string, error) {
	var deps []string
	if conf.BoardName == "" {
		return nil, resource.NewConfigValidationFieldRequiredError(path, "board")
	}
	if conf.Pins.Direction == "" {
		return nil, resource.NewConfigValidationFieldRequiredError(path, "dir")
	}
	if conf.Pins.Step == "" {
		return nil, resource.NewConfigValidationFieldRequiredError(path, "step")
	}
	if conf.StepsPerRotation <= 0 {
		return nil, resource.NewConfigValidationFieldRequiredError(path, "steps_per_rotation")
	}
	if conf.CurrentAmps <= 0 {
		return nil, resource.NewConfigValidationFieldRequiredError(path, "current_amps")
	}
	if conf.InductanceHenries <= 0 {
		return nil, resource.NewConfigValidationFieldRequiredError(path, "inductance_henries")
	}
	if conf.ResistanceOhms <= 0 {
		return nil, resource.NewConfigValidationFieldRequiredError(path, "resistance_ohms")
	}
	if conf.TorqueStallNm <= 0 {
		return nil, resource.NewConfigValidationFieldRequiredError(path, "torque_stall_nm")
	}
	if conf.InertiaKgM2 <= 0 {
		return nil, resource.NewConfigValidationFieldRequiredError(path, "inertia_kgm2")
	}
	if conf.Voltage <= 0 {
		return nil, resource.NewConfigValidationFieldRequiredError(path, "voltage")
	}
	if conf.Microsteps != 0 {
		if _, err := motion.NewMicroSteps(uint16(conf.Microsteps)); err != nil {
			return nil, errors.Wrap(err, "microsteps")
		}
	}
	for _, es := range conf.EndStops {
		if es.Pin == "" {
			return nil, resource.NewConfigValidationFieldRequiredError(path, "endstops.pin")
		}
		if es.Direction != "" && es.Direction != "cw" && es.Direction != "ccw" {
			return nil, errors.Errorf(`endstop direction must be "cw" or "ccw", got %q`, es.Direction)
		}
	}

	deps = append(deps, conf.BoardName)
	return deps, nil
}

func init() {
	resource.RegisterComponent(motor.API, ModelStartStop, resource.Registration[motor.Motor, *Config]{
		Constructor: newStartStop,
	})
	resource.RegisterComponent(motor.API, ModelRamped, resource.Registration[motor.Motor, *Config]{
		Constructor: newRamped,
	})
}

func newStartStop(
	ctx context.Context, deps resource.Dependencies, conf resource.Config, logger logging.Logger,
) (motor.Motor, error) {
	return newSmartStepper(ctx, deps, conf, logger, false)
}

func newRamped(
	ctx context.Context, deps resource.Dependencies, conf resource.Config, logger logging.Logger,
) (motor.Motor, error) {
	return newSmartStepper(ctx, deps, conf, logger, true)
}

func newSmartStepper(
	ctx context.Context, deps resource.Dependencies, conf resource.Config, logger logging.Logger, ramped bool,
) (motor.Motor, error) {
	mc, err := resource.NativeConfig[*Config](conf)
	if err != nil {
		return nil, err
	}

	b, err := board.FromDependencies(deps, mc.BoardName)
	if err != nil {
		return nil, errors.Wrap(err, "expected board name in config for motor")
	}

	return makeSmartStepper(ctx, b, *mc, conf.ResourceName(), logger, ramped)
}

func makeSmartStepper(
	ctx context.Context, b board.Board, mc Config, name resource.Name, logger logging.Logger, ramped bool,
) (motor.Motor, error) {
	if b == nil {
		return nil, errors.New("board is required")
	}

	dirPin, err := b.GPIOPinByName(mc.Pins.Direction)
	if err != nil {
		return nil, errors.Wrapf(err, "in dir pin in motor (%s)", name.ShortName())
	}
	stepPin, err := b.GPIOPinByName(mc.Pins.Step)
	if err != nil {
		return nil, errors.Wrapf(err, "in step pin in motor (%s)", name.ShortName())
	}

	consts := motion.StepperConst{
		DefaultCurrent: float32(mc.CurrentAmps),
		Inductance:     float32(mc.InductanceHenries),
		Resistance:     float32(mc.ResistanceOhms),
		NumberSteps:    uint32(mc.StepsPerRotation),
		TorqueStall:    units.NewtonMeters(mc.TorqueStallNm),
		InertiaMotor:   units.KgMeter2(mc.InertiaKgM2),
	}
	var overload *float32
	if mc.OverloadCurrentAmps != nil {
		v := float32(*mc.OverloadCurrentAmps)
		overload = &v
	}
	config := motion.NewStepperConfig(float32(mc.Voltage), overload)

	ctrl := actuator.NewGPIOController(dirPin, stepPin)

	var core *actuator.StepperMotor
	if ramped {
		core, err = actuator.NewRampedMotor(ctrl, consts, config, logger)
	} else {
		core, err = actuator.NewStartStopMotor(ctrl, consts, config, logger)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "planning for motor (%s)", name.ShortName())
	}

	if mc.Microsteps > 1 {
		if err := core.SetMicrosteps(motion.MustMicroSteps(uint16(mc.Microsteps))); err != nil {
			return nil, errors.Wrapf(err, "in microsteps in motor (%s)", name.ShortName())
		}
	}
	if mc.MaxRPM > 0 {
		limit := units.RadPerSecond(mc.MaxRPM * radPerRev / 60)
		if err := core.SetVelocityMax(&limit); err != nil {
			return nil, errors.Wrapf(err, "in max_rpm in motor (%s)", name.ShortName())
		}
	}
	if mc.MaxAccelerationRPMPerSec > 0 {
		limit := units.RadPerSecond2(mc.MaxAccelerationRPMPerSec * radPerRev / 60)
		if err := core.SetAccelerationMax(&limit); err != nil {
			return nil, errors.Wrapf(err, "in max_acceleration_rpm_per_sec in motor (%s)", name.ShortName())
		}
	}
	var limitMin, limitMax *units.PositionRad
	if mc.LimitMinRev != nil {
		v := units.PositionRad(*mc.LimitMinRev * radPerRev)
		limitMin = &v
	}
	if mc.LimitMaxRev != nil {
		v := units.PositionRad(*mc.LimitMaxRev * radPerRev)
		limitMax = &v
	}
	core.SetPosLimits(limitMin, limitMax)

	for _, es := range mc.EndStops {
		pin, err := b.GPIOPinByName(es.Pin)
		if err != nil {
			return nil, errors.Wrapf(err, "in endstop pin in motor (%s)", name.ShortName())
		}
		var dir *units.Direction
		switch es.Direction {
		case "cw":
			d := units.CW
			dir = &d
		case "ccw":
			d := units.CCW
			dir = &d
		}
		core.AddInterruptor(actuator.NewEndStop(pin, es.TriggerHigh, dir))
	}

	m := &smartStepper{
		Named:     name.AsNamed(),
		motorName: name.ShortName(),
		logger:    logger,
		core:      core,
		consts:    consts,
		voltage:   float32(mc.Voltage),
		opMgr:     operation.NewSingleOperationManager(),
	}
	return m, nil
}

type smartStepper struct {
	resource.Named
	resource.AlwaysRebuild

	motorName string
	logger    logging.Logger
	consts    motion.StepperConst
	voltage   float32

	opMgr   *operation.SingleOperationManager
	workers *utils.StoppableWorkers

	// mu guards core: the pipeline itself is single-threaded by design.
	mu   sync.Mutex
	core *actuator.StepperMotor
}

// maxRPM is the inductance-limited ceiling expressed in RPM.
func (m *smartStepper) maxRPM() float64 {
	return float64(m.consts.VelocityMax(m.voltage)) * 60 / radPerRev
}

// stopContinuous halts a SetRPM/SetPower background drive, if any.
func (m *smartStepper) stopContinuous() {
	m.core.State().Halt()
	if m.workers != nil {
		m.workers.Stop()
		m.workers = nil
	}
}

// GoFor rotates the motor by the given revolutions at the given speed in
// RPM. Negative values of either flip the direction; both negative cancel
// out. Blocks until the move is done.
func (m *smartStepper) GoFor(ctx context.Context, rpm, revolutions float64, extra map[string]interface{}) error {
	ctx, done := m.opMgr.New(ctx)
	defer done()

	warning, err := motor.CheckSpeed(rpm, m.maxRPM())
	if warning != "" {
		m.logger.CWarn(ctx, warning)
		if err != nil {
			m.logger.CError(ctx, err)
			return m.Stop(ctx, extra)
		}
	}

	factor, err := units.NewFactor(float32(math.Min(math.Abs(rpm)/m.maxRPM(), 1.0)))
	if err != nil {
		return errors.Wrapf(err, "in rpm in motor (%s)", m.motorName)
	}

	dist := units.Radians(revolutions * radPerRev * motor.GetSign(rpm))

	m.stopContinuous()
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.core.DriveRelBlocking(ctx, dist, factor)
}

// GoTo moves to an absolute position in revolutions from the zero position.
// The sign of rpm is ignored; the direction follows from the target.
func (m *smartStepper) GoTo(ctx context.Context, rpm, positionRevolutions float64, extra map[string]interface{}) error {
	curPos, err := m.Position(ctx, extra)
	if err != nil {
		return errors.Wrapf(err, "error in GoTo from motor (%s)", m.motorName)
	}
	moveDistance := positionRevolutions - curPos

	m.logger.CDebugf(ctx, "Moving %v revolutions at %v rpm", moveDistance, rpm)

	if moveDistance == 0 {
		return nil
	}

	return m.GoFor(ctx, math.Abs(rpm), moveDistance, extra)
}

// SetRPM drives at the given speed indefinitely, until Stop.
func (m *smartStepper) SetRPM(ctx context.Context, rpm float64, extra map[string]interface{}) error {
	_, done := m.opMgr.New(ctx)
	defer done()

	warning, err := motor.CheckSpeed(rpm, m.maxRPM())
	if warning != "" {
		m.logger.CWarn(ctx, warning)
		if err != nil {
			m.logger.CError(ctx, err)
			return m.Stop(ctx, extra)
		}
	}

	m.stopContinuous()

	velocity := units.RadPerSecond(rpm * radPerRev / 60)
	m.workers = utils.NewBackgroundStoppableWorkers(func(ctx context.Context) {
		m.mu.Lock()
		defer m.mu.Unlock()
		if err := m.core.DriveSpeed(ctx, velocity); err != nil {
			m.logger.Errorf("error driving at %v rpm: %v", rpm, err)
		}
	})
	return nil
}

// SetPower drives at the given fraction of the maximum speed indefinitely.
func (m *smartStepper) SetPower(ctx context.Context, powerPct float64, extra map[string]interface{}) error {
	powerPct = motor.ClampPower(powerPct)
	return m.SetRPM(ctx, powerPct*m.maxRPM(), extra)
}

// Position reports the absolute position in revolutions from zero.
func (m *smartStepper) Position(ctx context.Context, extra map[string]interface{}) (float64, error) {
	return float64(m.core.State().Pos()) / radPerRev, nil
}

// ResetZeroPosition makes the current position (minus offset) the new zero.
func (m *smartStepper) ResetZeroPosition(ctx context.Context, offset float64, extra map[string]interface{}) error {
	if err := m.Stop(ctx, extra); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.core.OverwritePos(units.PositionRad(-offset * radPerRev))
	return nil
}

// Properties returns the status of optional properties the motor supports.
func (m *smartStepper) Properties(ctx context.Context, extra map[string]interface{}) (motor.Properties, error) {
	return motor.Properties{
		PositionReporting: true,
	}, nil
}

// IsMoving reports whether the drive loop is currently stepping.
func (m *smartStepper) IsMoving(ctx context.Context) (bool, error) {
	return m.core.State().Moving(), nil
}

// IsPowered reports whether the motor is currently driving. Steppers are
// either at 0% or 100%.
func (m *smartStepper) IsPowered(ctx context.Context, extra map[string]interface{}) (bool, float64, error) {
	on, err := m.IsMoving(ctx)
	if err != nil {
		return on, 0.0, errors.Wrapf(err, "error in IsPowered from motor (%s)", m.motorName)
	}
	percent := 0.0
	if on {
		percent = 1.0
	}
	return on, percent, nil
}

// Stop requests the pipeline to decelerate to rest as fast as admissible.
func (m *smartStepper) Stop(ctx context.Context, extra map[string]interface{}) error {
	m.stopContinuous()
	return nil
}

// DoCommand exposes the load and planning surface that has no place in the
// motor API:
//
//	{"apply_gen_force_nm": 0.05}     friction-like torque in both directions
//	{"apply_dir_force_nm": 0.02}     directional torque, positive opposes CW
//	{"apply_inertia_kgm2": 2e-5}     load inertia
//	{"ptp_time_rev": 2.5}            seconds to travel 2.5 revolutions
func (m *smartStepper) DoCommand(ctx context.Context, cmd map[string]interface{}) (map[string]interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := map[string]interface{}{}
	for key, raw := range cmd {
		value, ok := raw.(float64)
		if !ok {
			return nil, errors.Errorf("expected a number for %q", key)
		}

		switch key {
		case "apply_gen_force_nm":
			if err := m.core.ApplyGenForce(units.NewtonMeters(value)); err != nil {
				return nil, err
			}
		case "apply_dir_force_nm":
			if err := m.core.ApplyDirForce(units.NewtonMeters(value)); err != nil {
				return nil, err
			}
		case "apply_inertia_kgm2":
			if err := m.core.ApplyInertia(units.KgMeter2(value)); err != nil {
				return nil, err
			}
		case "ptp_time_rev":
			from := m.core.Pos()
			to := from.Add(units.Radians(value * radPerRev))
			result["ptp_time_s"] = float64(m.core.PtpTimeForDistance(from, to))
		default:
			return nil, errors.Errorf("unknown command %q", key)
		}
	}
	return result, nil
}

// Close halts the motor and releases the workers.
func (m *smartStepper) Close(ctx context.Context) error {
	if err := m.Stop(ctx, nil); err != nil {
		return err
	}
	return nil
}
