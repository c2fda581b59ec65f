package motion

import (
	"math"

	"stepperact/units"
)

// StepperConst holds the immutable nameplate parameters of a stepper motor.
// Created once per motor; all physics derive from it together with a
// StepperConfig and the current ActuatorVars.
type StepperConst struct {
	// DefaultCurrent is the rated phase current in amperes.
	DefaultCurrent float32
	// Inductance is the coil inductance in henries.
	Inductance float32
	// Resistance is the coil resistance in ohms.
	Resistance float32
	// NumberSteps is the full step count per revolution.
	NumberSteps uint32
	// TorqueStall is the stall torque at rated current.
	TorqueStall units.NewtonMeters
	// InertiaMotor is the rotor's own moment of inertia.
	InertiaMotor units.KgMeter2
}

// Nameplate data for common NEMA motors.
var (
	// Mot17HE15_1504S is a standard NEMA 17 stepper (17HE15-1504S).
	Mot17HE15_1504S = StepperConst{
		DefaultCurrent: 1.5,
		Inductance:     0.004,
		Resistance:     2.3,
		NumberSteps:    200,
		TorqueStall:    0.42,
		InertiaMotor:   0.000_005_7,
	}

	// Mot23HS45_4204S is a standard NEMA 23 stepper (23HS45-4204S).
	Mot23HS45_4204S = StepperConst{
		DefaultCurrent: 3.8,
		Inductance:     0.0034,
		Resistance:     0.88,
		NumberSteps:    400,
		TorqueStall:    3.0,
		InertiaMotor:   0.000_068,
	}
)

// Torque scaling with current.

// TorqueOverload is the stall torque scaled to the given current, or the
// rated torque when current is nil.
func (c *StepperConst) TorqueOverload(current *float32) units.NewtonMeters {
	if current == nil {
		return c.TorqueStall
	}
	return c.TorqueStall.Mul(*current / c.DefaultCurrent)
}

// TorqueOverloadMax is the torque ceiling reachable at the given supply
// voltage, limited by the coil resistance.
func (c *StepperConst) TorqueOverloadMax(voltage float32) units.NewtonMeters {
	return c.TorqueStall.Mul(voltage / c.Resistance / c.DefaultCurrent)
}

// TorqueDyn is the dynamic torque available at the given velocity. At rest
// it equals the (current-scaled) stall torque; with speed it derates through
// the inductance time constant, approaching zero towards VelocityMax.
func (c *StepperConst) TorqueDyn(velocity units.RadPerSecond, config *StepperConfig) units.NewtonMeters {
	velocity = units.Abs(velocity)
	if !units.IsFinite(velocity) {
		return units.NaN[units.NewtonMeters]()
	}

	stall := c.TorqueOverload(config.OverloadCurrent)
	if velocity == 0 {
		return stall
	}

	t := c.FullStepTime(velocity)
	pow := float32(math.Exp(float64(t / c.Tau(config.Voltage))))
	return stall.Mul((pow - 1) / (pow + 1))
}

// Acceleration limits.

// AccelerationMaxStall is the acceleration reachable at standstill in the
// given direction, or false on overload.
func (c *StepperConst) AccelerationMaxStall(vars *ActuatorVars, dir units.Direction) (units.RadPerSecond2, bool) {
	force, ok := vars.ForceAfterLoad(c.TorqueStall, dir)
	if !ok {
		return 0, false
	}
	return force.DivInertia(vars.InertiaAfterLoad(c.InertiaMotor)), true
}

// AccelerationMaxForVelocity is the acceleration the motor can still deliver
// at the given velocity and direction under the current load, or false on
// overload.
func (c *StepperConst) AccelerationMaxForVelocity(
	vars *ActuatorVars, config *StepperConfig, velocity units.RadPerSecond, dir units.Direction,
) (units.RadPerSecond2, bool) {
	force, ok := vars.ForceAfterLoad(c.TorqueDyn(velocity, config), dir)
	if !ok {
		return 0, false
	}
	return force.DivInertia(vars.InertiaAfterLoad(c.InertiaMotor)), true
}

// Velocity limits.

// Tau is the inductance time constant L*I/U.
func (c *StepperConst) Tau(voltage float32) units.Seconds {
	return units.Seconds(c.Inductance * c.DefaultCurrent / voltage)
}

// VelocityMax is the inductance-limited velocity ceiling at the given supply
// voltage. It caps every downstream calculation.
func (c *StepperConst) VelocityMax(voltage float32) units.RadPerSecond {
	return units.RadPerSecond(math.Pi * voltage / c.DefaultCurrent / c.Inductance / float32(c.NumberSteps))
}

// VelocityStartStop is the greatest velocity the motor can be commanded to
// from rest, and stopped from, within a single step. Returns false when the
// load overloads the motor.
func (c *StepperConst) VelocityStartStop(
	vars *ActuatorVars, config *StepperConfig, microsteps MicroSteps,
) (units.RadPerSecond, bool) {
	torque, ok := vars.ForceAfterLoadLower(c.TorqueOverload(config.OverloadCurrent))
	if !ok {
		return 0, false
	}

	accel := torque.DivInertia(vars.InertiaAfterLoad(c.InertiaMotor))
	steps := float32(c.NumberSteps) * float32(microsteps.AsUint16())
	return units.Sqrt(units.RadPerSecond(float32(accel) * math.Pi / steps)), true
}

// Step angles and times.

// FullStepAngle is the angular distance of one full step, ignoring
// microstepping.
func (c *StepperConst) FullStepAngle() units.Radians {
	return units.Radians(2 * math.Pi / float32(c.NumberSteps))
}

// StepAngle is the angular distance of a single (micro)step.
func (c *StepperConst) StepAngle(microsteps MicroSteps) units.Radians {
	return c.FullStepAngle().Div(float32(microsteps.AsUint16()))
}

// StepTime is the duration of one (micro)step at the given velocity.
func (c *StepperConst) StepTime(velocity units.RadPerSecond, microsteps MicroSteps) units.Seconds {
	return c.StepAngle(microsteps).DivVelocity(velocity)
}

// FullStepTime is the duration of one full step at the given velocity.
func (c *StepperConst) FullStepTime(velocity units.RadPerSecond) units.Seconds {
	return c.FullStepAngle().DivVelocity(velocity)
}

// Velocity is the velocity corresponding to a per-step duration.
func (c *StepperConst) Velocity(stepTime units.Seconds, microsteps MicroSteps) units.RadPerSecond {
	return c.StepAngle(microsteps).DivTime(stepTime)
}

// Step and angle conversions.

// StepsFromAngle converts an angle into a signed step count.
func (c *StepperConst) StepsFromAngle(angle units.Radians, microsteps MicroSteps) int64 {
	return int64(math.Round(float64(units.Ratio(angle, c.StepAngle(microsteps)))))
}

// StepsFromAngleAbs converts an angle into an absolute step count.
func (c *StepperConst) StepsFromAngleAbs(angle units.Radians, microsteps MicroSteps) uint64 {
	return uint64(math.Round(float64(units.Ratio(units.Abs(angle), c.StepAngle(microsteps)))))
}

// AngleFromSteps converts a signed step count into an angle.
func (c *StepperConst) AngleFromSteps(steps int64, microsteps MicroSteps) units.Radians {
	return c.StepAngle(microsteps).Mul(float32(steps))
}

// AngleFromStepsAbs converts an absolute step count into an angle.
func (c *StepperConst) AngleFromStepsAbs(steps uint64, microsteps MicroSteps) units.Radians {
	return c.StepAngle(microsteps).Mul(float32(steps))
}

// RoundAngleToSteps rounds the angle to the nearest whole step.
func (c *StepperConst) RoundAngleToSteps(angle units.Radians, microsteps MicroSteps) units.Radians {
	return c.AngleFromSteps(c.StepsFromAngle(angle, microsteps), microsteps)
}

// IsInStepRange reports whether angle rounds onto the given step count.
func (c *StepperConst) IsInStepRange(steps int64, angle units.Radians, microsteps MicroSteps) bool {
	return c.StepsFromAngle(angle, microsteps) == steps
}
