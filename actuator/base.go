package actuator

import (
	"stepperact/motion"
	"stepperact/units"
)

// builderCore carries the state both builders share: physics inputs, user
// caps and the current scheduling position. The concrete builders own the
// recomputation that follows every mutation.
type builderCore struct {
	consts motion.StepperConst
	vars   motion.ActuatorVars
	config motion.StepperConfig

	velocityMax     *units.RadPerSecond
	accelerationMax *units.RadPerSecond2
	joltMax         *units.RadPerSecond3

	microsteps motion.MicroSteps
	stepAngle  units.Radians
	dir        units.Direction
	mode       DriveMode
}

func newBuilderCore(consts motion.StepperConst, config motion.StepperConfig) builderCore {
	return builderCore{
		consts:     consts,
		config:     config,
		microsteps: motion.DefaultMicroSteps,
		stepAngle:  consts.StepAngle(motion.DefaultMicroSteps),
		dir:        units.CW,
		mode:       Inactive(),
	}
}

func (c *builderCore) StepAngle() units.Radians { return c.stepAngle }

func (c *builderCore) Direction() units.Direction { return c.dir }

func (c *builderCore) DriveMode() DriveMode { return c.mode }

func (c *builderCore) Microsteps() motion.MicroSteps { return c.microsteps }

func (c *builderCore) Consts() *motion.StepperConst { return &c.consts }

func (c *builderCore) Vars() *motion.ActuatorVars { return &c.vars }

func (c *builderCore) Config() *motion.StepperConfig { return &c.config }

func (c *builderCore) VelocityMax() *units.RadPerSecond { return c.velocityMax }

func (c *builderCore) AccelerationMax() *units.RadPerSecond2 { return c.accelerationMax }

func (c *builderCore) JoltMax() *units.RadPerSecond3 { return c.joltMax }

// checkVelocityCap validates a user velocity cap; NaN, zero and negative
// values are rejected. nil clears the cap.
func checkVelocityCap(velocity *units.RadPerSecond) (*units.RadPerSecond, error) {
	if velocity == nil {
		return nil, nil
	}
	if !units.IsNormal(*velocity) || *velocity < 0 {
		return nil, &InvalidVelocityError{Velocity: *velocity}
	}
	v := *velocity
	return &v, nil
}

// checkAccelerationCap validates a user acceleration cap; NaN, zero and
// negative values are rejected. nil clears the cap.
func checkAccelerationCap(acceleration *units.RadPerSecond2) (*units.RadPerSecond2, error) {
	if acceleration == nil {
		return nil, nil
	}
	if !units.IsNormal(*acceleration) || *acceleration < 0 {
		return nil, &InvalidAccelerationError{Acceleration: *acceleration}
	}
	a := *acceleration
	return &a, nil
}

// checkJoltCap validates a user jolt cap. A zero jolt degenerates to no cap;
// negative or NaN values are rejected. nil clears the cap.
func checkJoltCap(jolt *units.RadPerSecond3) (*units.RadPerSecond3, error) {
	if jolt == nil {
		return nil, nil
	}
	if !units.IsFinite(*jolt) || *jolt < 0 {
		return nil, &InvalidJoltError{Jolt: *jolt}
	}
	if *jolt == 0 {
		return nil, nil
	}
	j := *jolt
	return &j, nil
}

// capOr returns the cap's value, or fallback when the cap is unset.
func capOr[U units.Unit](capPtr *U, fallback U) U {
	if capPtr == nil {
		return fallback
	}
	return *capPtr
}
