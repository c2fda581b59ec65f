package motion

import "stepperact/units"

// Limits are optional absolute position bounds of an axis.
type Limits struct {
	Min *units.PositionRad
	Max *units.PositionRad
}

// ActuatorVars is the mutable load acting on an axis.
//
// Sign convention: a positive ForceLoadDir opposes CW motion and assists CCW
// motion. ForceLoadGen opposes motion in both directions (friction-like) and
// must be non-negative.
type ActuatorVars struct {
	// ForceLoadGen is the general opposing torque, acting in both directions.
	ForceLoadGen units.NewtonMeters
	// ForceLoadDir is the directional load torque; positive opposes CW.
	ForceLoadDir units.NewtonMeters
	// InertiaLoad is the load inertia added to the motor's own.
	InertiaLoad units.KgMeter2
	// Lim are the absolute position bounds of the axis.
	Lim Limits
}

// ForceAfterLoad subtracts the loads from the torque force available in the
// given direction. Returns false if the axis is overloaded at that
// direction, i.e. no net torque remains.
func (v *ActuatorVars) ForceAfterLoad(force units.NewtonMeters, dir units.Direction) (units.NewtonMeters, bool) {
	force = force.Sub(v.ForceLoadGen)
	if dir.Bool() {
		force = force.Sub(v.ForceLoadDir)
	} else {
		force = force.Add(v.ForceLoadDir)
	}

	if force <= 0 {
		return 0, false
	}
	return force, true
}

// ForceAfterLoadLower is the weaker of the two directions' net torque: both
// the general and the full magnitude of the directional load are subtracted.
// Returns false on overload.
func (v *ActuatorVars) ForceAfterLoadLower(force units.NewtonMeters) (units.NewtonMeters, bool) {
	force = force.Sub(v.ForceLoadGen).Sub(units.Abs(v.ForceLoadDir))
	if force <= 0 {
		return 0, false
	}
	return force, true
}

// InertiaAfterLoad adds the load inertia to the given motor inertia.
func (v *ActuatorVars) InertiaAfterLoad(inertia units.KgMeter2) units.KgMeter2 {
	return inertia.Add(v.InertiaLoad)
}
