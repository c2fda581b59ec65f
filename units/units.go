// Package units provides typed kinematic quantities for actuator math.
//
// Each quantity is a distinct type over float32, so mixing dimensions is a
// compile error. Cross-dimension arithmetic goes through explicit methods
// (DivTime, MulTime, ...); same-dimension division through Ratio.
package units

// Rotary quantities. Radians is a relative angular distance, PositionRad an
// absolute position; the two deliberately do not interchange.
type (
	// Radians is a relative angular distance.
	Radians float32
	// PositionRad is an absolute angular position.
	PositionRad float32
	// RadPerSecond is a signed angular velocity. Positive values mean CW.
	RadPerSecond float32
	// RadPerSecond2 is an angular acceleration.
	RadPerSecond2 float32
	// RadPerSecond3 is an angular jolt (jerk).
	RadPerSecond3 float32
	// Seconds is a duration.
	Seconds float32
	// NewtonMeters is a torque.
	NewtonMeters float32
	// KgMeter2 is a moment of inertia.
	KgMeter2 float32
)

// Distance / time algebra.

// DivTime returns the velocity covering the distance d in t.
func (d Radians) DivTime(t Seconds) RadPerSecond { return RadPerSecond(d / Radians(t)) }

// DivVelocity returns the time needed to cover d at velocity v.
func (d Radians) DivVelocity(v RadPerSecond) Seconds { return Seconds(d / Radians(v)) }

// Add returns the sum of two relative distances.
func (d Radians) Add(o Radians) Radians { return d + o }

// Mul scales the distance by a dimensionless factor.
func (d Radians) Mul(f float32) Radians { return d * Radians(f) }

// Div divides the distance by a dimensionless factor.
func (d Radians) Div(f float32) Radians { return d / Radians(f) }

// MulTime returns the distance covered in t at velocity v.
func (v RadPerSecond) MulTime(t Seconds) Radians { return Radians(v * RadPerSecond(t)) }

// DivTime returns the acceleration reaching v from rest in t.
func (v RadPerSecond) DivTime(t Seconds) RadPerSecond2 { return RadPerSecond2(v / RadPerSecond(t)) }

// Add returns the sum of two velocities.
func (v RadPerSecond) Add(o RadPerSecond) RadPerSecond { return v + o }

// Mul scales the velocity by a dimensionless factor.
func (v RadPerSecond) Mul(f float32) RadPerSecond { return v * RadPerSecond(f) }

// Div divides the velocity by a dimensionless factor.
func (v RadPerSecond) Div(f float32) RadPerSecond { return v / RadPerSecond(f) }

// MulTime returns the velocity gained in t at acceleration a.
func (a RadPerSecond2) MulTime(t Seconds) RadPerSecond { return RadPerSecond(a * RadPerSecond2(t)) }

// DivTime returns the jolt reaching a from zero acceleration in t.
func (a RadPerSecond2) DivTime(t Seconds) RadPerSecond3 {
	return RadPerSecond3(a / RadPerSecond2(t))
}

// Add returns the sum of two accelerations.
func (a RadPerSecond2) Add(o RadPerSecond2) RadPerSecond2 { return a + o }

// Sub returns the difference of two accelerations.
func (a RadPerSecond2) Sub(o RadPerSecond2) RadPerSecond2 { return a - o }

// Mul scales the acceleration by a dimensionless factor.
func (a RadPerSecond2) Mul(f float32) RadPerSecond2 { return a * RadPerSecond2(f) }

// MulTime returns the acceleration gained in t at jolt j.
func (j RadPerSecond3) MulTime(t Seconds) RadPerSecond2 { return RadPerSecond2(j * RadPerSecond3(t)) }

// Mul scales the jolt by a dimensionless factor.
func (j RadPerSecond3) Mul(f float32) RadPerSecond3 { return j * RadPerSecond3(f) }

// Force / inertia algebra.

// DivInertia returns the acceleration the torque f produces against inertia i.
func (f NewtonMeters) DivInertia(i KgMeter2) RadPerSecond2 {
	return RadPerSecond2(f / NewtonMeters(i))
}

// Sub returns the torque remaining after subtracting o.
func (f NewtonMeters) Sub(o NewtonMeters) NewtonMeters { return f - o }

// Add returns the combined torque.
func (f NewtonMeters) Add(o NewtonMeters) NewtonMeters { return f + o }

// Mul scales the torque by a dimensionless factor.
func (f NewtonMeters) Mul(s float32) NewtonMeters { return f * NewtonMeters(s) }

// Add returns the combined inertia.
func (i KgMeter2) Add(o KgMeter2) KgMeter2 { return i + o }

// Mul scales the inertia by a dimensionless factor.
func (i KgMeter2) Mul(f float32) KgMeter2 { return i * KgMeter2(f) }

// Position algebra. The difference of two positions is a distance; a position
// plus a distance is a position. Positions do not add.

// Sub returns the distance from o to p.
func (p PositionRad) Sub(o PositionRad) Radians { return Radians(p - o) }

// Add returns the position reached after moving d from p.
func (p PositionRad) Add(d Radians) PositionRad { return p + PositionRad(d) }

// Time algebra.

// Add returns the sum of two durations.
func (t Seconds) Add(o Seconds) Seconds { return t + o }

// Mul scales the duration by a dimensionless factor.
func (t Seconds) Mul(f float32) Seconds { return t * Seconds(f) }
