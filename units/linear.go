package units

// Linear quantities, used by linear axes and conveyors. They mirror the
// rotary set; the inertia of a translating load still enters the motor math
// as a reflected KgMeter2 through the decorator ratio.
type (
	// Millimeters is a relative linear distance.
	Millimeters float32
	// PositionMM is an absolute linear position.
	PositionMM float32
	// MMPerSecond is a signed linear velocity. Positive values mean CW on
	// the driving motor.
	MMPerSecond float32
	// MMPerSecond2 is a linear acceleration.
	MMPerSecond2 float32
	// MMPerSecond3 is a linear jolt.
	MMPerSecond3 float32
	// Newtons is a linear force.
	Newtons float32
	// Kilograms is a translating mass.
	Kilograms float32
)

// DivTime returns the velocity covering the distance d in t.
func (d Millimeters) DivTime(t Seconds) MMPerSecond { return MMPerSecond(d / Millimeters(t)) }

// Add returns the sum of two relative distances.
func (d Millimeters) Add(o Millimeters) Millimeters { return d + o }

// Mul scales the distance by a dimensionless factor.
func (d Millimeters) Mul(f float32) Millimeters { return d * Millimeters(f) }

// Div divides the distance by a dimensionless factor.
func (d Millimeters) Div(f float32) Millimeters { return d / Millimeters(f) }

// MulTime returns the distance covered in t at velocity v.
func (v MMPerSecond) MulTime(t Seconds) Millimeters { return Millimeters(v * MMPerSecond(t)) }

// DivTime returns the acceleration reaching v from rest in t.
func (v MMPerSecond) DivTime(t Seconds) MMPerSecond2 { return MMPerSecond2(v / MMPerSecond(t)) }

// Mul scales the velocity by a dimensionless factor.
func (v MMPerSecond) Mul(f float32) MMPerSecond { return v * MMPerSecond(f) }

// Div divides the velocity by a dimensionless factor.
func (v MMPerSecond) Div(f float32) MMPerSecond { return v / MMPerSecond(f) }

// MulTime returns the velocity gained in t at acceleration a.
func (a MMPerSecond2) MulTime(t Seconds) MMPerSecond { return MMPerSecond(a * MMPerSecond2(t)) }

// DivTime returns the jolt reaching a from zero acceleration in t.
func (a MMPerSecond2) DivTime(t Seconds) MMPerSecond3 { return MMPerSecond3(a / MMPerSecond2(t)) }

// Mul scales the acceleration by a dimensionless factor.
func (a MMPerSecond2) Mul(f float32) MMPerSecond2 { return a * MMPerSecond2(f) }

// MulTime returns the acceleration gained in t at jolt j.
func (j MMPerSecond3) MulTime(t Seconds) MMPerSecond2 { return MMPerSecond2(j * MMPerSecond3(t)) }

// Mul scales the jolt by a dimensionless factor.
func (j MMPerSecond3) Mul(f float32) MMPerSecond3 { return j * MMPerSecond3(f) }

// Mul scales the force by a dimensionless factor.
func (f Newtons) Mul(s float32) Newtons { return f * Newtons(s) }

// Sub returns the distance from o to p.
func (p PositionMM) Sub(o PositionMM) Millimeters { return Millimeters(p - o) }

// Add returns the position reached after moving d from p.
func (p PositionMM) Add(d Millimeters) PositionMM { return p + PositionMM(d) }
