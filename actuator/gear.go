package actuator

import (
	"context"

	"stepperact/motion"
	"stepperact/units"
)

// Gear wraps a rotary actuator behind a mechanical transmission. All
// quantities of the wrapped surface are expressed at the gear's output
// shaft: distances divide down to the motor by the transmission, torques
// multiply up, inertias by the square.
type Gear struct {
	child Actuator

	// ratio is the output angle per motor angle; a 2:1 reduction stores
	// 0.5.
	ratio float32
}

var _ Actuator = (*Gear)(nil)

// NewGear wraps an actuator behind a reduction. reduction is the
// conventional gear ratio: motor angle per output angle, 2 meaning the
// motor turns twice per output turn.
func NewGear(child Actuator, reduction float32) *Gear {
	return &Gear{child: child, ratio: 1 / reduction}
}

// Child is the wrapped actuator.
func (g *Gear) Child() Actuator {
	return g.child
}

// Ratio is the output angle per motor angle.
func (g *Gear) Ratio() float32 {
	return g.ratio
}

// Conversions between the output shaft (parent) and the motor (child).

func (g *Gear) posForChild(pos units.PositionRad) units.PositionRad {
	return units.PositionRad(float32(pos) / g.ratio)
}

func (g *Gear) posForParent(pos units.PositionRad) units.PositionRad {
	return units.PositionRad(float32(pos) * g.ratio)
}

func (g *Gear) distForChild(dist units.Radians) units.Radians { return dist.Div(g.ratio) }
func (g *Gear) distForParent(dist units.Radians) units.Radians { return dist.Mul(g.ratio) }

func (g *Gear) velocityForChild(v units.RadPerSecond) units.RadPerSecond { return v.Div(g.ratio) }
func (g *Gear) velocityForParent(v units.RadPerSecond) units.RadPerSecond { return v.Mul(g.ratio) }

func (g *Gear) forceForChild(f units.NewtonMeters) units.NewtonMeters { return f.Mul(g.ratio) }
func (g *Gear) forceForParent(f units.NewtonMeters) units.NewtonMeters { return f.Mul(1 / g.ratio) }

func (g *Gear) inertiaForChild(i units.KgMeter2) units.KgMeter2 { return i.Mul(g.ratio * g.ratio) }
func (g *Gear) inertiaForParent(i units.KgMeter2) units.KgMeter2 {
	return i.Mul(1 / (g.ratio * g.ratio))
}

// Position and state.

func (g *Gear) Pos() units.PositionRad {
	return g.posForParent(g.child.Pos())
}

func (g *Gear) OverwritePos(pos units.PositionRad) {
	g.child.OverwritePos(g.posForChild(pos))
}

// State shares the child's observable state; its position reads in the
// child's native units.
func (g *Gear) State() *StepperState {
	return g.child.State()
}

// Kinematic caps.

func (g *Gear) VelocityMax() *units.RadPerSecond {
	if v := g.child.VelocityMax(); v != nil {
		converted := g.velocityForParent(*v)
		return &converted
	}
	return nil
}

func (g *Gear) SetVelocityMax(velocity *units.RadPerSecond) error {
	if velocity == nil {
		return g.child.SetVelocityMax(nil)
	}
	converted := g.velocityForChild(*velocity)
	return g.child.SetVelocityMax(&converted)
}

func (g *Gear) AccelerationMax() *units.RadPerSecond2 {
	if a := g.child.AccelerationMax(); a != nil {
		converted := units.RadPerSecond2(float32(*a) * g.ratio)
		return &converted
	}
	return nil
}

func (g *Gear) SetAccelerationMax(acceleration *units.RadPerSecond2) error {
	if acceleration == nil {
		return g.child.SetAccelerationMax(nil)
	}
	converted := units.RadPerSecond2(float32(*acceleration) / g.ratio)
	return g.child.SetAccelerationMax(&converted)
}

func (g *Gear) JoltMax() *units.RadPerSecond3 {
	if j := g.child.JoltMax(); j != nil {
		converted := units.RadPerSecond3(float32(*j) * g.ratio)
		return &converted
	}
	return nil
}

func (g *Gear) SetJoltMax(jolt *units.RadPerSecond3) error {
	if jolt == nil {
		return g.child.SetJoltMax(nil)
	}
	converted := units.RadPerSecond3(float32(*jolt) / g.ratio)
	return g.child.SetJoltMax(&converted)
}

// Position limits.

func (g *Gear) LimitMin() *units.PositionRad {
	if l := g.child.LimitMin(); l != nil {
		converted := g.posForParent(*l)
		return &converted
	}
	return nil
}

func (g *Gear) LimitMax() *units.PositionRad {
	if l := g.child.LimitMax(); l != nil {
		converted := g.posForParent(*l)
		return &converted
	}
	return nil
}

func (g *Gear) SetPosLimits(min, max *units.PositionRad) {
	g.child.SetPosLimits(g.limitForChild(min), g.limitForChild(max))
}

func (g *Gear) OverwritePosLimits(min, max *units.PositionRad) {
	g.child.OverwritePosLimits(g.limitForChild(min), g.limitForChild(max))
}

func (g *Gear) limitForChild(limit *units.PositionRad) *units.PositionRad {
	if limit == nil {
		return nil
	}
	converted := g.posForChild(*limit)
	return &converted
}

func (g *Gear) SetEndpos(pos units.PositionRad) {
	g.child.SetEndpos(g.posForChild(pos))
}

func (g *Gear) ResolvePosLimitsFor(pos units.PositionRad) units.Radians {
	return g.distForParent(g.child.ResolvePosLimitsFor(g.posForChild(pos)))
}

// Drive operations.

func (g *Gear) DriveRelBlocking(ctx context.Context, relDist units.Radians, speed units.Factor) error {
	return g.child.DriveRelBlocking(ctx, g.distForChild(relDist), speed)
}

func (g *Gear) DriveAbsBlocking(ctx context.Context, pos units.PositionRad, speed units.Factor) error {
	return g.child.DriveAbsBlocking(ctx, g.posForChild(pos), speed)
}

func (g *Gear) DriveFactor(ctx context.Context, speed units.Factor, direction units.Direction) error {
	return g.child.DriveFactor(ctx, speed, direction)
}

func (g *Gear) DriveSpeed(ctx context.Context, speed units.RadPerSecond) error {
	return g.child.DriveSpeed(ctx, g.velocityForChild(speed))
}

// Stepping geometry.

func (g *Gear) Microsteps() motion.MicroSteps {
	return g.child.Microsteps()
}

func (g *Gear) SetMicrosteps(microsteps motion.MicroSteps) error {
	return g.child.SetMicrosteps(microsteps)
}

func (g *Gear) StepDistance() units.Radians {
	return g.distForParent(g.child.StepDistance())
}

func (g *Gear) Direction() units.Direction {
	return g.child.Direction()
}

// Loads.

func (g *Gear) ForceGen() units.NewtonMeters {
	return g.forceForParent(g.child.ForceGen())
}

func (g *Gear) ForceDir() units.NewtonMeters {
	return g.forceForParent(g.child.ForceDir())
}

func (g *Gear) Inertia() units.KgMeter2 {
	return g.inertiaForParent(g.child.Inertia())
}

func (g *Gear) ApplyGenForce(force units.NewtonMeters) error {
	return g.child.ApplyGenForce(g.forceForChild(force))
}

func (g *Gear) ApplyDirForce(force units.NewtonMeters) error {
	return g.child.ApplyDirForce(g.forceForChild(force))
}

func (g *Gear) ApplyInertia(inertia units.KgMeter2) error {
	return g.child.ApplyInertia(g.inertiaForChild(inertia))
}

// Interruptors.

func (g *Gear) AddInterruptor(intr Interruptor) {
	g.child.AddInterruptor(intr)
}

func (g *Gear) IntrReason() *InterruptReason {
	return g.child.IntrReason()
}

// PtpTimeForDistance estimates the travel time between two output-shaft
// positions.
func (g *Gear) PtpTimeForDistance(from, to units.PositionRad) units.Seconds {
	return g.child.PtpTimeForDistance(g.posForChild(from), g.posForChild(to))
}
