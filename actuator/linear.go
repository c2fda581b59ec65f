package actuator

import (
	"context"

	"stepperact/motion"
	"stepperact/units"
)

// linearParent converts between a linear parent surface and a rotary child
// through a constant ratio in millimeters of travel per radian. Torque and
// force conversions go through meters to stay SI.
type linearParent struct {
	child Actuator

	// ratioMM is the travel in millimeters per radian of the child.
	ratioMM float32
}

func (l *linearParent) posForChild(pos units.PositionMM) units.PositionRad {
	return units.PositionRad(float32(pos) / l.ratioMM)
}

func (l *linearParent) posForParent(pos units.PositionRad) units.PositionMM {
	return units.PositionMM(float32(pos) * l.ratioMM)
}

func (l *linearParent) distForChild(dist units.Millimeters) units.Radians {
	return units.Radians(float32(dist) / l.ratioMM)
}

func (l *linearParent) distForParent(dist units.Radians) units.Millimeters {
	return units.Millimeters(float32(dist) * l.ratioMM)
}

func (l *linearParent) velocityForChild(v units.MMPerSecond) units.RadPerSecond {
	return units.RadPerSecond(float32(v) / l.ratioMM)
}

func (l *linearParent) velocityForParent(v units.RadPerSecond) units.MMPerSecond {
	return units.MMPerSecond(float32(v) * l.ratioMM)
}

func (l *linearParent) forceForChild(f units.Newtons) units.NewtonMeters {
	return units.NewtonMeters(float32(f) * l.ratioMM / 1000.0)
}

func (l *linearParent) forceForParent(f units.NewtonMeters) units.Newtons {
	return units.Newtons(float32(f) / l.ratioMM * 1000.0)
}

func (l *linearParent) inertiaForChild(m units.Kilograms) units.KgMeter2 {
	r := l.ratioMM / 1000.0
	return units.KgMeter2(float32(m) * r * r)
}

func (l *linearParent) inertiaForParent(i units.KgMeter2) units.Kilograms {
	r := l.ratioMM / 1000.0
	return units.Kilograms(float32(i) / (r * r))
}

// Position and state.

func (l *linearParent) Pos() units.PositionMM {
	return l.posForParent(l.child.Pos())
}

func (l *linearParent) OverwritePos(pos units.PositionMM) {
	l.child.OverwritePos(l.posForChild(pos))
}

// State shares the child's observable state; its position reads in the
// child's native units.
func (l *linearParent) State() *StepperState {
	return l.child.State()
}

// Kinematic caps.

func (l *linearParent) VelocityMax() *units.MMPerSecond {
	if v := l.child.VelocityMax(); v != nil {
		converted := l.velocityForParent(*v)
		return &converted
	}
	return nil
}

func (l *linearParent) SetVelocityMax(velocity *units.MMPerSecond) error {
	if velocity == nil {
		return l.child.SetVelocityMax(nil)
	}
	converted := l.velocityForChild(*velocity)
	return l.child.SetVelocityMax(&converted)
}

func (l *linearParent) AccelerationMax() *units.MMPerSecond2 {
	if a := l.child.AccelerationMax(); a != nil {
		converted := units.MMPerSecond2(float32(*a) * l.ratioMM)
		return &converted
	}
	return nil
}

func (l *linearParent) SetAccelerationMax(acceleration *units.MMPerSecond2) error {
	if acceleration == nil {
		return l.child.SetAccelerationMax(nil)
	}
	converted := units.RadPerSecond2(float32(*acceleration) / l.ratioMM)
	return l.child.SetAccelerationMax(&converted)
}

func (l *linearParent) JoltMax() *units.MMPerSecond3 {
	if j := l.child.JoltMax(); j != nil {
		converted := units.MMPerSecond3(float32(*j) * l.ratioMM)
		return &converted
	}
	return nil
}

func (l *linearParent) SetJoltMax(jolt *units.MMPerSecond3) error {
	if jolt == nil {
		return l.child.SetJoltMax(nil)
	}
	converted := units.RadPerSecond3(float32(*jolt) / l.ratioMM)
	return l.child.SetJoltMax(&converted)
}

// Position limits.

func (l *linearParent) LimitMin() *units.PositionMM {
	if lim := l.child.LimitMin(); lim != nil {
		converted := l.posForParent(*lim)
		return &converted
	}
	return nil
}

func (l *linearParent) LimitMax() *units.PositionMM {
	if lim := l.child.LimitMax(); lim != nil {
		converted := l.posForParent(*lim)
		return &converted
	}
	return nil
}

func (l *linearParent) limitForChild(limit *units.PositionMM) *units.PositionRad {
	if limit == nil {
		return nil
	}
	converted := l.posForChild(*limit)
	return &converted
}

func (l *linearParent) SetPosLimits(min, max *units.PositionMM) {
	l.child.SetPosLimits(l.limitForChild(min), l.limitForChild(max))
}

func (l *linearParent) OverwritePosLimits(min, max *units.PositionMM) {
	l.child.OverwritePosLimits(l.limitForChild(min), l.limitForChild(max))
}

func (l *linearParent) SetEndpos(pos units.PositionMM) {
	l.child.SetEndpos(l.posForChild(pos))
}

func (l *linearParent) ResolvePosLimitsFor(pos units.PositionMM) units.Millimeters {
	return l.distForParent(l.child.ResolvePosLimitsFor(l.posForChild(pos)))
}

// Drive operations.

func (l *linearParent) DriveRelBlocking(ctx context.Context, relDist units.Millimeters, speed units.Factor) error {
	return l.child.DriveRelBlocking(ctx, l.distForChild(relDist), speed)
}

func (l *linearParent) DriveAbsBlocking(ctx context.Context, pos units.PositionMM, speed units.Factor) error {
	return l.child.DriveAbsBlocking(ctx, l.posForChild(pos), speed)
}

func (l *linearParent) DriveFactor(ctx context.Context, speed units.Factor, direction units.Direction) error {
	return l.child.DriveFactor(ctx, speed, direction)
}

func (l *linearParent) DriveSpeed(ctx context.Context, speed units.MMPerSecond) error {
	return l.child.DriveSpeed(ctx, l.velocityForChild(speed))
}

// Loads, in linear units.

func (l *linearParent) ForceGen() units.Newtons {
	return l.forceForParent(l.child.ForceGen())
}

func (l *linearParent) ForceDir() units.Newtons {
	return l.forceForParent(l.child.ForceDir())
}

func (l *linearParent) Mass() units.Kilograms {
	return l.inertiaForParent(l.child.Inertia())
}

func (l *linearParent) ApplyGenForce(force units.Newtons) error {
	return l.child.ApplyGenForce(l.forceForChild(force))
}

func (l *linearParent) ApplyDirForce(force units.Newtons) error {
	return l.child.ApplyDirForce(l.forceForChild(force))
}

func (l *linearParent) ApplyMass(mass units.Kilograms) error {
	return l.child.ApplyInertia(l.inertiaForChild(mass))
}

// Interruptors.

func (l *linearParent) AddInterruptor(intr Interruptor) {
	l.child.AddInterruptor(intr)
}

func (l *linearParent) IntrReason() *InterruptReason {
	return l.child.IntrReason()
}

// Stepping geometry.

func (l *linearParent) Microsteps() motion.MicroSteps {
	return l.child.Microsteps()
}

func (l *linearParent) SetMicrosteps(microsteps motion.MicroSteps) error {
	return l.child.SetMicrosteps(microsteps)
}

// StepDistance is the travel of a single step.
func (l *linearParent) StepDistance() units.Millimeters {
	return l.distForParent(l.child.StepDistance())
}

func (l *linearParent) Direction() units.Direction {
	return l.child.Direction()
}

// PtpTimeForDistance estimates the travel time between two linear
// positions.
func (l *linearParent) PtpTimeForDistance(from, to units.PositionMM) units.Seconds {
	return l.child.PtpTimeForDistance(l.posForChild(from), l.posForChild(to))
}

// LinearAxis converts a rotary actuator into linear travel through a
// spindle or belt, radius millimeters of travel per radian.
type LinearAxis struct {
	linearParent
}

var (
	_ LinearActuator = (*LinearAxis)(nil)
	_ LinearActuator = (*Conveyor)(nil)
)

// NewLinearAxis wraps the actuator driving the axis. radius is the
// effective travel in millimeters per radian.
func NewLinearAxis(child Actuator, radius units.Millimeters) *LinearAxis {
	return &LinearAxis{linearParent{child: child, ratioMM: float32(radius)}}
}

// Child is the wrapped actuator.
func (a *LinearAxis) Child() Actuator {
	return a.linearParent.child
}

// Radius is the travel per radian.
func (a *LinearAxis) Radius() units.Millimeters {
	return units.Millimeters(a.ratioMM)
}

// Conveyor is a belt driven by a powered roll; its ratio is the roll
// radius, millimeters of belt travel per radian.
type Conveyor struct {
	linearParent
}

// NewConveyor wraps the actuator powering the roll of the given radius in
// millimeters.
func NewConveyor(child Actuator, rollRadius units.Millimeters) *Conveyor {
	return &Conveyor{linearParent{child: child, ratioMM: float32(rollRadius)}}
}

// Child is the wrapped actuator.
func (c *Conveyor) Child() Actuator {
	return c.linearParent.child
}

// RollRadius is the powered roll radius in millimeters.
func (c *Conveyor) RollRadius() units.Millimeters {
	return units.Millimeters(c.ratioMM)
}
