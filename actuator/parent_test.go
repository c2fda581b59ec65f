package actuator

import (
	"context"
	"math"
	"testing"

	"go.viam.com/rdk/logging"
	"go.viam.com/test"

	"stepperact/motion"
	"stepperact/units"
)

func TestGear(t *testing.T) {
	ctx := context.Background()
	ctrl := &fakeController{}
	m := newTestMotor(t, ctrl)
	gear := NewGear(m, 2) // motor turns twice per output turn

	t.Run("distance multiplies into the motor", func(t *testing.T) {
		test.That(t, gear.DriveRelBlocking(ctx, math.Pi, units.FactorMax), test.ShouldBeNil)
		test.That(t, m.Pos(), test.ShouldAlmostEqual, units.PositionRad(2*math.Pi), 1e-3)
		test.That(t, gear.Pos(), test.ShouldAlmostEqual, units.PositionRad(math.Pi), 1e-3)
		test.That(t, len(ctrl.intervals), test.ShouldEqual, 200)
	})

	t.Run("position round trips", func(t *testing.T) {
		p := units.PositionRad(1.25)
		test.That(t, gear.posForParent(gear.posForChild(p)), test.ShouldAlmostEqual, p, 1e-6)
	})

	t.Run("torque divides into the motor", func(t *testing.T) {
		test.That(t, gear.ApplyGenForce(0.2), test.ShouldBeNil)
		test.That(t, m.ForceGen(), test.ShouldAlmostEqual, units.NewtonMeters(0.1), 1e-6)
		test.That(t, gear.ForceGen(), test.ShouldAlmostEqual, units.NewtonMeters(0.2), 1e-6)
	})

	t.Run("inertia divides by the ratio squared", func(t *testing.T) {
		test.That(t, gear.ApplyInertia(4e-5), test.ShouldBeNil)
		test.That(t, m.Inertia(), test.ShouldAlmostEqual, units.KgMeter2(1e-5), 1e-9)
		test.That(t, gear.Inertia(), test.ShouldAlmostEqual, units.KgMeter2(4e-5), 1e-9)
	})

	t.Run("step distance shrinks at the output", func(t *testing.T) {
		test.That(t, gear.StepDistance(), test.ShouldAlmostEqual, m.StepDistance().Div(2), 1e-7)
	})

	t.Run("limits convert", func(t *testing.T) {
		lim := units.PositionRad(1)
		gear.SetPosLimits(nil, &lim)
		test.That(t, *m.LimitMax(), test.ShouldAlmostEqual, units.PositionRad(2), 1e-6)
		test.That(t, *gear.LimitMax(), test.ShouldAlmostEqual, units.PositionRad(1), 1e-6)
		gear.OverwritePosLimits(nil, nil)
	})
}

func TestLinearAxis(t *testing.T) {
	ctx := context.Background()
	ctrl := &fakeController{}
	m := newTestMotor(t, ctrl)
	axis := NewLinearAxis(m, 2.0) // 2 mm of travel per radian

	t.Run("travel converts to motor angle", func(t *testing.T) {
		test.That(t, axis.DriveRelBlocking(ctx, 10, units.FactorMax), test.ShouldBeNil)
		test.That(t, m.Pos(), test.ShouldAlmostEqual, units.PositionRad(5), 2e-2)
		test.That(t, axis.Pos(), test.ShouldAlmostEqual, units.PositionMM(10), 4e-2)
	})

	t.Run("position round trips", func(t *testing.T) {
		p := units.PositionMM(7.5)
		test.That(t, axis.posForParent(axis.posForChild(p)), test.ShouldAlmostEqual, p, 1e-5)
	})

	t.Run("force converts through meters", func(t *testing.T) {
		test.That(t, axis.ApplyGenForce(units.Newtons(10)), test.ShouldBeNil)
		// 10 N at 2 mm/rad is 0.02 Nm.
		test.That(t, m.ForceGen(), test.ShouldAlmostEqual, units.NewtonMeters(0.02), 1e-6)
		test.That(t, axis.ForceGen(), test.ShouldAlmostEqual, units.Newtons(10), 1e-4)
	})

	t.Run("mass reflects by the ratio squared", func(t *testing.T) {
		test.That(t, axis.ApplyMass(2), test.ShouldBeNil)
		// 2 kg * (0.002 m)^2
		test.That(t, m.Inertia(), test.ShouldAlmostEqual, units.KgMeter2(8e-6), 1e-10)
		test.That(t, axis.Mass(), test.ShouldAlmostEqual, units.Kilograms(2), 1e-4)
	})

	t.Run("velocity cap converts", func(t *testing.T) {
		limit := units.MMPerSecond(20)
		test.That(t, axis.SetVelocityMax(&limit), test.ShouldBeNil)
		test.That(t, *m.VelocityMax(), test.ShouldAlmostEqual, units.RadPerSecond(10), 1e-5)
		test.That(t, *axis.VelocityMax(), test.ShouldAlmostEqual, units.MMPerSecond(20), 1e-4)
		test.That(t, axis.SetVelocityMax(nil), test.ShouldBeNil)
	})
}

func TestConveyor(t *testing.T) {
	ctx := context.Background()
	ctrl := &fakeController{}
	m := newTestMotor(t, ctrl)
	conveyor := NewConveyor(m, 15) // 15 mm roll radius

	test.That(t, conveyor.RollRadius(), test.ShouldEqual, units.Millimeters(15))

	test.That(t, conveyor.DriveRelBlocking(ctx, 30, units.FactorMax), test.ShouldBeNil)
	test.That(t, m.Pos(), test.ShouldAlmostEqual, units.PositionRad(2), 2e-2)
	test.That(t, conveyor.Pos(), test.ShouldAlmostEqual, units.PositionMM(30), 0.3)
}

func TestCompoundDecorators(t *testing.T) {
	ctx := context.Background()
	ctrl := &fakeController{}
	m := newTestMotor(t, ctrl)

	// A 2:1 gear on the motor, a 1.273 mm/rad spindle on the gear.
	gear := NewGear(m, 2)
	axis := NewLinearAxis(gear, 1.273)

	test.That(t, axis.DriveRelBlocking(ctx, 5, units.FactorMax), test.ShouldBeNil)

	// 5 mm / 1.273 mm/rad * 2 at the motor.
	expected := 5.0 / 1.273 * 2.0
	test.That(t, m.Pos(), test.ShouldAlmostEqual, units.PositionRad(expected), 2e-2)
	test.That(t, axis.Pos(), test.ShouldAlmostEqual, units.PositionMM(5), 4e-2)

	// Ratios compose in the round trip too.
	p := units.PositionMM(3)
	childPos := gear.posForChild(axis.posForChild(p))
	test.That(t, axis.posForParent(gear.posForParent(childPos)), test.ShouldAlmostEqual, p, 1e-5)

	// The chain still exposes the interruptor surface of the motor.
	test.That(t, axis.IntrReason(), test.ShouldBeNil)
}
