package actuator

import (
	"context"
	"math"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"stepperact/motion"
	"stepperact/units"
)

func newTestStartStop(t *testing.T) *StartStopBuilder {
	t.Helper()
	b, err := NewStartStopBuilder(motion.Mot17HE15_1504S, motion.ConfigVolt12)
	test.That(t, err, test.ShouldBeNil)
	return b
}

func TestStartStopPlateau(t *testing.T) {
	b := newTestStartStop(t)

	// The inductance ceiling (10*pi) is below the start-stop window here.
	test.That(t, b.VelocityPossible(), test.ShouldAlmostEqual, units.RadPerSecond(10*math.Pi), 1e-3)
}

func TestStartStopFixedDistance(t *testing.T) {
	ctx := context.Background()
	b := newTestStartStop(t)
	ctrl := &fakeController{}

	t.Run("half revolution is 100 plateau intervals", func(t *testing.T) {
		err := b.SetDriveMode(ctx, FixedDistance(math.Pi, 0, units.FactorMax), ctrl)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, ctrl.dir, test.ShouldEqual, units.CW)

		intervals := drain(b, 1000)
		test.That(t, len(intervals), test.ShouldEqual, 100)
		for _, interval := range intervals {
			test.That(t, interval, test.ShouldAlmostEqual, units.Seconds(0.001), 1e-6)
		}
		test.That(t, b.DriveMode().Kind, test.ShouldEqual, ModeInactive)

		// Exhaustion is sticky.
		_, ok := b.Next()
		test.That(t, ok, test.ShouldBeFalse)
	})

	t.Run("zero distance emits nothing", func(t *testing.T) {
		err := b.SetDriveMode(ctx, FixedDistance(0, 0, units.FactorMax), ctrl)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, drain(b, 10), test.ShouldHaveLength, 0)
	})

	t.Run("single step distance emits exactly one", func(t *testing.T) {
		err := b.SetDriveMode(ctx, FixedDistance(b.StepAngle(), 0, units.FactorMax), ctrl)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, drain(b, 10), test.ShouldHaveLength, 1)
	})

	t.Run("negative distance commands CCW", func(t *testing.T) {
		err := b.SetDriveMode(ctx, FixedDistance(-math.Pi, 0, units.FactorMax), ctrl)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, ctrl.dir, test.ShouldEqual, units.CCW)
		test.That(t, drain(b, 1000), test.ShouldHaveLength, 100)
	})

	t.Run("exit velocity beyond possible is rejected", func(t *testing.T) {
		err := b.SetDriveMode(ctx, FixedDistance(math.Pi, b.VelocityPossible()+1, units.FactorMax), ctrl)
		var tooHigh *VelocityTooHighError
		test.That(t, errors.As(err, &tooHigh), test.ShouldBeTrue)
	})
}

func TestStartStopConstModes(t *testing.T) {
	ctx := context.Background()
	b := newTestStartStop(t)
	ctrl := &fakeController{}

	t.Run("const velocity emits its own step time", func(t *testing.T) {
		err := b.SetDriveMode(ctx, ConstVelocity(-10), ctrl)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, ctrl.dir, test.ShouldEqual, units.CCW)
		test.That(t, b.Direction(), test.ShouldEqual, units.CCW)

		interval, ok := b.Next()
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, interval, test.ShouldAlmostEqual, b.StepAngle().DivVelocity(10), 1e-6)
	})

	t.Run("const velocity beyond possible is rejected", func(t *testing.T) {
		err := b.SetDriveMode(ctx, ConstVelocity(b.VelocityPossible()+0.1), ctrl)
		var tooHigh *VelocityTooHighError
		test.That(t, errors.As(err, &tooHigh), test.ShouldBeTrue)
		test.That(t, tooHigh.Max, test.ShouldAlmostEqual, b.VelocityPossible(), 1e-4)
	})

	t.Run("const factor scales the plateau", func(t *testing.T) {
		err := b.SetDriveMode(ctx, ConstFactor(units.FactorHalf, units.CW), ctrl)
		test.That(t, err, test.ShouldBeNil)

		interval, ok := b.Next()
		test.That(t, ok, test.ShouldBeTrue)
		expected := b.StepAngle().DivVelocity(b.VelocityPossible().Mul(0.5))
		test.That(t, interval, test.ShouldAlmostEqual, expected, 1e-6)
	})

	t.Run("stop is immediate", func(t *testing.T) {
		err := b.SetDriveMode(ctx, Stop(), ctrl)
		test.That(t, err, test.ShouldBeNil)
		_, ok := b.Next()
		test.That(t, ok, test.ShouldBeFalse)
		test.That(t, b.DriveMode().Kind, test.ShouldEqual, ModeInactive)
	})
}

func TestStartStopCaps(t *testing.T) {
	b := newTestStartStop(t)

	t.Run("velocity cap lowers the plateau", func(t *testing.T) {
		limit := units.RadPerSecond(5)
		test.That(t, b.SetVelocityMax(&limit), test.ShouldBeNil)
		test.That(t, b.VelocityPossible(), test.ShouldAlmostEqual, units.RadPerSecond(5), 1e-5)
		test.That(t, b.SetVelocityMax(nil), test.ShouldBeNil)
		test.That(t, b.VelocityMax(), test.ShouldBeNil)
	})

	t.Run("invalid caps are rejected and state kept", func(t *testing.T) {
		before := b.VelocityPossible()

		zero := units.RadPerSecond(0)
		err := b.SetVelocityMax(&zero)
		var badVel *InvalidVelocityError
		test.That(t, errors.As(err, &badVel), test.ShouldBeTrue)

		nan := units.NaN[units.RadPerSecond]()
		test.That(t, b.SetVelocityMax(&nan), test.ShouldNotBeNil)

		badAccel := units.RadPerSecond2(-3)
		var invalidAccel *InvalidAccelerationError
		test.That(t, errors.As(b.SetAccelerationMax(&badAccel), &invalidAccel), test.ShouldBeTrue)

		test.That(t, b.VelocityPossible(), test.ShouldEqual, before)
	})

	t.Run("acceleration cap derives a velocity ceiling", func(t *testing.T) {
		limit := units.RadPerSecond2(1000)
		test.That(t, b.SetAccelerationMax(&limit), test.ShouldBeNil)
		expected := units.RadPerSecond(math.Sqrt(2 * 1000 * float64(b.StepAngle())))
		test.That(t, b.VelocityPossible(), test.ShouldAlmostEqual, expected, 1e-3)
		test.That(t, b.SetAccelerationMax(nil), test.ShouldBeNil)
	})

	t.Run("zero jolt degenerates to no cap", func(t *testing.T) {
		zero := units.RadPerSecond3(0)
		test.That(t, b.SetJoltMax(&zero), test.ShouldBeNil)
		test.That(t, b.JoltMax(), test.ShouldBeNil)
	})

	t.Run("negative jolt is rejected", func(t *testing.T) {
		bad := units.RadPerSecond3(-1)
		var invalidJolt *InvalidJoltError
		test.That(t, errors.As(b.SetJoltMax(&bad), &invalidJolt), test.ShouldBeTrue)
	})

	t.Run("jolt cap bounds the single step ceiling", func(t *testing.T) {
		limit := units.RadPerSecond3(1e6)
		test.That(t, b.SetJoltMax(&limit), test.ShouldBeNil)
		test.That(t, b.AccelerationByMaxJolt(), test.ShouldNotBeNil)
		test.That(t, b.SetJoltMax(nil), test.ShouldBeNil)
	})
}

func TestStartStopOverload(t *testing.T) {
	b := newTestStartStop(t)
	before := b.VelocityPossible()

	err := b.ApplyGenForce(motion.Mot17HE15_1504S.TorqueStall)
	test.That(t, errors.Is(err, ErrOverload), test.ShouldBeTrue)

	// The previously valid plan stays untouched.
	test.That(t, b.Vars().ForceLoadGen, test.ShouldEqual, units.NewtonMeters(0))
	test.That(t, b.VelocityPossible(), test.ShouldEqual, before)

	// A movable load shrinks the window instead.
	test.That(t, b.ApplyGenForce(0.2), test.ShouldBeNil)
	test.That(t, b.VelocityPossible(), test.ShouldBeLessThan, before)

	test.That(t, b.ApplyInertia(motion.Mot17HE15_1504S.InertiaMotor), test.ShouldBeNil)
	test.That(t, b.ApplyDirForce(0.05), test.ShouldBeNil)
}
