package units

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestAlgebra(t *testing.T) {
	t.Run("distance over time", func(t *testing.T) {
		v := Radians(2.0).DivTime(Seconds(0.5))
		test.That(t, v, test.ShouldEqual, RadPerSecond(4.0))
	})

	t.Run("velocity times time", func(t *testing.T) {
		d := RadPerSecond(3.0).MulTime(Seconds(2.0))
		test.That(t, d, test.ShouldEqual, Radians(6.0))
	})

	t.Run("velocity over time", func(t *testing.T) {
		a := RadPerSecond(10.0).DivTime(Seconds(2.0))
		test.That(t, a, test.ShouldEqual, RadPerSecond2(5.0))
	})

	t.Run("acceleration chain to jolt", func(t *testing.T) {
		j := RadPerSecond2(9.0).DivTime(Seconds(3.0))
		test.That(t, j, test.ShouldEqual, RadPerSecond3(3.0))
	})

	t.Run("force over inertia", func(t *testing.T) {
		a := NewtonMeters(0.5).DivInertia(KgMeter2(0.25))
		test.That(t, a, test.ShouldEqual, RadPerSecond2(2.0))
	})

	t.Run("positions difference to distance", func(t *testing.T) {
		d := PositionRad(5.0).Sub(PositionRad(1.5))
		test.That(t, d, test.ShouldEqual, Radians(3.5))
	})

	t.Run("position plus distance", func(t *testing.T) {
		p := PositionRad(1.0).Add(Radians(-2.5))
		test.That(t, p, test.ShouldEqual, PositionRad(-1.5))
	})

	t.Run("linear mirror", func(t *testing.T) {
		v := Millimeters(8.0).DivTime(Seconds(2.0))
		test.That(t, v, test.ShouldEqual, MMPerSecond(4.0))
		test.That(t, PositionMM(3.0).Sub(PositionMM(1.0)), test.ShouldEqual, Millimeters(2.0))
	})
}

func TestHelpers(t *testing.T) {
	test.That(t, Abs(RadPerSecond(-2)), test.ShouldEqual, RadPerSecond(2))
	test.That(t, Min(Seconds(1), Seconds(2)), test.ShouldEqual, Seconds(1))
	test.That(t, Max(Radians(1), Radians(2)), test.ShouldEqual, Radians(2))

	test.That(t, IsFinite(RadPerSecond(1)), test.ShouldBeTrue)
	test.That(t, IsFinite(Inf[RadPerSecond]()), test.ShouldBeFalse)
	test.That(t, IsFinite(NaN[RadPerSecond]()), test.ShouldBeFalse)

	test.That(t, IsNormal(RadPerSecond(1)), test.ShouldBeTrue)
	test.That(t, IsNormal(RadPerSecond(0)), test.ShouldBeFalse)
	test.That(t, IsNormal(NaN[RadPerSecond]()), test.ShouldBeFalse)
	test.That(t, IsNormal(Inf[RadPerSecond]()), test.ShouldBeFalse)

	test.That(t, Ratio(Radians(math.Pi), Radians(math.Pi/100)), test.ShouldAlmostEqual, 100, 1e-3)

	test.That(t, math.IsNaN(float64(NaN[Seconds]())), test.ShouldBeTrue)
	test.That(t, NegInf[Seconds]() < 0, test.ShouldBeTrue)
}

func TestDirection(t *testing.T) {
	test.That(t, DirectionOf(RadPerSecond(1)), test.ShouldEqual, CW)
	test.That(t, DirectionOf(RadPerSecond(-1)), test.ShouldEqual, CCW)
	test.That(t, DirectionOf(Radians(0)), test.ShouldEqual, CW)

	test.That(t, CW.Bool(), test.ShouldBeTrue)
	test.That(t, CCW.Bool(), test.ShouldBeFalse)
	test.That(t, CW.Flip(), test.ShouldEqual, CCW)
	test.That(t, CW.Sign(), test.ShouldEqual, float32(1))
	test.That(t, CCW.Sign(), test.ShouldEqual, float32(-1))
}

func TestFactor(t *testing.T) {
	f, err := NewFactor(0.25)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, f, test.ShouldEqual, Factor(0.25))

	_, err = NewFactor(1.5)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewFactor(-0.1)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewFactor(float32(math.NaN()))
	test.That(t, err, test.ShouldNotBeNil)

	test.That(t, func() { MustFactor(2) }, test.ShouldPanic)
	test.That(t, MustFactor(1), test.ShouldEqual, FactorMax)
}
