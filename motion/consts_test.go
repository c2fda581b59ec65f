package motion

import (
	"math"
	"testing"

	"go.viam.com/test"

	"stepperact/units"
)

func TestMicroSteps(t *testing.T) {
	for _, n := range []uint16{1, 2, 4, 8, 16, 32, 64, 128, 256} {
		ms, err := NewMicroSteps(n)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, ms.AsUint16(), test.ShouldEqual, n)
	}

	for _, n := range []uint16{0, 3, 5, 6, 100, 257, 300} {
		_, err := NewMicroSteps(n)
		test.That(t, err, test.ShouldNotBeNil)
	}

	test.That(t, func() { MustMicroSteps(3) }, test.ShouldPanic)

	ms, err := ParseMicroSteps("64")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ms, test.ShouldEqual, MicroSteps(64))
	_, err = ParseMicroSteps("nope")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestVelocityCeilings(t *testing.T) {
	consts := Mot17HE15_1504S
	config := ConfigVolt12
	var vars ActuatorVars

	t.Run("inductance limited maximum", func(t *testing.T) {
		vmax := consts.VelocityMax(config.Voltage)
		// pi * 12 / (1.5 * 0.004 * 200)
		test.That(t, vmax, test.ShouldAlmostEqual, units.RadPerSecond(10*math.Pi), 1e-3)
	})

	t.Run("start stop velocity", func(t *testing.T) {
		vss, ok := consts.VelocityStartStop(&vars, &config, DefaultMicroSteps)
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, vss, test.ShouldAlmostEqual, units.RadPerSecond(34.02), 0.05)
	})

	t.Run("start stop shrinks with microstepping", func(t *testing.T) {
		full, _ := consts.VelocityStartStop(&vars, &config, DefaultMicroSteps)
		quarter, ok := consts.VelocityStartStop(&vars, &config, MustMicroSteps(4))
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, quarter, test.ShouldAlmostEqual, full/2, 1e-3)
	})

	t.Run("start stop overload", func(t *testing.T) {
		loaded := ActuatorVars{ForceLoadGen: consts.TorqueStall}
		_, ok := consts.VelocityStartStop(&loaded, &config, DefaultMicroSteps)
		test.That(t, ok, test.ShouldBeFalse)
	})

	t.Run("tau", func(t *testing.T) {
		test.That(t, consts.Tau(12), test.ShouldAlmostEqual, units.Seconds(0.0005), 1e-7)
	})
}

func TestTorqueDyn(t *testing.T) {
	consts := Mot17HE15_1504S
	config := ConfigVolt12

	t.Run("stall torque at rest", func(t *testing.T) {
		test.That(t, consts.TorqueDyn(0, &config), test.ShouldEqual, consts.TorqueStall)
	})

	t.Run("overload current scales stall", func(t *testing.T) {
		overload := float32(3.0)
		cfg := NewStepperConfig(12, &overload)
		test.That(t, consts.TorqueDyn(0, &cfg), test.ShouldAlmostEqual, consts.TorqueStall*2, 1e-5)
	})

	t.Run("even and strictly decreasing in speed", func(t *testing.T) {
		low := consts.TorqueDyn(5, &config)
		neg := consts.TorqueDyn(-5, &config)
		high := consts.TorqueDyn(25, &config)
		test.That(t, neg, test.ShouldEqual, low)
		test.That(t, low, test.ShouldBeLessThan, consts.TorqueStall)
		test.That(t, high, test.ShouldBeLessThan, low)
	})

	t.Run("vanishes towards the velocity ceiling", func(t *testing.T) {
		nearMax := consts.TorqueDyn(consts.VelocityMax(config.Voltage), &config)
		test.That(t, nearMax, test.ShouldBeLessThan, consts.TorqueStall*0.4)
	})
}

func TestAccelerationUnderLoad(t *testing.T) {
	consts := Mot17HE15_1504S
	config := ConfigVolt12

	t.Run("unloaded", func(t *testing.T) {
		var vars ActuatorVars
		accel, ok := consts.AccelerationMaxForVelocity(&vars, &config, 0, units.CW)
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, accel, test.ShouldAlmostEqual,
			consts.TorqueStall.DivInertia(consts.InertiaMotor), 1)
	})

	t.Run("directional load is asymmetric", func(t *testing.T) {
		vars := ActuatorVars{ForceLoadDir: 0.1}
		cw, okCW := consts.AccelerationMaxForVelocity(&vars, &config, 0, units.CW)
		ccw, okCCW := consts.AccelerationMaxForVelocity(&vars, &config, 0, units.CCW)
		test.That(t, okCW, test.ShouldBeTrue)
		test.That(t, okCCW, test.ShouldBeTrue)
		// Positive directional load opposes CW.
		test.That(t, cw, test.ShouldBeLessThan, ccw)
	})

	t.Run("overload", func(t *testing.T) {
		vars := ActuatorVars{ForceLoadGen: consts.TorqueStall + 0.01}
		_, ok := consts.AccelerationMaxForVelocity(&vars, &config, 0, units.CW)
		test.That(t, ok, test.ShouldBeFalse)
	})

	t.Run("load inertia slows it down", func(t *testing.T) {
		var unloaded ActuatorVars
		loaded := ActuatorVars{InertiaLoad: consts.InertiaMotor}
		fast, _ := consts.AccelerationMaxForVelocity(&unloaded, &config, 0, units.CW)
		slow, _ := consts.AccelerationMaxForVelocity(&loaded, &config, 0, units.CW)
		test.That(t, slow, test.ShouldAlmostEqual, fast/2, 1)
	})
}

func TestStepConversions(t *testing.T) {
	consts := Mot17HE15_1504S

	t.Run("step angle", func(t *testing.T) {
		test.That(t, consts.FullStepAngle(), test.ShouldAlmostEqual, units.Radians(2*math.Pi/200), 1e-7)
		test.That(t, consts.StepAngle(MustMicroSteps(4)),
			test.ShouldAlmostEqual, consts.FullStepAngle()/4, 1e-7)
	})

	t.Run("step time and velocity invert each other", func(t *testing.T) {
		ms := MustMicroSteps(2)
		stepTime := consts.StepTime(10, ms)
		test.That(t, consts.Velocity(stepTime, ms), test.ShouldAlmostEqual, units.RadPerSecond(10), 1e-4)
	})

	t.Run("angle step round trips", func(t *testing.T) {
		for _, ms := range []MicroSteps{1, 4, 16} {
			for _, angle := range []units.Radians{0, 0.1, -0.4, math.Pi, -2 * math.Pi} {
				steps := consts.StepsFromAngle(angle, ms)
				test.That(t, consts.AngleFromSteps(steps, ms),
					test.ShouldAlmostEqual, consts.RoundAngleToSteps(angle, ms), 1e-6)
				test.That(t, consts.StepsFromAngleAbs(angle, ms),
					test.ShouldEqual, uint64(math.Abs(float64(steps))))
			}
		}
	})

	t.Run("half revolution is 100 steps", func(t *testing.T) {
		test.That(t, consts.StepsFromAngle(math.Pi, DefaultMicroSteps), test.ShouldEqual, 100)
		test.That(t, consts.StepsFromAngleAbs(-math.Pi, DefaultMicroSteps), test.ShouldEqual, 100)
	})

	t.Run("is in step range", func(t *testing.T) {
		test.That(t, consts.IsInStepRange(100, math.Pi, DefaultMicroSteps), test.ShouldBeTrue)
		test.That(t, consts.IsInStepRange(101, math.Pi, DefaultMicroSteps), test.ShouldBeFalse)
	})
}
