package motion

// StepperConfig is the mutable operating point of a stepper motor: the
// supply it runs from and an optional overload current.
type StepperConfig struct {
	// Voltage is the drive supply voltage in volts.
	Voltage float32
	// OverloadCurrent, if non-nil, substitutes the rated current for torque
	// scaling, in amperes.
	OverloadCurrent *float32
}

// Common supply presets, all at rated current.
var (
	ConfigVolt12 = StepperConfig{Voltage: 12.0}
	ConfigVolt24 = StepperConfig{Voltage: 24.0}
	ConfigVolt48 = StepperConfig{Voltage: 48.0}
)

// NewStepperConfig builds a config for the given supply voltage and optional
// overload current.
func NewStepperConfig(voltage float32, overloadCurrent *float32) StepperConfig {
	return StepperConfig{Voltage: voltage, OverloadCurrent: overloadCurrent}
}
