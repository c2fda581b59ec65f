package actuator

import (
	"go.uber.org/atomic"

	"stepperact/units"
)

// StepperState is the share of a motor's state observers may hold on to: the
// absolute position, whether the motor is currently stepping, and the
// cooperative halt/interrupt request flags. All fields are word-sized
// atomics; readers never block the drive loop.
type StepperState struct {
	absPos *atomic.Float32
	moving *atomic.Bool

	shouldHalt      *atomic.Bool
	shouldInterrupt *atomic.Bool
}

// NewStepperState creates a state at position zero, at rest.
func NewStepperState() *StepperState {
	return &StepperState{
		absPos:          atomic.NewFloat32(0),
		moving:          atomic.NewBool(false),
		shouldHalt:      atomic.NewBool(false),
		shouldInterrupt: atomic.NewBool(false),
	}
}

// Pos is the current absolute position.
func (s *StepperState) Pos() units.PositionRad {
	return units.PositionRad(s.absPos.Load())
}

// Moving reports whether the drive loop is currently pulling intervals.
func (s *StepperState) Moving() bool {
	return s.moving.Load()
}

// Halt requests the motor to decelerate to rest. The drive loop honors the
// request at most one step interval later; it is cleared on the next drive
// call.
func (s *StepperState) Halt() {
	s.shouldHalt.Store(true)
}

// Interrupt requests the motor to abort the current movement. Same latency
// and lifetime as Halt.
func (s *StepperState) Interrupt() {
	s.shouldInterrupt.Store(true)
}

func (s *StepperState) storePos(pos units.PositionRad) {
	s.absPos.Store(float32(pos))
}

func (s *StepperState) addPos(delta units.Radians) {
	s.absPos.Add(float32(delta))
}

func (s *StepperState) setMoving(moving bool) {
	s.moving.Store(moving)
}

func (s *StepperState) clearRequests() {
	s.shouldHalt.Store(false)
	s.shouldInterrupt.Store(false)
}

func (s *StepperState) stopRequested() bool {
	return s.shouldHalt.Load() || s.shouldInterrupt.Load()
}
