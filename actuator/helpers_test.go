package actuator

import (
	"context"

	"stepperact/units"
)

// fakeController records the commanded intervals instead of touching pins.
type fakeController struct {
	dir        units.Direction
	dirChanges int
	intervals  []units.Seconds

	dirErr  error
	stepErr error

	// onStep, if set, runs after each recorded step; used to inject halts
	// mid-drive.
	onStep func(stepIndex int)
}

func (c *fakeController) Direction() units.Direction {
	return c.dir
}

func (c *fakeController) SetDir(ctx context.Context, dir units.Direction) error {
	if c.dirErr != nil {
		return c.dirErr
	}
	c.dir = dir
	c.dirChanges++
	return nil
}

func (c *fakeController) Step(ctx context.Context, duration units.Seconds) error {
	if c.stepErr != nil {
		return c.stepErr
	}
	c.intervals = append(c.intervals, duration)
	if c.onStep != nil {
		c.onStep(len(c.intervals))
	}
	return nil
}

// drain pulls the builder dry, up to limit intervals.
func drain(b StepperBuilder, limit int) []units.Seconds {
	var out []units.Seconds
	for i := 0; i < limit; i++ {
		interval, ok := b.Next()
		if !ok {
			break
		}
		out = append(out, interval)
	}
	return out
}
