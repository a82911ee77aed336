package sim

import "math"

// Clock is a monotonic frame clock. It never runs backwards: negative deltas
// are treated as zero.
type Clock struct {
	now   float64
	index int64
	scale ScaleProvider
}

func NewClock(scale ScaleProvider) *Clock {
	if scale == nil {
		scale = FixedScale(1)
	}
	return &Clock{scale: scale}
}

// Tick advances the clock by dt and returns the new frame.
func (c *Clock) Tick(dt float64) Frame {
	if dt < 0 || math.IsNaN(dt) {
		dt = 0
	}
	c.now += dt
	c.index++
	return Frame{Index: c.index, Now: c.now, Dt: dt, Scale: c.scale.Scale()}
}

// Current returns the last frame without advancing.
func (c *Clock) Current() Frame {
	return Frame{Index: c.index, Now: c.now, Scale: c.scale.Scale()}
}

func (c *Clock) Now() float64 { return c.now }

func (c *Clock) Reset() {
	c.now = 0
	c.index = 0
}
