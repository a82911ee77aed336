package sim

import (
	"errors"
	"fmt"
)

// Frame is the per-tick input every system receives.
type Frame struct {
	Index int64
	Now   float64 // seconds since the clock started, monotonic
	Dt    float64 // seconds since the previous frame, never negative
	Scale float64 // global scale factor (cursor size)
}

// System is anything advanced once per frame.
type System interface {
	Update(f Frame)
}

// SystemFunc adapts a function to System.
type SystemFunc func(f Frame)

func (fn SystemFunc) Update(f Frame) { fn(f) }

// ScaleProvider supplies the global scale factor.
type ScaleProvider interface {
	Scale() float64
}

// FixedScale is a constant ScaleProvider.
type FixedScale float64

func (s FixedScale) Scale() float64 { return float64(s) }

type Metric interface {
	Name() string
	Observe(f Frame)
	Value() float64
	Reset()
}

type Observer interface {
	OnFrame(f Frame)
}

type Config struct {
	Dt       float64
	Duration float64
}

func DefaultConfig() Config {
	return Config{Dt: 1.0 / 60.0, Duration: 10.0}
}

func (c Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", c.Dt)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", c.Duration)
	}
	return nil
}

// Steps is the number of frames a run of this config produces.
func (c Config) Steps() int {
	return int(c.Duration/c.Dt + 1e-9)
}

type Result struct {
	Frames  int
	Times   []float64
	Metrics map[string]float64
}

// ErrCanceled indicates the loop stopped because its context ended.
var ErrCanceled = errors.New("sim: run canceled by context")

// FrameError wraps an error raised while a frame was processed.
type FrameError struct {
	Frame   int64
	Time    float64
	Wrapped error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame %d (t=%.4f): %v", e.Frame, e.Time, e.Wrapped)
}

func (e *FrameError) Unwrap() error { return e.Wrapped }
