package sim

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
)

type countingSystem struct {
	frames []Frame
}

func (c *countingSystem) Update(f Frame) { c.frames = append(c.frames, f) }

type meanDtMetric struct {
	count int
	sum   float64
}

func (m *meanDtMetric) Name() string    { return "mean_dt" }
func (m *meanDtMetric) Observe(f Frame) { m.count++; m.sum += f.Dt }
func (m *meanDtMetric) Value() float64 {
	if m.count == 0 {
		return 0
	}
	return m.sum / float64(m.count)
}
func (m *meanDtMetric) Reset() { m.count, m.sum = 0, 0 }

func TestLoopRun(t *testing.T) {
	sys := &countingSystem{}
	loop := New(NewClock(FixedScale(2)))
	loop.AddSystem(sys)
	loop.AddMetric(&meanDtMetric{})

	result, err := loop.Run(context.Background(), Config{Dt: 0.1, Duration: 1.0})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.Frames != 10 {
		t.Errorf("expected 10 frames, got %d", result.Frames)
	}
	if len(sys.frames) != 10 {
		t.Fatalf("system saw %d frames", len(sys.frames))
	}
	last := sys.frames[len(sys.frames)-1]
	if math.Abs(last.Now-1.0) > 1e-9 {
		t.Errorf("last frame time = %f, want 1.0", last.Now)
	}
	if last.Scale != 2 {
		t.Errorf("scale = %f, want 2", last.Scale)
	}
	if math.Abs(result.Metrics["mean_dt"]-0.1) > 1e-12 {
		t.Errorf("mean_dt = %f", result.Metrics["mean_dt"])
	}
}

func TestLoopInvalidConfig(t *testing.T) {
	loop := New(nil)

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero dt", Config{Dt: 0, Duration: 1.0}},
		{"negative dt", Config{Dt: -0.1, Duration: 1.0}},
		{"zero duration", Config{Dt: 0.1, Duration: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := loop.Run(context.Background(), tt.cfg); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoopCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := New(nil).Run(ctx, Config{Dt: 0.1, Duration: 1.0})
	if !errors.Is(err, ErrCanceled) {
		t.Fatalf("expected ErrCanceled, got %v", err)
	}
	if result.Frames != 0 {
		t.Errorf("expected no frames after cancel, got %d", result.Frames)
	}
}

func TestRunWithCallbackStops(t *testing.T) {
	loop := New(nil)
	seen := 0
	err := loop.RunWithCallback(context.Background(), Config{Dt: 0.01, Duration: 1}, func(f Frame) bool {
		seen++
		return f.Index < 5
	})
	if err != nil {
		t.Fatal(err)
	}
	if seen != 5 {
		t.Errorf("callback ran %d times, want 5", seen)
	}
}

func TestClockNeverRunsBackwards(t *testing.T) {
	c := NewClock(nil)
	c.Tick(0.5)
	f := c.Tick(-1)
	if f.Dt != 0 || f.Now != 0.5 {
		t.Errorf("negative dt produced %+v", f)
	}
	f = c.Tick(math.NaN())
	if f.Dt != 0 || f.Now != 0.5 {
		t.Errorf("NaN dt produced %+v", f)
	}
	if f.Index != 3 {
		t.Errorf("index = %d, want 3", f.Index)
	}
}

func TestRunBatch(t *testing.T) {
	var total atomic.Int64
	err := RunBatch(context.Background(), 8, func(ctx context.Context, idx int) error {
		loop := New(nil)
		res, err := loop.Run(ctx, Config{Dt: 0.1, Duration: 1})
		if err != nil {
			return err
		}
		total.Add(int64(res.Frames))
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if total.Load() != 80 {
		t.Errorf("total frames = %d, want 80", total.Load())
	}

	boom := errors.New("boom")
	err = RunBatch(context.Background(), 4, func(ctx context.Context, idx int) error {
		if idx == 2 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected batch error, got %v", err)
	}
}

func TestFrameError(t *testing.T) {
	err := &FrameError{Frame: 150, Time: 1.5, Wrapped: ErrCanceled}
	want := "frame 150 (t=1.5000): sim: run canceled by context"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, ErrCanceled) {
		t.Error("FrameError should unwrap")
	}
}
