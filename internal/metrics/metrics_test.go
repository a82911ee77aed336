package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/creepersim/internal/creeper"
	"github.com/san-kum/creepersim/internal/sim"
)

func TestStepCounters(t *testing.T) {
	steps, aligns, cadence := NewSteps(), NewAlignments(), NewCadence()
	events := []creeper.StepEvent{
		{Time: 0.1, Group: 0},
		{Time: 0.3, Group: 1},
		{Time: 6, Group: creeper.NoGroup, Forced: true},
		{Time: 6.5, Group: 0},
	}
	for _, ev := range events {
		steps.OnStep(ev)
		aligns.OnStep(ev)
		cadence.OnStep(ev)
	}
	cadence.Observe(sim.Frame{Now: 6})

	if steps.Value() != 3 {
		t.Errorf("expected 3 steps, got %v", steps.Value())
	}
	if aligns.Value() != 1 {
		t.Errorf("expected 1 alignment, got %v", aligns.Value())
	}
	if cadence.Value() != 0.5 {
		t.Errorf("expected cadence 0.5, got %v", cadence.Value())
	}

	steps.Reset()
	aligns.Reset()
	cadence.Reset()
	if steps.Value() != 0 || aligns.Value() != 0 || cadence.Value() != 0 {
		t.Error("reset should zero the counters")
	}
}

func TestLagMetrics(t *testing.T) {
	samples := []float64{0.5, 2, 1.5}
	i := 0
	next := func() float64 { v := samples[i%len(samples)]; return v }

	maxLag, meanLag := NewMaxLag(next), NewMeanLag(next)
	for i = 0; i < len(samples); i++ {
		maxLag.Observe(sim.Frame{})
		meanLag.Observe(sim.Frame{})
	}

	if maxLag.Value() != 2 {
		t.Errorf("max lag %v", maxLag.Value())
	}
	if math.Abs(meanLag.Value()-4.0/3) > 1e-12 {
		t.Errorf("mean lag %v", meanLag.Value())
	}
}

func TestReach(t *testing.T) {
	frames := [][]float64{
		{0.1, 0.2},
		{0.1, 0.9},
		{0.3, 0.3},
		{0.0, 0.0},
	}
	i := 0
	r := NewReach(func() []float64 { return frames[i] }, 0.5)
	if r.Value() != 1 {
		t.Error("no samples should report full reach")
	}
	for i = range frames {
		r.Observe(sim.Frame{})
	}
	if r.Value() != 0.75 {
		t.Errorf("expected 0.75, got %v", r.Value())
	}
}
