// Package metrics collects per-run locomotion statistics. Every metric is a
// sim.Metric; the step counters also listen to the controller's step events.
package metrics

import (
	"github.com/san-kum/creepersim/internal/creeper"
	"github.com/san-kum/creepersim/internal/sim"
)

// Steps counts group steps chosen by the controller.
type Steps struct {
	count int
}

func NewSteps() *Steps { return &Steps{} }

func (s *Steps) Name() string { return "steps" }

func (s *Steps) OnStep(ev creeper.StepEvent) {
	if !ev.Forced {
		s.count++
	}
}

func (s *Steps) Observe(sim.Frame) {}

func (s *Steps) Value() float64 { return float64(s.count) }

func (s *Steps) Reset() { s.count = 0 }

// Alignments counts realignment passes.
type Alignments struct {
	count int
}

func NewAlignments() *Alignments { return &Alignments{} }

func (a *Alignments) Name() string { return "alignments" }

func (a *Alignments) OnStep(ev creeper.StepEvent) {
	if ev.Forced {
		a.count++
	}
}

func (a *Alignments) Observe(sim.Frame) {}

func (a *Alignments) Value() float64 { return float64(a.count) }

func (a *Alignments) Reset() { a.count = 0 }

// Cadence is steps per second of run time.
type Cadence struct {
	steps   int
	elapsed float64
}

func NewCadence() *Cadence { return &Cadence{} }

func (c *Cadence) Name() string { return "cadence" }

func (c *Cadence) OnStep(ev creeper.StepEvent) {
	if !ev.Forced {
		c.steps++
	}
}

func (c *Cadence) Observe(f sim.Frame) { c.elapsed = f.Now }

func (c *Cadence) Value() float64 {
	if c.elapsed <= 0 {
		return 0
	}
	return float64(c.steps) / c.elapsed
}

func (c *Cadence) Reset() { c.steps, c.elapsed = 0, 0 }
