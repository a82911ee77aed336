package metrics

import (
	"math"

	"github.com/san-kum/creepersim/internal/sim"
)

// Sampler reads one value per frame.
type Sampler func() float64

// MaxLag tracks the largest sampled distance, usually body to end point.
type MaxLag struct {
	sample Sampler
	max    float64
}

func NewMaxLag(sample Sampler) *MaxLag { return &MaxLag{sample: sample} }

func (m *MaxLag) Name() string { return "max_lag" }

func (m *MaxLag) Observe(sim.Frame) { m.max = math.Max(m.max, m.sample()) }

func (m *MaxLag) Value() float64 { return m.max }

func (m *MaxLag) Reset() { m.max = 0 }

type MeanLag struct {
	sample  Sampler
	total   float64
	samples int
}

func NewMeanLag(sample Sampler) *MeanLag { return &MeanLag{sample: sample} }

func (m *MeanLag) Name() string { return "mean_lag" }

func (m *MeanLag) Observe(sim.Frame) {
	m.total += m.sample()
	m.samples++
}

func (m *MeanLag) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.total / float64(m.samples)
}

func (m *MeanLag) Reset() { m.total, m.samples = 0, 0 }

// Reach is the fraction of frames in which every sampled leg distance stayed
// under threshold.
type Reach struct {
	legs       func() []float64
	threshold  float64
	violations int
	samples    int
}

func NewReach(legs func() []float64, threshold float64) *Reach {
	return &Reach{legs: legs, threshold: threshold}
}

func (r *Reach) Name() string { return "reach" }

func (r *Reach) Observe(sim.Frame) {
	r.samples++
	for _, d := range r.legs() {
		if d > r.threshold {
			r.violations++
			break
		}
	}
}

func (r *Reach) Value() float64 {
	if r.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(r.violations)/float64(r.samples)
}

func (r *Reach) Reset() { r.violations, r.samples = 0, 0 }
