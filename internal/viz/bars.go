package viz

import "github.com/charmbracelet/harmonica"

// springField smooths a row of bar heights, one spring state per bar.
type springField struct {
	spring harmonica.Spring
	pos    []float64
	vel    []float64
}

func newSpringField(fps int, frequency, damping float64) springField {
	return springField{spring: harmonica.NewSpring(harmonica.FPS(fps), frequency, damping)}
}

func (s *springField) resize(n int) {
	if len(s.pos) == n {
		return
	}
	s.pos = make([]float64, n)
	s.vel = make([]float64, n)
}

func (s *springField) step(i int, target float64) float64 {
	p, v := s.spring.Update(s.pos[i], s.vel[i], target)
	s.pos[i] = p
	s.vel[i] = v
	return p
}

// Downsample folds src into n bars, each the max of its slice.
func Downsample(src []float64, n int) []float64 {
	if n <= 0 || len(src) == 0 {
		return nil
	}
	out := make([]float64, n)
	for i := range out {
		lo := i * len(src) / n
		hi := max(lo+1, (i+1)*len(src)/n)
		for _, v := range src[lo:min(hi, len(src))] {
			out[i] = max(out[i], v)
		}
	}
	return out
}

// smoothBars resizes the field to targets and advances every spring once.
func (s *springField) smoothBars(targets []float64) []float64 {
	s.resize(len(targets))
	out := make([]float64, len(targets))
	for i, t := range targets {
		out[i] = s.step(i, t)
	}
	return out
}
