package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// PowerSpectrum returns |X[k]| for the first half of the FFT of data after
// removing its mean and applying a Hann window.
func PowerSpectrum(data []float64) []float64 {
	if len(data) < 2 {
		return nil
	}
	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	buf := make([]float64, len(data))
	for i, v := range data {
		buf[i] = v - mean
	}
	window.Apply(buf, window.Hann)

	spec := fft.FFTReal(buf)
	ps := make([]float64, len(spec)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spec[i])
	}
	return ps
}

// DominantFrequency is the frequency in Hz of the strongest non-DC bin of a
// series sampled every dt seconds. It returns 0 for flat or short series.
func DominantFrequency(data []float64, dt float64) float64 {
	ps := PowerSpectrum(data)
	if len(ps) < 2 || dt <= 0 {
		return 0
	}
	best, peak := 0, 0.0
	for k := 1; k < len(ps); k++ {
		if ps[k] > peak {
			best, peak = k, ps[k]
		}
	}
	if peak < 1e-12 {
		return 0
	}
	return float64(best) / (float64(len(data)) * dt)
}

// StepSeries turns step times into an impulse train sampled every dt, the
// usual input for DominantFrequency when looking for cadence.
func StepSeries(times []float64, dt, duration float64) []float64 {
	if dt <= 0 || duration <= 0 {
		return nil
	}
	n := int(math.Ceil(duration / dt))
	out := make([]float64, n)
	for _, t := range times {
		i := int(t / dt)
		if i >= 0 && i < n {
			out[i] = 1
		}
	}
	return out
}
