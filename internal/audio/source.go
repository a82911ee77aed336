package audio

import (
	"math"
	"math/rand"

	"github.com/gopxl/beep"
)

// WaveType selects a Tone waveform.
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveNoise
)

// tone is an endless (or sample-bounded) oscillator.
type tone struct {
	freq      float64
	amplitude float64
	wave      WaveType
	rate      beep.SampleRate
	phase     float64
	remaining int
	rng       *rand.Rand
}

// Tone returns a streamer of the given waveform. samples <= 0 streams forever.
func Tone(freq, amplitude float64, wave WaveType, rate beep.SampleRate, samples int) beep.Streamer {
	return &tone{
		freq:      freq,
		amplitude: amplitude,
		wave:      wave,
		rate:      rate,
		remaining: samples,
		rng:       rand.New(rand.NewSource(1)),
	}
}

func (t *tone) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if t.remaining == 0 {
			return i, i > 0
		}
		var v float64
		switch t.wave {
		case WaveSquare:
			v = 1
			if t.phase >= 0.5 {
				v = -1
			}
		case WaveNoise:
			v = t.rng.Float64()*2 - 1
		default:
			v = math.Sin(2 * math.Pi * t.phase)
		}
		v *= t.amplitude
		samples[i][0], samples[i][1] = v, v

		t.phase += t.freq / float64(t.rate)
		t.phase -= math.Floor(t.phase)
		if t.remaining > 0 {
			t.remaining--
		}
	}
	return len(samples), true
}

func (t *tone) Err() error { return nil }

// Beat pulses a tone on and off: on for duty of every period seconds.
// It is the test source for audio-reactive effects.
func Beat(freq, amplitude, period, duty float64, rate beep.SampleRate) beep.Streamer {
	src := Tone(freq, amplitude, WaveSine, rate, -1)
	pos := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		n, ok := src.Stream(samples)
		for i := 0; i < n; i++ {
			t := float64(pos) / float64(rate)
			if math.Mod(t, period) >= duty*period {
				samples[i] = [2]float64{}
			}
			pos++
		}
		return n, ok
	})
}
