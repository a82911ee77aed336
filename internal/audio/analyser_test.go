package audio

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gopxl/beep"
	"github.com/san-kum/creepersim/internal/pose"
	"github.com/san-kum/creepersim/internal/sim"
)

func TestCalculateLoudness(t *testing.T) {
	tests := []struct {
		name string
		raw  []float64
		want float64
	}{
		{"empty", nil, 0},
		{"silence", make([]float64, 8), 0},
		{"constant", []float64{0.25, -0.25, 0.25, -0.25}, 0.5},
		{"full scale", []float64{1, -1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateLoudness(tt.raw); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func argmax(xs []float64) int {
	best := 0
	for i, v := range xs {
		if v > xs[best] {
			best = i
		}
	}
	return best
}

func TestAnalyserToneSpectrum(t *testing.T) {
	a := NewAnalyser(DefaultSampleRate)
	var spectra [][]float64
	a.SpectrumDataChanged.Subscribe(func(s []float64) { spectra = append(spectra, s) })

	n, err := a.Pull(Tone(1000, 0.8, WaveSine, DefaultSampleRate, -1), FFTSize, 512)
	if err != nil || n != FFTSize {
		t.Fatalf("Pull = %d, %v", n, err)
	}
	if len(spectra) != FFTSize/512 {
		t.Errorf("expected one publish per chunk, got %d", len(spectra))
	}

	fftData := a.FFTData()
	if len(fftData) != FFTSize/2 {
		t.Fatalf("fft length %d", len(fftData))
	}
	wantBin := 1000.0 * FFTSize / float64(DefaultSampleRate)
	peak := argmax(fftData)
	if math.Abs(float64(peak)-wantBin) > 1.5 {
		t.Errorf("fft peak at bin %d, want ~%.1f", peak, wantBin)
	}
	if fftData[peak] < 0.5 || fftData[peak] > 1 {
		t.Errorf("normalised peak %v out of expected range", fftData[peak])
	}
	for _, v := range fftData {
		if v < 0 || v > 1 {
			t.Fatalf("fft value %v outside [0, 1]", v)
		}
	}

	spec := a.Spectrum()
	if len(spec) != SpectrumCount {
		t.Fatalf("spectrum length %d", len(spec))
	}
	bar := argmax(spec)
	if lo, hi := a.BandHz(bar), a.BandHz(bar+1); 1000 < lo*0.9 || 1000 > hi*1.1 {
		t.Errorf("peak bar %d covers %.0f-%.0f Hz, want 1 kHz", bar, lo, hi)
	}

	if l := a.Loudness(); math.Abs(l-math.Sqrt(0.8*2/math.Pi)) > 0.02 {
		t.Errorf("loudness %v, want ~%v", l, math.Sqrt(0.8*2/math.Pi))
	}
}

func TestAnalyserSilencePublishesDefaults(t *testing.T) {
	a := NewAnalyser(DefaultSampleRate)
	a.Pull(Tone(440, 0.5, WaveSine, DefaultSampleRate, -1), FFTSize, 1024)

	var last []float64
	a.SpectrumDataChanged.Subscribe(func(s []float64) { last = s })

	changed := a.Process(make([][2]float64, RawSampleCount))
	if changed {
		t.Error("silence should not report changed data")
	}
	if !a.Silent() || a.Loudness() != 0 {
		t.Error("analyser should be silent")
	}
	if len(last) != SpectrumCount {
		t.Fatalf("expected default spectrum, got %d values", len(last))
	}
	for _, v := range last {
		if v != 0 {
			t.Fatal("default spectrum must be zero")
		}
	}
}

func TestAnalyserPublishesCopies(t *testing.T) {
	a := NewAnalyser(DefaultSampleRate)
	var got []float64
	a.RawSampleDataChanged.Subscribe(func(raw []float64) {
		got = raw
		raw[0] = 42
	})
	a.Pull(Tone(440, 0.5, WaveSquare, DefaultSampleRate, -1), RawSampleCount, RawSampleCount)

	if len(got) != RawSampleCount {
		t.Fatalf("raw length %d", len(got))
	}
	if a.RawSampleDataChanged.Len() != 1 || a.RawSampleData()[0] == 42 {
		t.Error("subscriber must not alias analyser state")
	}
}

func TestAnalyserAveragesChannels(t *testing.T) {
	a := NewAnalyser(DefaultSampleRate)
	frames := make([][2]float64, RawSampleCount)
	for i := range frames {
		frames[i] = [2]float64{0.5, -0.1}
	}
	a.Process(frames)
	for _, v := range a.RawSampleData() {
		if math.Abs(v-0.2) > 1e-12 {
			t.Fatalf("expected mono average 0.2, got %v", v)
		}
	}
}

func TestPullStopsAtStreamEnd(t *testing.T) {
	a := NewAnalyser(DefaultSampleRate)
	n, err := a.Pull(Tone(440, 0.5, WaveSine, DefaultSampleRate, 300), 1000, 128)
	if err != nil {
		t.Fatal(err)
	}
	if n != 300 {
		t.Errorf("expected 300 frames, got %d", n)
	}

	n, _ = a.Pull(beep.Silence(RawSampleCount), 1000, 32)
	if n != RawSampleCount || !a.Silent() {
		t.Errorf("silence: n=%d silent=%v", n, a.Silent())
	}
}

func TestBounceFollowsLoudness(t *testing.T) {
	arena := pose.NewArena()
	mixer, _ := arena.Add("mixer", pose.None, mgl64.Vec3{}, mgl64.QuatIdent())
	a := NewAnalyser(DefaultSampleRate)
	b := NewBounce(a, arena, mixer, 0.2)

	src := Beat(220, 0.9, 0.5, 0.5, DefaultSampleRate)
	perFrame := int(DefaultSampleRate) / 60
	peak := 0.0
	for i := 0; i < 60; i++ {
		a.Pull(src, perFrame, perFrame)
		b.Update(sim.Frame{Index: int64(i), Dt: 1.0 / 60, Scale: 1})
		peak = math.Max(peak, arena.LocalPosition(mixer)[1])
		if !pose.Finite(arena.LocalPosition(mixer)) {
			t.Fatal("non-finite mixer offset")
		}
	}
	if peak <= 0.05 {
		t.Errorf("mixer should bounce with the beat, peak %v", peak)
	}
}
