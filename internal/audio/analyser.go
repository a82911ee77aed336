// Package audio turns a stream of stereo samples into the loudness, FFT and
// spectrum buffers that cursor effects react to.
package audio

import (
	"math"
	"math/cmplx"
	"sync"

	"github.com/gopxl/beep"
	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
	"github.com/san-kum/creepersim/internal/logger"
	"github.com/san-kum/creepersim/internal/setting"
	"go.uber.org/zap"
)

const (
	// RawSampleCount is enough to show the waveform without visible tearing.
	RawSampleCount = 256
	// FFTSize is the transform length; only the lower half is published.
	FFTSize = 4096
	// SpectrumCount bars are plenty for a cursor-sized display.
	SpectrumCount = 128

	DefaultSampleRate = beep.SampleRate(44100)

	minSpectrumHz  = 20.0
	maxSpectrumHz  = 20000.0
	silenceEpsilon = 1e-6
)

// CalculateLoudness approximates perceived loudness as the square root of the
// mean absolute sample value.
func CalculateLoudness(raw []float64) float64 {
	if len(raw) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range raw {
		sum += math.Abs(v)
	}
	return math.Sqrt(sum / float64(len(raw)))
}

// Analyser keeps the most recent FFTSize mono samples and republishes the
// derived buffers after every Process call. Process may run on its own
// goroutine; subscribers receive private copies.
type Analyser struct {
	rate beep.SampleRate

	mu       sync.Mutex
	history  []float64
	raw      []float64
	fftData  []float64
	spectrum []float64
	loudness float64
	silent   bool

	RawSampleDataChanged setting.Bus[[]float64]
	FFTDataChanged       setting.Bus[[]float64]
	SpectrumDataChanged  setting.Bus[[]float64]

	log *zap.Logger
}

func NewAnalyser(rate beep.SampleRate) *Analyser {
	if rate <= 0 {
		rate = DefaultSampleRate
	}
	return &Analyser{
		rate:     rate,
		history:  make([]float64, FFTSize),
		raw:      make([]float64, RawSampleCount),
		fftData:  make([]float64, FFTSize/2),
		spectrum: make([]float64, SpectrumCount),
		silent:   true,
		log:      logger.Named("audio"),
	}
}

func (a *Analyser) SampleRate() beep.SampleRate { return a.rate }

// Process appends stereo frames (averaged to mono) and publishes fresh
// buffers, or zeroed defaults if the latest raw window is silent. It reports
// whether the data changed.
func (a *Analyser) Process(frames [][2]float64) bool {
	if len(frames) == 0 {
		return false
	}

	a.mu.Lock()
	a.push(frames)
	copy(a.raw, a.history[FFTSize-RawSampleCount:])

	silent := true
	for _, v := range a.raw {
		if math.Abs(v) > silenceEpsilon {
			silent = false
			break
		}
	}
	if !silent {
		a.analyse()
		a.loudness = CalculateLoudness(a.raw)
	} else {
		clear(a.fftData)
		clear(a.spectrum)
		a.loudness = 0
	}
	if silent != a.silent {
		a.log.Debug("audio input state changed", zap.Bool("silent", silent))
	}
	a.silent = silent

	raw := append([]float64(nil), a.raw...)
	fftData := append([]float64(nil), a.fftData...)
	spectrum := append([]float64(nil), a.spectrum...)
	a.mu.Unlock()

	if silent {
		a.publish(make([]float64, RawSampleCount), make([]float64, FFTSize/2), make([]float64, SpectrumCount))
		return false
	}
	a.publish(raw, fftData, spectrum)
	return true
}

func (a *Analyser) publish(raw, fftData, spectrum []float64) {
	a.RawSampleDataChanged.Publish(raw)
	a.FFTDataChanged.Publish(fftData)
	a.SpectrumDataChanged.Publish(spectrum)
}

func (a *Analyser) push(frames [][2]float64) {
	if len(frames) >= FFTSize {
		frames = frames[len(frames)-FFTSize:]
	}
	n := len(frames)
	copy(a.history, a.history[n:])
	base := FFTSize - n
	for i, f := range frames {
		a.history[base+i] = (f[0] + f[1]) / 2
	}
}

func (a *Analyser) analyse() {
	buf := append([]float64(nil), a.history...)
	window.Apply(buf, window.Hann)
	spec := fft.FFTReal(buf)

	// a full-scale sine through a Hann window peaks at N/4
	norm := 4.0 / float64(FFTSize)
	for i := range a.fftData {
		a.fftData[i] = math.Min(1, cmplx.Abs(spec[i])*norm)
	}

	binHz := float64(a.rate) / float64(FFTSize)
	top := math.Min(maxSpectrumHz, float64(a.rate)/2)
	ratio := top / minSpectrumHz
	for b := 0; b < SpectrumCount; b++ {
		lo := minSpectrumHz * math.Pow(ratio, float64(b)/SpectrumCount)
		hi := minSpectrumHz * math.Pow(ratio, float64(b+1)/SpectrumCount)
		i0 := int(math.Floor(lo / binHz))
		i1 := int(math.Ceil(hi / binHz))
		if i1 <= i0 {
			i1 = i0 + 1
		}
		peak := 0.0
		for i := i0; i < i1 && i < len(a.fftData); i++ {
			peak = math.Max(peak, a.fftData[i])
		}
		a.spectrum[b] = peak
	}
}

// Loudness of the latest raw window.
func (a *Analyser) Loudness() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loudness
}

func (a *Analyser) Silent() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.silent
}

// Spectrum returns a copy of the latest spectrum bars.
func (a *Analyser) Spectrum() []float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]float64(nil), a.spectrum...)
}

func (a *Analyser) FFTData() []float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]float64(nil), a.fftData...)
}

func (a *Analyser) RawSampleData() []float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]float64(nil), a.raw...)
}

// BandHz returns the lower edge frequency of spectrum bar b.
func (a *Analyser) BandHz(b int) float64 {
	top := math.Min(maxSpectrumHz, float64(a.rate)/2)
	return minSpectrumHz * math.Pow(top/minSpectrumHz, float64(b)/SpectrumCount)
}

// Pull reads up to n frames from s in chunks of chunk frames, processing
// each chunk. It returns the number of frames read; a drained stream ends
// the pull early and its error, if any, is returned.
func (a *Analyser) Pull(s beep.Streamer, n, chunk int) (int, error) {
	if chunk <= 0 {
		chunk = RawSampleCount
	}
	buf := make([][2]float64, chunk)
	read := 0
	for read < n {
		want := min(chunk, n-read)
		got, ok := s.Stream(buf[:want])
		if got > 0 {
			a.Process(buf[:got])
			read += got
		}
		if !ok {
			return read, s.Err()
		}
	}
	return read, nil
}
