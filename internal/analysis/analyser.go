// Package analysis turns time-domain audio into byte-scaled frequency magnitudes.
//
// The scaling follows the usual analyser-node conventions: a Blackman window
// over the newest FFTSize samples, magnitudes normalised by the window
// length, exponential smoothing across calls, and a linear map of the
// [MinDecibels, MaxDecibels] range onto 0-255.
package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/madelynnblue/go-dsp/fft"

	"github.com/tejashwikalptaru/tunescope/internal/domain"
)

// Analyser defaults.
const (
	DefaultSmoothing   = 0.8
	DefaultMinDecibels = -100.0
	DefaultMaxDecibels = -30.0

	MinFFTSize = 32
	MaxFFTSize = 32768
)

// Analyser computes frequency snapshots from sample windows.
// It keeps smoothing state between calls and is not safe for concurrent use.
type Analyser struct {
	fftSize     int
	smoothing   float64
	minDecibels float64
	maxDecibels float64

	window   []float64
	frame    []float64
	smoothed []float64
}

// New creates an analyser with the given window size.
func New(fftSize int) (*Analyser, error) {
	a := &Analyser{
		smoothing:   DefaultSmoothing,
		minDecibels: DefaultMinDecibels,
		maxDecibels: DefaultMaxDecibels,
	}
	if err := a.SetFFTSize(fftSize); err != nil {
		return nil, err
	}
	return a, nil
}

// ValidFFTSize reports whether n is a power of two in [MinFFTSize, MaxFFTSize].
func ValidFFTSize(n int) bool {
	return n >= MinFFTSize && n <= MaxFFTSize && n&(n-1) == 0
}

// SetFFTSize changes the window size and resets the smoothing state.
func (a *Analyser) SetFFTSize(n int) error {
	if !ValidFFTSize(n) {
		return fmt.Errorf("%w: %d", domain.ErrInvalidFFTSize, n)
	}
	if n == a.fftSize {
		a.reset()
		return nil
	}

	a.fftSize = n
	a.window = blackman(n)
	a.frame = make([]float64, n)
	a.smoothed = make([]float64, n/2)
	return nil
}

// FFTSize returns the window size in samples.
func (a *Analyser) FFTSize() int {
	return a.fftSize
}

// FrequencyBinCount returns the number of magnitudes per snapshot.
func (a *Analyser) FrequencyBinCount() int {
	return a.fftSize / 2
}

// ValidSmoothing reports whether tau is a usable time constant.
func ValidSmoothing(tau float64) bool {
	return tau >= 0 && tau < 1
}

// ValidDecibelRange reports whether [minDB, maxDB] can be mapped onto 0-255.
func ValidDecibelRange(minDB, maxDB float64) bool {
	return minDB < maxDB && !math.IsInf(minDB, 0) && !math.IsInf(maxDB, 0)
}

// SetSmoothing sets the time constant in [0, 1); 0 disables smoothing.
func (a *Analyser) SetSmoothing(tau float64) error {
	if !ValidSmoothing(tau) {
		return domain.NewValidationError("smoothing", tau, "must be in [0, 1)")
	}
	a.smoothing = tau
	return nil
}

// SetDecibelRange sets the range mapped onto 0-255.
func (a *Analyser) SetDecibelRange(minDB, maxDB float64) error {
	if !ValidDecibelRange(minDB, maxDB) {
		return domain.NewValidationError("decibel_range", [2]float64{minDB, maxDB}, "min must be below max")
	}
	a.minDecibels = minDB
	a.maxDecibels = maxDB
	return nil
}

func (a *Analyser) reset() {
	clear(a.smoothed)
}

// ByteFrequencyData analyses the newest FFTSize samples and writes
// min(len(dst), FrequencyBinCount()) magnitudes into dst.
// Fewer samples than the window are zero-padded in front.
func (a *Analyser) ByteFrequencyData(samples []float64, dst []byte) {
	n := a.fftSize

	clear(a.frame)
	if len(samples) > n {
		samples = samples[len(samples)-n:]
	}
	copy(a.frame[n-len(samples):], samples)
	for i := range a.frame {
		a.frame[i] *= a.window[i]
	}

	spectrum := fft.FFTReal(a.frame)

	scale := 255 / (a.maxDecibels - a.minDecibels)
	bins := min(len(dst), len(a.smoothed))
	for k := range a.smoothed {
		magnitude := cmplx.Abs(spectrum[k]) / float64(n)
		a.smoothed[k] = a.smoothing*a.smoothed[k] + (1-a.smoothing)*magnitude

		if k >= bins {
			continue
		}
		db := 20 * math.Log10(a.smoothed[k])
		dst[k] = toByte((db - a.minDecibels) * scale)
	}
}

func toByte(v float64) byte {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return byte(v)
	}
}

// blackman returns the classic Blackman window (alpha = 0.16).
func blackman(n int) []float64 {
	const (
		a0 = 0.42
		a1 = 0.5
		a2 = 0.08
	)
	w := make([]float64, n)
	for i := range w {
		x := 2 * math.Pi * float64(i) / float64(n)
		w[i] = a0 - a1*math.Cos(x) + a2*math.Cos(2*x)
	}
	return w
}
