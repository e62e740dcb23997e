package transform

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

// DefaultReference is the phasor reference scale used by the pipeline.
const DefaultReference = 0.001

// fftThreshold is the window length above which correlation uses the FFT.
const fftThreshold = 64

// Errors returned by the transforms.
var (
	ErrTooShort          = errors.New("transform: signal needs at least two samples")
	ErrInvalidSampleRate = errors.New("transform: sample rate must be positive")
)

// Config holds transform settings.
type Config struct {
	Window Window
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the rectangular-window configuration.
func DefaultConfig() Config {
	return Config{Window: Rectangular}
}

// WithWindow selects the sliding window shape.
func WithWindow(w Window) Option {
	return func(cfg *Config) {
		if w == Rectangular || w == SineSquared {
			cfg.Window = w
		}
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// GradientSquare returns the squared first difference of signal correlated
// with a sliding window of WindowLength(sampleRate) taps. The result has
// len(signal)-1 samples.
func GradientSquare(signal []float64, sampleRate int, opts ...Option) ([]float64, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSampleRate, sampleRate)
	}
	if len(signal) < 2 {
		return nil, ErrTooShort
	}

	cfg := ApplyOptions(opts...)

	grad := make([]float64, len(signal)-1)
	for i := range grad {
		d := signal[i+1] - signal[i]
		grad[i] = d * d
	}

	window := SlidingWindow(cfg.Window, WindowLength(sampleRate))
	return CorrelateSame(grad, window)
}

// Phasor returns atan2(x, reference) for every sample of signal.
func Phasor(signal []float64, reference float64) []float64 {
	out := make([]float64, len(signal))
	for i, x := range signal {
		out[i] = math.Atan2(x, reference)
	}
	return out
}

// CorrelateSame cross-correlates a with v and returns the len(a) samples
// centred on a, treating samples outside a as zero:
//
//	out[i] = Σ_j a[i - len(v)/2 + j] · v[j]
func CorrelateSame(a, v []float64) ([]float64, error) {
	if len(a) == 0 || len(v) == 0 {
		return nil, ErrTooShort
	}
	if len(v) > fftThreshold {
		return correlateSameFFT(a, v)
	}
	return correlateSameDirect(a, v), nil
}

func correlateSameDirect(a, v []float64) []float64 {
	n, m := len(a), len(v)
	half := m / 2
	out := make([]float64, n)
	for i := range out {
		lo := i - half
		jStart := max(0, -lo)
		jEnd := min(m, n-lo)
		if jStart >= jEnd {
			continue
		}
		out[i] = vecmath.DotProduct(a[lo+jStart:lo+jEnd], v[jStart:jEnd])
	}
	return out
}

func correlateSameFFT(a, v []float64) ([]float64, error) {
	n, m := len(a), len(v)
	fftSize := nextPowerOf2(n + m - 1)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("transform: failed to create FFT plan: %w", err)
	}

	aPadded := make([]complex128, fftSize)
	vPadded := make([]complex128, fftSize)
	for i, x := range a {
		aPadded[i] = complex(x, 0)
	}
	// Correlation is convolution with the reversed window.
	for j, x := range v {
		vPadded[m-1-j] = complex(x, 0)
	}

	aFreq := make([]complex128, fftSize)
	vFreq := make([]complex128, fftSize)
	if err := plan.Forward(aFreq, aPadded); err != nil {
		return nil, fmt.Errorf("transform: forward FFT failed: %w", err)
	}
	if err := plan.Forward(vFreq, vPadded); err != nil {
		return nil, fmt.Errorf("transform: forward FFT failed: %w", err)
	}
	for i := range aFreq {
		aFreq[i] *= vFreq[i]
	}

	full := make([]complex128, fftSize)
	if err := plan.Inverse(full, aFreq); err != nil {
		return nil, fmt.Errorf("transform: inverse FFT failed: %w", err)
	}

	offset := (m - 1) / 2
	out := make([]float64, n)
	for i := range out {
		out[i] = real(full[i+offset])
	}
	return out, nil
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p *= 2
	}
	return p
}
