// Package preprocess prepares a raw ECG lead for the detection transforms.
//
// [Prepare] always rescales the signal from the ingestion unit to the
// working scale (division by 1000) and shortens very long recordings to a
// five minute window. Baseline-wander removal ([Highpass]) and
// standardisation ([Standardise]) are available as opt-in stages.
package preprocess

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-ecg/stats/amplitude"
)

// Defaults used by the pipeline.
const (
	DefaultMaxSamples    = 1_000_000
	DefaultWindowSeconds = 5 * 60
	DefaultScale         = 1000.0
	DefaultCutoff        = 0.8
	DefaultOrder         = 2
)

// Errors returned by the preprocessing stages.
var (
	ErrEmptySignal       = errors.New("preprocess: empty signal")
	ErrInvalidSampleRate = errors.New("preprocess: sample rate must be positive")
	ErrSignalTooShort    = errors.New("preprocess: nothing left after slicing")
	ErrInvalidCutoff     = errors.New("preprocess: cutoff must be between 0 and Nyquist")
)

// SlicePolicy selects which part of an over-long signal is kept.
type SlicePolicy int

const (
	// SliceLeading keeps the first window of the recording.
	SliceLeading SlicePolicy = iota
	// SliceCentral drops one window from each end and keeps the rest.
	SliceCentral
)

// String returns the configuration name of p.
func (p SlicePolicy) String() string {
	switch p {
	case SliceLeading:
		return "leading"
	case SliceCentral:
		return "central"
	default:
		return fmt.Sprintf("SlicePolicy(%d)", int(p))
	}
}

// ParseSlicePolicy maps a configuration name to a SlicePolicy.
func ParseSlicePolicy(name string) (SlicePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "leading", "first":
		return SliceLeading, nil
	case "central", "centre", "center":
		return SliceCentral, nil
	default:
		return 0, fmt.Errorf("preprocess: unknown slice policy %q", name)
	}
}

// Config holds preprocessing settings.
type Config struct {
	Policy         SlicePolicy
	MaxSamples     int
	WindowSeconds  int
	Scale          float64
	Highpass       bool
	HighpassCutoff float64
	HighpassOrder  int
	Standardise    bool
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the pipeline defaults: leading slice, division by
// 1000, no filtering.
func DefaultConfig() Config {
	return Config{
		Policy:         SliceLeading,
		MaxSamples:     DefaultMaxSamples,
		WindowSeconds:  DefaultWindowSeconds,
		Scale:          DefaultScale,
		HighpassCutoff: DefaultCutoff,
		HighpassOrder:  DefaultOrder,
	}
}

// WithSlicePolicy selects the slicing policy for long signals.
func WithSlicePolicy(p SlicePolicy) Option {
	return func(cfg *Config) {
		if p == SliceLeading || p == SliceCentral {
			cfg.Policy = p
		}
	}
}

// WithMaxSamples sets the length above which a signal is sliced.
func WithMaxSamples(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.MaxSamples = n
		}
	}
}

// WithWindowSeconds sets the slice window duration.
func WithWindowSeconds(s int) Option {
	return func(cfg *Config) {
		if s > 0 {
			cfg.WindowSeconds = s
		}
	}
}

// WithHighpass enables zero-phase Butterworth baseline removal.
func WithHighpass(cutoff float64, order int) Option {
	return func(cfg *Config) {
		cfg.Highpass = true
		if cutoff > 0 {
			cfg.HighpassCutoff = cutoff
		}
		if order > 0 {
			cfg.HighpassOrder = order
		}
	}
}

// WithStandardise enables zero-mean, unit-variance scaling after the
// other stages.
func WithStandardise() Option {
	return func(cfg *Config) {
		cfg.Standardise = true
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

// Prepare slices and rescales signal. The input is never modified.
func Prepare(signal []float64, sampleRate int, opts ...Option) ([]float64, error) {
	if len(signal) == 0 {
		return nil, ErrEmptySignal
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSampleRate, sampleRate)
	}

	cfg := ApplyOptions(opts...)

	sliced, err := Slice(signal, sampleRate, cfg)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(sliced))
	vecmath.ScaleBlock(out, sliced, 1/cfg.Scale)

	if cfg.Highpass {
		out, err = Highpass(out, sampleRate, cfg.HighpassCutoff, cfg.HighpassOrder)
		if err != nil {
			return nil, err
		}
	}
	if cfg.Standardise {
		out = Standardise(out)
	}
	return out, nil
}

// Slice returns the part of signal kept under cfg. Signals no longer than
// cfg.MaxSamples are returned as is. The result aliases signal.
func Slice(signal []float64, sampleRate int, cfg Config) ([]float64, error) {
	if len(signal) <= cfg.MaxSamples {
		return signal, nil
	}

	window := cfg.WindowSeconds * sampleRate
	switch cfg.Policy {
	case SliceCentral:
		if 2*window >= len(signal) {
			return nil, fmt.Errorf("%w: %d samples, %d trimmed from each end",
				ErrSignalTooShort, len(signal), window)
		}
		return signal[window : len(signal)-window], nil
	default:
		if window < len(signal) {
			return signal[:window], nil
		}
		return signal, nil
	}
}

// Standardise returns (x - mean) / std using the population standard
// deviation. A constant signal maps to all zeros.
func Standardise(signal []float64) []float64 {
	out := make([]float64, len(signal))
	if len(signal) == 0 {
		return out
	}

	s := amplitude.Calculate(signal)
	for i, x := range signal {
		out[i] = x - s.Mean
	}
	if s.Std == 0 {
		return out
	}
	vecmath.ScaleBlockInPlace(out, 1/s.Std)
	return out
}
