package lead

import (
	"github.com/cwbudde/algo-ecg/ecg/preprocess"
	"github.com/cwbudde/algo-ecg/ecg/transform"
)

// DefaultNearDuplicate is the distance in samples below which two merged
// R/P candidates are considered the same event.
const DefaultNearDuplicate = 10

// Config holds pipeline settings.
type Config struct {
	Preprocess      []preprocess.Option
	Window          transform.Window
	PhasorReference float64
	NearDuplicate   int
	// MinRWidth and MaxRWidth bound accepted R-peak widths (exclusive).
	// Zero values disable the filter.
	MinRWidth int
	MaxRWidth int
	Observer  Observer
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the reference pipeline: leading slice, division by
// 1000, rectangular window, phasor reference 0.001, 10 sample de-duplication.
func DefaultConfig() Config {
	return Config{
		Window:          transform.Rectangular,
		PhasorReference: transform.DefaultReference,
		NearDuplicate:   DefaultNearDuplicate,
	}
}

// WithWindow selects the R-transform sliding window shape.
func WithWindow(w transform.Window) Option {
	return func(cfg *Config) {
		cfg.Window = w
	}
}

// WithPreprocess appends preprocessing options.
func WithPreprocess(opts ...preprocess.Option) Option {
	return func(cfg *Config) {
		cfg.Preprocess = append(cfg.Preprocess, opts...)
	}
}

// WithPhasorReference sets the phasor transform reference scale.
func WithPhasorReference(ref float64) Option {
	return func(cfg *Config) {
		if ref > 0 {
			cfg.PhasorReference = ref
		}
	}
}

// WithNearDuplicateDistance sets the refinement merge distance in samples.
func WithNearDuplicateDistance(n int) Option {
	return func(cfg *Config) {
		if n >= 0 {
			cfg.NearDuplicate = n
		}
	}
}

// WithRWidthBounds keeps only R peaks whose width is strictly between lo
// and hi.
func WithRWidthBounds(lo, hi int) Option {
	return func(cfg *Config) {
		if hi > lo && lo >= 0 {
			cfg.MinRWidth, cfg.MaxRWidth = lo, hi
		}
	}
}

// WithObserver installs a stage observer.
func WithObserver(o Observer) Option {
	return func(cfg *Config) {
		cfg.Observer = o
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
