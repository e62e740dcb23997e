package transform

import (
	"fmt"
	"math"
	"strings"
)

// Window identifies the shape of the sliding correlation window.
type Window int

const (
	// Rectangular is a unit-height flat window.
	Rectangular Window = iota
	// SineSquared is a half period of sin² starting at zero.
	SineSquared
)

// String returns the configuration name of w.
func (w Window) String() string {
	switch w {
	case Rectangular:
		return "rectangular"
	case SineSquared:
		return "sine"
	default:
		return fmt.Sprintf("Window(%d)", int(w))
	}
}

// ParseWindow maps a configuration name to a Window.
func ParseWindow(name string) (Window, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "rectangular", "rect", "flat":
		return Rectangular, nil
	case "sine", "sin", "sine-squared":
		return SineSquared, nil
	default:
		return 0, fmt.Errorf("transform: unknown window %q", name)
	}
}

// WindowLength returns the sliding window length for a sampling rate:
// one fifth of a second, rounded, and at least one sample.
func WindowLength(sampleRate int) int {
	n := int(math.Round(float64(sampleRate) / 5))
	if n < 1 {
		return 1
	}
	return n
}

// SlidingWindow returns the coefficients of a window of the given shape.
func SlidingWindow(shape Window, length int) []float64 {
	if length <= 0 {
		return nil
	}

	out := make([]float64, length)
	switch shape {
	case SineSquared:
		step := math.Pi / float64(length)
		for k := range out {
			s := math.Sin(step * float64(k))
			out[k] = s * s
		}
	default:
		for k := range out {
			out[k] = 1
		}
	}
	return out
}
