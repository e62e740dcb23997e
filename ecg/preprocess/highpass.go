package preprocess

import (
	"fmt"
	"math"
	"slices"
)

// section is a biquad in Direct Form II Transposed with a0 normalised to 1.
type section struct {
	b0, b1, b2 float64
	a1, a2     float64
	d0, d1     float64
}

func (s *section) process(x float64) float64 {
	y := s.b0*x + s.d0
	s.d0 = s.b1*x - s.a1*y + s.d1
	s.d1 = s.b2*x - s.a2*y
	return y
}

// settle loads the state a constant input x would reach and returns the
// matching steady output.
func (s *section) settle(x float64) float64 {
	y := x * (s.b0 + s.b1 + s.b2) / (1 + s.a1 + s.a2)
	s.d1 = s.b2*x - s.a2*y
	s.d0 = s.b1*x - s.a1*y + s.d1
	return y
}

// butterworthHP designs a highpass Butterworth cascade. Odd orders end with
// a first-order section.
func butterworthHP(freq float64, order int, sampleRate float64) []section {
	sections := make([]section, 0, (order+1)/2)
	for i := order/2 - 1; i >= 0; i-- {
		sections = append(sections, highpassRBJ(freq, butterworthQ(order, i), sampleRate))
	}
	if order%2 != 0 {
		k := math.Tan(math.Pi * freq / sampleRate)
		norm := 1 / (1 + k)
		sections = append(sections, section{b0: norm, b1: -norm, a1: (k - 1) * norm})
	}
	return sections
}

func butterworthQ(order, index int) float64 {
	theta := math.Pi * float64(2*index+1) / (2 * float64(order))
	s := math.Sin(theta)
	if s == 0 {
		return 1 / math.Sqrt2
	}
	return 1 / (2 * s)
}

func highpassRBJ(freq, q, sampleRate float64) section {
	w0 := 2 * math.Pi * freq / sampleRate
	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)
	a0 := 1 + alpha
	return section{
		b0: (1 + cw) / 2 / a0,
		b1: -(1 + cw) / a0,
		b2: (1 + cw) / 2 / a0,
		a1: -2 * cw / a0,
		a2: (1 - alpha) / a0,
	}
}

// Highpass removes baseline wander with a Butterworth highpass run forward
// and backward, which cancels the phase shift. The signal is extended at
// both ends by odd reflection and the filter state is settled on the first
// sample of each pass to keep edge transients small.
func Highpass(signal []float64, sampleRate int, cutoff float64, order int) ([]float64, error) {
	fs := float64(sampleRate)
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSampleRate, sampleRate)
	}
	if cutoff <= 0 || cutoff >= fs/2 || math.IsNaN(cutoff) {
		return nil, fmt.Errorf("%w: %g Hz at %d Hz", ErrInvalidCutoff, cutoff, sampleRate)
	}
	if order <= 0 {
		order = DefaultOrder
	}
	if len(signal) == 0 {
		return nil, ErrEmptySignal
	}

	pad := min(3*(order+1), len(signal)-1)
	ext := make([]float64, 0, len(signal)+2*pad)
	for i := pad; i >= 1; i-- {
		ext = append(ext, 2*signal[0]-signal[i])
	}
	ext = append(ext, signal...)
	last := signal[len(signal)-1]
	for i := 1; i <= pad; i++ {
		ext = append(ext, 2*last-signal[len(signal)-1-i])
	}

	filterPass(ext, butterworthHP(cutoff, order, fs))
	slices.Reverse(ext)
	filterPass(ext, butterworthHP(cutoff, order, fs))
	slices.Reverse(ext)

	out := make([]float64, len(signal))
	copy(out, ext[pad:pad+len(signal)])
	return out, nil
}

func filterPass(buf []float64, sections []section) {
	x0 := buf[0]
	for i := range sections {
		x0 = sections[i].settle(x0)
	}
	for n, x := range buf {
		for i := range sections {
			x = sections[i].process(x)
		}
		buf[n] = x
	}
}
