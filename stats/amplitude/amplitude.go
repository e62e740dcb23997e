// Package amplitude summarises the sample distribution of a lead.
//
// The summary describes signal quality rather than cardiac events: a lead
// with a near-zero spread or a very large kurtosis is likely disconnected
// or saturated.
package amplitude

import "math"

// Summary holds single-pass amplitude statistics in the signal's unit.
type Summary struct {
	Length     int
	Mean       float64
	Std        float64 // population standard deviation
	RMS        float64
	Min        float64
	MinPos     int
	Max        float64
	MaxPos     int
	PeakToPeak float64
	Skewness   float64
	Kurtosis   float64 // excess kurtosis
}

// Calculate computes a Summary in one pass using Welford's update for the
// central moments. An empty signal yields a zero Summary.
func Calculate(signal []float64) Summary {
	n := len(signal)
	if n == 0 {
		return Summary{}
	}

	var mean, m2, m3, m4, sumSq float64
	s := Summary{
		Length: n,
		Min:    signal[0],
		Max:    signal[0],
	}

	for i, x := range signal {
		k := float64(i + 1)
		delta := x - mean
		dk := delta / k
		dk2 := dk * dk
		t := delta * dk * float64(i)

		// m4 before m3 before m2.
		m4 += t*dk2*(k*k-3*k+3) + 6*dk2*m2 - 4*dk*m3
		m3 += t*dk*(k-2) - 3*dk*m2
		m2 += t
		mean += dk

		sumSq += x * x
		if x > s.Max {
			s.Max, s.MaxPos = x, i
		}
		if x < s.Min {
			s.Min, s.MinPos = x, i
		}
	}

	nf := float64(n)
	variance := m2 / nf
	s.Mean = mean
	s.Std = math.Sqrt(variance)
	s.RMS = math.Sqrt(sumSq / nf)
	s.PeakToPeak = s.Max - s.Min
	if variance > 0 {
		s.Skewness = (m3 / nf) / (variance * s.Std)
		s.Kurtosis = (m4/nf)/(variance*variance) - 3
	}
	return s
}

// Flat reports whether the signal has no spread above tol.
func (s Summary) Flat(tol float64) bool {
	return s.Length == 0 || s.PeakToPeak <= tol
}
