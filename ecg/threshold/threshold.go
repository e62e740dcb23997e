// Package threshold derives a detection threshold from a transformed signal.
//
// Values outside the open band (Lower, Upper) are treated as noise floor or
// saturation and ignored; the threshold is the mean of the remaining values
// divided by Divisor.
package threshold

import (
	"errors"
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Band limits and divisor of the estimator.
const (
	Lower   = 0.01
	Upper   = 2.0
	Divisor = 4.0
)

// ErrDegenerate is returned when no sample falls inside the band.
var ErrDegenerate = errors.New("threshold: no samples inside the amplitude band")

// Estimate returns the mean of the in-band samples of transformed divided
// by Divisor. When nothing is in band it returns NaN and ErrDegenerate.
func Estimate(transformed []float64) (float64, error) {
	kept := InBand(transformed)
	if len(kept) == 0 {
		return math.NaN(), ErrDegenerate
	}
	return vecmath.Sum(kept) / float64(len(kept)) / Divisor, nil
}

// InBand returns the samples strictly between Lower and Upper, in order.
func InBand(transformed []float64) []float64 {
	kept := make([]float64, 0, len(transformed))
	for _, v := range transformed {
		if v > Lower && v < Upper {
			kept = append(kept, v)
		}
	}
	return kept
}
