// Package hrv computes beat-to-beat statistics from R-peak positions.
//
// Intervals are expressed in samples. [Intervals] keeps one entry per peak:
// the first entry is the position of the first peak itself, the remaining
// entries are the distances between consecutive peaks.
package hrv

import (
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-ecg/stats/amplitude"
)

// Intervals returns the first difference of positions with a leading zero
// prepended, so len(result) == len(positions) and result[0] == positions[0].
func Intervals(positions []int) []int {
	out := make([]int, len(positions))
	prev := 0
	for i, p := range positions {
		out[i] = p - prev
		prev = p
	}
	return out
}

// LagCorrelation returns the Pearson correlation between rr[:-1] and rr[1:].
// It is NaN when fewer than two intervals exist or when either side has
// zero variance.
func LagCorrelation(rr []int) float64 {
	if len(rr) < 2 {
		return math.NaN()
	}
	x := make([]float64, len(rr)-1)
	y := make([]float64, len(rr)-1)
	for i := range x {
		x[i] = float64(rr[i])
		y[i] = float64(rr[i+1])
	}
	return Pearson(x, y)
}

// Pearson returns the correlation coefficient of x and y clamped to
// [-1, 1], or NaN if the lengths differ, the input is empty or a side is
// constant.
func Pearson(x, y []float64) float64 {
	n := len(x)
	if n == 0 || n != len(y) {
		return math.NaN()
	}

	mx := vecmath.Sum(x) / float64(n)
	my := vecmath.Sum(y) / float64(n)

	var sxy, sxx, syy float64
	for i := range x {
		dx := x[i] - mx
		dy := y[i] - my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return math.NaN()
	}

	r := sxy / math.Sqrt(sxx*syy)
	return math.Max(-1, math.Min(1, r))
}

// BPM estimates beats per minute as twice the R-peak count. The estimate
// is not normalised by recording duration.
func BPM(peakCount int) float64 {
	return 2 * float64(peakCount)
}

// Summary holds time-domain variability measures in milliseconds.
type Summary struct {
	Count  int     // number of beat-to-beat intervals used
	MeanRR float64 // mean interval
	SDNN   float64 // population standard deviation of intervals
	RMSSD  float64 // root mean square of successive differences
	PNN50  float64 // percentage of successive differences above 50 ms
}

// Summarise computes a Summary from an interval sequence produced by
// Intervals. The leading entry is an absolute position, not an interval,
// and is skipped. Fields that need more data than available are NaN.
func Summarise(rr []int, sampleRate int) Summary {
	s := Summary{
		MeanRR: math.NaN(),
		SDNN:   math.NaN(),
		RMSSD:  math.NaN(),
		PNN50:  math.NaN(),
	}
	if len(rr) < 2 || sampleRate <= 0 {
		return s
	}

	msPerSample := 1000 / float64(sampleRate)
	ms := make([]float64, len(rr)-1)
	for i, v := range rr[1:] {
		ms[i] = float64(v) * msPerSample
	}
	s.Count = len(ms)

	spread := amplitude.Calculate(ms)
	s.MeanRR = spread.Mean
	s.SDNN = spread.Std

	if len(ms) < 2 {
		return s
	}

	var sq float64
	over := 0
	for i := 1; i < len(ms); i++ {
		d := ms[i] - ms[i-1]
		sq += d * d
		if math.Abs(d) > 50 {
			over++
		}
	}
	diffs := float64(len(ms) - 1)
	s.RMSSD = math.Sqrt(sq / diffs)
	s.PNN50 = 100 * float64(over) / diffs
	return s
}
