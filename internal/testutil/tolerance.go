package testutil

import (
	"fmt"
	"math"
	"testing"

	"github.com/cwbudde/algo-vecmath"
	"github.com/stretchr/testify/require"
)

// RequireSliceNearlyEqual stops the test unless got has the length of want
// and every sample is within eps of it.
func RequireSliceNearlyEqual(t testing.TB, got, want []float64, eps float64) {
	t.Helper()
	require.Len(t, got, len(want))
	require.InDeltaSlice(t, want, got, eps)
}

// MaxAbsDiff returns max |a[i] - b[i]|. Slices of different length are an
// error.
func MaxAbsDiff(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("testutil: length mismatch %d vs %d", len(a), len(b))
	}
	diff := make([]float64, len(a))
	vecmath.ScaleBlock(diff, b, -1)
	vecmath.AddBlockInPlace(diff, a)
	return vecmath.MaxAbs(diff), nil
}

// RequireFinite stops the test at the first NaN or infinite sample.
func RequireFinite(t testing.TB, samples []float64) {
	t.Helper()
	for i, v := range samples {
		require.False(t, math.IsNaN(v) || math.IsInf(v, 0), "sample %d is %v", i, v)
	}
}

// RequirePositionsNear stops the test unless got has one position per
// entry of want, each within tol samples.
func RequirePositionsNear(t testing.TB, got, want []int, tol int) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		d := got[i] - want[i]
		require.LessOrEqual(t, max(d, -d), tol, "position %d: got %d, want %d", i, got[i], want[i])
	}
}
