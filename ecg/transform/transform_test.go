package transform

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-ecg/internal/testutil"
)

func TestWindowLength(t *testing.T) {
	tests := []struct {
		sampleRate int
		want       int
	}{
		{200, 40},
		{125, 25},
		{250, 50},
		{512, 102},
		{8, 2},
		{7, 1},
		{1, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, WindowLength(tt.sampleRate), "sampleRate=%d", tt.sampleRate)
	}
}

func TestSlidingWindow(t *testing.T) {
	assert.Equal(t, []float64{1, 1, 1}, SlidingWindow(Rectangular, 3))
	testutil.RequireSliceNearlyEqual(t, SlidingWindow(SineSquared, 4), []float64{0, 0.5, 1, 0.5}, 1e-12)
	assert.Nil(t, SlidingWindow(Rectangular, 0))
}

func TestParseWindow(t *testing.T) {
	for name, want := range map[string]Window{
		"":            Rectangular,
		"rectangular": Rectangular,
		"Sine":        SineSquared,
		" sin ":       SineSquared,
	} {
		got, err := ParseWindow(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseWindow("hann")
	assert.Error(t, err)

	assert.Equal(t, "rectangular", Rectangular.String())
	assert.Equal(t, "sine", SineSquared.String())
}

func TestCorrelateSame(t *testing.T) {
	tests := []struct {
		name string
		a    []float64
		v    []float64
		want []float64
	}{
		{"box", []float64{1, 2, 3, 4, 5}, []float64{1, 1, 1}, []float64{3, 6, 9, 12, 9}},
		{"two taps", []float64{1, 2, 3, 4, 5}, []float64{1, 2}, []float64{2, 5, 8, 11, 14}},
		{"impulse", []float64{1, 0, 0, 0, 0}, []float64{1, 2, 3, 4}, []float64{3, 2, 1, 0, 0}},
		{"window longer than signal", []float64{1, 1}, []float64{1, 1, 1, 1, 1}, []float64{2, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CorrelateSame(tt.a, tt.v)
			require.NoError(t, err)
			testutil.RequireSliceNearlyEqual(t, got, tt.want, 1e-12)
		})
	}

	_, err := CorrelateSame(nil, []float64{1})
	assert.ErrorIs(t, err, ErrTooShort)
}

func TestCorrelateSameFFTMatchesDirect(t *testing.T) {
	a := testutil.DeterministicNoise(3, 1.0, 1500)
	for _, m := range []int{65, 100, 128, 201} {
		v := SlidingWindow(SineSquared, m)

		direct := correlateSameDirect(a, v)
		viaFFT, err := CorrelateSame(a, v)
		require.NoError(t, err)

		d, err := testutil.MaxAbsDiff(direct, viaFFT)
		require.NoError(t, err)
		assert.Less(t, d, 1e-9, "m=%d", m)
	}
}

func TestGradientSquare(t *testing.T) {
	ramp := make([]float64, 100)
	for i := range ramp {
		ramp[i] = float64(i)
	}

	// 25 Hz gives a five tap window; the gradient of a ramp is 1 everywhere.
	out, err := GradientSquare(ramp, 25)
	require.NoError(t, err)
	require.Len(t, out, len(ramp)-1)
	assert.InDelta(t, 3, out[0], 1e-12)
	assert.InDelta(t, 4, out[1], 1e-12)
	assert.InDelta(t, 5, out[50], 1e-12)
	assert.InDelta(t, 3, out[len(out)-1], 1e-12)

	sine, err := GradientSquare(ramp, 25, WithWindow(SineSquared))
	require.NoError(t, err)
	assert.Less(t, sine[50], out[50])
}

func TestGradientSquareErrors(t *testing.T) {
	_, err := GradientSquare([]float64{1, 2, 3}, 0)
	assert.ErrorIs(t, err, ErrInvalidSampleRate)

	_, err = GradientSquare([]float64{1}, 200)
	assert.ErrorIs(t, err, ErrTooShort)
}

func TestGradientSquareDeterministic(t *testing.T) {
	signal := testutil.SyntheticECG(500, 3, 72)
	a, err := GradientSquare(signal, 500)
	require.NoError(t, err)
	b, err := GradientSquare(signal, 500)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestPhasor(t *testing.T) {
	out := Phasor([]float64{0, 1, -1, 0.001}, DefaultReference)
	require.Len(t, out, 4)
	assert.Zero(t, out[0])
	assert.InDelta(t, math.Pi/2, out[1], 2e-3)
	assert.InDelta(t, -math.Pi/2, out[2], 2e-3)
	assert.InDelta(t, math.Pi/4, out[3], 1e-12)

	for _, v := range Phasor(testutil.DeterministicNoise(1, 5, 256), DefaultReference) {
		assert.Greater(t, v, -math.Pi/2)
		assert.LessOrEqual(t, v, math.Pi/2)
	}
}
