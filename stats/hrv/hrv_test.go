package hrv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntervals(t *testing.T) {
	tests := []struct {
		name      string
		positions []int
		want      []int
	}{
		{"empty", nil, []int{}},
		{"single", []int{42}, []int{42}},
		{"regular", []int{100, 300, 500, 700}, []int{100, 200, 200, 200}},
		{"irregular", []int{5, 9, 30}, []int{5, 4, 21}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Intervals(tt.positions)
			assert.Equal(t, tt.want, got)
			assert.Len(t, got, len(tt.positions))
		})
	}
}

func TestLagCorrelation(t *testing.T) {
	assert.True(t, math.IsNaN(LagCorrelation(nil)))
	assert.True(t, math.IsNaN(LagCorrelation([]int{10})))
	assert.True(t, math.IsNaN(LagCorrelation([]int{10, 20})), "single pair has no variance")
	assert.True(t, math.IsNaN(LagCorrelation([]int{100, 200, 200, 200})), "constant tail")

	// Linear growth is perfectly correlated with itself shifted by one.
	assert.InDelta(t, 1, LagCorrelation([]int{1, 2, 3, 4, 5}), 1e-12)
	// Alternating intervals are perfectly anti-correlated.
	assert.InDelta(t, -1, LagCorrelation([]int{1, 3, 1, 3, 1, 3}), 1e-12)

	r := LagCorrelation([]int{120, 190, 205, 198, 230, 185, 201})
	assert.GreaterOrEqual(t, r, -1.0)
	assert.LessOrEqual(t, r, 1.0)
}

func TestPearson(t *testing.T) {
	assert.InDelta(t, 1, Pearson([]float64{1, 2, 3}, []float64{2, 4, 6}), 1e-12)
	assert.InDelta(t, -1, Pearson([]float64{1, 2, 3}, []float64{3, 2, 1}), 1e-12)
	assert.True(t, math.IsNaN(Pearson([]float64{1, 2}, []float64{1})))
	assert.True(t, math.IsNaN(Pearson(nil, nil)))
}

func TestBPM(t *testing.T) {
	assert.Equal(t, 0.0, BPM(0))
	assert.Equal(t, 20.0, BPM(10))
}

func TestSummarise(t *testing.T) {
	// 250 Hz: 250 samples = 1000 ms, 200 samples = 800 ms.
	rr := []int{37, 250, 200, 250, 200}
	s := Summarise(rr, 250)

	require.Equal(t, 4, s.Count)
	assert.InDelta(t, 900, s.MeanRR, 1e-9)
	assert.InDelta(t, 100, s.SDNN, 1e-9)
	assert.InDelta(t, 200, s.RMSSD, 1e-9)
	assert.InDelta(t, 100, s.PNN50, 1e-9)
}

func TestSummariseShortInput(t *testing.T) {
	s := Summarise([]int{50}, 250)
	assert.Zero(t, s.Count)
	assert.True(t, math.IsNaN(s.MeanRR))
	assert.True(t, math.IsNaN(s.PNN50))

	s = Summarise([]int{50, 250}, 250)
	assert.Equal(t, 1, s.Count)
	assert.InDelta(t, 1000, s.MeanRR, 1e-9)
	assert.InDelta(t, 0, s.SDNN, 1e-9)
	assert.True(t, math.IsNaN(s.RMSSD))

	s = Summarise([]int{50, 250, 250}, 0)
	assert.True(t, math.IsNaN(s.MeanRR))
}
