package detect

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-ecg/internal/testutil"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name      string
		signal    []float64
		threshold float64
		want      []Peak
	}{
		{
			name:      "empty signal",
			signal:    nil,
			threshold: 0.5,
			want:      nil,
		},
		{
			name:      "nothing above threshold",
			signal:    testutil.DC(0.2, 64),
			threshold: 0.5,
			want:      nil,
		},
		{
			name:      "comparison is strict",
			signal:    []float64{0, 1, 1, 0},
			threshold: 1,
			want:      nil,
		},
		{
			name:      "two runs",
			signal:    []float64{0, 0, 3, 3, 0, 0, 0, 4, 0, 0},
			threshold: 1,
			want:      []Peak{{Position: 4, Width: 2}, {Position: 8, Width: 1}},
		},
		{
			name:      "run touching the start merges with the sentinel",
			signal:    []float64{5, 5, 0, 0, 3, 0},
			threshold: 1,
			want:      []Peak{{Position: 5, Width: 1}},
		},
		{
			name:      "run touching the end merges with the sentinel",
			signal:    []float64{0, 3, 0, 0, 5, 5},
			threshold: 1,
			want:      []Peak{{Position: 2, Width: 1}},
		},
		{
			name:      "threshold below sentinel value",
			signal:    []float64{0, 0, 0.8, 0.9, 0.8, 0, 0},
			threshold: 0.5,
			want:      []Peak{{Position: 4, Width: 3}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.signal, tt.threshold))
		})
	}
}

func TestDetectSingleBlock(t *testing.T) {
	signal := make([]float64, 1000)
	for i := 500; i < 520; i++ {
		signal[i] = 5.0
	}

	peaks := Detect(signal, 1.0)
	require.Len(t, peaks, 1)
	assert.Equal(t, 20, peaks[0].Width)
	assert.Equal(t, 510, peaks[0].Position, "midpoint of samples 501..520 in padded coordinates")
}

func TestDetectRunWidthAndCentre(t *testing.T) {
	for _, width := range []int{1, 2, 3, 7, 16, 41} {
		for _, offset := range []int{1, 10, 99} {
			signal := make([]float64, 200)
			for i := offset; i < offset+width; i++ {
				signal[i] = 2
			}

			peaks := Detect(signal, 0.5)
			require.Len(t, peaks, 1, "width=%d offset=%d", width, offset)

			first, last := offset+1, offset+width
			wantCentre := int(math.RoundToEven(float64(first+last) / 2))
			assert.Equal(t, width, peaks[0].Width)
			assert.Equal(t, wantCentre, peaks[0].Position)
		}
	}
}

func TestDetectNaNThreshold(t *testing.T) {
	assert.Nil(t, Detect([]float64{0, 3, 0}, math.NaN()))
}

func TestDetectOrderedAndBounded(t *testing.T) {
	signal := testutil.DeterministicNoise(7, 1.0, 4096)
	const threshold = 0.3

	above := 0
	for _, v := range signal {
		if v > threshold {
			above++
		}
	}

	peaks := Detect(signal, threshold)
	require.NotEmpty(t, peaks)

	total := 0
	for i, p := range peaks {
		if i > 0 {
			assert.Greater(t, p.Position, peaks[i-1].Position)
		}
		assert.GreaterOrEqual(t, p.Position, 1)
		assert.LessOrEqual(t, p.Position, len(signal))
		assert.Positive(t, p.Width)
		total += p.Width
	}
	assert.LessOrEqual(t, total, above)
}

func TestFilterByWidth(t *testing.T) {
	peaks := []Peak{
		{Position: 10, Width: 3},
		{Position: 40, Width: 5},
		{Position: 90, Width: 12},
		{Position: 150, Width: 30},
	}

	got := FilterByWidth(peaks, 5, 30)
	assert.Equal(t, []Peak{{Position: 90, Width: 12}}, got)
	assert.Len(t, peaks, 4)
}

func TestPositions(t *testing.T) {
	assert.Equal(t, []int{3, 9}, Positions([]Peak{{3, 1}, {9, 4}}))
	assert.Empty(t, Positions(nil))
}
