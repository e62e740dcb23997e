package detect

import "math"

// Peak is a detected run of above-threshold samples.
type Peak struct {
	Position int `json:"position" yaml:"position"` // run centre, in padded sample coordinates
	Width    int `json:"width" yaml:"width"`       // run length in samples
}

// Detect returns one Peak per maximal run of samples strictly above
// threshold. Peaks are ordered by position.
//
// The signal is padded with a sentinel at both ends; the sentinels are
// always treated as active so that every interior run is enclosed by two
// transitions. Runs that touch either end of the signal merge with a
// sentinel and are not reported. Returns nil when no run is found or when
// threshold is NaN.
func Detect(signal []float64, threshold float64) []Peak {
	if math.IsNaN(threshold) {
		return nil
	}

	padded := len(signal) + 2

	active := make([]int, 0, 64)
	active = append(active, 0)
	for i, v := range signal {
		if v > threshold {
			active = append(active, i+1)
		}
	}
	active = append(active, padded-1)

	// An edge is the index into active where a new run begins.
	var edges []int
	for k := 1; k < len(active); k++ {
		if active[k]-active[k-1]-1 != 0 {
			edges = append(edges, k)
		}
	}

	if len(edges) < 2 {
		return nil
	}

	peaks := make([]Peak, 0, len(edges)-1)
	for k := 0; k+1 < len(edges); k++ {
		start, end := edges[k], edges[k+1]
		first, last := active[start], active[end-1]
		peaks = append(peaks, Peak{
			Position: int(math.RoundToEven(0.5 * float64(first+last))),
			Width:    end - start,
		})
	}

	return peaks
}

// FilterByWidth returns the peaks whose width lies strictly between lower
// and upper. The input slice is not modified.
func FilterByWidth(peaks []Peak, lower, upper int) []Peak {
	out := make([]Peak, 0, len(peaks))
	for _, p := range peaks {
		if p.Width > lower && p.Width < upper {
			out = append(out, p)
		}
	}
	return out
}

// Positions extracts the positions of peaks in order.
func Positions(peaks []Peak) []int {
	out := make([]int, len(peaks))
	for i, p := range peaks {
		out[i] = p.Position
	}
	return out
}
