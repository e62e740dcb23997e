// Package detect finds runs of samples above a threshold in a transformed
// ECG signal.
//
// The detector is edge based: it collects the indices of all samples that
// exceed the threshold, looks for gaps between consecutive indices and
// treats every gap as the boundary between two runs. Each run is reported
// as a [Peak] holding its centre and its length.
//
// The signal is padded with one sentinel sample at each end before the
// search, so positions are reported in padded coordinates: a run that
// starts at input index i is reported relative to i+1.
//
//	peaks := detect.Detect(transformed, threshold)
//	for _, p := range peaks {
//		fmt.Println(p.Position, p.Width)
//	}
package detect
