// Package lead runs the single-lead landmark pipeline.
//
// [New] builds a [Lead] from one channel of raw samples and runs every stage
// synchronously before returning:
//
//	Raw → Preprocessed → RDetected → IntervalsComputed → PDetected → Refined → StatsComputed
//
// Preprocessing slices long recordings and rescales to the working unit.
// R waves are found by thresholding the gradient-square transform, P waves
// by thresholding the phasor transform. Refinement merges both candidate
// lists and drops every pair closer than the near-duplicate distance. The
// final stage derives the lag-1 interval correlation, the beats-per-minute
// heuristic and a variability summary.
//
// Either New returns a fully built Lead or an error naming the failing
// stage; a partially built Lead is never returned. A Lead is immutable and
// safe for concurrent reads.
//
// # Instrumentation
//
// An [Observer] set with [WithObserver] is told about every stage with its
// duration and outcome. Observers run on the goroutine that calls New.
package lead
