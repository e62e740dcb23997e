// Package transform turns a preprocessed ECG lead into detection signals.
//
// Two stateless transforms are provided:
//
//   - [GradientSquare] emphasises the steep QRS slope: first difference,
//     squared, then correlated with a sliding window of about 200 ms. This
//     is the derivative-and-square stage of a Pan-Tompkins detector.
//   - [Phasor] maps every sample to atan2(x, reference). With a small
//     reference the result saturates quickly, which lifts low-amplitude
//     deflections such as the P wave.
//
// The sliding window is rectangular by default; [WithWindow] selects the
// squared half-sine shape instead.
//
// # Correlation
//
// The correlation is computed in "same" mode: the output has the length of
// the differenced signal and is centred on it, with zero padding beyond the
// ends. Windows of up to 64 taps use direct dot products; longer windows go
// through an FFT.
package transform
