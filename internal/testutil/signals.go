package testutil

import (
	"math"
	"math/rand"
)

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// SpikeTrain generates a flat signal of the given duration carrying one
// triangular spike per period. The first spike is centred half a period in,
// so no spike touches either end. amplitude is the spike height and
// halfWidth its half base in samples.
func SpikeTrain(sampleRate int, seconds, periodSeconds, amplitude float64, halfWidth int) []float64 {
	n := int(math.Round(seconds * float64(sampleRate)))
	out := make([]float64, n)
	period := periodSeconds * float64(sampleRate)
	for c := period / 2; c < float64(n); c += period {
		centre := int(math.Round(c))
		for j := -halfWidth + 1; j < halfWidth; j++ {
			i := centre + j
			if i < 0 || i >= n {
				continue
			}
			out[i] = amplitude * (1 - math.Abs(float64(j))/float64(halfWidth))
		}
	}
	return out
}

// SpikeCentres returns the sample index of every spike SpikeTrain places.
func SpikeCentres(sampleRate int, seconds, periodSeconds float64) []int {
	n := int(math.Round(seconds * float64(sampleRate)))
	period := periodSeconds * float64(sampleRate)
	var out []int
	for c := period / 2; c < float64(n); c += period {
		out = append(out, int(math.Round(c)))
	}
	return out
}

// SyntheticECG generates a non-clinical ECG-like waveform in microvolts:
// Gaussian P, Q, R, S and T deflections repeated at heartRate beats per
// minute on a slow baseline.
func SyntheticECG(sampleRate int, seconds, heartRate float64) []float64 {
	n := int(math.Round(seconds * float64(sampleRate)))
	out := make([]float64, n)
	beat := 60 / heartRate
	for i := range out {
		t := float64(i) / float64(sampleRate)
		phase := math.Mod(t, beat) / beat

		v := 0.05 * math.Sin(2*math.Pi*0.33*t)
		v += 0.08 * gauss(phase, 0.18, 0.03)
		v -= 0.12 * gauss(phase, 0.30, 0.01)
		v += 1.00 * gauss(phase, 0.32, 0.008)
		v -= 0.25 * gauss(phase, 0.35, 0.012)
		v += 0.25 * gauss(phase, 0.60, 0.06)

		out[i] = 1000 * v
	}
	return out
}

func gauss(x, mu, sigma float64) float64 {
	z := (x - mu) / sigma
	return math.Exp(-0.5 * z * z)
}
