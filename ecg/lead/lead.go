package lead

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/cwbudde/algo-ecg/ecg/detect"
	"github.com/cwbudde/algo-ecg/ecg/preprocess"
	"github.com/cwbudde/algo-ecg/ecg/threshold"
	"github.com/cwbudde/algo-ecg/ecg/transform"
	"github.com/cwbudde/algo-ecg/stats/amplitude"
	"github.com/cwbudde/algo-ecg/stats/hrv"
)

// MaxChannels is the number of lead slots a recording can hold.
const MaxChannels = 3

// ErrInputShape reports an unusable signal, sample rate or channel index.
var ErrInputShape = errors.New("lead: invalid input shape")

// Lead is one fully analysed ECG channel.
type Lead struct {
	channel    int
	sampleRate int
	unit       string
	raw        []float64

	signal     []float64
	rTransform []float64
	rThreshold float64
	rPeaks     []detect.Peak
	rr         []int

	phasor     []float64
	pThreshold float64
	rawP       []detect.Peak
	refinedP   []int

	correlation float64
	bpm         float64
	summary     hrv.Summary
	amplitude   amplitude.Summary

	stage Stage
}

// New validates the input and runs the whole pipeline. The signal is
// copied; the caller may reuse it afterwards.
func New(channel int, signal []float64, sampleRate int, unit string, opts ...Option) (*Lead, error) {
	switch {
	case channel < 0 || channel >= MaxChannels:
		return nil, fmt.Errorf("%w: channel %d outside 0..%d", ErrInputShape, channel, MaxChannels-1)
	case len(signal) == 0:
		return nil, fmt.Errorf("%w: empty signal", ErrInputShape)
	case sampleRate <= 0:
		return nil, fmt.Errorf("%w: sample rate %d", ErrInputShape, sampleRate)
	}

	cfg := ApplyOptions(opts...)

	l := &Lead{
		channel:    channel,
		sampleRate: sampleRate,
		unit:       unit,
		raw:        slices.Clone(signal),
		stage:      StageRaw,
	}

	steps := []struct {
		stage Stage
		run   func(*Config) error
	}{
		{StagePreprocessed, l.preprocess},
		{StageRDetected, l.detectR},
		{StageIntervalsComputed, l.intervals},
		{StagePDetected, l.detectP},
		{StageRefined, l.refine},
		{StageStatsComputed, l.stats},
	}

	for _, step := range steps {
		start := time.Now()
		err := step.run(&cfg)
		if cfg.Observer != nil {
			cfg.Observer.ObserveStage(StageEvent{
				Channel: channel,
				Stage:   step.stage,
				Elapsed: time.Since(start),
				Err:     err,
			})
		}
		if err != nil {
			return nil, fmt.Errorf("lead %d: %s: %w", channel, step.stage, err)
		}
		l.stage = step.stage
	}

	return l, nil
}

func (l *Lead) preprocess(cfg *Config) error {
	out, err := preprocess.Prepare(l.raw, l.sampleRate, cfg.Preprocess...)
	if err != nil {
		return err
	}
	l.signal = out
	return nil
}

func (l *Lead) detectR(cfg *Config) error {
	rt, err := transform.GradientSquare(l.signal, l.sampleRate, transform.WithWindow(cfg.Window))
	if err != nil {
		return err
	}
	thr, err := threshold.Estimate(rt)
	if err != nil {
		return err
	}

	peaks := detect.Detect(rt, thr)
	if cfg.MaxRWidth > 0 {
		peaks = detect.FilterByWidth(peaks, cfg.MinRWidth, cfg.MaxRWidth)
	}

	l.rTransform = rt
	l.rThreshold = thr
	l.rPeaks = peaks
	return nil
}

func (l *Lead) intervals(*Config) error {
	l.rr = hrv.Intervals(detect.Positions(l.rPeaks))
	return nil
}

func (l *Lead) detectP(cfg *Config) error {
	pt := transform.Phasor(l.signal, cfg.PhasorReference)
	thr, err := threshold.Estimate(pt)
	if err != nil {
		return err
	}
	l.phasor = pt
	l.pThreshold = thr
	l.rawP = detect.Detect(pt, thr)
	return nil
}

func (l *Lead) refine(cfg *Config) error {
	l.refinedP = Refine(detect.Positions(l.rPeaks), detect.Positions(l.rawP), cfg.NearDuplicate)
	return nil
}

func (l *Lead) stats(*Config) error {
	l.correlation = hrv.LagCorrelation(l.rr)
	l.bpm = hrv.BPM(len(l.rPeaks))
	l.summary = hrv.Summarise(l.rr, l.sampleRate)
	l.amplitude = amplitude.Calculate(l.signal)
	return nil
}

// Refine merges R and P candidate positions, sorts them and removes both
// members of every adjacent pair closer than distance samples. A position
// taking part in two close pairs is removed once.
func Refine(r, p []int, distance int) []int {
	merged := make([]int, 0, len(r)+len(p))
	merged = append(merged, r...)
	merged = append(merged, p...)
	slices.Sort(merged)

	drop := make([]bool, len(merged))
	for i := 0; i+1 < len(merged); i++ {
		if merged[i+1]-merged[i] < distance {
			drop[i] = true
			drop[i+1] = true
		}
	}

	out := make([]int, 0, len(merged))
	for i, v := range merged {
		if !drop[i] {
			out = append(out, v)
		}
	}
	return out
}

// Channel returns the lead slot index.
func (l *Lead) Channel() int { return l.channel }

// SampleRate returns the sampling rate in Hz.
func (l *Lead) SampleRate() int { return l.sampleRate }

// Unit returns the physical unit reported by the source.
func (l *Lead) Unit() string { return l.unit }

// Stage returns the last completed stage.
func (l *Lead) Stage() Stage { return l.stage }

// Raw returns the copy of the input samples.
func (l *Lead) Raw() []float64 { return l.raw }

// Signal returns the preprocessed signal.
func (l *Lead) Signal() []float64 { return l.signal }

// RTransform returns the gradient-square transform.
func (l *Lead) RTransform() []float64 { return l.rTransform }

// RThreshold returns the threshold applied to the R transform.
func (l *Lead) RThreshold() float64 { return l.rThreshold }

// RPeaks returns the detected R peaks.
func (l *Lead) RPeaks() []detect.Peak { return l.rPeaks }

// RRIntervals returns the successive R position differences. The first
// entry is the first R position.
func (l *Lead) RRIntervals() []int { return l.rr }

// PTransform returns the phasor transform.
func (l *Lead) PTransform() []float64 { return l.phasor }

// PThreshold returns the threshold applied to the phasor transform.
func (l *Lead) PThreshold() float64 { return l.pThreshold }

// RawPPeaks returns the P candidates before refinement.
func (l *Lead) RawPPeaks() []detect.Peak { return l.rawP }

// RefinedP returns the merged positions that survived de-duplication.
func (l *Lead) RefinedP() []int { return l.refinedP }

// Correlation returns the lag-1 Pearson coefficient of the RR series, or
// NaN when it is undefined.
func (l *Lead) Correlation() float64 { return l.correlation }

// BPM returns the beats-per-minute heuristic, twice the R peak count.
func (l *Lead) BPM() float64 { return l.bpm }

// HRV returns the variability summary.
func (l *Lead) HRV() hrv.Summary { return l.summary }

// Amplitude summarises the preprocessed signal.
func (l *Lead) Amplitude() amplitude.Summary { return l.amplitude }

// HasCorrelation reports whether Correlation is defined.
func (l *Lead) HasCorrelation() bool { return !math.IsNaN(l.correlation) }
