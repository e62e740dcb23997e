package lead

import (
	"fmt"
	"time"
)

// Stage is a step of the pipeline. A built Lead is always in
// StageStatsComputed.
type Stage int

const (
	StageRaw Stage = iota
	StagePreprocessed
	StageRDetected
	StageIntervalsComputed
	StagePDetected
	StageRefined
	StageStatsComputed
)

var stageNames = [...]string{
	StageRaw:               "raw",
	StagePreprocessed:      "preprocessed",
	StageRDetected:         "r-detected",
	StageIntervalsComputed: "intervals-computed",
	StagePDetected:         "p-detected",
	StageRefined:           "refined",
	StageStatsComputed:     "stats-computed",
}

func (s Stage) String() string {
	if s >= 0 && int(s) < len(stageNames) {
		return stageNames[s]
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// StageEvent describes one finished stage. Err is nil on success.
type StageEvent struct {
	Channel int
	Stage   Stage
	Elapsed time.Duration
	Err     error
}

// Observer receives stage events.
type Observer interface {
	ObserveStage(StageEvent)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(StageEvent)

// ObserveStage calls f(ev).
func (f ObserverFunc) ObserveStage(ev StageEvent) { f(ev) }

// Observers fans one event out to several observers in order.
type Observers []Observer

// ObserveStage forwards ev to every non-nil observer.
func (o Observers) ObserveStage(ev StageEvent) {
	for _, obs := range o {
		if obs != nil {
			obs.ObserveStage(ev)
		}
	}
}
