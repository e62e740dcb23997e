package observe

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cwbudde/algo-ecg/ecg/lead"
	"github.com/cwbudde/algo-ecg/ecg/preprocess"
	"github.com/cwbudde/algo-ecg/ecg/threshold"
	"github.com/cwbudde/algo-ecg/ecg/transform"
)

// Error type label values.
const (
	ErrTypeDegenerate = "degenerate_threshold"
	ErrTypeInputShape = "input_shape"
	ErrTypeTooShort   = "too_short"
	ErrTypeOther      = "other"
)

// Metrics records pipeline stage durations and outcomes.
type Metrics struct {
	StageDuration *prometheus.HistogramVec
	StageTotal    *prometheus.CounterVec
	StageErrors   *prometheus.CounterVec
	LeadsBuilt    *prometheus.CounterVec
}

// NewMetrics creates the stage metrics and registers them with registry.
func NewMetrics(registry prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ecg_stage_duration_seconds",
				Help:    "Time taken by one lead pipeline stage",
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 0.1ms to ~0.8s
			},
			[]string{"stage"},
		),
		StageTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ecg_stages_total",
				Help: "Total number of lead pipeline stages run",
			},
			[]string{"stage", "status"},
		),
		StageErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ecg_stage_errors_total",
				Help: "Total number of failed lead pipeline stages",
			},
			[]string{"stage", "error_type"},
		),
		LeadsBuilt: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ecg_leads_built_total",
				Help: "Total number of leads that completed every stage",
			},
			[]string{"channel"},
		),
	}
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("observe: failed to register stage metrics: %w", err)
	}
	return m, nil
}

// ObserveStage implements lead.Observer.
func (m *Metrics) ObserveStage(ev lead.StageEvent) {
	stage := ev.Stage.String()
	m.StageDuration.WithLabelValues(stage).Observe(ev.Elapsed.Seconds())

	if ev.Err != nil {
		m.StageTotal.WithLabelValues(stage, "error").Inc()
		m.StageErrors.WithLabelValues(stage, ErrorType(ev.Err)).Inc()
		return
	}
	m.StageTotal.WithLabelValues(stage, "success").Inc()
	if ev.Stage == lead.StageStatsComputed {
		m.LeadsBuilt.WithLabelValues(strconv.Itoa(ev.Channel)).Inc()
	}
}

// ErrorType maps a stage error to its metric label.
func ErrorType(err error) string {
	switch {
	case errors.Is(err, threshold.ErrDegenerate):
		return ErrTypeDegenerate
	case errors.Is(err, lead.ErrInputShape),
		errors.Is(err, preprocess.ErrEmptySignal),
		errors.Is(err, preprocess.ErrInvalidSampleRate),
		errors.Is(err, transform.ErrInvalidSampleRate):
		return ErrTypeInputShape
	case errors.Is(err, transform.ErrTooShort),
		errors.Is(err, preprocess.ErrSignalTooShort):
		return ErrTypeTooShort
	default:
		return ErrTypeOther
	}
}

// Describe implements the prometheus.Collector interface.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.StageDuration.Describe(ch)
	m.StageTotal.Describe(ch)
	m.StageErrors.Describe(ch)
	m.LeadsBuilt.Describe(ch)
}

// Collect implements the prometheus.Collector interface.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.StageDuration.Collect(ch)
	m.StageTotal.Collect(ch)
	m.StageErrors.Collect(ch)
	m.LeadsBuilt.Collect(ch)
}
