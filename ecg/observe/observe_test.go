package observe

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-ecg/ecg/lead"
	"github.com/cwbudde/algo-ecg/ecg/preprocess"
	"github.com/cwbudde/algo-ecg/ecg/threshold"
	"github.com/cwbudde/algo-ecg/ecg/transform"
	ecgtest "github.com/cwbudde/algo-ecg/internal/testutil"
)

func TestMetricsFromPipeline(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	signal := ecgtest.SpikeTrain(200, 10, 1, 1000, 5)
	_, err = lead.New(2, signal, 200, "uV", lead.WithObserver(m))
	require.NoError(t, err)
	_, err = lead.New(0, ecgtest.DC(1, 400), 200, "uV", lead.WithObserver(m))
	require.Error(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.StageTotal.WithLabelValues("preprocessed", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StageTotal.WithLabelValues("r-detected", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StageTotal.WithLabelValues("r-detected", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StageErrors.WithLabelValues("r-detected", ErrTypeDegenerate)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LeadsBuilt.WithLabelValues("2")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.LeadsBuilt.WithLabelValues("0")))

	// One histogram series per stage that ran.
	assert.Equal(t, 6, testutil.CollectAndCount(m.StageDuration))
}

func TestNewMetricsDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg)
	require.NoError(t, err)
	_, err = NewMetrics(reg)
	assert.Error(t, err)
}

func TestErrorType(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("lead 1: r-detected: %w", threshold.ErrDegenerate), ErrTypeDegenerate},
		{fmt.Errorf("wrap: %w", lead.ErrInputShape), ErrTypeInputShape},
		{preprocess.ErrEmptySignal, ErrTypeInputShape},
		{transform.ErrTooShort, ErrTypeTooShort},
		{preprocess.ErrSignalTooShort, ErrTypeTooShort},
		{errors.New("boom"), ErrTypeOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorType(tt.err), tt.err.Error())
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	obs := NewLogger(log)

	obs.ObserveStage(lead.StageEvent{Channel: 1, Stage: lead.StageRefined, Elapsed: 3 * time.Millisecond})
	obs.ObserveStage(lead.StageEvent{Channel: 2, Stage: lead.StagePDetected, Err: threshold.ErrDegenerate})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first, second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))

	assert.Equal(t, "DEBUG", first["level"])
	assert.Equal(t, "refined", first["stage"])
	assert.Equal(t, "lead", first["component"])
	assert.EqualValues(t, 1, first["channel"])

	assert.Equal(t, "WARN", second["level"])
	assert.Equal(t, "p-detected", second["stage"])
	assert.Equal(t, threshold.ErrDegenerate.Error(), second["error"])
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	NewLogger(log).ObserveStage(lead.StageEvent{Stage: lead.StageRaw})
	assert.Empty(t, buf.String())
}

func TestNewLoggerDefault(t *testing.T) {
	assert.NotNil(t, NewLogger(nil))
}
