package observe

import (
	"context"
	"log/slog"

	"github.com/cwbudde/algo-ecg/ecg/lead"
)

// Logger writes one record per stage event. Successful stages are logged
// at debug level, failures at warn.
type Logger struct {
	log *slog.Logger
}

// NewLogger returns a Logger writing to log, or to slog.Default when log
// is nil.
func NewLogger(log *slog.Logger) *Logger {
	if log == nil {
		log = slog.Default()
	}
	return &Logger{log: log.With("component", "lead")}
}

// ObserveStage implements lead.Observer.
func (l *Logger) ObserveStage(ev lead.StageEvent) {
	attrs := []slog.Attr{
		slog.Int("channel", ev.Channel),
		slog.String("stage", ev.Stage.String()),
		slog.Duration("elapsed", ev.Elapsed),
	}
	if ev.Err != nil {
		attrs = append(attrs, slog.String("error", ev.Err.Error()))
		l.log.LogAttrs(context.Background(), slog.LevelWarn, "stage failed", attrs...)
		return
	}
	l.log.LogAttrs(context.Background(), slog.LevelDebug, "stage done", attrs...)
}
