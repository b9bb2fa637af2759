// Package analytics provides fire-and-forget sinks for preview events.
package analytics

import (
	"log/slog"

	"github.com/mmcdole/folio/internal/domain"
)

// LogSink writes events as structured log records
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a sink on top of logger
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger.With("component", "analytics")}
}

// Track logs the event at info level
func (s *LogSink) Track(e domain.Event) {
	attrs := []any{
		"project", e.ProjectID,
		"session", e.SessionID,
		"progress", e.Progress,
	}
	if e.Duration > 0 {
		attrs = append(attrs, "duration_ms", e.Duration.Milliseconds())
	}
	if e.Error != "" {
		attrs = append(attrs, "error", e.Error)
	}
	s.logger.Info(string(e.Kind), attrs...)
}

// Nop discards events
type Nop struct{}

func (Nop) Track(domain.Event) {}
