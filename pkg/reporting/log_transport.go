package reporting

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// LogTransport is a [Transport] that writes events to a structured logger
// instead of a remote backend. It is intended for local development and
// for deployments without a DSN. Event ids are random UUIDs without
// dashes, matching the shape of Sentry event ids.
type LogTransport struct {
	logger *slog.Logger
}

// NewLogTransport creates a LogTransport. A nil logger uses [slog.Default].
func NewLogTransport(logger *slog.Logger) *LogTransport {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogTransport{logger: logger}
}

// Send logs the event and returns a fresh event id.
func (t *LogTransport) Send(ctx context.Context, event *Event) (string, error) {
	id := NewEventID()

	attrs := []any{
		"event_id", id,
		"level", event.Level.String(),
	}
	if event.Err != nil {
		attrs = append(attrs, "error", event.Err)
	} else {
		attrs = append(attrs, "message", event.Message)
	}
	if event.TraceID != "" {
		attrs = append(attrs, "trace_id", event.TraceID)
	}
	if url, ok := event.HTTP["url"]; ok {
		attrs = append(attrs, "url", url)
	}
	if route, ok := event.HTTP["route"]; ok {
		attrs = append(attrs, "route", route)
	}
	if len(event.Extra) > 0 {
		attrs = append(attrs, "extra", event.Extra)
	}
	if len(event.User) > 0 {
		attrs = append(attrs, "user", event.User)
	}

	level := slog.LevelError
	switch event.Level {
	case SeverityWarning:
		level = slog.LevelWarn
	case SeverityInfo:
		level = slog.LevelInfo
	case SeverityDebug:
		level = slog.LevelDebug
	}
	t.logger.Log(ctx, level, "reporting: event captured", attrs...)
	return id, nil
}

// NewEventID returns a random 32-character hex event id.
func NewEventID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
