package reporting

import (
	"context"
	"time"
)

// Event is the payload handed to a [Transport]. Exactly one of Err and
// Message is set. Maps are owned by the event; transports may keep them.
type Event struct {
	// Level is the severity of the event.
	Level Severity

	// Err is the captured error for exception events.
	Err error

	// Message is the captured text for message events.
	Message string

	// User, Tags, Extra and HTTP are snapshots of the request scope,
	// with per-capture extra and tags layered on top.
	User  map[string]any
	Tags  map[string]string
	Extra map[string]any
	HTTP  map[string]any

	// TraceID and SpanID identify the active OpenTelemetry span at the
	// time of capture. Empty when no span was recording.
	TraceID string
	SpanID  string

	// Timestamp is the capture time in UTC.
	Timestamp time.Time
}

// IsException reports whether the event captures an error.
func (e *Event) IsException() bool {
	return e.Err != nil
}

// Transport delivers events to an error-tracking backend and returns the
// backend's event identifier. An empty identifier with a nil error means
// the backend dropped the event (sampling, filtering).
type Transport interface {
	Send(ctx context.Context, event *Event) (string, error)
}

// TransportFunc adapts a function to the [Transport] interface.
type TransportFunc func(ctx context.Context, event *Event) (string, error)

// Send calls f(ctx, event).
func (f TransportFunc) Send(ctx context.Context, event *Event) (string, error) {
	return f(ctx, event)
}

// Flusher is implemented by transports that buffer events. Flush blocks
// until buffered events are delivered or the timeout elapses and reports
// whether everything was delivered.
type Flusher interface {
	Flush(timeout time.Duration) bool
}
