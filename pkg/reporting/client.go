// Package reporting provides the error-reporting client used by the HTTP
// middleware. It owns no network code: events are handed to a [Transport]
// (see the sentry sub-package for the Sentry implementation).
//
// # Request Scoping
//
// Diagnostic context (user, tags, extra, http) lives in a [Scope]. The
// middleware attaches a fresh Scope to each request's context with
// [ContextWithScope]; every [Client] method resolves the Scope from the
// context it is given and falls back to the client's base scope only when
// called outside a request. Concurrent requests therefore never observe
// each other's context or event ids.
//
// # Failure Semantics
//
// Capture calls never fail the caller. A transport error or panic is
// logged through the client's logger and the capture returns "".
package reporting

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	sserr "github.com/StricklySoft/stricklysoft-sentry/pkg/errors"
)

// tracerName is the OpenTelemetry instrumentation scope name for this package.
const tracerName = "github.com/StricklySoft/stricklysoft-sentry/pkg/reporting"

// DefaultFlushTimeout bounds [Client.Flush] when the context has no deadline.
const DefaultFlushTimeout = 2 * time.Second

// Client wraps a [Transport] and exposes context-mutation and capture
// operations. A Client is safe for concurrent use; create one per process
// and share it.
type Client struct {
	transport Transport
	logger    *slog.Logger
	tracer    trace.Tracer
	base      *Scope
	now       func() time.Time
}

// Option configures a [Client].
type Option func(*Client)

// WithLogger sets the logger used for internal failures (transport errors,
// loader failures). Defaults to [slog.Default].
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider used for
// capture spans. Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		if tp != nil {
			c.tracer = tp.Tracer(tracerName)
		}
	}
}

// NewClient creates a Client that delivers events through transport.
// Returns a [sserr.CodeInternalConfiguration] error if transport is nil.
func NewClient(transport Transport, opts ...Option) (*Client, error) {
	if transport == nil {
		return nil, sserr.New(sserr.CodeInternalConfiguration,
			"reporting: transport must not be nil")
	}
	c := &Client{
		transport: transport,
		logger:    slog.Default(),
		tracer:    otel.Tracer(tracerName),
		base:      NewScope(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}

// scope resolves the request scope from ctx, falling back to the base scope.
func (c *Client) scope(ctx context.Context) *Scope {
	if s, ok := ScopeFromContext(ctx); ok {
		return s
	}
	return c.base
}

// UserContext merges data into the user context.
func (c *Client) UserContext(ctx context.Context, data map[string]any) {
	c.scope(ctx).MergeUser(data)
}

// TagsContext merges tags into the tag context.
func (c *Client) TagsContext(ctx context.Context, tags map[string]string) {
	c.scope(ctx).MergeTags(tags)
}

// ExtraContext merges data into the extra context.
func (c *Client) ExtraContext(ctx context.Context, data map[string]any) {
	c.scope(ctx).MergeExtra(data)
}

// HTTPContext merges data into the existing http context. Repeated calls
// layer fields: {"a":1} followed by {"b":2} yields {"a":1,"b":2}.
func (c *Client) HTTPContext(ctx context.Context, data map[string]any) {
	c.scope(ctx).MergeHTTP(data)
}

// ClearContext empties the scope and resets the last event id. The
// middleware calls it exactly once per request after the response.
func (c *Client) ClearContext(ctx context.Context) {
	c.scope(ctx).Clear()
}

// LastEventID returns the id recorded by the most recent capture in the
// scope, or "".
func (c *Client) LastEventID(ctx context.Context) string {
	return c.scope(ctx).LastEventID()
}

// Context returns a snapshot of the current scope.
func (c *Client) Context(ctx context.Context) Snapshot {
	return c.scope(ctx).Snapshot()
}

// captureOptions holds per-capture overrides.
type captureOptions struct {
	level Severity
	extra map[string]any
	tags  map[string]string
}

// CaptureOption customizes a single capture call.
type CaptureOption func(*captureOptions)

// WithLevel sets the event severity.
func WithLevel(level Severity) CaptureOption {
	return func(o *captureOptions) { o.level = level }
}

// WithExtra layers data over the scope's extra context for this event only.
func WithExtra(data map[string]any) CaptureOption {
	return func(o *captureOptions) { o.extra = data }
}

// WithTags layers tags over the scope's tags for this event only.
func WithTags(tags map[string]string) CaptureOption {
	return func(o *captureOptions) { o.tags = tags }
}

// CaptureException reports err and returns the event id, or "" if the
// event was dropped or the transport failed. The id is recorded as the
// scope's last event id either way. A nil err is ignored.
func (c *Client) CaptureException(ctx context.Context, err error, opts ...CaptureOption) string {
	if err == nil {
		return ""
	}
	return c.capture(ctx, "CaptureException", &Event{Err: err}, SeverityErrors, opts)
}

// CaptureMessage reports msg and returns the event id, or "".
func (c *Client) CaptureMessage(ctx context.Context, msg string, opts ...CaptureOption) string {
	return c.capture(ctx, "CaptureMessage", &Event{Message: msg}, SeverityInfo, opts)
}

func (c *Client) capture(ctx context.Context, op string, event *Event, level Severity, opts []CaptureOption) string {
	o := captureOptions{level: level}
	for _, opt := range opts {
		opt(&o)
	}

	scope := c.scope(ctx)
	snap := scope.Snapshot()

	event.Level = o.level
	event.User = snap.User
	event.HTTP = snap.HTTP
	event.Extra = mergeAny(snap.Extra, o.extra)
	event.Tags = snap.Tags
	if len(o.tags) > 0 {
		if event.Tags == nil {
			event.Tags = make(map[string]string, len(o.tags))
		}
		maps.Copy(event.Tags, o.tags)
	}
	event.Timestamp = c.now().UTC()
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		event.TraceID = sc.TraceID().String()
		event.SpanID = sc.SpanID().String()
	}

	ctx, span := c.tracer.Start(ctx, "reporting."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("reporting.level", event.Level.String())),
	)
	id, err := c.send(ctx, event)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.ErrorContext(ctx, "reporting: failed to deliver event",
			"error", err,
			"level", event.Level.String(),
		)
		id = ""
	} else {
		span.SetAttributes(attribute.String("reporting.event_id", id))
		span.SetStatus(codes.Ok, "")
	}
	span.End()

	scope.SetLastEventID(id)
	return id
}

// send calls the transport, converting a panic into an error.
func (c *Client) send(ctx context.Context, event *Event) (id string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = sserr.New(sserr.CodeInternalTransport, fmt.Sprintf("reporting: transport panicked: %v", r))
		}
	}()
	id, err = c.transport.Send(ctx, event)
	if err != nil {
		return "", sserr.Wrap(err, sserr.CodeInternalTransport, "reporting: transport send failed")
	}
	return id, nil
}

// LogFailure logs a non-fatal instrumentation failure (for example a
// context loader error) through the client's logger.
func (c *Client) LogFailure(ctx context.Context, msg string, err error) {
	c.logger.WarnContext(ctx, msg, "error", err)
}

// Flush waits for buffered events when the transport implements [Flusher].
// The wait is bounded by ctx's deadline or [DefaultFlushTimeout]. Returns
// true when the transport does not buffer.
func (c *Client) Flush(ctx context.Context) bool {
	f, ok := c.transport.(Flusher)
	if !ok {
		return true
	}
	timeout := DefaultFlushTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	return f.Flush(timeout)
}
