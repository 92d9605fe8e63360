// Package journal records captured events in Redis so the id a caller
// received in the X-Sentry-ID response header can be resolved back to the
// failure it names, even before the event is searchable in Sentry.
//
// [Journal] is a [reporting.Transport] decorator. It forwards every event
// to the wrapped transport and, when that transport returns an event id,
// writes a summary hash under "<prefix>:<id>" with the configured TTL.
// Journal writes never fail a capture: errors are logged and the inner
// transport's result is returned unchanged.
//
// Usage:
//
//	rdb, err := redis.NewClient(ctx, cfg.Redis)
//	if err != nil { ... }
//	j, err := journal.New(sentryTransport, rdb, cfg.Journal)
//	if err != nil { ... }
//	client, err := reporting.NewClient(j)
//
//	entry, err := j.Lookup(ctx, "a1b2c3...")
package journal

import (
	"context"
	"log/slog"
	"time"

	sserr "github.com/StricklySoft/stricklysoft-sentry/pkg/errors"
	"github.com/StricklySoft/stricklysoft-sentry/pkg/reporting"
)

// writeTimeout bounds the journal write that follows a successful send.
const writeTimeout = time.Second

// Hash fields written for each event.
const (
	fieldLevel     = "level"
	fieldMessage   = "message"
	fieldError     = "error"
	fieldURL       = "url"
	fieldMethod    = "method"
	fieldRoute     = "route"
	fieldTraceID   = "trace_id"
	fieldTimestamp = "timestamp"
)

// Store is the subset of the Redis client used by the journal.
// *redis.Client from pkg/clients/redis satisfies it.
type Store interface {
	HSet(ctx context.Context, key string, values ...interface{}) (int64, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) (int64, error)
}

// Entry is the journaled summary of one captured event.
type Entry struct {
	ID        string
	Level     reporting.Severity
	Message   string
	Error     string
	URL       string
	Method    string
	Route     string
	TraceID   string
	Timestamp time.Time
}

// Journal decorates a [reporting.Transport] with a Redis index of sent
// events. It is safe for concurrent use.
type Journal struct {
	inner  reporting.Transport
	store  Store
	cfg    Config
	logger *slog.Logger
}

var (
	_ reporting.Transport = (*Journal)(nil)
	_ reporting.Flusher   = (*Journal)(nil)
)

// Option configures a [Journal].
type Option func(*Journal)

// WithLogger sets the logger for journal write failures. Defaults to
// [slog.Default].
func WithLogger(logger *slog.Logger) Option {
	return func(j *Journal) {
		if logger != nil {
			j.logger = logger
		}
	}
}

// New wraps inner with a journal stored in store.
//
// Error codes returned:
//   - [sserr.CodeInternalConfiguration]: inner or store is nil
//   - [sserr.CodeValidation]: invalid configuration
func New(inner reporting.Transport, store Store, cfg Config, opts ...Option) (*Journal, error) {
	if inner == nil {
		return nil, sserr.New(sserr.CodeInternalConfiguration, "journal: inner transport must not be nil")
	}
	if store == nil {
		return nil, sserr.New(sserr.CodeInternalConfiguration, "journal: store must not be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	j := &Journal{
		inner:  inner,
		store:  store,
		cfg:    cfg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

// Send forwards event to the inner transport and journals it when an id
// comes back.
func (j *Journal) Send(ctx context.Context, event *reporting.Event) (string, error) {
	id, err := j.inner.Send(ctx, event)
	if err != nil || id == "" || event == nil {
		return id, err
	}

	// The request may finish (and cancel ctx) right after the capture.
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()
	if werr := j.record(wctx, id, event); werr != nil {
		j.logger.WarnContext(ctx, "journal: failed to record event",
			"event_id", id,
			"error", werr,
		)
	}
	return id, nil
}

// Flush delegates to the inner transport when it buffers events.
func (j *Journal) Flush(timeout time.Duration) bool {
	if f, ok := j.inner.(reporting.Flusher); ok {
		return f.Flush(timeout)
	}
	return true
}

// Lookup returns the entry journaled under id.
//
// Error codes returned:
//   - [sserr.CodeValidation]: id is empty
//   - [sserr.CodeNotFound]: no entry (never journaled or expired)
//   - store errors are returned as-is
func (j *Journal) Lookup(ctx context.Context, id string) (Entry, error) {
	if id == "" {
		return Entry{}, sserr.New(sserr.CodeValidation, "journal: event id must not be empty")
	}
	fields, err := j.store.HGetAll(ctx, j.key(id))
	if err != nil {
		return Entry{}, err
	}
	if len(fields) == 0 {
		return Entry{}, sserr.Newf(sserr.CodeNotFound, "journal: event %s not found", id)
	}
	return decodeEntry(id, fields), nil
}

// Forget removes the entry for id. Removing a missing entry is not an
// error.
func (j *Journal) Forget(ctx context.Context, id string) error {
	if id == "" {
		return sserr.New(sserr.CodeValidation, "journal: event id must not be empty")
	}
	_, err := j.store.Del(ctx, j.key(id))
	return err
}

func (j *Journal) record(ctx context.Context, id string, event *reporting.Event) error {
	key := j.key(id)
	if _, err := j.store.HSet(ctx, key, encodeEvent(event)...); err != nil {
		return err
	}
	if j.cfg.TTL > 0 {
		if _, err := j.store.Expire(ctx, key, j.cfg.TTL); err != nil {
			return err
		}
	}
	return nil
}

func (j *Journal) key(id string) string {
	return j.cfg.KeyPrefix + ":" + id
}

// encodeEvent flattens event into HSET field-value pairs. Empty values are
// omitted.
func encodeEvent(event *reporting.Event) []interface{} {
	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	values := []interface{}{
		fieldLevel, event.Level.String(),
		fieldTimestamp, ts.UTC().Format(time.RFC3339Nano),
	}
	add := func(field, value string) {
		if value != "" {
			values = append(values, field, value)
		}
	}
	if event.Err != nil {
		add(fieldError, event.Err.Error())
	}
	add(fieldMessage, event.Message)
	add(fieldURL, httpString(event.HTTP, "url"))
	add(fieldMethod, httpString(event.HTTP, "method"))
	add(fieldRoute, httpString(event.HTTP, "route"))
	add(fieldTraceID, event.TraceID)
	return values
}

func decodeEntry(id string, fields map[string]string) Entry {
	e := Entry{
		ID:      id,
		Level:   reporting.Severity(fields[fieldLevel]),
		Message: fields[fieldMessage],
		Error:   fields[fieldError],
		URL:     fields[fieldURL],
		Method:  fields[fieldMethod],
		Route:   fields[fieldRoute],
		TraceID: fields[fieldTraceID],
	}
	if ts, err := time.Parse(time.RFC3339Nano, fields[fieldTimestamp]); err == nil {
		e.Timestamp = ts
	}
	return e
}

// httpString reads a string value from the event's http context. Route is
// nil when the request matched no route.
func httpString(http map[string]any, key string) string {
	s, _ := http[key].(string)
	return s
}
