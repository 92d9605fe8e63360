// Package sentry delivers reporting events to Sentry through the official
// sentry-go SDK.
//
// A [Transport] owns a sentry-go hub. Each [reporting.Event] is sent from
// a clone of that hub, so the user, tags, extra and request data of
// concurrent requests never share a sentry-go scope.
//
//	tr, err := sentry.NewTransport(cfg)
//	if err != nil {
//	    return err
//	}
//	client, err := reporting.NewClient(tr)
package sentry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sentrygo "github.com/getsentry/sentry-go"

	sserr "github.com/StricklySoft/stricklysoft-sentry/pkg/errors"
	"github.com/StricklySoft/stricklysoft-sentry/pkg/reporting"
)

// Transport is a [reporting.Transport] and [reporting.Flusher] backed by
// sentry-go.
type Transport struct {
	hub          *sentrygo.Hub
	flushTimeout time.Duration
}

// NewTransport validates cfg and creates a sentry-go client from it.
// Returns a [sserr.CodeValidation] error for invalid settings and a
// [sserr.CodeInternalConfiguration] error when sentry-go rejects the DSN.
func NewTransport(cfg Config) (*Transport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := sentrygo.NewClient(sentrygo.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		ServerName:       cfg.ServerName,
		SampleRate:       cfg.SampleRate,
		Debug:            cfg.Debug,
		AttachStacktrace: true,
	})
	if err != nil {
		return nil, sserr.Wrap(err, sserr.CodeInternalConfiguration, "sentry: failed to create client")
	}
	t := NewTransportFromClient(client)
	t.flushTimeout = cfg.FlushTimeout
	return t, nil
}

// NewTransportFromClient wraps an existing sentry-go client, for callers
// that configure sentry-go themselves.
func NewTransportFromClient(client *sentrygo.Client) *Transport {
	return &Transport{
		hub:          sentrygo.NewHub(client, sentrygo.NewScope()),
		flushTimeout: DefaultFlushTimeout,
	}
}

// Hub returns the base hub. Scope changes made on it apply to every
// subsequent event.
func (t *Transport) Hub() *sentrygo.Hub {
	return t.hub
}

// Send captures the event on a clone of the base hub and returns the
// Sentry event id, or "" when sentry-go dropped the event (sampling,
// BeforeSend).
func (t *Transport) Send(_ context.Context, event *reporting.Event) (string, error) {
	if event == nil {
		return "", sserr.New(sserr.CodeInternalTransport, "sentry: nil event")
	}
	hub := t.hub.Clone()
	applyEvent(hub.Scope(), event)

	var id *sentrygo.EventID
	if event.IsException() {
		id = hub.CaptureException(event.Err)
	} else {
		id = hub.CaptureMessage(event.Message)
	}
	if id == nil {
		return "", nil
	}
	return string(*id), nil
}

// Flush waits up to timeout for buffered events. A non-positive timeout
// uses the configured flush timeout.
func (t *Transport) Flush(timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = t.flushTimeout
	}
	return t.hub.Flush(timeout)
}

// applyEvent copies the event's context onto a sentry-go scope.
func applyEvent(scope *sentrygo.Scope, event *reporting.Event) {
	scope.SetLevel(level(event.Level))
	if len(event.Tags) > 0 {
		scope.SetTags(event.Tags)
	}
	if len(event.Extra) > 0 {
		scope.SetExtras(event.Extra)
	}
	if len(event.User) > 0 {
		scope.SetUser(user(event.User))
	}
	if len(event.HTTP) > 0 {
		scope.SetContext("http", sentrygo.Context(event.HTTP))
	}
	if event.TraceID != "" {
		scope.SetContext("otel", sentrygo.Context{
			"trace_id": event.TraceID,
			"span_id":  event.SpanID,
		})
	}

	scope.AddEventProcessor(func(e *sentrygo.Event, _ *sentrygo.EventHint) *sentrygo.Event {
		if !event.Timestamp.IsZero() {
			e.Timestamp = event.Timestamp
		}
		if len(event.HTTP) > 0 {
			e.Request = request(event.HTTP)
			if route, ok := event.HTTP["route"].(string); ok && route != "" {
				e.Transaction = route
			}
		}
		return e
	})
}

// level maps a reporting severity to a sentry-go level.
func level(s reporting.Severity) sentrygo.Level {
	switch s {
	case reporting.SeverityFatal:
		return sentrygo.LevelFatal
	case reporting.SeverityWarning:
		return sentrygo.LevelWarning
	case reporting.SeverityInfo:
		return sentrygo.LevelInfo
	case reporting.SeverityDebug:
		return sentrygo.LevelDebug
	default:
		return sentrygo.LevelError
	}
}

// user maps the user context to a sentry-go user. "id", "email",
// "username" and "ip_address" fill the matching fields; any other key is
// kept in Data as text.
func user(data map[string]any) sentrygo.User {
	var u sentrygo.User
	for k, v := range data {
		s := stringify(v)
		switch k {
		case "id":
			u.ID = s
		case "email":
			u.Email = s
		case "username":
			u.Username = s
		case "ip_address":
			u.IPAddress = s
		default:
			if u.Data == nil {
				u.Data = make(map[string]string)
			}
			u.Data[k] = s
		}
	}
	return u
}

// request maps the http context built by the middleware to a sentry-go
// request interface.
func request(data map[string]any) *sentrygo.Request {
	r := &sentrygo.Request{}
	r.URL, _ = data["url"].(string)
	r.Method, _ = data["method"].(string)
	r.QueryString, _ = data["query_string"].(string)
	r.Headers, _ = data["headers"].(map[string]string)
	r.Env, _ = data["env"].(map[string]string)
	if body, ok := data["body"]; ok && body != nil {
		r.Data = stringify(body)
	}
	return r
}

func stringify(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
