// Package middleware attaches error reporting to net/http handlers.
//
// A [Middleware] gives every request its own reporting scope, fills it with
// the request's diagnostic context, classifies handler errors, captures
// the ones worth reporting and returns the id of the captured event to the
// caller in the X-Sentry-ID response header.
//
// # Usage
//
//	client, _ := reporting.NewClient(transport)
//	mw := middleware.New(client, middleware.WithOnlyServerErrors(true))
//
//	r := chi.NewRouter()
//	r.Method(http.MethodGet, "/widgets/{id}", mw.Handler(func(w http.ResponseWriter, r *http.Request) error {
//		return sserr.NotFound("Not Found")
//	}))
//
// Handlers returning an error go through [Middleware.Handler]. Plain
// [http.Handler] values are adapted with [Middleware.Wrap], which treats a
// panic as an unclassified error.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/StricklySoft/stricklysoft-sentry/pkg/classify"
	sserr "github.com/StricklySoft/stricklysoft-sentry/pkg/errors"
	"github.com/StricklySoft/stricklysoft-sentry/pkg/reporting"
)

// HandlerFunc is an HTTP handler that reports failure by returning an
// error instead of writing an error response itself.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Middleware is the request-scoped error-reporting middleware. It is safe
// for concurrent use.
type Middleware struct {
	client           *reporting.Client
	logger           *slog.Logger
	onlyServerErrors bool
	bodyLoader       BodyLoader
	userLoader       UserLoader
	resolver         RouteResolver
	sensitive        []string
	renderer         Renderer
}

// Option configures a [Middleware].
type Option func(*Middleware)

// WithOnlyServerErrors suppresses reporting of HTTP errors with a status
// below 500. Signals and unclassified errors are unaffected.
func WithOnlyServerErrors(only bool) Option {
	return func(m *Middleware) { m.onlyServerErrors = only }
}

// WithBodyLoader sets the loader whose result is merged into the http
// context under "body".
func WithBodyLoader(loader BodyLoader) Option {
	return func(m *Middleware) { m.bodyLoader = loader }
}

// WithUserLoader sets the loader whose result is merged into the user
// context.
func WithUserLoader(loader UserLoader) Option {
	return func(m *Middleware) { m.userLoader = loader }
}

// WithRouteResolver replaces [ChiRouteResolver].
func WithRouteResolver(resolver RouteResolver) Option {
	return func(m *Middleware) {
		if resolver != nil {
			m.resolver = resolver
		}
	}
}

// WithSensitiveHeaders replaces [DefaultSensitiveHeaders]. Calling it with
// no names disables redaction.
func WithSensitiveHeaders(names ...string) Option {
	return func(m *Middleware) { m.sensitive = names }
}

// WithRenderer replaces [JSONRenderer].
func WithRenderer(renderer Renderer) Option {
	return func(m *Middleware) {
		if renderer != nil {
			m.renderer = renderer
		}
	}
}

// WithLogger sets the logger for lifecycle diagnostics. Defaults to the
// reporting client's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Middleware) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// New creates a Middleware reporting through client.
func New(client *reporting.Client, opts ...Option) *Middleware {
	m := &Middleware{
		client:    client,
		logger:    client.Logger(),
		resolver:  ChiRouteResolver,
		sensitive: DefaultSensitiveHeaders,
		renderer:  JSONRenderer,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Client returns the reporting client.
func (m *Middleware) Client() *reporting.Client {
	return m.client
}

// Before prepares a request for handling. It attaches a fresh reporting
// scope, records the request context under the http context and runs the
// configured loaders. Loader failures are logged and never abort the
// request. The returned request carries the scope and must be used for
// the rest of the request.
func (m *Middleware) Before(r *http.Request) *http.Request {
	state := &requestState{phase: PhaseIdle}
	ctx := reporting.ContextWithScope(r.Context(), reporting.NewScope())
	ctx = contextWithState(ctx, state)
	r = r.WithContext(ctx)
	m.advance(ctx, state, PhaseBuilding)

	route, _ := m.resolver.Resolve(r)
	rc := NewRequestContext(r, route, m.sensitive)
	m.client.HTTPContext(ctx, rc.ToMap())

	if m.bodyLoader != nil {
		body, err := callLoader(m.bodyLoader, r)
		if err != nil {
			m.client.LogFailure(ctx, "middleware: failed to load request body context", err)
		} else if body != nil {
			m.client.HTTPContext(ctx, map[string]any{"body": body})
		}
	}
	if m.userLoader != nil {
		user, err := callLoader(m.userLoader, r)
		if err != nil {
			m.client.LogFailure(ctx, "middleware: failed to load user context", err)
		} else if len(user) > 0 {
			m.client.UserContext(ctx, user)
		}
	}

	m.advance(ctx, state, PhaseHandling)
	return r
}

// After finishes a request: it sets X-Sentry-ID when an event was captured
// and clears the request's reporting context. Clearing happens even when
// setting the header panics. Headers already sent cannot be changed, so
// [Middleware.Handler] injects the header earlier, as the response is
// committed.
func (m *Middleware) After(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	state, hasState := stateFromContext(ctx)
	defer func() {
		if _, ok := reporting.ScopeFromContext(ctx); ok {
			m.client.ClearContext(ctx)
		} else {
			m.logger.DebugContext(ctx, "middleware: After called without Before")
		}
		if hasState {
			m.advance(ctx, state, PhaseIdle)
		}
	}()

	if hasState && state.current() != PhaseResponding {
		m.advance(ctx, state, PhaseResponding)
	}
	if id := m.client.LastEventID(ctx); id != "" {
		w.Header().Set(HeaderEventID, id)
	}
}

// HandleError classifies err, captures it when it should be reported and
// returns the error the caller must propagate: signals and HTTP errors are
// returned unchanged, anything else is replaced with a generic 500
// "Unknown Error". It never writes a response. A nil err returns nil.
func (m *Middleware) HandleError(ctx context.Context, err error, r *http.Request, routeParams map[string]string) error {
	if err == nil {
		return nil
	}
	d := classify.Classify(err, routeParams, m.onlyServerErrors)
	if d.Report {
		m.client.CaptureException(ctx, err,
			reporting.WithLevel(d.Severity),
			reporting.WithExtra(d.Extra),
		)
	} else if d.Kind == sserr.KindHTTP && r != nil {
		m.logger.DebugContext(ctx, "middleware: client error not reported",
			"status", sserr.StatusOf(err),
			"method", r.Method,
			"path", r.URL.Path,
		)
	}
	return d.Reraise
}

// Handler adapts h to an [http.Handler] running the full lifecycle:
// Before, the handler, HandleError and the renderer for a failed
// request, then After. A handler returning [http.ErrAbortHandler] aborts
// the response the same way a panic with it does. The response writer
// passed to h sets X-Sentry-ID as headers are committed, so the header
// reaches the client even when the handler writes the response itself.
func (m *Middleware) Handler(h HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r = m.Before(r)
		ctx := r.Context()
		state, _ := stateFromContext(ctx)

		ww, rs := wrapWriter(w, func(hdr http.Header) {
			if id := m.client.LastEventID(ctx); id != "" {
				hdr.Set(HeaderEventID, id)
			}
		})
		defer m.After(ww, r)

		err := serve(h, ww, r)

		// Routers resolve the route while the handler runs, so the
		// template and params are read again here.
		route, params := m.resolver.Resolve(r)
		if route != "" {
			m.client.HTTPContext(ctx, map[string]any{"route": route})
		}
		m.advance(ctx, state, PhaseResponding)

		if err == nil {
			return
		}
		if errAbort(err) {
			panic(http.ErrAbortHandler)
		}
		err = m.HandleError(ctx, err, r, params)
		if rs.headerWritten() {
			m.logger.WarnContext(ctx, "middleware: response already started, error not rendered",
				"error", err,
			)
			return
		}
		m.renderer.Render(ww, r, err)
	})
}

// Wrap adapts a plain [http.Handler]. A panic in next is handled as an
// unclassified error; [http.ErrAbortHandler] is re-panicked after the
// request context is cleared.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	return m.Handler(func(w http.ResponseWriter, r *http.Request) error {
		next.ServeHTTP(w, r)
		return nil
	})
}

// serve runs h, converting a panic into an error.
func serve(h HandlerFunc, w http.ResponseWriter, r *http.Request) (err error) {
	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		if rec == http.ErrAbortHandler {
			panic(rec)
		}
		if e, ok := rec.(error); ok {
			err = e
			return
		}
		err = fmt.Errorf("%v", rec)
	}()
	return h(w, r)
}

// advance moves the request to the given phase. Invalid transitions are
// logged and ignored.
func (m *Middleware) advance(ctx context.Context, state *requestState, to Phase) {
	if state == nil {
		return
	}
	if from, ok := state.advance(to); !ok {
		m.logger.DebugContext(ctx, "middleware: ignoring invalid phase transition",
			"from", from.String(),
			"to", to.String(),
		)
	}
}

// errAbort reports whether err is the sentinel used to abort a handler.
func errAbort(err error) bool {
	return errors.Is(err, http.ErrAbortHandler)
}
