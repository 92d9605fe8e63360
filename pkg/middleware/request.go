package middleware

import (
	"maps"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Redacted replaces the value of sensitive headers in reported context.
const Redacted = "[REDACTED]"

// DefaultSensitiveHeaders are redacted from the reported headers unless
// overridden with [WithSensitiveHeaders].
var DefaultSensitiveHeaders = []string{
	"Authorization",
	"Cookie",
	"Set-Cookie",
	"Proxy-Authorization",
	"X-Api-Key",
}

// RequestContext is the diagnostic snapshot of an inbound request.
type RequestContext struct {
	// URL is scheme://host/path, without the query string.
	URL string

	// QueryString is the raw query string without the leading "?".
	QueryString string

	// Params holds the first value of every query parameter.
	Params map[string]string

	// Headers holds header values joined with ", ", sensitive values
	// redacted.
	Headers map[string]string

	// Route is the matched route template (e.g. "/widgets/{id}"), or ""
	// when no route was resolved.
	Route string

	// Method is the HTTP method.
	Method string

	// Env holds server-side connection details.
	Env map[string]string

	// Body is set only by a body loader.
	Body any
}

// ToMap returns a deep copy of the context in the shape attached to
// reports. An empty Route is reported as null and a nil Body is omitted.
func (rc RequestContext) ToMap() map[string]any {
	out := map[string]any{
		"url":          rc.URL,
		"query_string": rc.QueryString,
		"params":       maps.Clone(rc.Params),
		"headers":      maps.Clone(rc.Headers),
		"route":        nil,
		"method":       rc.Method,
		"env":          maps.Clone(rc.Env),
	}
	if rc.Route != "" {
		out["route"] = rc.Route
	}
	if rc.Body != nil {
		out["body"] = rc.Body
	}
	return out
}

// NewRequestContext builds a [RequestContext] from r. sensitive lists
// header names (case-insensitive) whose values are redacted; route is the
// resolved route template.
func NewRequestContext(r *http.Request, route string, sensitive []string) RequestContext {
	redact := make(map[string]struct{}, len(sensitive))
	for _, h := range sensitive {
		redact[http.CanonicalHeaderKey(h)] = struct{}{}
	}

	headers := make(map[string]string, len(r.Header)+1)
	for k, v := range r.Header {
		if _, ok := redact[http.CanonicalHeaderKey(k)]; ok {
			headers[k] = Redacted
			continue
		}
		headers[k] = strings.Join(v, ", ")
	}
	if r.Host != "" {
		headers["Host"] = r.Host
	}

	query := r.URL.Query()
	params := make(map[string]string, len(query))
	for k, v := range query {
		if len(v) > 0 {
			params[k] = v[0]
		} else {
			params[k] = ""
		}
	}

	return RequestContext{
		URL:         requestScheme(r) + "://" + r.Host + r.URL.Path,
		QueryString: r.URL.RawQuery,
		Params:      params,
		Headers:     headers,
		Route:       route,
		Method:      r.Method,
		Env:         requestEnv(r),
	}
}

func requestScheme(r *http.Request) string {
	if r.URL.Scheme != "" {
		return r.URL.Scheme
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}

// requestEnv returns the connection details a WSGI-style environment would
// expose: REMOTE_ADDR, SERVER_NAME, SERVER_PORT and SERVER_PROTOCOL.
func requestEnv(r *http.Request) map[string]string {
	env := map[string]string{
		"SERVER_PROTOCOL": r.Proto,
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		env["REMOTE_ADDR"] = host
	} else if r.RemoteAddr != "" {
		env["REMOTE_ADDR"] = r.RemoteAddr
	}

	name, port, err := net.SplitHostPort(r.Host)
	if err != nil {
		name = r.Host
		port = "80"
		if r.TLS != nil {
			port = "443"
		}
	}
	if addr, ok := r.Context().Value(http.LocalAddrContextKey).(net.Addr); ok {
		if _, p, err := net.SplitHostPort(addr.String()); err == nil {
			port = p
		}
	}
	env["SERVER_NAME"] = name
	env["SERVER_PORT"] = port
	return env
}

// RouteResolver returns the matched route template and route parameters
// of a request. It returns "" and nil when routing has not happened yet.
type RouteResolver interface {
	Resolve(r *http.Request) (route string, params map[string]string)
}

// RouteResolverFunc adapts a function to the [RouteResolver] interface.
type RouteResolverFunc func(r *http.Request) (string, map[string]string)

// Resolve calls f(r).
func (f RouteResolverFunc) Resolve(r *http.Request) (string, map[string]string) {
	return f(r)
}

// ChiRouteResolver resolves routes from chi's routing context, falling
// back to the pattern recorded by [http.ServeMux].
var ChiRouteResolver RouteResolver = RouteResolverFunc(resolveChiRoute)

func resolveChiRoute(r *http.Request) (string, map[string]string) {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			params := make(map[string]string, len(rctx.URLParams.Keys))
			for i, k := range rctx.URLParams.Keys {
				// Mounted sub-routers record their remainder under "*".
				if k == "*" {
					continue
				}
				if i < len(rctx.URLParams.Values) {
					params[k] = rctx.URLParams.Values[i]
				}
			}
			return pattern, params
		}
	}
	if r.Pattern != "" {
		return r.Pattern, nil
	}
	return "", nil
}
