package middleware

import (
	"encoding/json"
	"net/http"

	sserr "github.com/StricklySoft/stricklysoft-sentry/pkg/errors"
)

// Renderer writes the response for an error returned by
// [Middleware.HandleError].
type Renderer interface {
	Render(w http.ResponseWriter, r *http.Request, err error)
}

// RendererFunc adapts a function to the [Renderer] interface.
type RendererFunc func(w http.ResponseWriter, r *http.Request, err error)

// Render calls f(w, r, err).
func (f RendererFunc) Render(w http.ResponseWriter, r *http.Request, err error) {
	f(w, r, err)
}

// JSONRenderer is the default [Renderer]. A [sserr.Status] signal is
// written verbatim (headers, status, body). An [sserr.HTTPError] is
// written as the JSON encoding of its ToMap with its status. Any other
// error becomes a bare 500.
var JSONRenderer Renderer = RendererFunc(renderJSON)

func renderJSON(w http.ResponseWriter, _ *http.Request, err error) {
	if s, ok := sserr.AsStatus(err); ok {
		for k, v := range s.Header {
			w.Header()[k] = v
		}
		w.WriteHeader(s.Code)
		if s.Body != "" {
			_, _ = w.Write([]byte(s.Body))
		}
		return
	}

	status := http.StatusInternalServerError
	body := map[string]any{"title": http.StatusText(status)}
	if httpErr, ok := sserr.AsHTTPError(err); ok {
		if code := httpErr.HTTPStatus(); code != 0 {
			status = code
		}
		body = httpErr.ToMap()
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
