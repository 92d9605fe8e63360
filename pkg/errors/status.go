package errors

import (
	"fmt"
	"net/http"
)

// Status is a control-flow signal: a handler returns it to short-circuit
// request processing with a complete response (a redirect, a 304, an
// auth challenge). A Status is not a failure. The classifier passes it
// through untouched and the renderer writes it verbatim.
type Status struct {
	// Code is the HTTP status code to respond with.
	Code int

	// Header holds response headers to set (e.g., Location).
	Header http.Header

	// Body is written as the response body when non-empty.
	Body string
}

// Error implements the error interface so a Status can travel through
// handler error returns.
func (s *Status) Error() string {
	return fmt.Sprintf("status %d %s", s.Code, http.StatusText(s.Code))
}

// NewStatus creates a signal with the given status code and no headers.
func NewStatus(code int) *Status {
	return &Status{Code: code, Header: make(http.Header)}
}

// Redirect creates a redirect signal. Codes outside 300-399 are replaced
// with 302 Found.
func Redirect(code int, location string) *Status {
	if code < 300 || code > 399 {
		code = http.StatusFound
	}
	s := NewStatus(code)
	s.Header.Set("Location", location)
	return s
}

// NotModified creates a 304 Not Modified signal.
func NotModified() *Status {
	return NewStatus(http.StatusNotModified)
}
