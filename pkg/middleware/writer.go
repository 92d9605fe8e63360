package middleware

import (
	"io"
	"net/http"
	"sync"

	"github.com/felixge/httpsnoop"
)

// HeaderEventID carries the id of the event captured while handling the
// request.
const HeaderEventID = "X-Sentry-ID"

// responseState records whether the response headers were committed.
type responseState struct {
	once    sync.Once
	written bool
}

// headerWritten reports whether the wrapped writer already sent headers.
func (s *responseState) headerWritten() bool {
	return s.written
}

// wrapWriter returns w wrapped so that inject runs exactly once, right
// before the headers are committed by WriteHeader, Write, ReadFrom or
// Flush. The optional interfaces of w are preserved.
func wrapWriter(w http.ResponseWriter, inject func(http.Header)) (http.ResponseWriter, *responseState) {
	st := &responseState{}
	commit := func() {
		st.once.Do(func() {
			inject(w.Header())
			st.written = true
		})
	}
	return httpsnoop.Wrap(w, httpsnoop.Hooks{
		WriteHeader: func(next httpsnoop.WriteHeaderFunc) httpsnoop.WriteHeaderFunc {
			return func(code int) {
				commit()
				next(code)
			}
		},
		Write: func(next httpsnoop.WriteFunc) httpsnoop.WriteFunc {
			return func(b []byte) (int, error) {
				commit()
				return next(b)
			}
		},
		ReadFrom: func(next httpsnoop.ReadFromFunc) httpsnoop.ReadFromFunc {
			return func(src io.Reader) (int64, error) {
				commit()
				return next(src)
			}
		},
		Flush: func(next httpsnoop.FlushFunc) httpsnoop.FlushFunc {
			return func() {
				commit()
				next()
			}
		},
	}), st
}
