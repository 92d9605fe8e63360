package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// customHTTPError is an application-defined HTTPError that is not *Error.
type customHTTPError struct {
	status int
}

func (e customHTTPError) Error() string         { return "custom" }
func (e customHTTPError) HTTPStatus() int       { return e.status }
func (e customHTTPError) ToMap() map[string]any { return map[string]any{"title": "custom"} }

func TestKindOf(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindUnclassified},
		{"plain error", errors.New("boom"), KindUnclassified},
		{"redirect", Redirect(http.StatusFound, "/login"), KindSignal},
		{"wrapped redirect", fmt.Errorf("auth: %w", Redirect(http.StatusSeeOther, "/")), KindSignal},
		{"platform error", NotFound("Not Found"), KindHTTP},
		{"wrapped platform error", fmt.Errorf("lookup: %w", Conflict("dup")), KindHTTP},
		{"custom http error", customHTTPError{status: 418}, KindHTTP},
		{"unknown error", UnknownError("boom"), KindHTTP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestKind_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "signal", KindSignal.String())
	assert.Equal(t, "http", KindHTTP.String())
	assert.Equal(t, "unclassified", KindUnclassified.String())
}

func TestAsHTTPError(t *testing.T) {
	t.Parallel()
	wrapped := fmt.Errorf("outer: %w", customHTTPError{status: 409})

	h, ok := AsHTTPError(wrapped)
	require.True(t, ok)
	assert.Equal(t, 409, h.HTTPStatus())

	_, ok = AsHTTPError(errors.New("plain"))
	assert.False(t, ok)
}

func TestStatus(t *testing.T) {
	t.Parallel()

	t.Run("redirect sets location", func(t *testing.T) {
		t.Parallel()
		s := Redirect(http.StatusMovedPermanently, "/new")
		assert.Equal(t, http.StatusMovedPermanently, s.Code)
		assert.Equal(t, "/new", s.Header.Get("Location"))
		assert.Equal(t, "status 301 Moved Permanently", s.Error())
	})

	t.Run("redirect with non-3xx code falls back to 302", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, http.StatusFound, Redirect(http.StatusOK, "/").Code)
	})

	t.Run("not modified", func(t *testing.T) {
		t.Parallel()
		s, ok := AsStatus(fmt.Errorf("cache: %w", NotModified()))
		require.True(t, ok)
		assert.Equal(t, http.StatusNotModified, s.Code)
	})
}
