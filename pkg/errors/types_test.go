package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Error(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "error without cause",
			err:  &Error{Code: CodeValidation, Message: "invalid email address"},
			want: "VAL_001: invalid email address",
		},
		{
			name: "error with cause",
			err: &Error{
				Code:    CodeInternalDatabase,
				Message: "failed to fetch widget",
				Cause:   errors.New("connection refused"),
			},
			want: "INT_002: failed to fetch widget: connection refused",
		},
		{
			name: "error with empty message",
			err:  &Error{Code: CodeInternal},
			want: "INT_001: ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	t.Parallel()
	cause := errors.New("underlying error")
	err := &Error{Code: CodeInternal, Message: "operation failed", Cause: cause}

	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, errors.Is(err, cause))
	assert.Nil(t, (&Error{Code: CodeInternal}).Unwrap())
}

func TestError_HTTPStatus(t *testing.T) {
	t.Parallel()
	tests := []struct {
		code Code
		want int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeAuthentication, http.StatusUnauthorized},
		{CodeAuthorization, http.StatusForbidden},
		{CodeNotFound, http.StatusNotFound},
		{CodeNotFoundRoute, http.StatusNotFound},
		{CodeMethodNotAllowed, http.StatusMethodNotAllowed},
		{CodeConflict, http.StatusConflict},
		{CodeRateLimited, http.StatusTooManyRequests},
		{CodeInternal, http.StatusInternalServerError},
		{CodeUnavailable, http.StatusServiceUnavailable},
		{CodeTimeout, http.StatusGatewayTimeout},
		{Code("WHATEVER_001"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, New(tt.code, "x").HTTPStatus())
		})
	}
}

func TestError_HTTPStatus_Override(t *testing.T) {
	t.Parallel()
	err := NotFound("gone").WithStatus(http.StatusGone)
	assert.Equal(t, http.StatusGone, err.HTTPStatus())
}

func TestError_ToMap(t *testing.T) {
	t.Parallel()

	t.Run("title and code only", func(t *testing.T) {
		t.Parallel()
		got := NotFound("Not Found").ToMap()
		assert.Equal(t, map[string]any{"title": "Not Found", "code": "NF_001"}, got)
	})

	t.Run("description included when set", func(t *testing.T) {
		t.Parallel()
		got := UnknownError("boom").ToMap()
		assert.Equal(t, "Unknown Error", got["title"])
		assert.Equal(t, "boom", got["description"])
	})

	t.Run("details merged but do not overwrite fixed keys", func(t *testing.T) {
		t.Parallel()
		got := NotFound("Not Found").WithDetails(map[string]any{
			"widget_id": "42",
			"title":     "spoofed",
		}).ToMap()
		assert.Equal(t, "42", got["widget_id"])
		assert.Equal(t, "Not Found", got["title"])
	})

	t.Run("empty code omitted", func(t *testing.T) {
		t.Parallel()
		got := (&Error{Message: "plain"}).ToMap()
		_, ok := got["code"]
		assert.False(t, ok)
	})
}

func TestError_WithDetail_DoesNotMutateOriginal(t *testing.T) {
	t.Parallel()
	original := NotFound("Not Found")
	derived := original.WithDetail("id", "1").WithDescription("missing")

	assert.Empty(t, original.Details)
	assert.Empty(t, original.Description)
	assert.Equal(t, "1", derived.Details["id"])
	assert.Equal(t, "missing", derived.Description)
}

func TestError_Format(t *testing.T) {
	t.Parallel()
	err := &Error{
		Code:        CodeInternal,
		Message:     "operation failed",
		Description: "details",
		Cause:       errors.New("disk full"),
	}

	assert.Equal(t, err.Error(), fmt.Sprintf("%v", err))
	assert.Equal(t, err.Error(), fmt.Sprintf("%s", err))
	assert.Equal(t, fmt.Sprintf("%q", err.Error()), fmt.Sprintf("%q", err))

	detailed := fmt.Sprintf("%+v", err)
	require.Contains(t, detailed, `Code: "INT_001"`)
	assert.Contains(t, detailed, "Status: 500")
	assert.Contains(t, detailed, `Description: "details"`)
	assert.Contains(t, detailed, "Cause: disk full")
}
