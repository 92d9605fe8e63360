package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	sserr "github.com/StricklySoft/stricklysoft-sentry/pkg/errors"
)

func TestJSONRenderer_Status(t *testing.T) {
	t.Parallel()
	s := sserr.NewStatus(http.StatusUnauthorized)
	s.Header.Set("WWW-Authenticate", `Bearer realm="api"`)
	s.Body = "login required"

	rec := httptest.NewRecorder()
	JSONRenderer.Render(rec, httptest.NewRequest(http.MethodGet, "/", nil), s)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, `Bearer realm="api"`, rec.Header().Get("WWW-Authenticate"))
	assert.Equal(t, "login required", rec.Body.String())
}

func TestJSONRenderer_HTTPError(t *testing.T) {
	t.Parallel()
	rec := httptest.NewRecorder()
	err := sserr.BadRequest("Invalid widget").WithDetail("field", "color")
	JSONRenderer.Render(rec, httptest.NewRequest(http.MethodGet, "/", nil), err)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"title":"Invalid widget","code":"VAL_001","field":"color"}`, rec.Body.String())
}

func TestJSONRenderer_PlainError(t *testing.T) {
	t.Parallel()
	rec := httptest.NewRecorder()
	JSONRenderer.Render(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("secret detail"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"title":"Internal Server Error"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "secret detail")
}
