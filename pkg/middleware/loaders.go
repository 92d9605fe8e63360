package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	sserr "github.com/StricklySoft/stricklysoft-sentry/pkg/errors"
)

// BodyLoader extracts a representation of the request body for the http
// context. It runs before the handler, so it must leave r.Body readable.
type BodyLoader func(r *http.Request) (any, error)

// UserLoader extracts the user context for a request. Returning a nil map
// with a nil error leaves the user context untouched.
type UserLoader func(r *http.Request) (map[string]any, error)

// DefaultMaxBodyBytes bounds how much of the body [JSONBodyLoader] reads.
const DefaultMaxBodyBytes = 64 << 10

// JSONBodyLoader returns a [BodyLoader] that reads up to maxBytes of the
// body. JSON bodies that fit are decoded; anything else is reported as a
// string. The consumed bytes are replayed so the handler still sees the
// full body. A non-positive maxBytes uses [DefaultMaxBodyBytes].
func JSONBodyLoader(maxBytes int64) BodyLoader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	return func(r *http.Request) (any, error) {
		if r.Body == nil || r.Body == http.NoBody {
			return nil, nil
		}

		buf, err := io.ReadAll(io.LimitReader(r.Body, maxBytes+1))
		r.Body = replayBody{Reader: io.MultiReader(bytes.NewReader(buf), r.Body), Closer: r.Body}
		if err != nil {
			return nil, sserr.Wrap(err, sserr.CodeValidation, "middleware: failed to read request body")
		}
		if len(buf) == 0 {
			return nil, nil
		}

		truncated := int64(len(buf)) > maxBytes
		if truncated {
			buf = buf[:maxBytes]
		}
		if !truncated && isJSON(r.Header.Get("Content-Type")) {
			var v any
			if err := json.Unmarshal(buf, &v); err == nil {
				return v, nil
			}
		}
		return string(buf), nil
	}
}

type replayBody struct {
	io.Reader
	io.Closer
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

// bearerPrefix is the Authorization scheme prefix for bearer tokens.
const bearerPrefix = "Bearer "

// bearerToken extracts the token from an Authorization header value. The
// scheme comparison is case-insensitive. Returns "" when absent.
func bearerToken(authHeader string) string {
	if len(authHeader) <= len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(authHeader[len(bearerPrefix):])
}

// JWTUserLoader returns a [UserLoader] that verifies the request's bearer
// token with keyFunc and reports its claims as the user context:
// "sub" becomes "id", "preferred_username" becomes "username", and
// "email" is kept. Requests without a bearer token yield no user. Pass
// jwt.WithValidMethods to pin the accepted signing algorithms.
func JWTUserLoader(keyFunc jwt.Keyfunc, opts ...jwt.ParserOption) UserLoader {
	return func(r *http.Request) (map[string]any, error) {
		raw := bearerToken(r.Header.Get("Authorization"))
		if raw == "" {
			return nil, nil
		}

		token, err := jwt.Parse(raw, keyFunc, opts...)
		if err != nil {
			return nil, sserr.Wrap(err, sserr.CodeAuthentication, "middleware: invalid bearer token")
		}
		mc, ok := token.Claims.(jwt.MapClaims)
		if !ok || !token.Valid {
			return nil, sserr.New(sserr.CodeAuthentication, "middleware: invalid bearer token claims")
		}

		user := make(map[string]any, 3)
		if sub, err := mc.GetSubject(); err == nil && sub != "" {
			user["id"] = sub
		}
		if email, ok := mc["email"].(string); ok && email != "" {
			user["email"] = email
		}
		if name, ok := mc["preferred_username"].(string); ok && name != "" {
			user["username"] = name
		}
		if len(user) == 0 {
			return nil, nil
		}
		return user, nil
	}
}

// callLoader invokes a loader, converting a panic into an error.
func callLoader[T any](load func(*http.Request) (T, error), r *http.Request) (v T, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = sserr.New(sserr.CodeInternal, fmt.Sprintf("middleware: context loader panicked: %v", rec))
		}
	}()
	return load(r)
}
