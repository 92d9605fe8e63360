// Package testutil provides shared test helpers for the error-reporting
// packages: error-code assertions, environment and config-file fixtures,
// and a recording [reporting.Transport].
//
// Helpers accept [testing.TB] and call t.Helper() so failures point at
// the caller. Require* helpers halt the test; Assert* helpers record the
// failure and continue.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sserr "github.com/StricklySoft/stricklysoft-sentry/pkg/errors"
)

// RequireErrorCode halts the test unless err is an *sserr.Error carrying
// code.
//
// Example:
//
//	_, err := reporting.NewClient(nil)
//	testutil.RequireErrorCode(t, err, sserr.CodeInternalConfiguration)
func RequireErrorCode(t testing.TB, err error, code sserr.Code, msgAndArgs ...any) {
	t.Helper()
	require.Error(t, err, msgAndArgs...)
	ssErr, ok := sserr.AsError(err)
	require.True(t, ok, "expected *sserr.Error, got %T: %v", err, err)
	require.Equal(t, code, ssErr.Code,
		"error code mismatch: got %q, want %q (message: %s)",
		ssErr.Code, code, ssErr.Message)
}

// AssertErrorCode is the non-halting form of [RequireErrorCode], for
// table-driven tests that should report every failing row.
func AssertErrorCode(t testing.TB, err error, code sserr.Code, msgAndArgs ...any) bool {
	t.Helper()
	if !assert.Error(t, err, msgAndArgs...) {
		return false
	}
	ssErr, ok := sserr.AsError(err)
	if !assert.True(t, ok, "expected *sserr.Error, got %T: %v", err, err) {
		return false
	}
	return assert.Equal(t, code, ssErr.Code,
		"error code mismatch: got %q, want %q (message: %s)",
		ssErr.Code, code, ssErr.Message)
}

// TempConfigFile writes content to config<ext> in a per-test temporary
// directory with mode 0600 and returns its path.
func TempConfigFile(t testing.TB, content, ext string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config"+ext)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600),
		"failed to write temp config file %s", path)
	return path
}

// SetEnv sets key for the duration of the test. Tests using it must not
// call t.Parallel().
func SetEnv(t testing.TB, key, value string) {
	t.Helper()
	t.Setenv(key, value)
}

// UnsetEnv removes key for the duration of the test and restores the
// previous value on cleanup. Tests using it must not call t.Parallel().
func UnsetEnv(t testing.TB, key string) {
	t.Helper()
	prev, existed := os.LookupEnv(key)
	if !existed {
		return
	}
	require.NoError(t, os.Unsetenv(key), "failed to unset env var %s", key)
	t.Cleanup(func() {
		_ = os.Setenv(key, prev)
	})
}

// AssertJSONNotContains asserts that the JSON encoding of v does not
// contain unexpected. Used to check that redacted values never reach a
// captured event.
func AssertJSONNotContains(t testing.TB, v any, unexpected string) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err, "json.Marshal failed")
	assert.NotContains(t, string(data), unexpected,
		"expected JSON to not contain %q, got: %s", unexpected, string(data))
}
