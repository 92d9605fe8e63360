package redis

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sserr "github.com/StricklySoft/stricklysoft-sentry/pkg/errors"
)

func TestSecret_NeverPrinted(t *testing.T) {
	t.Parallel()
	s := Secret("hunter2")
	assert.Equal(t, "hunter2", s.Value())
	assert.Equal(t, redacted, s.String())
	assert.Equal(t, redacted, fmt.Sprintf("%#v", s))

	data, err := json.Marshal(struct{ P Secret }{s})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hunter2")
}

func TestConfig_Validate_AppliesDefaults(t *testing.T) {
	t.Parallel()
	cfg := &Config{}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultHost, cfg.Host)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultPoolSize, cfg.PoolSize)
	assert.Equal(t, DefaultDialTimeout, cfg.DialTimeout)
	assert.Equal(t, DefaultReadTimeout, cfg.ReadTimeout)
	assert.Equal(t, DefaultWriteTimeout, cfg.WriteTimeout)
}

func TestConfig_Validate_URI(t *testing.T) {
	t.Parallel()
	for _, uri := range []string{"redis://localhost:6379/1", "rediss://:pw@cache.internal:6380/0"} {
		cfg := &Config{URI: uri}
		assert.NoError(t, cfg.Validate(), uri)
		assert.Empty(t, cfg.Host, "structured fields untouched for %s", uri)
	}
}

func TestConfig_Validate_Errors(t *testing.T) {
	t.Parallel()
	tests := map[string]*Config{
		"uri scheme":     {URI: "http://localhost:6379"},
		"uri parse":      {URI: "redis://[::1"},
		"port high":      {Port: 70000},
		"port negative":  {Port: -1},
		"pool negative":  {PoolSize: -1},
		"dial negative":  {DialTimeout: -time.Second},
		"read negative":  {ReadTimeout: -time.Second},
		"write negative": {WriteTimeout: -time.Second},
	}
	for name, cfg := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, sserr.CodeValidation, sserr.GetCode(err))
		})
	}
}

func TestConfig_Addr(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	assert.Equal(t, "localhost:6379", cfg.addr())
}

func TestTruncateStatement(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "HSET k", truncateStatement("HSET k"))

	exact := strings.Repeat("a", maxStatementTruncateLen)
	assert.Equal(t, exact, truncateStatement(exact))

	long := strings.Repeat("é", maxStatementTruncateLen+5)
	got := truncateStatement(long)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, maxStatementTruncateLen+3, len([]rune(got)))
}
