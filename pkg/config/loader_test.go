package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StricklySoft/stricklysoft-sentry/internal/testutil"
	sserr "github.com/StricklySoft/stricklysoft-sentry/pkg/errors"
)

// Tests in this file set process environment variables and therefore do
// not run in parallel.

// ===========================================================================
// Test Types
// ===========================================================================

type dsn string

type reporterConfig struct {
	DSN          dsn           `env:"DSN" yaml:"dsn" json:"dsn"`
	Environment  string        `env:"ENVIRONMENT" envDefault:"development" yaml:"environment" json:"environment"`
	SampleRate   float64       `env:"SAMPLE_RATE" envDefault:"1.0" yaml:"sample_rate" json:"sample_rate"`
	Debug        bool          `env:"DEBUG" yaml:"debug" json:"debug"`
	FlushTimeout time.Duration `env:"FLUSH_TIMEOUT" envDefault:"2s" yaml:"flush_timeout" json:"flush_timeout"`
	MaxBodyBytes uint32        `env:"MAX_BODY_BYTES" envDefault:"65536" yaml:"max_body_bytes" json:"max_body_bytes"`
	Sensitive    []string      `env:"SENSITIVE_HEADERS" envDefault:"Authorization, Cookie" yaml:"sensitive" json:"sensitive"`
}

type serviceConfig struct {
	Addr     string         `env:"ADDR" envDefault:":8080" yaml:"addr" json:"addr"`
	Reporter reporterConfig `env:"SENTRY" yaml:"reporter" json:"reporter"`
	Journal  journalConfig  `env:"JOURNAL" yaml:"journal" json:"journal"`
}

type journalConfig struct {
	KeyPrefix string        `env:"KEY_PREFIX" required:"true" yaml:"key_prefix" json:"key_prefix"`
	TTL       time.Duration `env:"TTL" envDefault:"24h" yaml:"ttl" json:"ttl"`
}

type rateConfig struct {
	SampleRate float64 `env:"SAMPLE_RATE" envDefault:"1.0"`
}

func (c *rateConfig) Validate() error {
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return sserr.Newf(sserr.CodeValidation, "sample rate %v out of range", c.SampleRate)
	}
	return nil
}

type plainValidated struct {
	Name string `env:"NAME"`
}

func (c *plainValidated) Validate() error {
	if c.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

// ===========================================================================
// Argument checks
// ===========================================================================

func TestLoader_Load_RejectsNonStructPointer(t *testing.T) {
	var n int
	var nilCfg *reporterConfig
	for name, cfg := range map[string]any{
		"nil pointer": nilCfg,
		"non-pointer": reporterConfig{},
		"non-struct":  &n,
		"untyped nil": nil,
	} {
		t.Run(name, func(t *testing.T) {
			testutil.AssertErrorCode(t, New().Load(cfg), sserr.CodeInternalConfiguration)
		})
	}
}

// ===========================================================================
// Defaults
// ===========================================================================

func TestLoader_Load_Defaults(t *testing.T) {
	var cfg reporterConfig
	require.NoError(t, New().Load(&cfg))

	assert.Equal(t, "development", cfg.Environment)
	assert.InDelta(t, 1.0, cfg.SampleRate, 1e-9)
	assert.Equal(t, 2*time.Second, cfg.FlushTimeout)
	assert.Equal(t, uint32(65536), cfg.MaxBodyBytes)
	assert.Equal(t, []string{"Authorization", "Cookie"}, cfg.Sensitive)
	assert.Empty(t, cfg.DSN)
}

func TestLoader_Load_DefaultsKeepExistingValues(t *testing.T) {
	cfg := reporterConfig{Environment: "production", SampleRate: 0.1}
	require.NoError(t, New().Load(&cfg))

	assert.Equal(t, "production", cfg.Environment)
	assert.InDelta(t, 0.1, cfg.SampleRate, 1e-9)
}

// ===========================================================================
// Environment
// ===========================================================================

func TestLoader_Load_EnvTypes(t *testing.T) {
	t.Setenv("DSN", "https://key@sentry.example.com/7")
	t.Setenv("SAMPLE_RATE", "0.25")
	t.Setenv("DEBUG", "true")
	t.Setenv("FLUSH_TIMEOUT", "750ms")
	t.Setenv("MAX_BODY_BYTES", "1024")
	t.Setenv("SENSITIVE_HEADERS", "X-Api-Key ,Cookie")

	var cfg reporterConfig
	require.NoError(t, New().Load(&cfg))

	assert.Equal(t, dsn("https://key@sentry.example.com/7"), cfg.DSN)
	assert.InDelta(t, 0.25, cfg.SampleRate, 1e-9)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 750*time.Millisecond, cfg.FlushTimeout)
	assert.Equal(t, uint32(1024), cfg.MaxBodyBytes)
	assert.Equal(t, []string{"X-Api-Key", "Cookie"}, cfg.Sensitive)
}

func TestLoader_Load_EnvParseErrors(t *testing.T) {
	tests := []struct{ key, val string }{
		{"SAMPLE_RATE", "half"},
		{"DEBUG", "maybe"},
		{"FLUSH_TIMEOUT", "soon"},
		{"MAX_BODY_BYTES", "-1"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			var cfg reporterConfig
			err := New().Load(&cfg)
			testutil.AssertErrorCode(t, err, sserr.CodeInternalConfiguration)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoader_Load_NestedPrefixes(t *testing.T) {
	t.Setenv("WIDGETS_ADDR", ":9090")
	t.Setenv("WIDGETS_SENTRY_ENVIRONMENT", "staging")
	t.Setenv("WIDGETS_JOURNAL_KEY_PREFIX", "widgets:events")

	var cfg serviceConfig
	require.NoError(t, New().WithEnvPrefix("widgets").Load(&cfg))

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "staging", cfg.Reporter.Environment)
	assert.Equal(t, "widgets:events", cfg.Journal.KeyPrefix)
	assert.Equal(t, 24*time.Hour, cfg.Journal.TTL)
}

// ===========================================================================
// Files
// ===========================================================================

func TestLoader_Load_YAMLFile(t *testing.T) {
	path := testutil.TempConfigFile(t, `
addr: ":7070"
reporter:
  environment: production
  sample_rate: 0.5
journal:
  key_prefix: "svc:events"
  ttl: 1h
`, ".yaml")

	var cfg serviceConfig
	require.NoError(t, New().WithFile(path).Load(&cfg))

	assert.Equal(t, ":7070", cfg.Addr)
	assert.Equal(t, "production", cfg.Reporter.Environment)
	assert.InDelta(t, 0.5, cfg.Reporter.SampleRate, 1e-9)
	assert.Equal(t, "svc:events", cfg.Journal.KeyPrefix)
	assert.Equal(t, time.Hour, cfg.Journal.TTL)
}

func TestLoader_Load_JSONFile(t *testing.T) {
	path := testutil.TempConfigFile(t, `{"addr":":6060","journal":{"key_prefix":"j"}}`, ".json")

	var cfg serviceConfig
	require.NoError(t, New().WithFile(path).Load(&cfg))

	assert.Equal(t, ":6060", cfg.Addr)
	assert.Equal(t, "j", cfg.Journal.KeyPrefix)
}

func TestLoader_Load_PriorityOrder(t *testing.T) {
	path := testutil.TempConfigFile(t, "environment: staging\nsample_rate: 0.5\n", ".yml")
	t.Setenv("SAMPLE_RATE", "0.75")

	var cfg reporterConfig
	require.NoError(t, New().WithFile(path).Load(&cfg))

	// default < file < env
	assert.Equal(t, "staging", cfg.Environment)
	assert.InDelta(t, 0.75, cfg.SampleRate, 1e-9)
	assert.Equal(t, 2*time.Second, cfg.FlushTimeout)
}

func TestLoader_Load_MissingFileIsSkipped(t *testing.T) {
	var cfg reporterConfig
	require.NoError(t, New().WithFile(t.TempDir()+"/absent.yaml").Load(&cfg))
	assert.Equal(t, "development", cfg.Environment)
}

func TestLoader_Load_FileErrors(t *testing.T) {
	tests := map[string]string{
		"traversal": "../config.yaml",
		"extension": testutil.TempConfigFile(t, "addr = 1", ".toml"),
		"bad yaml":  testutil.TempConfigFile(t, "addr: [unclosed", ".yaml"),
		"bad json":  testutil.TempConfigFile(t, "{", ".json"),
	}
	for name, path := range tests {
		t.Run(name, func(t *testing.T) {
			var cfg serviceConfig
			testutil.AssertErrorCode(t, New().WithFile(path).Load(&cfg), sserr.CodeInternalConfiguration)
		})
	}
}

// ===========================================================================
// Validation
// ===========================================================================

func TestLoader_Load_RequiredNested(t *testing.T) {
	var cfg serviceConfig
	err := New().Load(&cfg)
	testutil.RequireErrorCode(t, err, sserr.CodeValidationRequired)
	assert.Contains(t, err.Error(), "Journal.KeyPrefix")
}

func TestLoader_Load_ValidatorPassesThroughSSError(t *testing.T) {
	t.Setenv("SAMPLE_RATE", "2")
	var cfg rateConfig
	testutil.RequireErrorCode(t, New().Load(&cfg), sserr.CodeValidation)
}

func TestLoader_Load_ValidatorWrapsPlainError(t *testing.T) {
	var cfg plainValidated
	err := New().Load(&cfg)
	testutil.RequireErrorCode(t, err, sserr.CodeValidation)
	assert.ErrorContains(t, err, "name is required")
}

func TestMustLoad(t *testing.T) {
	t.Setenv("JOURNAL_KEY_PREFIX", "events")
	cfg := MustLoad[serviceConfig](New())
	assert.Equal(t, "events", cfg.Journal.KeyPrefix)

	assert.Panics(t, func() {
		t.Setenv("SAMPLE_RATE", "2")
		_ = MustLoad[rateConfig](New())
	})
}
