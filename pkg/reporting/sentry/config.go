package sentry

import (
	"time"

	sserr "github.com/StricklySoft/stricklysoft-sentry/pkg/errors"
)

// DefaultFlushTimeout is the time [Transport.Flush] waits for buffered
// events during shutdown when the config leaves it unset.
const DefaultFlushTimeout = 2 * time.Second

// Config holds the Sentry client settings. Fields are loaded by
// pkg/config from the environment variables named in the env tags.
//
// An empty DSN is valid: the client is created but drops every event,
// which is how reporting is disabled in local development.
type Config struct {
	// DSN is the Sentry project DSN.
	// Environment variable: SENTRY_DSN
	DSN string `json:"-" yaml:"dsn" env:"SENTRY_DSN"`

	// Environment tags events with the deployment environment
	// (e.g., "production", "staging").
	// Environment variable: SENTRY_ENVIRONMENT
	Environment string `json:"environment,omitempty" yaml:"environment" env:"SENTRY_ENVIRONMENT"`

	// Release tags events with the application version.
	// Environment variable: SENTRY_RELEASE
	Release string `json:"release,omitempty" yaml:"release" env:"SENTRY_RELEASE"`

	// ServerName overrides the host name reported with events.
	// Environment variable: SENTRY_SERVER_NAME
	ServerName string `json:"server_name,omitempty" yaml:"server_name" env:"SENTRY_SERVER_NAME"`

	// SampleRate is the fraction of events sent, in [0, 1]. sentry-go
	// treats 0 as 1.
	// Default: 1.0
	// Environment variable: SENTRY_SAMPLE_RATE
	SampleRate float64 `json:"sample_rate" yaml:"sample_rate" env:"SENTRY_SAMPLE_RATE" envDefault:"1.0"`

	// Debug enables sentry-go's internal debug logging.
	// Environment variable: SENTRY_DEBUG
	Debug bool `json:"debug,omitempty" yaml:"debug" env:"SENTRY_DEBUG"`

	// FlushTimeout bounds the wait for buffered events on shutdown.
	// Default: 2s
	// Environment variable: SENTRY_FLUSH_TIMEOUT
	FlushTimeout time.Duration `json:"flush_timeout,omitempty" yaml:"flush_timeout" env:"SENTRY_FLUSH_TIMEOUT" envDefault:"2s"`
}

// DefaultConfig returns a Config with a sample rate of 1 and the default
// flush timeout.
func DefaultConfig() *Config {
	return &Config{
		SampleRate:   1.0,
		FlushTimeout: DefaultFlushTimeout,
	}
}

// Validate applies defaults to zero-valued fields and checks ranges.
//
// Validation rules:
//   - SampleRate must be between 0 and 1
//   - FlushTimeout must not be negative
func (c *Config) Validate() error {
	if c.FlushTimeout == 0 {
		c.FlushTimeout = DefaultFlushTimeout
	}
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return sserr.Newf(sserr.CodeValidation,
			"sentry: config sample_rate must be between 0 and 1, got %v", c.SampleRate)
	}
	if c.FlushTimeout < 0 {
		return sserr.Newf(sserr.CodeValidation,
			"sentry: config flush_timeout must not be negative, got %v", c.FlushTimeout)
	}
	return nil
}
