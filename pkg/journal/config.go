package journal

import (
	"strings"
	"time"

	sserr "github.com/StricklySoft/stricklysoft-sentry/pkg/errors"
)

const (
	// DefaultKeyPrefix namespaces journal hashes in Redis.
	DefaultKeyPrefix = "sentry:events"

	// DefaultTTL keeps journal entries for one week.
	DefaultTTL = 7 * 24 * time.Hour
)

// Config holds journal settings. Env tags are relative; load the struct
// under a prefix such as JOURNAL.
type Config struct {
	// KeyPrefix is prepended to every event id, separated by a colon.
	// Environment variable: JOURNAL_KEY_PREFIX
	KeyPrefix string `json:"key_prefix" yaml:"key_prefix" env:"KEY_PREFIX" envDefault:"sentry:events"`

	// TTL is the lifetime of each entry. Zero disables expiry.
	// Environment variable: JOURNAL_TTL
	TTL time.Duration `json:"ttl" yaml:"ttl" env:"TTL" envDefault:"168h"`
}

// DefaultConfig returns a Config with [DefaultKeyPrefix] and [DefaultTTL].
func DefaultConfig() *Config {
	return &Config{
		KeyPrefix: DefaultKeyPrefix,
		TTL:       DefaultTTL,
	}
}

// Validate defaults an empty prefix and rejects negative TTLs and
// prefixes containing whitespace.
func (c *Config) Validate() error {
	if c.KeyPrefix == "" {
		c.KeyPrefix = DefaultKeyPrefix
	}
	if strings.ContainsAny(c.KeyPrefix, " \t\r\n") {
		return sserr.Newf(sserr.CodeValidation, "journal: key prefix must not contain whitespace, got %q", c.KeyPrefix)
	}
	if c.TTL < 0 {
		return sserr.Newf(sserr.CodeValidation, "journal: ttl must not be negative, got %v", c.TTL)
	}
	return nil
}
