// Package redis is the traced go-redis wrapper backing the event journal.
//
// Only the hash, expiry and health commands the journal issues are
// exposed. Each command runs in an OpenTelemetry client span carrying
// db.system, db.redis.database_index and a truncated db.statement, and
// failures are returned as *sserr.Error values: CodeTimeoutDatabase for
// deadline overruns, CodeInternalDatabase otherwise.
//
//	cfg := redis.DefaultConfig()
//	cfg.URI = os.Getenv("REDIS_URI")
//	client, err := redis.NewClient(ctx, *cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
// Unit tests inject a mock through [NewFromClient].
package redis

import (
	"fmt"
	"net/url"
	"time"

	sserr "github.com/StricklySoft/stricklysoft-sentry/pkg/errors"
)

// maxStatementTruncateLen caps db.statement span attributes so event ids
// and field values do not flood telemetry.
const maxStatementTruncateLen = 100

const (
	// DefaultHost is the Redis host used when neither URI nor Host is set.
	DefaultHost = "localhost"

	// DefaultPort is the standard Redis port.
	DefaultPort = 6379

	// DefaultPoolSize is the maximum number of pooled connections.
	DefaultPoolSize = 10

	// DefaultDialTimeout bounds connection establishment.
	DefaultDialTimeout = 5 * time.Second

	// DefaultReadTimeout bounds a single read.
	DefaultReadTimeout = 3 * time.Second

	// DefaultWriteTimeout bounds a single write.
	DefaultWriteTimeout = 3 * time.Second

	// DefaultHealthTimeout bounds [Client.Health] when the context has no
	// deadline.
	DefaultHealthTimeout = 2 * time.Second
)

// Secret holds a password that must not appear in logs or serialized
// config.
type Secret string

const redacted = "[REDACTED]"

// String returns "[REDACTED]".
func (s Secret) String() string { return redacted }

// GoString returns "[REDACTED]".
func (s Secret) GoString() string { return redacted }

// Value returns the raw secret.
func (s Secret) Value() string { return string(s) }

// MarshalText returns "[REDACTED]".
func (s Secret) MarshalText() ([]byte, error) { return []byte(redacted), nil }

// Config holds the Redis connection settings. URI, when set, takes
// precedence over Host, Port, DB and Password.
type Config struct {
	// URI is a redis:// or rediss:// connection string.
	// Environment variable: REDIS_URI
	URI string `json:"uri,omitempty" yaml:"uri" env:"URI"`

	// Host is the server host name.
	// Environment variable: REDIS_HOST
	Host string `json:"host,omitempty" yaml:"host" env:"HOST"`

	// Port is the server port.
	// Environment variable: REDIS_PORT
	Port int `json:"port,omitempty" yaml:"port" env:"PORT"`

	// DB is the database index.
	// Environment variable: REDIS_DB
	DB int `json:"db" yaml:"db" env:"DB"`

	// Password authenticates the connection.
	// Environment variable: REDIS_PASSWORD
	Password Secret `json:"-" yaml:"password" env:"PASSWORD"`

	// PoolSize is the maximum number of pooled connections.
	// Environment variable: REDIS_POOL_SIZE
	PoolSize int `json:"pool_size,omitempty" yaml:"pool_size" env:"POOL_SIZE"`

	// DialTimeout, ReadTimeout and WriteTimeout bound network operations.
	// Environment variables: REDIS_DIAL_TIMEOUT, REDIS_READ_TIMEOUT,
	// REDIS_WRITE_TIMEOUT
	DialTimeout  time.Duration `json:"dial_timeout,omitempty" yaml:"dial_timeout" env:"DIAL_TIMEOUT"`
	ReadTimeout  time.Duration `json:"read_timeout,omitempty" yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout time.Duration `json:"write_timeout,omitempty" yaml:"write_timeout" env:"WRITE_TIMEOUT"`

	// TLSEnabled turns on TLS for structured configs. rediss:// URIs
	// enable it on their own.
	// Environment variable: REDIS_TLS_ENABLED
	TLSEnabled bool `json:"tls_enabled,omitempty" yaml:"tls_enabled" env:"TLS_ENABLED"`
}

// DefaultConfig returns a Config for a local Redis on the default port.
func DefaultConfig() *Config {
	return &Config{
		Host:         DefaultHost,
		Port:         DefaultPort,
		PoolSize:     DefaultPoolSize,
		DialTimeout:  DefaultDialTimeout,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
	}
}

// Validate fills zero-valued fields with defaults and checks the rest.
//
// Validation rules:
//   - URI (if set) must use the redis:// or rediss:// scheme
//   - Port must be between 1 and 65535
//   - PoolSize must be >= 1
//   - Timeouts must not be negative
func (c *Config) Validate() error {
	if c.PoolSize == 0 {
		c.PoolSize = DefaultPoolSize
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = DefaultDialTimeout
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}

	if c.URI != "" {
		u, err := url.Parse(c.URI)
		if err != nil {
			return sserr.Wrap(err, sserr.CodeValidation, "redis: config URI is invalid")
		}
		if u.Scheme != "redis" && u.Scheme != "rediss" {
			return sserr.Newf(sserr.CodeValidation,
				"redis: config URI scheme must be redis:// or rediss://, got %q", u.Scheme)
		}
	} else {
		if c.Host == "" {
			c.Host = DefaultHost
		}
		if c.Port == 0 {
			c.Port = DefaultPort
		}
		if c.Port < 1 || c.Port > 65535 {
			return sserr.Newf(sserr.CodeValidation,
				"redis: config port must be between 1 and 65535, got %d", c.Port)
		}
	}

	if c.PoolSize < 1 {
		return sserr.Newf(sserr.CodeValidation, "redis: config pool_size must be >= 1, got %d", c.PoolSize)
	}
	for name, d := range map[string]time.Duration{
		"dial_timeout":  c.DialTimeout,
		"read_timeout":  c.ReadTimeout,
		"write_timeout": c.WriteTimeout,
	} {
		if d < 0 {
			return sserr.Newf(sserr.CodeValidation, "redis: config %s must not be negative, got %v", name, d)
		}
	}
	return nil
}

// addr returns host:port for structured configs.
func (c *Config) addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// truncateStatement shortens s to maxStatementTruncateLen runes, appending
// "..." when it was cut.
func truncateStatement(s string) string {
	runes := []rune(s)
	if len(runes) <= maxStatementTruncateLen {
		return s
	}
	return string(runes[:maxStatementTruncateLen]) + "..."
}
