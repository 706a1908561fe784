package session

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config defines all runtime configuration for the session subsystem.
type Config struct {
	// TTL is both the server-side active window and the cookie Max-Age.
	TTL time.Duration

	// MaxAllocAttempts bounds token generation retries on collision.
	MaxAllocAttempts int

	// TokenBytes is the number of random bytes in a session token.
	TokenBytes int

	CookieName   string
	CookieSecure bool
}

// DefaultConfig returns the production defaults: one hour sessions, five
// allocation attempts, 128-bit tokens.
func DefaultConfig() Config {
	return Config{
		TTL:              time.Hour,
		MaxAllocAttempts: 5,
		TokenBytes:       16,
		CookieName:       "sessionId",
	}
}

// CookieMaxAge returns the session cookie Max-Age in seconds.
func (c Config) CookieMaxAge() int {
	return int(c.TTL / time.Second)
}

// LoadConfigFromEnv loads session configuration from environment variables.
//
// Optional:
//   - QUILL_SESSION_TTL (Go duration, at least 1s)
//   - QUILL_SESSION_MAX_ATTEMPTS (1..20)
//   - QUILL_SESSION_COOKIE_NAME
//   - QUILL_COOKIE_SECURE (true/false)
//
// Returns ErrConfig if configuration is invalid.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("QUILL_SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < time.Second {
			return Config{}, ErrConfig
		}
		cfg.TTL = d
	}

	if v := os.Getenv("QUILL_SESSION_MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 20 {
			return Config{}, ErrConfig
		}
		cfg.MaxAllocAttempts = n
	}

	if v := strings.TrimSpace(os.Getenv("QUILL_SESSION_COOKIE_NAME")); v != "" {
		if strings.ContainsAny(v, " ;,=\t\r\n") {
			return Config{}, ErrConfig
		}
		cfg.CookieName = v
	}

	if v := os.Getenv("QUILL_COOKIE_SECURE"); v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return Config{}, ErrConfig
		}
		cfg.CookieSecure = b
	}

	return cfg, nil
}
