package app

import (
	"strings"
	"time"

	"quill/cmd/internal/gateway"
)

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr  string
	LogLevel  string
	LogFormat string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	MaxHeaderBytes    int

	DB gateway.Config

	// MetricsEnabled exposes /metrics.
	MetricsEnabled bool

	// If true, QUILL_TOKEN_HMAC_KEY MUST be set (>= 32 bytes) and session
	// tokens are stored as HMAC digests.
	RequireTokenHMAC bool
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr:  EnvString("QUILL_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel:  EnvString("QUILL_LOG_LEVEL", "info"),
		LogFormat: strings.ToLower(EnvString("QUILL_LOG_FORMAT", "json")),

		ReadHeaderTimeout: EnvDuration("QUILL_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("QUILL_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("QUILL_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("QUILL_HTTP_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout:   EnvDuration("QUILL_HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),

		MaxHeaderBytes: EnvInt("QUILL_HTTP_MAX_HEADER_BYTES", 1<<20),

		DB: loadDBConfig(),

		MetricsEnabled:   EnvBool("QUILL_METRICS_ENABLED", true),
		RequireTokenHMAC: EnvBool("QUILL_REQUIRE_TOKEN_HMAC", false),
	}
}

// loadDBConfig reads the base DSN and one role login per privilege class from
// QUILL_DB_<CLASS>_USER and QUILL_DB_<CLASS>_PASSWORD.
func loadDBConfig() gateway.Config {
	creds := make(map[gateway.Class]gateway.Credential, len(gateway.Classes()))
	for _, c := range gateway.Classes() {
		p := c.EnvPrefix()
		user := EnvString(p+"_USER", "")
		if user == "" {
			continue
		}
		creds[c] = gateway.Credential{User: user, Password: EnvString(p+"_PASSWORD", "")}
	}
	return gateway.Config{
		DatabaseURL: EnvString("QUILL_DATABASE_URL", ""),
		Credentials: creds,
		Schema:      EnvString("QUILL_DB_SCHEMA", ""),
		MaxConns:    EnvInt32("QUILL_DB_MAX_CONNS", 4),
		MinConns:    EnvInt32("QUILL_DB_MIN_CONNS", 0),
	}
}
