package session

import (
	"testing"
	"time"
)

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	t.Setenv("QUILL_SESSION_TTL", "")
	t.Setenv("QUILL_SESSION_MAX_ATTEMPTS", "")
	t.Setenv("QUILL_SESSION_COOKIE_NAME", "")
	t.Setenv("QUILL_COOKIE_SECURE", "")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TTL != time.Hour || cfg.MaxAllocAttempts != 5 || cfg.CookieName != "sessionId" || cfg.CookieSecure {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.CookieMaxAge() != 3600 {
		t.Fatalf("cookie max-age mismatch: %d", cfg.CookieMaxAge())
	}
	if cfg.TokenBytes*8 != 128 {
		t.Fatalf("expected 128-bit tokens, got %d bytes", cfg.TokenBytes)
	}
}

func TestLoadConfigFromEnv_InvalidTTL(t *testing.T) {
	t.Setenv("QUILL_SESSION_TTL", "-5m")
	if _, err := LoadConfigFromEnv(); err != ErrConfig {
		t.Fatalf("expected ErrConfig for negative ttl, got %v", err)
	}
}

func TestLoadConfigFromEnv_InvalidAttempts(t *testing.T) {
	t.Setenv("QUILL_SESSION_MAX_ATTEMPTS", "0")
	if _, err := LoadConfigFromEnv(); err != ErrConfig {
		t.Fatalf("expected ErrConfig for zero attempts, got %v", err)
	}
}

func TestLoadConfigFromEnv_InvalidCookieName(t *testing.T) {
	t.Setenv("QUILL_SESSION_COOKIE_NAME", "bad;name")
	if _, err := LoadConfigFromEnv(); err != ErrConfig {
		t.Fatalf("expected ErrConfig for cookie name, got %v", err)
	}
}

func TestLoadConfigFromEnv_Valid(t *testing.T) {
	t.Setenv("QUILL_SESSION_TTL", "30m")
	t.Setenv("QUILL_SESSION_MAX_ATTEMPTS", "3")
	t.Setenv("QUILL_SESSION_COOKIE_NAME", "sid")
	t.Setenv("QUILL_COOKIE_SECURE", "true")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TTL != 30*time.Minute || cfg.CookieMaxAge() != 1800 {
		t.Fatalf("ttl mismatch: %v", cfg.TTL)
	}
	if cfg.MaxAllocAttempts != 3 || cfg.CookieName != "sid" || !cfg.CookieSecure {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}
