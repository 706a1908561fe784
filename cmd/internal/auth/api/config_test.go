package authapi

import (
	"testing"
	"time"
)

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{
		"QUILL_AUTH_TRUST_PROXY", "QUILL_AUTH_MAX_BODY_BYTES", "QUILL_CAPTCHA_ENABLED",
		"QUILL_CAPTCHA_SITE_KEY", "QUILL_REDIS_ADDR", "QUILL_REDIS_DB",
		"QUILL_AUTH_LOGIN_MAX", "QUILL_AUTH_REGISTER_MAX", "QUILL_AUTH_RATE_WINDOW",
	} {
		t.Setenv(k, "")
	}

	cfg := LoadConfigFromEnv()
	if cfg.TrustProxy || cfg.CaptchaEnabled {
		t.Fatalf("expected proxy trust and captcha off by default: %+v", cfg)
	}
	if cfg.MaxBodyBytes != 64<<10 {
		t.Fatalf("unexpected body limit %d", cfg.MaxBodyBytes)
	}
	if cfg.RateLimit.RedisAddr != "" {
		t.Fatalf("rate limiting must be disabled without an address")
	}
	if cfg.RateLimit.LoginMax != 20 || cfg.RateLimit.RegisterMax != 5 || cfg.RateLimit.Window != 5*time.Minute {
		t.Fatalf("unexpected rate limit defaults: %+v", cfg.RateLimit)
	}
}

func TestLoadConfigFromEnv_Overrides(t *testing.T) {
	t.Setenv("QUILL_CAPTCHA_ENABLED", "true")
	t.Setenv("QUILL_CAPTCHA_SITE_KEY", " site-key ")
	t.Setenv("QUILL_REDIS_ADDR", "127.0.0.1:6379")
	t.Setenv("QUILL_REDIS_DB", "0")
	t.Setenv("QUILL_AUTH_LOGIN_MAX", "-3")
	t.Setenv("QUILL_AUTH_RATE_WINDOW", "90s")
	t.Setenv("QUILL_AUTH_MAX_BODY_BYTES", "nope")

	cfg := LoadConfigFromEnv()
	if !cfg.CaptchaEnabled || cfg.CaptchaSiteKey != "site-key" {
		t.Fatalf("captcha config not loaded: %+v", cfg)
	}
	if cfg.RateLimit.RedisAddr != "127.0.0.1:6379" || cfg.RateLimit.RedisDB != 0 {
		t.Fatalf("redis config not loaded: %+v", cfg.RateLimit)
	}
	if cfg.RateLimit.LoginMax != 20 {
		t.Fatalf("negative max must fall back to default, got %d", cfg.RateLimit.LoginMax)
	}
	if cfg.RateLimit.Window != 90*time.Second {
		t.Fatalf("unexpected window %v", cfg.RateLimit.Window)
	}
	if cfg.MaxBodyBytes != 64<<10 {
		t.Fatalf("bad body limit must fall back to default, got %d", cfg.MaxBodyBytes)
	}
}
