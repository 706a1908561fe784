package authapi

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config controls the auth HTTP surface.
type Config struct {
	TrustProxy   bool
	MaxBodyBytes int64

	// CaptchaEnabled requires a g-recaptcha-response on register and login.
	CaptchaEnabled bool
	CaptchaSiteKey string

	RateLimit RateLimitConfig
}

// RateLimitConfig is a fixed window per action and client IP. An empty
// RedisAddr disables limiting.
type RateLimitConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LoginMax    int
	RegisterMax int
	Window      time.Duration
}

// LoadConfigFromEnv loads auth config from environment variables with safe defaults.
func LoadConfigFromEnv() Config {
	cfg := Config{
		TrustProxy:     envBool("QUILL_AUTH_TRUST_PROXY", false),
		MaxBodyBytes:   envInt64("QUILL_AUTH_MAX_BODY_BYTES", 64<<10), // 64 KiB
		CaptchaEnabled: envBool("QUILL_CAPTCHA_ENABLED", false),
		CaptchaSiteKey: strings.TrimSpace(os.Getenv("QUILL_CAPTCHA_SITE_KEY")),
		RateLimit: RateLimitConfig{
			RedisAddr:     strings.TrimSpace(os.Getenv("QUILL_REDIS_ADDR")),
			RedisPassword: os.Getenv("QUILL_REDIS_PASSWORD"),
			RedisDB:       envIntAllowZero("QUILL_REDIS_DB", 0),
			LoginMax:      envInt("QUILL_AUTH_LOGIN_MAX", 20),
			RegisterMax:   envInt("QUILL_AUTH_REGISTER_MAX", 5),
			Window:        envDuration("QUILL_AUTH_RATE_WINDOW", 5*time.Minute),
		},
	}

	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 64 << 10
	}
	return cfg
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envIntAllowZero(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func envInt64(key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
