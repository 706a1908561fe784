package realtime

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config controls the feed websocket endpoint.
type Config struct {
	// OriginRequired rejects handshakes without an Origin header.
	OriginRequired bool
	// AllowedOrigins lists extra origins; same-host origins are always accepted.
	AllowedOrigins []string

	WriteTimeout    time.Duration
	ReadIdleTimeout time.Duration
	SendQueueSize   int

	HeartbeatEvery   time.Duration
	HeartbeatTimeout time.Duration

	RateFrames int
	RateWindow time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		WriteTimeout:     wsDefaultWriteTimeout,
		ReadIdleTimeout:  wsDefaultReadIdle,
		SendQueueSize:    wsDefaultSendQueueSize,
		HeartbeatEvery:   heartbeatInterval,
		HeartbeatTimeout: heartbeatTimeout,
		RateFrames:       rateLimitFrames,
		RateWindow:       rateLimitWindow,
	}
}

// LoadConfigFromEnv reads QUILL_WS_* overrides on top of DefaultConfig.
func LoadConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.OriginRequired = envBoolWS("QUILL_WS_ORIGIN_REQUIRED", false)
	cfg.AllowedOrigins = envCSVWS("QUILL_WS_ALLOWED_ORIGINS")
	cfg.WriteTimeout = envDurationWS("QUILL_WS_WRITE_TIMEOUT", cfg.WriteTimeout)
	cfg.ReadIdleTimeout = envDurationWS("QUILL_WS_READ_IDLE_TIMEOUT", cfg.ReadIdleTimeout)
	cfg.SendQueueSize = envIntWS("QUILL_WS_SEND_QUEUE", cfg.SendQueueSize)
	cfg.HeartbeatEvery = envDurationWS("QUILL_WS_HEARTBEAT_INTERVAL", cfg.HeartbeatEvery)
	cfg.HeartbeatTimeout = envDurationWS("QUILL_WS_HEARTBEAT_TIMEOUT", cfg.HeartbeatTimeout)
	cfg.RateFrames = envIntWS("QUILL_WS_RATE_FRAMES", cfg.RateFrames)
	cfg.RateWindow = envDurationWS("QUILL_WS_RATE_WINDOW", cfg.RateWindow)
	return cfg
}

func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.ReadIdleTimeout <= 0 {
		c.ReadIdleTimeout = d.ReadIdleTimeout
	}
	if c.SendQueueSize < wsMinSendQueueSize {
		c.SendQueueSize = wsMinSendQueueSize
	}
	if c.HeartbeatEvery <= 0 {
		c.HeartbeatEvery = d.HeartbeatEvery
	}
	if c.HeartbeatTimeout <= 0 {
		c.HeartbeatTimeout = d.HeartbeatTimeout
	}
	return c
}

func envBoolWS(key string, def bool) bool {
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

func envIntWS(key string, def int) int {
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

func envDurationWS(key string, def time.Duration) time.Duration {
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

func envCSVWS(key string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
