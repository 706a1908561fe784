package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// envValue parses key with parse; unset, blank, or rejected values yield def.
func envValue[T any](key string, def T, parse func(string) (T, bool)) T {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	if v, ok := parse(raw); ok {
		return v
	}
	return def
}

// EnvString reads a trimmed string.
func EnvString(key, def string) string {
	return envValue(key, def, func(s string) (string, bool) { return s, true })
}

// EnvBool accepts anything strconv.ParseBool does.
func EnvBool(key string, def bool) bool {
	return envValue(key, def, func(s string) (bool, bool) {
		b, err := strconv.ParseBool(s)
		return b, err == nil
	})
}

// EnvInt reads a positive int.
func EnvInt(key string, def int) int {
	return envValue(key, def, func(s string) (int, bool) {
		n, err := strconv.Atoi(s)
		return n, err == nil && n > 0
	})
}

// EnvInt32 reads a non-negative int32. Pool sizes use it.
func EnvInt32(key string, def int32) int32 {
	return envValue(key, def, func(s string) (int32, bool) {
		n, err := strconv.ParseInt(s, 10, 32)
		return int32(n), err == nil && n >= 0
	})
}

// EnvDuration reads a positive time.ParseDuration value such as "15s".
func EnvDuration(key string, def time.Duration) time.Duration {
	return envValue(key, def, func(s string) (time.Duration, bool) {
		d, err := time.ParseDuration(s)
		return d, err == nil && d > 0
	})
}
