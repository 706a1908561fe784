package app

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want slog.Level
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "warn", want: slog.LevelWarn},
		{in: "warning", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "unknown", want: slog.LevelInfo},
		{in: "", want: slog.LevelInfo},
	}

	for _, tc := range cases {
		got := parseLogLevel(tc.in)
		if got != tc.want {
			t.Fatalf("parseLogLevel(%q)=%v want=%v", tc.in, got, tc.want)
		}
	}
}

func TestNewLogger_JSONByDefault(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := newLogger(&buf, "debug", "", true)
	log.Debug("auth.login.ok", "user_id", 7)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected JSON line, got %q: %v", buf.String(), err)
	}
	if rec["msg"] != "auth.login.ok" || rec["level"] != "DEBUG" || rec["user_id"] != float64(7) {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestNewLogger_Pretty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := newLogger(&buf, "info", "pretty", false)
	log.Info("server.start", "addr", "127.0.0.1:8080")

	if got := buf.String(); !strings.Contains(got, "msg=server.start") || !strings.Contains(got, "addr=127.0.0.1:8080") {
		t.Fatalf("unexpected pretty line: %q", got)
	}
}
