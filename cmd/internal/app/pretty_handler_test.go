package app

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestPrettyHandler_PlainLine(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(newPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}, false))

	log.Info("http.request",
		"method", "get",
		"path", "/posts/1",
		"status", 404,
		"status_class", "4xx",
		"duration_ms", int64(12),
		"user_agent", "curl 8",
	)

	line := buf.String()
	for _, want := range []string{
		"lvl=[INFO]",
		"msg=http.request",
		"method=GET",
		"path=/posts/1",
		"status=404",
		"class=4xx",
		"duration=12ms",
		`user_agent="curl 8"`,
	} {
		if !strings.Contains(line, want) {
			t.Fatalf("missing %q in %q", want, line)
		}
	}
	if strings.Contains(line, "\x1b[") {
		t.Fatalf("unexpected ANSI codes in %q", line)
	}
}

func TestPrettyHandler_LevelFilterAndGroups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h := newPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}, false)
	log := slog.New(h).WithGroup("db").With("class", "readonly_posts")

	log.Info("ignored")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered: %q", buf.String())
	}

	log.Warn("pool.slow", slog.Group("pool", slog.Int("conns", 3)))
	line := buf.String()
	if !strings.Contains(line, "lvl=[WARN]") || !strings.Contains(line, "db.pool.conns=3") {
		t.Fatalf("unexpected line %q", line)
	}
}

func TestPrettyHandler_ColorStatus(t *testing.T) {
	t.Parallel()

	if got := colorizeStatusCode(503, true); got != ansiRed+"503"+ansiReset {
		t.Fatalf("colorizeStatusCode=%q", got)
	}
	if got := colorizeStatusCode(503, false); got != "503" {
		t.Fatalf("colorizeStatusCode=%q", got)
	}
	if got := colorizeStatusClass("3xx", true); got != ansiCyan+"3xx"+ansiReset {
		t.Fatalf("colorizeStatusClass=%q", got)
	}
}
