package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

// prettyHandler renders one logfmt-like line per record for local development.
// Attributes added through WithAttrs are formatted once, under the groups
// open at that time.
type prettyHandler struct {
	w     io.Writer
	mu    *sync.Mutex
	level slog.Leveler
	src   bool
	color bool

	prefix string // open groups, dot-joined with a trailing dot
	pre    string // preformatted WithAttrs output
}

func newPrettyHandler(w io.Writer, opts *slog.HandlerOptions, color bool) slog.Handler {
	h := &prettyHandler{w: w, mu: &sync.Mutex{}, level: slog.LevelInfo, color: color}
	if opts != nil {
		if opts.Level != nil {
			h.level = opts.Level
		}
		h.src = opts.AddSource
	}
	return h
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "ts=%s lvl=%s msg=%s",
		paint(ts.Format("15:04:05.000"), ansiDim, h.color),
		levelTag(r.Level, h.color),
		paint(r.Message, ansiBright, h.color),
	)
	if h.src && r.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		if frame.File != "" {
			b.WriteString(" src=")
			b.WriteString(paint(filepath.Base(frame.File)+":"+strconv.Itoa(frame.Line), ansiDim, h.color))
		}
	}
	b.WriteString(h.pre)
	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(&b, h.prefix, a)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var b strings.Builder
	for _, a := range attrs {
		h.writeAttr(&b, h.prefix, a)
	}
	cp := *h
	cp.pre = h.pre + b.String()
	return &cp
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	name = strings.TrimSpace(name)
	if name == "" {
		return h
	}
	cp := *h
	cp.prefix = h.prefix + name + "."
	return &cp
}

func (h *prettyHandler) writeAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	key := strings.TrimSpace(a.Key)
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		if key != "" {
			prefix += key + "."
		}
		for _, ga := range a.Value.Group() {
			h.writeAttr(b, prefix, ga)
		}
		return
	}
	if key == "" {
		return
	}

	b.WriteByte(' ')
	b.WriteString(prefix + shortKey(key))
	b.WriteByte('=')
	if prefix == "" {
		b.WriteString(h.formatKnown(key, a.Value))
		return
	}
	b.WriteString(quoteIfNeeded(valueToString(a.Value)))
}

// formatKnown colors the request-log fields; anything else prints plainly.
func (h *prettyHandler) formatKnown(key string, v slog.Value) string {
	switch key {
	case "method":
		return colorizeHTTPMethod(strings.ToUpper(strings.TrimSpace(v.String())), h.color)
	case "path":
		return paint(strings.TrimSpace(v.String()), ansiCyan, h.color)
	case "status":
		if n, ok := valueToInt64(v); ok {
			return colorizeStatusCode(int(n), h.color)
		}
	case "status_class":
		return colorizeStatusClass(strings.TrimSpace(v.String()), h.color)
	case "duration_ms":
		if n, ok := valueToInt64(v); ok {
			return colorizeDurationMS(n, h.color)
		}
	case "result":
		return colorizeResult(strings.ToLower(strings.TrimSpace(v.String())), h.color)
	case "request_id", "session_id":
		return paint(v.String(), ansiDim, h.color)
	}
	return quoteIfNeeded(valueToString(v))
}

func shortKey(k string) string {
	switch k {
	case "status_class":
		return "class"
	case "duration_ms":
		return "duration"
	}
	return k
}

func valueToString(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	default:
		// Int64, Uint64, Bool and Duration print the same as slog's text form.
		return v.String()
	}
}

func quoteIfNeeded(s string) string {
	if s == "" {
		return `""`
	}
	if strings.ContainsAny(s, " \t\r\n\"=") {
		return strconv.Quote(s)
	}
	return s
}

var levelTags = []struct {
	min   slog.Level
	tag   string
	color string
}{
	{slog.LevelError, "[ERROR]", ansiRed},
	{slog.LevelWarn, "[WARN]", ansiYellow},
	{slog.LevelInfo, "[INFO]", ansiBlue},
}

func levelTag(level slog.Level, color bool) string {
	for _, t := range levelTags {
		if level >= t.min {
			return paint(t.tag, t.color, color)
		}
	}
	return paint("[DEBUG]", ansiMagenta, color)
}

const (
	ansiReset   = "\x1b[0m"
	ansiBright  = "\x1b[1m"
	ansiDim     = "\x1b[2m"
	ansiRed     = "\x1b[31m"
	ansiGreen   = "\x1b[32m"
	ansiYellow  = "\x1b[33m"
	ansiBlue    = "\x1b[34m"
	ansiMagenta = "\x1b[35m"
	ansiCyan    = "\x1b[36m"
)

func paint(s, code string, color bool) string {
	if !color || code == "" {
		return s
	}
	return code + s + ansiReset
}

func colorizeHTTPMethod(m string, color bool) string {
	switch m {
	case http.MethodGet:
		return paint(m, ansiGreen, color)
	case http.MethodPost:
		return paint(m, ansiBlue, color)
	case http.MethodDelete:
		return paint(m, ansiRed, color)
	default:
		return paint(m, ansiMagenta, color)
	}
}

func statusColor(code int) string {
	switch {
	case code >= 500:
		return ansiRed
	case code >= 400:
		return ansiYellow
	case code >= 300:
		return ansiCyan
	default:
		return ansiGreen
	}
}

func colorizeStatusCode(code int, color bool) string {
	return paint(strconv.Itoa(code), statusColor(code), color)
}

func colorizeStatusClass(class string, color bool) string {
	if len(class) != 3 || class[0] < '1' || class[0] > '5' {
		return quoteIfNeeded(class)
	}
	return paint(class, statusColor(int(class[0]-'0')*100), color)
}

func colorizeDurationMS(ms int64, color bool) string {
	s := strconv.FormatInt(ms, 10) + "ms"
	switch {
	case ms >= 1000:
		return paint(s, ansiRed, color)
	case ms >= 250:
		return paint(s, ansiYellow, color)
	default:
		return s
	}
}

func colorizeResult(result string, color bool) string {
	switch result {
	case "success":
		return paint(result, ansiGreen, color)
	case "redirect":
		return paint(result, ansiCyan, color)
	case "client_error":
		return paint(result, ansiYellow, color)
	case "server_error":
		return paint(result, ansiRed, color)
	default:
		return quoteIfNeeded(result)
	}
}

func valueToInt64(v slog.Value) (int64, bool) {
	switch v.Kind() {
	case slog.KindInt64:
		return v.Int64(), true
	case slog.KindUint64:
		return int64(v.Uint64()), true
	case slog.KindFloat64:
		return int64(v.Float64()), true
	case slog.KindString:
		n, err := strconv.ParseInt(strings.TrimSpace(v.String()), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}
