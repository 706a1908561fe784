package app

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"quill/cmd/internal/web"
)

func TestRequestLogMeta(t *testing.T) {
	t.Parallel()

	cases := []struct {
		status     int
		wantLevel  slog.Level
		wantResult string
		wantClass  string
	}{
		{status: 200, wantLevel: slog.LevelInfo, wantResult: "success", wantClass: "2xx"},
		{status: 302, wantLevel: slog.LevelInfo, wantResult: "redirect", wantClass: "3xx"},
		{status: 404, wantLevel: slog.LevelWarn, wantResult: "client_error", wantClass: "4xx"},
		{status: 503, wantLevel: slog.LevelError, wantResult: "server_error", wantClass: "5xx"},
	}

	for _, tc := range cases {
		level, result := requestLogMeta(tc.status)
		if level != tc.wantLevel || result != tc.wantResult {
			t.Fatalf("status=%d level=%v result=%q; want level=%v result=%q", tc.status, level, result, tc.wantLevel, tc.wantResult)
		}
		if got := statusClass(tc.status); got != tc.wantClass {
			t.Fatalf("statusClass(%d)=%q want=%q", tc.status, got, tc.wantClass)
		}
	}
	if got := statusClass(42); got != "unknown" {
		t.Fatalf("statusClass(42)=%q", got)
	}
}

func TestWithSecurityHeaders(t *testing.T) {
	h := WithSecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	if got := rr.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("missing nosniff: %q", got)
	}
	if got := rr.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("missing frame options: %q", got)
	}
	if got := rr.Header().Get("Referrer-Policy"); got != "no-referrer" {
		t.Fatalf("missing referrer policy: %q", got)
	}
}

func TestWithRequestID(t *testing.T) {
	t.Parallel()

	h := WithRequestID(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := rr.Header().Get(requestIDHeader)
	if len(generated) != 26 {
		t.Fatalf("expected ULID request id, got %q", generated)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "edge-1234")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if got := rr.Header().Get(requestIDHeader); got != "edge-1234" {
		t.Fatalf("expected inbound id echoed, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "bad id\r\n")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if got := rr.Header().Get(requestIDHeader); got == "bad id" || len(got) != 26 {
		t.Fatalf("expected replaced id, got %q", got)
	}
}

func TestWithRecovery_GenericServerError(t *testing.T) {
	t.Parallel()

	var logBuf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&logBuf, nil))
	h := WithRecovery(log, web.JSONRenderer{})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("db handle is nil")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/posts/1", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if bytes.Contains(rr.Body.Bytes(), []byte("db handle")) {
		t.Fatalf("panic value leaked to client: %s", rr.Body.String())
	}
	if !bytes.Contains(logBuf.Bytes(), []byte(`"msg":"http.panic"`)) {
		t.Fatalf("expected panic logged, got %s", logBuf.String())
	}
}

func TestWithRequestLogging_RecordsStatus(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	h := chain(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("missing"))
	}), WithRequestLogging(log), WithRequestID)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/posts/99", nil))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log: %v (%q)", err, buf.String())
	}
	if rec["msg"] != "http.request" || rec["level"] != "WARN" {
		t.Fatalf("unexpected record: %v", rec)
	}
	if rec["status"] != float64(404) || rec["status_class"] != "4xx" || rec["bytes"] != float64(7) {
		t.Fatalf("unexpected status fields: %v", rec)
	}
	if rec["request_id"] != rr.Header().Get(requestIDHeader) {
		t.Fatalf("request id mismatch: %v vs %q", rec["request_id"], rr.Header().Get(requestIDHeader))
	}
}
