package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	authapi "quill/cmd/internal/auth/api"
	"quill/cmd/internal/blog"
	"quill/cmd/internal/realtime"
	"quill/cmd/internal/web"

	"github.com/prometheus/client_golang/prometheus"
)

const readyTimeout = 2 * time.Second

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context, timeout time.Duration) error
}

// routes is everything the HTTP surface is assembled from.
type routes struct {
	log      *slog.Logger
	ready    Pinger
	auth     *authapi.Handler
	blog     *blog.Handler
	feed     *realtime.WSGateway
	renderer web.Renderer

	metrics  *httpMetrics
	gatherer prometheus.Gatherer
}

func (rt routes) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if rt.ready != nil {
			if err := rt.ready.Ping(r.Context(), readyTimeout); err != nil {
				rt.log.Info("readyz.db.not_ready", "err", err)
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready\n"))
	})

	if rt.gatherer != nil {
		mux.Handle("GET /metrics", metricsHandler(rt.gatherer))
	}

	rt.auth.Register(mux)
	rt.blog.Register(mux, rt.auth.Authenticate)
	if rt.feed != nil {
		mux.Handle("GET /ws/feed", rt.auth.Authenticate(rt.feed))
	}

	// Anything else is a 404 page, but only for signed-in users.
	mux.Handle("/", rt.auth.Authenticate(web.Fallback(rt.renderer, rt.log)))

	return chain(rt.metrics.instrument(mux),
		WithRequestLogging(rt.log),
		WithRequestID,
		WithSecurityHeaders,
		WithRecovery(rt.log, rt.renderer),
	)
}
