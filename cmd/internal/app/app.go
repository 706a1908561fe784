// Package app wires the quill server runtime: config, logging, database pools,
// HTTP routes and the live feed.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"quill/cmd/identity"
	"quill/cmd/internal/auth/account"
	authapi "quill/cmd/internal/auth/api"
	"quill/cmd/internal/auth/session"
	"quill/cmd/internal/blog"
	"quill/cmd/internal/gateway"
	"quill/cmd/internal/realtime"
	"quill/cmd/internal/web"
	"quill/cmd/security/password"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

// App is the quill server runtime: it owns the pools, the Redis client and
// the HTTP server wiring.
type App struct {
	cfg Config
	log Logger

	pools *gateway.Pools
	rdb   *redis.Client

	handler http.Handler
}

// New opens the database pools and wires every service and handler.
func New(ctx context.Context, cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogFormat)
	}

	hasher, err := sessionHasher(cfg)
	if err != nil {
		return nil, err
	}
	sessCfg, err := session.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	pwCfg, err := password.FromEnv()
	if err != nil {
		return nil, err
	}
	authCfg := authapi.LoadConfigFromEnv()

	pools, err := gateway.Open(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if err := pools.Ping(ctx, 3*time.Second); err != nil {
		pools.Close()
		return nil, err
	}
	log.Info("db.pools.open", "classes", len(gateway.Classes()), "schema", cfg.DB.Schema)

	var (
		reg      *prometheus.Registry
		registry prometheus.Registerer
	)
	if cfg.MetricsEnabled {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		registry = reg
	}

	sessions := session.NewService(sessCfg, session.NewGatewayStore(pools),
		session.WithHasher(hasher),
		session.WithMetrics(session.NewMetrics(registry)),
	)
	accounts := account.NewService(identity.NewGatewayStore(pools), sessions, pwCfg,
		account.WithMetrics(account.NewMetrics(registry)),
	)

	renderer := web.JSONRenderer{}
	authOpts := []authapi.HandlerOption{authapi.WithRenderer(renderer)}

	var rdb *redis.Client
	if rl := authCfg.RateLimit; rl.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: rl.RedisAddr, Password: rl.RedisPassword, DB: rl.RedisDB})
		authOpts = append(authOpts, authapi.WithLimiter(authapi.NewRedisLimiter(rdb, rl)))
		log.Info("auth.rate_limit.enabled", "redis", rl.RedisAddr, "window", rl.Window)
	}

	auth, err := authapi.NewHandler(log, authCfg, sessCfg, accounts, sessions, authOpts...)
	if err != nil {
		closeQuietly(pools, rdb)
		return nil, err
	}

	hub := realtime.NewHub(log, realtime.NewMetrics(registry))
	notify := blog.NotifierFunc(func(kind blog.EventKind, postID int64, title string) {
		hub.Publish(string(kind), postID, title)
	})
	posts := blog.NewHandler(log,
		blog.NewService(log, blog.NewGatewayStore(pools), notify),
		web.Tokens{Cookies: auth.Cookies()},
		renderer,
	)

	feed := realtime.NewWSGateway(log, hub, realtime.LoadConfigFromEnv(),
		realtime.WithSessionCheck(auth.SessionActive))

	rt := routes{
		log:      log,
		ready:    pools,
		auth:     auth,
		blog:     posts,
		feed:     feed,
		renderer: renderer,
		metrics:  newHTTPMetrics(registry),
	}
	if reg != nil {
		rt.gatherer = reg
	}

	return &App{
		cfg:     cfg,
		log:     log,
		pools:   pools,
		rdb:     rdb,
		handler: rt.handler(),
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal server error.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           a.handler,
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr, "metrics", a.cfg.MetricsEnabled)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case runErr = <-errCh:
		a.log.Error("server.fail", "err", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), nonZeroDuration(a.cfg.ShutdownTimeout, 10*time.Second))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		if runErr == nil {
			runErr = err
		}
	}

	// Pools close after in-flight requests have drained.
	a.Close()
	a.log.Info("server.stopped")
	return runErr
}

// Close releases the pools and the Redis client.
func (a *App) Close() {
	closeQuietly(a.pools, a.rdb)
}

func closeQuietly(pools *gateway.Pools, rdb *redis.Client) {
	if rdb != nil {
		_ = rdb.Close()
	}
	if pools != nil {
		pools.Close()
	}
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
