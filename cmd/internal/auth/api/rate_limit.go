package authapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Rate limited actions.
const (
	actionLogin    = "login"
	actionRegister = "register"
)

var errLimiterUnavailable = errors.New("rate limiter unavailable")

// Limiter decides whether another attempt of action from key is allowed.
type Limiter interface {
	Allow(ctx context.Context, action, key string) (allowed bool, retryAfter time.Duration, err error)
}

// NoopLimiter allows everything.
type NoopLimiter struct{}

func (NoopLimiter) Allow(context.Context, string, string) (bool, time.Duration, error) {
	return true, 0, nil
}

// RedisLimiter is a fixed window counter: INCR the key and arm its EXPIRE in
// the same transaction, refuse once the count passes the action's max.
type RedisLimiter struct {
	rdb    redis.Cmdable
	window time.Duration
	max    map[string]int
	prefix string
}

// NewRedisLimiter builds a limiter over rdb using cfg's windows.
func NewRedisLimiter(rdb redis.Cmdable, cfg RateLimitConfig) *RedisLimiter {
	window := cfg.Window
	if window <= 0 {
		window = 5 * time.Minute
	}
	return &RedisLimiter{
		rdb:    rdb,
		window: window,
		max: map[string]int{
			actionLogin:    cfg.LoginMax,
			actionRegister: cfg.RegisterMax,
		},
		prefix: "quill:rl:",
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, action, key string) (bool, time.Duration, error) {
	limit := l.max[action]
	if limit <= 0 || key == "" {
		return true, 0, nil
	}
	k := l.prefix + action + ":" + key

	// One MULTI/EXEC: the counter never exists without a TTL, and EXPIRE NX
	// also re-arms a key some older writer left without one.
	var (
		incr *redis.IntCmd
		ttl  *redis.DurationCmd
	)
	_, err := l.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, k)
		p.ExpireNX(ctx, k, l.window)
		ttl = p.TTL(ctx, k)
		return nil
	})
	if err != nil {
		return true, 0, fmt.Errorf("%w: %v", errLimiterUnavailable, err)
	}
	if incr.Val() <= int64(limit) {
		return true, 0, nil
	}

	retry := ttl.Val()
	if retry <= 0 {
		retry = l.window
	}
	return false, retry, nil
}

// allow consults the limiter and fails open when it is unavailable.
func (h *Handler) allow(ctx context.Context, action, key string) (bool, time.Duration) {
	ok, retry, err := h.limiter.Allow(ctx, action, key)
	if err != nil {
		h.log.Warn("auth.rate_limit.unavailable", "action", action, "err", err)
		return true, 0
	}
	return ok, retry
}

func setRetryAfter(w http.ResponseWriter, retryAfter time.Duration) {
	if retryAfter <= 0 {
		return
	}
	secs := int64(retryAfter / time.Second)
	if retryAfter%time.Second != 0 {
		secs++
	}
	w.Header().Set("Retry-After", strconv.FormatInt(secs, 10))
}
