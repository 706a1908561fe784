package realtime

import (
	"sync"
	"time"
)

// frameLimiter allows at most limit inbound frames in any sliding window.
type frameLimiter struct {
	mu     sync.Mutex
	seen   []time.Time
	limit  int
	window time.Duration
}

func newFrameLimiter(limit int, window time.Duration) *frameLimiter {
	if limit <= 0 {
		limit = rateLimitFrames
	}
	if window <= 0 {
		window = rateLimitWindow
	}
	return &frameLimiter{seen: make([]time.Time, 0, limit), limit: limit, window: window}
}

// Allow records a frame at now and reports whether it fits the window.
func (l *frameLimiter) Allow(now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	cut := now.Add(-l.window)
	keep := 0
	for keep < len(l.seen) && !l.seen[keep].After(cut) {
		keep++
	}
	l.seen = append(l.seen[:0], l.seen[keep:]...)

	if len(l.seen) >= l.limit {
		return false
	}
	l.seen = append(l.seen, now)
	return true
}
