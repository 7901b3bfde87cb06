package ratelimiter

import (
	"sync"
	"time"
)

// Limiter decides whether the caller identified by key may proceed. When it
// may not, retryAfter says how long until the window resets.
type Limiter interface {
	Allow(key string) (allowed bool, retryAfter time.Duration)
}

// FixedWindowRateLimiter allows limit requests per key in each window
// aligned to the wall clock.
type FixedWindowRateLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	windows map[string]*window

	cleanupTick *time.Ticker
	done        chan struct{}
	closeOnce   sync.Once
}

type window struct {
	count   int
	resetAt time.Time
}

func NewFixedWindowRateLimiter(limit int, period time.Duration) *FixedWindowRateLimiter {
	return newFixedWindow(limit, period, time.Now)
}

func newFixedWindow(limit int, period time.Duration, now func() time.Time) *FixedWindowRateLimiter {
	if period <= 0 {
		period = time.Minute
	}
	rl := &FixedWindowRateLimiter{
		limit:       limit,
		window:      period,
		now:         now,
		windows:     make(map[string]*window),
		cleanupTick: time.NewTicker(period),
		done:        make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

func (rl *FixedWindowRateLimiter) Allow(key string) (bool, time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Truncate(rl.window).Add(rl.window)}
		rl.windows[key] = w
	}

	if w.count >= rl.limit {
		return false, w.resetAt.Sub(now)
	}
	w.count++
	return true, 0
}

func (rl *FixedWindowRateLimiter) startCleanup() {
	for {
		select {
		case <-rl.cleanupTick.C:
			rl.cleanup()
		case <-rl.done:
			return
		}
	}
}

// cleanup forgets keys whose window has already expired.
func (rl *FixedWindowRateLimiter) cleanup() {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, w := range rl.windows {
		if !now.Before(w.resetAt) {
			delete(rl.windows, key)
		}
	}
}

func (rl *FixedWindowRateLimiter) Close() {
	rl.closeOnce.Do(func() {
		close(rl.done)
		rl.cleanupTick.Stop()
	})
}
