// Package ratelimit implements fixed-window request limiting.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/aykutjm/ogrencim/core"
)

// Limiter reports whether one more request identified by key is allowed in the current window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// New returns a redis backed Limiter when a redis address is configured, a MemoryLimiter otherwise.
// A non-positive request count disables limiting (nil Limiter).
func New(conf *core.Config) (Limiter, error) {
	if conf.RateLimit.Requests <= 0 {
		return nil, nil
	}
	if conf.Redis.Address == "" {
		return NewMemoryLimiter(conf.RateLimit.Requests, conf.RateLimit.Window), nil
	}
	client, err := NewRedisClient(conf)
	if err != nil {
		return nil, err
	}
	return NewRedisLimiter(client, conf.RateLimit.Requests, conf.RateLimit.Window), nil
}

var nowFunc = time.Now

type window struct {
	start time.Time
	count int
}

// MemoryLimiter keeps its counters in process. Counters of elapsed windows are dropped lazily.
type MemoryLimiter struct {
	limit   int
	period  time.Duration
	mu      sync.Mutex
	windows map[string]*window
}

var _ Limiter = (*MemoryLimiter)(nil)

func NewMemoryLimiter(limit int, period time.Duration) *MemoryLimiter {
	return &MemoryLimiter{limit: limit, period: period, windows: make(map[string]*window)}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := nowFunc()
	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.period {
		l.sweep(now)
		w = &window{start: now}
		l.windows[key] = w
	}
	w.count++
	return w.count <= l.limit, nil
}

func (l *MemoryLimiter) sweep(now time.Time) {
	for k, w := range l.windows {
		if now.Sub(w.start) >= l.period {
			delete(l.windows, k)
		}
	}
}
