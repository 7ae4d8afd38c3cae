package ratelimit

import (
    "sync"

    "golang.org/x/time/rate"
)

// Limiter keeps one token bucket per key (client address).
type Limiter struct {
    mu    sync.Mutex
    m     map[string]*rate.Limiter
    limit rate.Limit
    burst int
}

// New creates a keyed limiter allowing perSecond events with the given burst.
// A non-positive perSecond disables limiting.
func New(perSecond float64, burst int) *Limiter {
    lim := rate.Limit(perSecond)
    if perSecond <= 0 {
        lim = rate.Inf
    }
    if burst < 1 {
        burst = 1
    }
    return &Limiter{m: make(map[string]*rate.Limiter), limit: lim, burst: burst}
}

// Allow returns true if one token can be consumed for key.
func (l *Limiter) Allow(key string) bool {
    l.mu.Lock()
    b, ok := l.m[key]
    if !ok {
        b = rate.NewLimiter(l.limit, l.burst)
        l.m[key] = b
    }
    l.mu.Unlock()
    return b.Allow()
}
