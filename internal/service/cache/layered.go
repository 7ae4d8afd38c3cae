package cache

import (
	"context"
	"time"

	svcmetrics "BingoPulse/internal/service/metrics"
)

// LayeredCache is a two-level BytesCache: L1 in memory, L2 shared (Redis).
// Writes go to L2 first; an L2 hit is copied into L1 with l1TTL.
type LayeredCache struct {
	l1    *TTLCache
	l2    BytesCache
	l1TTL time.Duration
}

// NewLayeredCache creates a layered cache. l2 may be nil, in which case the
// cache is memory only.
func NewLayeredCache(l1 *TTLCache, l2 BytesCache, l1TTL time.Duration) *LayeredCache {
	svcmetrics.Register()
	return &LayeredCache{l1: l1, l2: l2, l1TTL: l1TTL}
}

func (lc *LayeredCache) GetBytes(ctx context.Context, key string) ([]byte, bool, error) {
	if b, ok, _ := lc.l1.GetBytes(ctx, key); ok {
		svcmetrics.CacheLookups.WithLabelValues("l1", "hit").Inc()
		return b, true, nil
	}
	if lc.l2 == nil {
		svcmetrics.CacheLookups.WithLabelValues("l1", "miss").Inc()
		return nil, false, nil
	}
	b, ok, err := lc.l2.GetBytes(ctx, key)
	if err != nil {
		svcmetrics.CacheLookups.WithLabelValues("l2", "error").Inc()
		return nil, false, err
	}
	if !ok {
		svcmetrics.CacheLookups.WithLabelValues("l2", "miss").Inc()
		return nil, false, nil
	}
	svcmetrics.CacheLookups.WithLabelValues("l2", "hit").Inc()
	_ = lc.l1.SetBytes(ctx, key, b, lc.l1TTL)
	return b, true, nil
}

func (lc *LayeredCache) SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if lc.l2 != nil {
		if err := lc.l2.SetBytes(ctx, key, value, ttl); err != nil {
			return err
		}
	}
	l1 := lc.l1TTL
	if ttl > 0 && (l1 <= 0 || ttl < l1) {
		l1 = ttl
	}
	return lc.l1.SetBytes(ctx, key, value, l1)
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = lc.l1.Delete(ctx, keys...)
	if lc.l2 == nil {
		return nil
	}
	return lc.l2.Delete(ctx, keys...)
}
