package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeL2 struct {
	m      map[string][]byte
	getErr error
	gets   int
}

func newFakeL2() *fakeL2 { return &fakeL2{m: map[string][]byte{}} }

func (f *fakeL2) GetBytes(_ context.Context, key string) ([]byte, bool, error) {
	f.gets++
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	b, ok := f.m[key]
	return b, ok, nil
}

func (f *fakeL2) SetBytes(_ context.Context, key string, value []byte, _ time.Duration) error {
	f.m[key] = value
	return nil
}

func (f *fakeL2) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.m, k)
	}
	return nil
}

func TestTTLCacheExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewTTLCache(0)
	c.now = func() time.Time { return now }

	_ = c.SetBytes(ctx, "a", []byte("1"), time.Minute)
	_ = c.SetBytes(ctx, "b", []byte("2"), 0)

	if b, ok, _ := c.GetBytes(ctx, "a"); !ok || string(b) != "1" {
		t.Fatalf("expected hit for a, got %q %v", b, ok)
	}
	now = now.Add(2 * time.Minute)
	if _, ok, _ := c.GetBytes(ctx, "a"); ok {
		t.Fatalf("expected a to expire")
	}
	if _, ok, _ := c.GetBytes(ctx, "b"); !ok {
		t.Fatalf("zero ttl entry should not expire")
	}
}

func TestTTLCacheBounded(t *testing.T) {
	ctx := context.Background()
	c := NewTTLCache(2)
	_ = c.SetBytes(ctx, "a", []byte("1"), 0)
	_ = c.SetBytes(ctx, "b", []byte("2"), 0)
	_ = c.SetBytes(ctx, "c", []byte("3"), 0)
	if c.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", c.Len())
	}
	if _, ok, _ := c.GetBytes(ctx, "c"); !ok {
		t.Fatalf("newest entry must be kept")
	}
}

func TestLayeredCachePromotesL2Hit(t *testing.T) {
	ctx := context.Background()
	l2 := newFakeL2()
	l2.m["draw:1"] = []byte(`{"draw_term":"1"}`)
	lc := NewLayeredCache(NewTTLCache(0), l2, time.Minute)

	for i := 0; i < 3; i++ {
		b, ok, err := lc.GetBytes(ctx, "draw:1")
		if err != nil || !ok || string(b) != `{"draw_term":"1"}` {
			t.Fatalf("get %d: %q %v %v", i, b, ok, err)
		}
	}
	if l2.gets != 1 {
		t.Fatalf("expected a single L2 read, got %d", l2.gets)
	}
}

func TestLayeredCacheWriteThroughAndDelete(t *testing.T) {
	ctx := context.Background()
	l2 := newFakeL2()
	lc := NewLayeredCache(NewTTLCache(0), l2, time.Minute)

	if err := lc.SetBytes(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatalf("set: %v", err)
	}
	if string(l2.m["k"]) != "v" {
		t.Fatalf("expected write-through to L2")
	}
	_ = lc.Delete(ctx, "k")
	if _, ok, _ := lc.GetBytes(ctx, "k"); ok {
		t.Fatalf("expected miss after delete")
	}
}

func TestLayeredCacheL2Error(t *testing.T) {
	ctx := context.Background()
	l2 := newFakeL2()
	l2.getErr = errors.New("connection refused")
	lc := NewLayeredCache(NewTTLCache(0), l2, time.Minute)
	if _, _, err := lc.GetBytes(ctx, "k"); err == nil {
		t.Fatalf("expected L2 error to surface")
	}
}

func TestLayeredCacheMemoryOnly(t *testing.T) {
	ctx := context.Background()
	lc := NewLayeredCache(NewTTLCache(0), nil, time.Minute)
	_ = lc.SetBytes(ctx, "k", []byte("v"), 0)
	if b, ok, _ := lc.GetBytes(ctx, "k"); !ok || string(b) != "v" {
		t.Fatalf("expected memory hit")
	}
}
