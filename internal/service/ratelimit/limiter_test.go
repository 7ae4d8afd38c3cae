package ratelimit

import "testing"

func TestLimiterBurstPerKey(t *testing.T) {
    l := New(0.001, 2)
    if !l.Allow("a") || !l.Allow("a") {
        t.Fatalf("burst of 2 should be allowed")
    }
    if l.Allow("a") {
        t.Fatalf("third call should be limited")
    }
    if !l.Allow("b") {
        t.Fatalf("keys must not share buckets")
    }
}

func TestLimiterDisabled(t *testing.T) {
    l := New(0, 0)
    for i := 0; i < 100; i++ {
        if !l.Allow("a") {
            t.Fatalf("disabled limiter rejected call %d", i)
        }
    }
}
