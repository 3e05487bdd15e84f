package httpserver

import (
	"testing"
	"time"
)

func TestLimiterBurstAndCleanup(t *testing.T) {
	l := NewLimiter(0.001, 3)
	defer l.Stop()
	for i := 0; i < 3; i++ {
		if res := l.Allow("k"); !res.Allowed {
			t.Fatalf("request %d denied", i)
		}
	}
	res := l.Allow("k")
	if res.Allowed || res.RetryAfter < time.Second || res.Limit != 3 {
		t.Fatalf("unexpected result: %+v", res)
	}
	l.cleanup(time.Now().Add(time.Hour))
	l.mu.Lock()
	n := len(l.buckets)
	l.mu.Unlock()
	if n != 0 {
		t.Fatalf("stale buckets kept: %d", n)
	}
	l.Stop()
}
