package httpserver

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateResult contains the outcome of a rate limit check.
type RateResult struct {
	Allowed    bool
	Limit      int           // burst capacity
	Remaining  int           // whole tokens left
	RetryAfter time.Duration // 0 if allowed
}

// Limiter keeps one token bucket per caller.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    rate.Limit
	burst   int
	idle    time.Duration
	stop    chan struct{}
	once    sync.Once
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLimiter allows rps requests per second per key with the given burst.
func NewLimiter(rps float64, burst int) *Limiter {
	l := &Limiter{
		buckets: make(map[string]*bucket),
		rate:    rate.Limit(rps),
		burst:   burst,
		idle:    10 * time.Minute,
		stop:    make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Allow consumes one token for key if available.
func (l *Limiter) Allow(key string) RateResult {
	now := time.Now()
	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	l.mu.Unlock()

	res := RateResult{Limit: l.burst}
	r := b.limiter.ReserveN(now, 1)
	if r.OK() && r.DelayFrom(now) == 0 {
		res.Allowed = true
	} else {
		if r.OK() {
			res.RetryAfter = r.DelayFrom(now)
			r.CancelAt(now)
		}
		res.RetryAfter = max(res.RetryAfter, time.Second)
	}
	res.Remaining = max(int(b.limiter.TokensAt(now)), 0)
	return res
}

// Stop ends the background cleanup. Safe to call more than once.
func (l *Limiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}

func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(l.idle)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.cleanup(time.Now())
		case <-l.stop:
			return
		}
	}
}

func (l *Limiter) cleanup(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for k, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.idle {
			delete(l.buckets, k)
		}
	}
}
