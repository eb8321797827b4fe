package schoolmenu

import (
	"context"
	"sync"
	"time"
)

// RateLimiter gates outgoing menu API calls. A frame that refreshes rapidly
// (or hosts several menu tiles) must not hammer the public endpoint.
// Implementations must honor context cancellation so renders can abort
// pending calls cleanly.
type RateLimiter interface {
	Wait(ctx context.Context) error
}

// RateLimiterFunc adapts a function into a RateLimiter.
type RateLimiterFunc func(ctx context.Context) error

// Wait implements the RateLimiter interface by invoking the function.
func (f RateLimiterFunc) Wait(ctx context.Context) error {
	if f == nil {
		return nil
	}
	return f(ctx)
}

// NewMinIntervalLimiter creates a concurrency-safe limiter that enforces a
// minimum interval between consecutive requests. Non-positive intervals
// default to one second.
func NewMinIntervalLimiter(interval time.Duration) RateLimiter {
	if interval <= 0 {
		interval = time.Second
	}
	return &minIntervalLimiter{minInterval: interval}
}

// minIntervalLimiter tracks the next allowed request time and blocks
// callers until it arrives.
type minIntervalLimiter struct {
	mu          sync.Mutex
	next        time.Time
	minInterval time.Duration
}

// Wait blocks until the limiter allows the next request, or returns
// ctx.Err() if the context ends first.
func (l *minIntervalLimiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	now := time.Now()
	wait := time.Duration(0)
	start := now
	if !l.next.IsZero() && now.Before(l.next) {
		wait = l.next.Sub(now)
		start = l.next
	}
	l.next = start.Add(l.minInterval)
	l.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
