package llm

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// rateLimiter spaces requests evenly: at most one every interval.
type rateLimiter struct {
	next     time.Time
	interval time.Duration
	mu       sync.Mutex
}

// newRateLimiter creates a limiter for the given requests per minute.
// A non-positive rate yields nil, which never waits.
func newRateLimiter(requestsPerMinute int) *rateLimiter {
	if requestsPerMinute <= 0 {
		return nil
	}
	return &rateLimiter{interval: time.Minute / time.Duration(requestsPerMinute)}
}

// wait blocks until the next slot is free or the context is canceled.
func (rl *rateLimiter) wait(ctx context.Context) error {
	if rl == nil {
		return nil
	}

	rl.mu.Lock()
	now := time.Now()
	slot := rl.next
	if slot.Before(now) {
		slot = now
	}
	rl.next = slot.Add(rl.interval)
	rl.mu.Unlock()

	d := time.Until(slot)
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limiter canceled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
