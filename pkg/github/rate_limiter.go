package github

import (
	"context"
	"sync"
	"time"
)

// RateLimiter spaces out API writes and bounds their concurrency. It tracks
// the remaining request quota reported by response headers and throttles
// harder as the quota runs down, so a large batch degrades to a slow crawl
// instead of a wall of rate-limit failures.
type RateLimiter struct {
	mu        sync.Mutex
	remaining int
	resetTime time.Time
	lastCall  time.Time

	baseDelay     time.Duration
	throttleDelay time.Duration
	minRemaining  int

	slots chan struct{}
}

// DefaultConcurrency is the number of simultaneous repository writes when
// the caller does not choose one.
const DefaultConcurrency = 5

// NewRateLimiter creates a limiter allowing the given number of concurrent
// operations.
func NewRateLimiter(concurrency int) *RateLimiter {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &RateLimiter{
		remaining:     5000, // GitHub's default hourly quota
		resetTime:     time.Now().Add(time.Hour),
		baseDelay:     100 * time.Millisecond,
		throttleDelay: 2 * time.Second,
		minRemaining:  100,
		slots:         make(chan struct{}, concurrency),
	}
}

// Concurrency returns the number of concurrent slots.
func (rl *RateLimiter) Concurrency() int {
	return cap(rl.slots)
}

// AcquireSlot blocks until a concurrency slot is free or the context ends.
func (rl *RateLimiter) AcquireSlot(ctx context.Context) error {
	select {
	case rl.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ReleaseSlot frees a previously acquired slot.
func (rl *RateLimiter) ReleaseSlot() {
	select {
	case <-rl.slots:
	default:
	}
}

// Wait blocks until it is safe to issue the next API call. Each caller
// reserves its call time under the lock before sleeping, so concurrent
// callers get strictly spaced slots instead of all observing the same stale
// last-call stamp.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	rl.mu.Lock()
	now := time.Now()
	next := rl.nextCallLocked(now)
	rl.lastCall = next
	rl.mu.Unlock()

	if delay := next.Sub(now); delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil
}

// UpdateLimits records the quota reported by an API response.
func (rl *RateLimiter) UpdateLimits(remaining int, reset time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.remaining = remaining
	rl.resetTime = reset
}

// nextCallLocked computes the earliest permitted time for the next call.
// Callers hold mu.
func (rl *RateLimiter) nextCallLocked(now time.Time) time.Time {
	if now.After(rl.resetTime) {
		return now
	}

	if rl.remaining <= 0 {
		if rl.resetTime.After(now) {
			return rl.resetTime
		}
		return now
	}

	// Proportional throttling: the closer the quota is to exhaustion, the
	// wider the gap between calls.
	gap := rl.baseDelay
	if rl.remaining < rl.minRemaining {
		ratio := 1.0 - float64(rl.remaining)/float64(rl.minRemaining)
		if throttle := time.Duration(float64(rl.throttleDelay) * ratio); throttle > gap {
			gap = throttle
		}
	}

	if rl.lastCall.IsZero() {
		return now
	}
	if earliest := rl.lastCall.Add(gap); earliest.After(now) {
		return earliest
	}
	return now
}
