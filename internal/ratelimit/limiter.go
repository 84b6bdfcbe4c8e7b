// Package ratelimit throttles calls to embedding provider APIs.
package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBackoff is used when a provider rejects a request as rate limited
// without saying when to retry.
const DefaultBackoff = 30 * time.Second

// Limiter is a token bucket with an extra backoff window that is opened
// when the provider answers 429.
type Limiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	now     func() time.Time
}

// New creates a limiter allowing requestsPerSecond sustained calls.
// A non-positive rate disables the token bucket; the backoff window
// still applies.
func New(requestsPerSecond float64) *Limiter {
	l := &Limiter{now: time.Now}
	if requestsPerSecond > 0 {
		burst := int(math.Max(1, math.Ceil(requestsPerSecond)))
		l.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
	return l
}

// Wait blocks until a request may be sent or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if wait := retryAt.Sub(l.now()); wait > 0 {
		t := time.NewTimer(wait)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}

	if l.limiter == nil {
		return ctx.Err()
	}
	return l.limiter.Wait(ctx)
}

// Backoff opens a window during which Wait blocks.
// A non-positive retryAfter selects DefaultBackoff.
func (l *Limiter) Backoff(retryAfter time.Duration) {
	if retryAfter <= 0 {
		retryAfter = DefaultBackoff
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if until := l.now().Add(retryAfter); until.After(l.retryAt) {
		l.retryAt = until
	}
}

// RetryAt returns the end of the current backoff window, or the zero time.
func (l *Limiter) RetryAt() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.retryAt
}
