// ABOUTME: Retry utilities for embedding API calls with exponential backoff
// ABOUTME: Clock abstraction lets tests observe sleeps without waiting for them
package util

import (
	"context"
	"math/rand/v2"
	"time"
)

// CalculateBackoff returns exponential backoff with jitter
// Base delay is doubled each attempt, with random jitter up to 25%
func CalculateBackoff(baseDelay time.Duration, attempt int) time.Duration {
	if attempt <= 0 || baseDelay <= 0 {
		return 0
	}
	// Cap attempt to avoid overflow in bit shift (max 30 for safety)
	if attempt > 30 {
		attempt = 30
	}
	backoff := baseDelay * time.Duration(1<<uint(attempt))
	if backoff > MaxBackoff || backoff <= 0 {
		backoff = MaxBackoff
	}
	// Add jitter: -25% to +25% using auto-seeded math/rand/v2
	jitter := time.Duration(rand.Int64N(int64(backoff)/2)) - backoff/4
	return backoff + jitter
}

// MaxBackoff caps the exponential component before jitter
const MaxBackoff = 30 * time.Second

// Clock provides time and interruptible sleeping
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

// RealClock uses the wall clock
type RealClock struct{}

// Now returns time.Now
func (RealClock) Now() time.Time { return time.Now() }

// Sleep waits for d or until ctx is done
func (RealClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
