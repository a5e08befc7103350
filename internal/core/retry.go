// ABOUTME: Bounded retry with exponential backoff around an Embedder
// ABOUTME: Rate limits pause a shared gate so every worker backs off together
package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/harper/catmatch/internal/models"
	"github.com/harper/catmatch/internal/util"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// DefaultRateLimitDelay applies when a 429 carries no retry hint
const DefaultRateLimitDelay = 30 * time.Second

// RetryPolicy bounds retries of transient provider errors
type RetryPolicy struct {
	MaxRetries     int
	BaseDelay      time.Duration
	RateLimitDelay time.Duration
}

// DefaultRetryPolicy returns 5 retries, 2s base, 30s rate-limit fallback
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:     5,
		BaseDelay:      2 * time.Second,
		RateLimitDelay: DefaultRateLimitDelay,
	}
}

// BackoffGate is a process-wide pause shared by all workers
type BackoffGate struct {
	mu    sync.Mutex
	until time.Time
	clock util.Clock
}

// NewBackoffGate creates an open gate
func NewBackoffGate(clock util.Clock) *BackoffGate {
	return &BackoffGate{clock: clock}
}

// Pause closes the gate for d; a shorter pause never shortens an existing one
func (g *BackoffGate) Pause(d time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if t := g.clock.Now().Add(d); t.After(g.until) {
		g.until = t
	}
}

// Wait blocks until the gate is open or ctx is done
func (g *BackoffGate) Wait(ctx context.Context) error {
	for {
		g.mu.Lock()
		remaining := g.until.Sub(g.clock.Now())
		g.mu.Unlock()
		if remaining <= 0 {
			return ctx.Err()
		}
		if err := g.clock.Sleep(ctx, remaining); err != nil {
			return err
		}
	}
}

// RetryingEmbedder retries transient failures of the wrapped Embedder
type RetryingEmbedder struct {
	next    Embedder
	policy  RetryPolicy
	gate    *BackoffGate
	clock   util.Clock
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// RetryOption customizes a RetryingEmbedder
type RetryOption func(*RetryingEmbedder)

// WithClock injects the clock used for sleeping and the gate
func WithClock(clock util.Clock) RetryOption {
	return func(r *RetryingEmbedder) { r.clock = clock }
}

// WithGate shares a backoff gate between embedders
func WithGate(gate *BackoffGate) RetryOption {
	return func(r *RetryingEmbedder) { r.gate = gate }
}

// WithLimiter caps the outgoing request rate across all workers
func WithLimiter(limiter *rate.Limiter) RetryOption {
	return func(r *RetryingEmbedder) { r.limiter = limiter }
}

// WithLogger sets the logger for retry warnings
func WithLogger(logger zerolog.Logger) RetryOption {
	return func(r *RetryingEmbedder) { r.logger = logger }
}

// NewRetryingEmbedder wraps next with the given policy
func NewRetryingEmbedder(next Embedder, policy RetryPolicy, opts ...RetryOption) *RetryingEmbedder {
	r := &RetryingEmbedder{
		next:   next,
		policy: policy,
		clock:  util.RealClock{},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.gate == nil {
		r.gate = NewBackoffGate(r.clock)
	}
	if r.policy.RateLimitDelay <= 0 {
		r.policy.RateLimitDelay = DefaultRateLimitDelay
	}
	return r
}

// Embed calls the wrapped embedder, retrying transient errors up to MaxRetries times.
// Exhausted retries surface as a permanent provider error.
func (r *RetryingEmbedder) Embed(ctx context.Context, text string) (models.Vector, error) {
	for attempt := 0; ; attempt++ {
		if err := r.gate.Wait(ctx); err != nil {
			return nil, err
		}
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		vec, err := r.next.Embed(ctx, text)
		if err == nil {
			return vec, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		var pe *models.ProviderError
		if !errors.As(err, &pe) || !pe.Transient {
			return nil, err
		}

		if attempt >= r.policy.MaxRetries {
			return nil, &models.ProviderError{
				StatusCode: pe.StatusCode,
				Body:       fmt.Sprintf("giving up after %d attempts", attempt+1),
				Err:        err,
			}
		}

		delay := util.CalculateBackoff(r.policy.BaseDelay, attempt+1)
		if pe.RateLimited {
			hint := pe.RetryAfter
			if hint <= 0 {
				hint = r.policy.RateLimitDelay
			}
			if hint > delay {
				delay = hint
			}
			r.logger.Warn().Dur("delay", delay).Int("attempt", attempt+1).Msg("rate limited, pausing all workers")
			r.gate.Pause(delay)
			continue
		}

		r.logger.Warn().Err(err).Dur("delay", delay).Int("attempt", attempt+1).Msg("transient embedding error, retrying")
		if err := r.clock.Sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
}
