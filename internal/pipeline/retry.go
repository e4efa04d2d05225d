package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand"
	"time"
)

// RetryPolicy governs how an upstream call is retried. A policy is immutable
// per invocation; independent requests use independent policy values.
type RetryPolicy struct {
	MaxRetries   int           // retries after the initial attempt
	BaseDelay    time.Duration // first backoff delay
	GrowthFactor float64       // multiplier applied per retry
	Jitter       float64       // random fraction of the delay, e.g. 0.25
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:   3,
		BaseDelay:    500 * time.Millisecond,
		GrowthFactor: 2,
		Jitter:       0.25,
	}
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = 500 * time.Millisecond
	}
	if p.GrowthFactor < 1 {
		p.GrowthFactor = 2
	}
	return p
}

// delay computes the backoff before retry number attempt (0-based), with
// bounded random jitter applied around the exponential curve.
func (p RetryPolicy) delay(attempt int) time.Duration {
	base := float64(p.BaseDelay) * math.Pow(p.GrowthFactor, float64(attempt))
	if p.Jitter > 0 {
		base += base * p.Jitter * (2*rand.Float64() - 1)
	}
	if base < 0 {
		base = 0
	}
	return time.Duration(base)
}

// Retry runs fn, retrying on classified-retryable upstream failures with
// exponential backoff. Rate-limit (429) and transient (5xx) codes retry;
// everything else propagates immediately with its classification intact.
// A call that times out against its own deadline while the parent context is
// still live counts as transient.
func Retry(ctx context.Context, policy RetryPolicy, fn func(ctx context.Context) error) error {
	policy = policy.normalized()

	var lastErr error
	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := policy.delay(attempt - 1)
			slog.Debug("retrying upstream call", "attempt", attempt, "delay", delay)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !retryable(ctx, err) {
			return err
		}
	}
	return lastErr
}

func retryable(ctx context.Context, err error) bool {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Retryable()
	}
	// Per-attempt timeout with the request itself still alive.
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return true
	}
	return false
}
