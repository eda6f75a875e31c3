package llm

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

type retryProvider struct {
	inner Provider
	cfg   RetryConfig
}

// WithRetry retries transient failures with capped exponential backoff.
// A rate limit that names its own delay is honoured as given.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &retryProvider{inner: p, cfg: cfg}
}

func (r *retryProvider) ModelID() string { return r.inner.ModelID() }

func (r *retryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	attempts := max(r.cfg.MaxAttempts, 1)
	schemaMisses := 0

	for attempt := 1; ; attempt++ {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}

		var invalid *ErrInvalidResponse
		if errors.As(err, &invalid) {
			schemaMisses++
		}
		if attempt >= attempts || !worthRetrying(err, schemaMisses) {
			return nil, err
		}

		timer := time.NewTimer(r.delay(attempt, err))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// worthRetrying: cancellations and truncation are final, a reply that
// failed the schema gets one more chance, everything else is transient.
func worthRetrying(err error, schemaMisses int) bool {
	var truncated *ErrMaxTokensExceeded
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.As(err, &truncated):
		return false
	case schemaMisses > 1:
		return false
	}
	return true
}

// delay for the wait after the given 1-based attempt, with ±20% jitter.
func (r *retryProvider) delay(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	wait := float64(r.cfg.InitialWait)
	for range attempt - 1 {
		wait *= r.cfg.Multiplier
	}
	if r.cfg.MaxWait > 0 {
		wait = min(wait, float64(r.cfg.MaxWait))
	}
	jitter := 0.8 + 0.4*rand.Float64()
	return time.Duration(wait * jitter)
}
