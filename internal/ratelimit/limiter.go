// Package ratelimit throttles outbound requests to third-party services that
// publish a request quota, such as the IP-intelligence API.
package ratelimit

import (
	"context"
	"math/rand/v2"
	"time"

	"golang.org/x/time/rate"
)

// jitterFactor spreads wait intervals by up to ±20%.
const jitterFactor = 0.20

// Limiter wraps a token-bucket limiter. A nil *Limiter never blocks.
type Limiter struct {
	inner *rate.Limiter
}

// New creates a Limiter with the given requests-per-second rate and burst.
// A non-positive rps disables limiting and returns nil.
func New(rps float64, burst int) *Limiter {
	if rps <= 0 {
		return nil
	}
	return &Limiter{inner: rate.NewLimiter(rate.Limit(rps), max(burst, 1))}
}

// Wait blocks until a token is available or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return ctx.Err()
	}
	res := l.inner.Reserve()
	if !res.OK() {
		return ctx.Err()
	}

	delay := res.Delay()
	if delay <= 0 {
		return nil
	}
	jitter := time.Duration(float64(delay) * jitterFactor * (rand.Float64()*2 - 1)) //nolint:gosec // jitter does not need crypto randomness
	delay = max(0, delay+jitter)

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		res.Cancel()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
