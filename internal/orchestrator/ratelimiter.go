package orchestrator

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter is a token-bucket + semaphore composite gating LLM calls
// only (spec §4.5 "Rate limiter (LLM-only)"): max_concurrent outstanding
// permits via the semaphore, rate_limit requests/second via the token
// bucket. Acquire is gated by both; Release frees only the semaphore
// slot, matching the original's "only LLM-flagged work is throttled"
// contract — the token bucket replaces the original's manual
// last-request/sleep bookkeeping with golang.org/x/time/rate.
type RateLimiter struct {
	sem     chan struct{}
	limiter *rate.Limiter
}

// NewRateLimiter builds a limiter allowing maxConcurrent outstanding
// permits at up to ratePerSecond acquisitions per second.
func NewRateLimiter(maxConcurrent int, ratePerSecond float64) *RateLimiter {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &RateLimiter{
		sem:     make(chan struct{}, maxConcurrent),
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), 1),
	}
}

// Acquire blocks until a permit is free under both the concurrency cap
// and the rate limit, or until timeout elapses. Returns false on
// timeout or if ctx is cancelled first.
func (r *RateLimiter) Acquire(ctx context.Context, timeout time.Duration) bool {
	cctx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	select {
	case r.sem <- struct{}{}:
	case <-cctx.Done():
		return false
	}

	if err := r.limiter.Wait(cctx); err != nil {
		<-r.sem
		return false
	}
	return true
}

// Release frees the concurrency permit acquired by Acquire.
func (r *RateLimiter) Release() {
	select {
	case <-r.sem:
	default:
	}
}
