package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter implements per-key rate limiting using the TOKEN BUCKET
// algorithm: each key gets a bucket refilled at a constant rate, each
// request consumes one token, and an empty bucket means 429.
//
// The limiter is in-process. This service runs as a single local sidecar,
// so there is nothing to coordinate across instances.
type RateLimiter struct {
	maxRequests int           // requests allowed per window
	window      time.Duration // refill window (e.g. 1 minute)
	burstSize   int           // bucket capacity

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

// NewTokenBucketLimiter creates a new rate limiter.
// Example: NewTokenBucketLimiter(100, time.Minute, 120) allows 100
// requests per minute with bursts up to 120.
func NewTokenBucketLimiter(maxRequests int, window time.Duration, burstSize int) *RateLimiter {
	return &RateLimiter{
		maxRequests: maxRequests,
		window:      window,
		burstSize:   burstSize,
		buckets:     make(map[string]*rate.Limiter),
	}
}

// Allow checks if a request for the given key should pass.
// Returns (allowed, remaining tokens, approximate reset time, error); the
// error return exists for interface compatibility and is always nil here.
func (rl *RateLimiter) Allow(_ context.Context, key string) (bool, int, time.Time, error) {
	rl.mu.Lock()
	bucket, ok := rl.buckets[key]
	if !ok {
		bucket = rate.NewLimiter(rate.Every(rl.window/time.Duration(rl.maxRequests)), rl.burstSize)
		rl.buckets[key] = bucket
	}
	rl.mu.Unlock()

	allowed := bucket.Allow()

	remaining := int(bucket.Tokens())
	if remaining < 0 {
		remaining = 0
	}

	// Full refill takes one window from empty; close enough for the
	// Retry-After header
	resetTime := time.Now().Add(rl.window)

	return allowed, remaining, resetTime, nil
}

// Reset clears the bucket for a key. Useful for testing or manual
// overrides.
func (rl *RateLimiter) Reset(_ context.Context, key string) error {
	rl.mu.Lock()
	delete(rl.buckets, key)
	rl.mu.Unlock()
	return nil
}

// MaxRequests returns the maximum number of requests allowed per window
func (rl *RateLimiter) MaxRequests() int {
	return rl.maxRequests
}
