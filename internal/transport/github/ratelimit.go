package github

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// SearchRateLimit is the authenticated search API limit (30/min).
	SearchRateLimit = 30

	// ProactiveRate is the proactive throttle rate (~0.4 req/sec = 24/min).
	ProactiveRate = 0.4

	// MinBuffer is the minimum remaining requests before waiting for reset.
	MinBuffer = 2

	// HeaderRateRemaining is the remaining requests header.
	HeaderRateRemaining = "X-RateLimit-Remaining"

	// HeaderRateLimit is the rate limit header.
	HeaderRateLimit = "X-RateLimit-Limit"

	// HeaderRateReset is the reset timestamp header (Unix seconds).
	HeaderRateReset = "X-RateLimit-Reset"

	// HeaderRateResource names the quota bucket a response was billed to.
	HeaderRateResource = "X-RateLimit-Resource"
)

// RateLimiter throttles GitHub search API calls. It combines a proactive
// token bucket with reactive tracking of the rate limit headers GitHub
// returns on every response.
type RateLimiter struct {
	mu        sync.Mutex
	remaining int
	limit     int
	resetTime time.Time
	bucket    *rate.Limiter
	minBuffer int
}

// NewRateLimiter creates a rate limiter tuned for the search API quota.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		remaining: SearchRateLimit, // Assume full quota initially
		limit:     SearchRateLimit,
		bucket:    rate.NewLimiter(rate.Limit(ProactiveRate), 4),
		minBuffer: MinBuffer,
	}
}

// Wait blocks until it's safe to make a request.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.bucket.Wait(ctx); err != nil {
		return err //nolint:wrapcheck // context cancellation passes through
	}

	r.mu.Lock()
	remaining := r.remaining
	resetTime := r.resetTime
	r.mu.Unlock()

	if remaining < r.minBuffer && time.Now().Before(resetTime) {
		select {
		case <-ctx.Done():
			return ctx.Err() //nolint:wrapcheck // context cancellation passes through
		case <-time.After(time.Until(resetTime)):
		}
	}

	return nil
}

// UpdateFromResponse updates rate limit state from response headers.
// Responses billed to a quota bucket other than search (core, graphql)
// are ignored so their much larger limits don't mask a depleted search
// quota.
func (r *RateLimiter) UpdateFromResponse(resp *http.Response) {
	if resp == nil {
		return
	}
	if res := resp.Header.Get(HeaderRateResource); res != "" && res != "search" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if remaining := resp.Header.Get(HeaderRateRemaining); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil {
			r.remaining = val
		}
	}

	if limit := resp.Header.Get(HeaderRateLimit); limit != "" {
		if val, err := strconv.Atoi(limit); err == nil {
			r.limit = val
		}
	}

	if reset := resp.Header.Get(HeaderRateReset); reset != "" {
		if val, err := strconv.ParseInt(reset, 10, 64); err == nil {
			r.resetTime = time.Unix(val, 0)
		}
	}
}

// Remaining returns the last observed remaining quota.
func (r *RateLimiter) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remaining
}

// ResetTime returns the last observed quota reset time.
func (r *RateLimiter) ResetTime() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resetTime
}
