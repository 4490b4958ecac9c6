package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrRateLimitExceeded is returned when rate limit is exceeded
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// RateLimiter implements token bucket rate limiting
type RateLimiter struct {
	rate       float64   // Tokens per second
	burst      int       // Max tokens (bucket size)
	tokens     float64   // Current tokens
	lastUpdate time.Time // Last token refill time
	mu         sync.Mutex
}

// NewRateLimiter creates a new rate limiter
// rate: number of requests per second
// burst: maximum burst size
func NewRateLimiter(rate float64, burst int) *RateLimiter {
	if rate <= 0 {
		rate = 10 // default: 10 requests/sec
	}
	if burst <= 0 {
		burst = int(rate) // default burst = rate
	}

	return &RateLimiter{
		rate:       rate,
		burst:      burst,
		tokens:     float64(burst), // Start with full bucket
		lastUpdate: time.Now(),
	}
}

// NewRateLimiterFromRPM creates a rate limiter from requests per minute.
// Google Ads API quotas are expressed per minute.
func NewRateLimiterFromRPM(requestsPerMinute int, burst int) *RateLimiter {
	rate := float64(requestsPerMinute) / 60.0
	return NewRateLimiter(rate, burst)
}

// Allow checks if a request is allowed without blocking
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refill()

	if rl.tokens >= 1.0 {
		rl.tokens -= 1.0
		return true
	}

	return false
}

// Wait blocks until a token is available or context is cancelled
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		if rl.Allow() {
			return nil
		}

		waitTime := rl.calculateWaitTime()

		select {
		case <-time.After(waitTime):
			// Continue to next iteration
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// refill adds tokens based on elapsed time (caller must hold lock)
func (rl *RateLimiter) refill() {
	now := time.Now()
	elapsed := now.Sub(rl.lastUpdate)

	tokensToAdd := elapsed.Seconds() * rl.rate

	rl.tokens += tokensToAdd
	if rl.tokens > float64(rl.burst) {
		rl.tokens = float64(rl.burst)
	}

	rl.lastUpdate = now
}

// calculateWaitTime calculates how long to wait for next token
func (rl *RateLimiter) calculateWaitTime() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	timePerToken := 1.0 / rl.rate

	tokensNeeded := 1.0 - rl.tokens
	if tokensNeeded < 0 {
		tokensNeeded = 0
	}

	waitTime := time.Duration(tokensNeeded*timePerToken) * time.Second

	// Minimum wait time to avoid busy-waiting
	if waitTime < 10*time.Millisecond {
		waitTime = 10 * time.Millisecond
	}

	return waitTime
}

// Reset resets the rate limiter to full capacity
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.tokens = float64(rl.burst)
	rl.lastUpdate = time.Now()
}
