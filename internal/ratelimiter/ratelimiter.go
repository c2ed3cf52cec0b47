package ratelimiter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

var ErrWaitTooLong = errors.New("rate limit wait exceeds maximum")

// RateLimiter tracks per-endpoint rate-limit windows reported by the platform
// and holds requests until the window resets.
type RateLimiter struct {
	resetAt map[string]time.Time
	maxWait time.Duration
	mu      sync.Mutex
	now     func() time.Time
	log     *slog.Logger
}

func New(maxWait time.Duration, log *slog.Logger) *RateLimiter {
	if maxWait <= 0 {
		maxWait = DefaultMaxWait
	}

	return &RateLimiter{
		resetAt: make(map[string]time.Time),
		maxWait: maxWait,
		now:     time.Now,
		log:     log,
	}
}

// Wait blocks until endpoint may be called again.
func (rl *RateLimiter) Wait(ctx context.Context, endpoint string) error {
	rl.mu.Lock()
	resetAt, exists := rl.resetAt[endpoint]
	now := rl.now()
	rl.mu.Unlock()

	if !exists {
		return nil
	}

	delay := getDelay(resetAt, now)
	if delay <= 0 {
		return nil
	}

	if delay > rl.maxWait {
		return fmt.Errorf("%w (endpoint = %s, delay = %s, maxWait = %s)",
			ErrWaitTooLong, endpoint, delay, rl.maxWait)
	}

	rl.log.InfoContext(ctx, "⏳ Waiting for rate limit reset",
		"endpoint", endpoint,
		"delay", delay.String(),
		"resetAt", resetAt)

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Observe records the rate-limit state carried by a response.
func (rl *RateLimiter) Observe(endpoint string, statusCode int, header http.Header) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()

	if statusCode == http.StatusTooManyRequests {
		resetAt, ok := parseReset(header, now)
		if !ok {
			resetAt = now.Add(fallbackBackoff)
		}
		rl.resetAt[endpoint] = resetAt

		return
	}

	remaining, ok := parseRemaining(header)
	if ok && remaining == 0 {
		if resetAt, resetOk := parseReset(header, now); resetOk {
			rl.resetAt[endpoint] = resetAt
			return
		}
	}

	delete(rl.resetAt, endpoint)
}

func getDelay(resetAt time.Time, now time.Time) time.Duration {
	return max(resetAt.Sub(now), 0)
}
