package ratelimiter

import (
	"time"
)

const (
	// DefaultMaxWait bounds a single wait; X resets windows every 15 minutes.
	DefaultMaxWait = 15 * time.Minute

	remainingHeader = "x-rate-limit-remaining"
	resetHeader     = "x-rate-limit-reset"
	retryAfter      = "Retry-After"

	// fallbackBackoff is used when a 429 carries no reset information.
	fallbackBackoff = time.Minute
)
