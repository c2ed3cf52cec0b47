package ratelimiter

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// parseReset reads the window reset from the epoch seconds header, falling
// back to Retry-After seconds.
func parseReset(header http.Header, now time.Time) (time.Time, bool) {
	if raw := strings.TrimSpace(header.Get(resetHeader)); raw != "" {
		epoch, err := strconv.ParseInt(raw, 10, 64)
		if err == nil && epoch > 0 {
			return time.Unix(epoch, 0), true
		}
	}

	if raw := strings.TrimSpace(header.Get(retryAfter)); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err == nil && seconds >= 0 {
			return now.Add(time.Duration(seconds) * time.Second), true
		}
	}

	return time.Time{}, false
}

func parseRemaining(header http.Header) (int, bool) {
	raw := strings.TrimSpace(header.Get(remainingHeader))
	if raw == "" {
		return 0, false
	}

	remaining, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}

	return remaining, true
}
