package ratelimit

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"time"
)

// retryAfterCap bounds how long a server-provided Retry-After can make
// us wait on a single attempt.
const retryAfterCap = 60 * time.Second

// RequestRetryError represents an error when all retry attempts are exhausted
type RequestRetryError struct {
	URL        string
	Attempts   int
	LastStatus int
	LastError  error
}

func (e *RequestRetryError) Error() string {
	msg := fmt.Sprintf("request to %s failed after %d attempts", e.URL, e.Attempts)
	if e.LastStatus != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.LastStatus)
	}
	if e.LastError != nil {
		msg += ": " + e.LastError.Error()
	}
	return msg
}

func (e *RequestRetryError) Unwrap() error {
	return e.LastError
}

// IsRetryableStatus checks if an HTTP status code is retryable.
// Retryable: 429, 500-599
func IsRetryableStatus(status int) bool {
	return status == 429 || (status >= 500 && status < 600)
}

// CalculateBackoff calculates exponential backoff delay for a given
// attempt, with 0-25% jitter
func CalculateBackoff(attempt int, config Config) time.Duration {
	exponential := float64(config.InitialBackoffMs) * math.Pow(2.0, float64(attempt))
	capped := math.Min(exponential, float64(config.MaxBackoffMs))
	jitter := rand.Float64() * 0.25 * capped
	return time.Duration(capped+jitter) * time.Millisecond
}

// CalculateRateLimitBackoff calculates backoff for HTTP 429 responses.
// A server-provided Retry-After wins; otherwise exponential backoff
// with a steeper 3x multiplier is used.
func CalculateRateLimitBackoff(attempt int, config Config, retryAfterHeader string) time.Duration {
	if d, ok := ParseRetryAfter(retryAfterHeader, time.Now()); ok {
		return d
	}

	exponential := float64(config.InitialBackoffMs) * math.Pow(3.0, float64(attempt))
	capped := math.Min(exponential, float64(config.MaxBackoffMs))
	jitter := rand.Float64() * 0.25 * capped
	return time.Duration(capped+jitter) * time.Millisecond
}

// ParseRetryAfter interprets a Retry-After header value. The messaging
// API sends a UNIX timestamp in milliseconds rather than the standard
// delay-seconds form, so large values are treated as absolute
// deadlines. The result is capped at 60 seconds.
func ParseRetryAfter(header string, now time.Time) (time.Duration, bool) {
	if header == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(header, 10, 64)
	if err != nil || v < 0 {
		return 0, false
	}

	var d time.Duration
	if v > now.UnixMilli() {
		d = time.Duration(v-now.UnixMilli()) * time.Millisecond
	} else {
		d = time.Duration(v) * time.Second
	}

	if d > retryAfterCap {
		d = retryAfterCap
	}
	return d, true
}
