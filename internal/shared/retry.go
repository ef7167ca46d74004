package shared

import (
	"fmt"
	"math/rand"
	"net/http"
	"time"
)

// HTTPError represents an HTTP error with status code. RetryAfter carries a
// server-supplied retry hint when the response included one.
type HTTPError struct {
	StatusCode int
	Status     string
	Message    string
	RetryAfter time.Duration
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s - %s", e.StatusCode, e.Status, e.Message)
}

// IsRetryableHTTPError checks if an HTTP error should be retried
func IsRetryableHTTPError(err error) bool {
	for err != nil {
		if httpErr, ok := err.(*HTTPError); ok {
			switch httpErr.StatusCode {
			case http.StatusTooManyRequests, // 429
				http.StatusInternalServerError, // 500
				http.StatusBadGateway,          // 502
				http.StatusServiceUnavailable,  // 503
				http.StatusGatewayTimeout:      // 504
				return true
			}
			return false
		}
		if unwrapped, ok := err.(interface{ Unwrap() error }); ok {
			err = unwrapped.Unwrap()
		} else {
			break
		}
	}
	return false
}

// retryAfterHint extracts a server-supplied delay from a retryable error, 0 if none.
func retryAfterHint(err error) time.Duration {
	for err != nil {
		if httpErr, ok := err.(*HTTPError); ok {
			return httpErr.RetryAfter
		}
		if unwrapped, ok := err.(interface{ Unwrap() error }); ok {
			err = unwrapped.Unwrap()
		} else {
			break
		}
	}
	return 0
}

// sleep is swapped out in tests to observe backoff delays.
var sleep = time.Sleep

// BackoffDelay computes the delay before retrying attempt (0-based) with
// exponential growth and jitter, capped at maxDelay.
func BackoffDelay(attempt int, initialDelay, maxDelay time.Duration) time.Duration {
	delay := initialDelay * time.Duration(1<<uint(attempt))
	if delay > maxDelay {
		delay = maxDelay
	}

	// Add jitter (±25% of delay)
	jitter := time.Duration(rand.Int63n(int64(delay/2))) - delay/4
	finalDelay := delay + jitter
	if finalDelay < 0 {
		finalDelay = delay
	}
	if finalDelay > maxDelay {
		finalDelay = maxDelay
	}
	return finalDelay
}

// RetryWithBackoffForHTTP retries fn until it succeeds, fails with a
// non-retryable error, or exhausts maxAttempts. Retryable failures back off
// exponentially with jitter, honoring a server Retry-After hint when present.
func RetryWithBackoffForHTTP(maxAttempts int, initialDelay, maxDelay time.Duration, fn func() error) error {
	return RetryWithBackoffForHTTPWithDebug(maxAttempts, initialDelay, maxDelay, fn, false)
}

// RetryWithBackoffForHTTPWithDebug is RetryWithBackoffForHTTP with optional
// debug logging of each retry.
func RetryWithBackoffForHTTPWithDebug(maxAttempts int, initialDelay, maxDelay time.Duration, fn func() error, debug bool) error {
	var lastErr error

	if maxAttempts == 0 { // If no retries, just execute once
		return fn()
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if !IsRetryableHTTPError(lastErr) {
			return lastErr // Don't retry non-retryable errors
		}

		if attempt == maxAttempts-1 {
			break // Don't sleep on the last attempt
		}

		delay := retryAfterHint(lastErr)
		if delay <= 0 {
			delay = BackoffDelay(attempt, initialDelay, maxDelay)
		} else if delay > maxDelay {
			delay = maxDelay
		}

		if debug {
			DebugPrint(true, "HTTP request failed (attempt %d/%d): %v. Retrying in %v",
				attempt+1, maxAttempts, lastErr, delay)
		}

		sleep(delay)
	}

	return fmt.Errorf("failed after %d attempts: %w", maxAttempts, lastErr)
}
