package shared

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestIsRetryableHTTPError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"429", &HTTPError{StatusCode: 429}, true},
		{"500", &HTTPError{StatusCode: 500}, true},
		{"502", &HTTPError{StatusCode: 502}, true},
		{"503", &HTTPError{StatusCode: 503}, true},
		{"504", &HTTPError{StatusCode: 504}, true},
		{"404", &HTTPError{StatusCode: 404}, false},
		{"400", &HTTPError{StatusCode: 400}, false},
		{"wrapped 503", fmt.Errorf("request failed: %w", &HTTPError{StatusCode: 503}), true},
		{"wrapped 404", fmt.Errorf("request failed: %w", &HTTPError{StatusCode: 404}), false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		if got := IsRetryableHTTPError(tt.err); got != tt.want {
			t.Errorf("%s: IsRetryableHTTPError() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

// captureSleeps replaces the package sleep hook and returns the recorded delays.
func captureSleeps(t *testing.T) *[]time.Duration {
	t.Helper()
	var delays []time.Duration
	orig := sleep
	sleep = func(d time.Duration) { delays = append(delays, d) }
	t.Cleanup(func() { sleep = orig })
	return &delays
}

func TestRetryWithBackoffForHTTP_TwoRateLimitsThenSuccess(t *testing.T) {
	delays := captureSleeps(t)

	calls := 0
	err := RetryWithBackoffForHTTP(5, 10*time.Millisecond, time.Second, func() error {
		calls++
		if calls <= 2 {
			return &HTTPError{StatusCode: 429, Status: "429 Too Many Requests"}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
	if len(*delays) != 2 {
		t.Errorf("expected exactly 2 backoff delays, got %d", len(*delays))
	}
}

func TestRetryWithBackoffForHTTP_NonRetryableFailsImmediately(t *testing.T) {
	delays := captureSleeps(t)

	calls := 0
	err := RetryWithBackoffForHTTP(5, 10*time.Millisecond, time.Second, func() error {
		calls++
		return &HTTPError{StatusCode: 404, Status: "404 Not Found"}
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
	if len(*delays) != 0 {
		t.Errorf("expected no backoff delays, got %d", len(*delays))
	}
}

func TestRetryWithBackoffForHTTP_HonorsRetryAfterHint(t *testing.T) {
	delays := captureSleeps(t)

	calls := 0
	err := RetryWithBackoffForHTTP(3, 10*time.Millisecond, 10*time.Second, func() error {
		calls++
		if calls == 1 {
			return &HTTPError{StatusCode: 429, RetryAfter: 2 * time.Second}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(*delays) != 1 || (*delays)[0] != 2*time.Second {
		t.Errorf("expected one delay of 2s, got %v", *delays)
	}
}

func TestRetryWithBackoffForHTTP_ExhaustionPropagates(t *testing.T) {
	captureSleeps(t)

	calls := 0
	err := RetryWithBackoffForHTTP(3, time.Millisecond, time.Second, func() error {
		calls++
		return &HTTPError{StatusCode: 503, Status: "503 Service Unavailable"}
	})
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != 503 {
		t.Errorf("expected wrapped HTTPError 503, got %v", err)
	}
}

func TestBackoffDelay_CappedAtMax(t *testing.T) {
	max := 100 * time.Millisecond
	for attempt := 0; attempt < 10; attempt++ {
		d := BackoffDelay(attempt, 50*time.Millisecond, max)
		if d < 0 || d > max {
			t.Errorf("attempt %d: delay %v outside [0, %v]", attempt, d, max)
		}
	}
}
