package errors

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestFormatRetryAfter(t *testing.T) {
	cases := map[time.Duration]string{
		0:                             "0h 0m",
		-time.Minute:                  "0h 0m",
		59 * time.Second:              "0h 0m",
		90 * time.Minute:              "1h 30m",
		23*time.Hour + 5*time.Minute:  "23h 5m",
		26*time.Hour + 59*time.Second: "26h 0m",
	}
	for input, want := range cases {
		if got := FormatRetryAfter(input); got != want {
			t.Fatalf("FormatRetryAfter(%s) = %q, want %q", input, got, want)
		}
	}
}

func TestRateLimitErrorMatchesSentinelThroughWrapping(t *testing.T) {
	err := fmt.Errorf("submit: %w", &RateLimitError{RetryAfter: time.Hour, Quota: 3})
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected wrapped RateLimitError to match ErrRateLimited")
	}
	var limitErr *RateLimitError
	if !errors.As(err, &limitErr) || limitErr.Quota != 3 {
		t.Fatalf("expected errors.As to recover the quota")
	}
}
