package llm

import (
	"context"
	"errors"
	"strings"
)

// ErrUnavailable is surfaced to callers when a provider call fails after
// retries are exhausted. The HTTP layer maps it to 503 rather than
// returning a fabricated answer.
var ErrUnavailable = errors.New("llm service unavailable")

// IsTransientError reports whether an error is worth retrying.
// Matches rate limits, quota exhaustion, timeouts, and 5xx responses.
func IsTransientError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	errStr := err.Error()
	for _, marker := range []string{
		"429",
		"500",
		"502",
		"503",
		"RESOURCE_EXHAUSTED",
		"quota",
		"rate limit",
		"rate_limit",
		"overloaded",
		"timeout",
		"deadline exceeded",
		"connection refused",
		"connection reset",
	} {
		if strings.Contains(errStr, marker) {
			return true
		}
	}
	return false
}
