package llm

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sanitas/internal/common"
)

// RetryConfig defines retry behavior for transient provider failures
type RetryConfig struct {
	// MaxRetries is the maximum number of retry attempts after the
	// initial call (default: 3)
	MaxRetries int

	// InitialBackoff is the wait time before the first retry (default: 2s)
	InitialBackoff time.Duration

	// MaxBackoff is the maximum wait time between retries (default: 30s)
	MaxBackoff time.Duration

	// BackoffMultiplier is applied to the backoff on each retry (default: 1.5)
	BackoffMultiplier float64
}

// Default retry constants for provider rate limiting
const (
	DefaultMaxRetries        = 3
	DefaultInitialBackoff    = 2 * time.Second
	DefaultMaxBackoff        = 30 * time.Second
	DefaultBackoffMultiplier = 1.5
)

// NewDefaultRetryConfig returns a RetryConfig with sensible defaults
func NewDefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:        DefaultMaxRetries,
		InitialBackoff:    DefaultInitialBackoff,
		MaxBackoff:        DefaultMaxBackoff,
		BackoffMultiplier: DefaultBackoffMultiplier,
	}
}

// NewRetryConfig builds a RetryConfig from the application configuration
func NewRetryConfig(cfg *common.LLMConfig) *RetryConfig {
	rc := NewDefaultRetryConfig()
	if cfg.MaxRetries > 0 {
		rc.MaxRetries = cfg.MaxRetries
	}
	if d, err := time.ParseDuration(cfg.InitialBackoff); err == nil && d > 0 {
		rc.InitialBackoff = d
	}
	if d, err := time.ParseDuration(cfg.MaxBackoff); err == nil && d > 0 {
		rc.MaxBackoff = d
	}
	return rc
}

// retryDelayRegex matches "Please retry in Xs" or "retryDelay:Xs" patterns
// that Gemini rate-limit errors carry.
var retryDelayRegex = regexp.MustCompile(`(?i)(?:Please retry in |retryDelay[:\s]+)(\d+(?:\.\d+)?)\s*s`)

// ExtractRetryDelay parses an API-suggested retry delay from an error.
// Returns 0 if no delay is found in the error message.
func ExtractRetryDelay(err error) time.Duration {
	if err == nil {
		return 0
	}

	matches := retryDelayRegex.FindStringSubmatch(err.Error())
	if len(matches) < 2 {
		return 0
	}

	seconds, parseErr := strconv.ParseFloat(matches[1], 64)
	if parseErr != nil {
		return 0
	}

	return time.Duration(seconds * float64(time.Second))
}

// CalculateBackoff computes the backoff duration for a given attempt.
// If apiDelay > 0 (from ExtractRetryDelay), it's used as the base.
// The result is capped at MaxBackoff.
func (c *RetryConfig) CalculateBackoff(attempt int, apiDelay time.Duration) time.Duration {
	base := c.InitialBackoff
	if apiDelay > 0 {
		base = apiDelay + time.Second
	}

	multiplier := 1.0
	for i := 0; i < attempt; i++ {
		multiplier *= c.BackoffMultiplier
	}

	backoff := time.Duration(float64(base) * multiplier)
	if backoff > c.MaxBackoff {
		backoff = c.MaxBackoff
	}

	return backoff
}

// Retry runs op, retrying transient failures with backoff until the
// retry budget is exhausted or the context is cancelled. Non-transient
// errors fail immediately.
func Retry[T any](ctx context.Context, cfg *RetryConfig, logger arbor.ILogger, label string, op func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := cfg.CalculateBackoff(attempt-1, ExtractRetryDelay(lastErr))
			logger.Warn().
				Str("operation", label).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Err(lastErr).
				Msg("Transient failure, retrying after backoff")

			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(backoff):
			}
		}

		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		if !IsTransientError(err) {
			return zero, err
		}
		lastErr = err
	}

	return zero, fmt.Errorf("%s failed after %d attempts: %w (%s)", label, cfg.MaxRetries+1, ErrUnavailable, lastErr)
}
