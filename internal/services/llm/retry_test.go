package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/sanitas/internal/common"
)

func fastRetryConfig(maxRetries int) *RetryConfig {
	return &RetryConfig{
		MaxRetries:        maxRetries,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 1.5,
	}
}

func TestIsTransientError(t *testing.T) {
	transient := []error{
		errors.New("429 Too Many Requests"),
		errors.New("RESOURCE_EXHAUSTED: quota exceeded"),
		errors.New("503 Service Unavailable"),
		errors.New("model is overloaded, please try again"),
		errors.New("context deadline exceeded"),
	}
	for _, err := range transient {
		assert.True(t, IsTransientError(err), "%v should be transient", err)
	}

	permanent := []error{
		nil,
		errors.New("invalid request: symptoms missing"),
		errors.New("401 Unauthorized"),
		context.Canceled,
	}
	for _, err := range permanent {
		assert.False(t, IsTransientError(err), "%v should not be transient", err)
	}
}

func TestExtractRetryDelay(t *testing.T) {
	assert.Equal(t, 7*time.Second, ExtractRetryDelay(errors.New("quota exceeded. Please retry in 7s.")))
	assert.Equal(t, time.Duration(0), ExtractRetryDelay(errors.New("some other error")))
	assert.Equal(t, time.Duration(0), ExtractRetryDelay(nil))
}

func TestCalculateBackoffCapsAtMax(t *testing.T) {
	cfg := &RetryConfig{
		InitialBackoff:    2 * time.Second,
		MaxBackoff:        10 * time.Second,
		BackoffMultiplier: 2.0,
	}

	assert.Equal(t, 2*time.Second, cfg.CalculateBackoff(0, 0))
	assert.Equal(t, 4*time.Second, cfg.CalculateBackoff(1, 0))
	assert.Equal(t, 8*time.Second, cfg.CalculateBackoff(2, 0))
	assert.Equal(t, 10*time.Second, cfg.CalculateBackoff(3, 0), "capped")

	// API-suggested delay replaces the base
	assert.Equal(t, 8*time.Second, cfg.CalculateBackoff(0, 7*time.Second))
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	result, err := Retry(context.Background(), fastRetryConfig(3), common.GetLogger(), "test", func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("503 Service Unavailable")
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, calls)
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), fastRetryConfig(3), common.GetLogger(), "test", func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("invalid request")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.False(t, errors.Is(err, ErrUnavailable))
}

func TestRetryExhaustsBudget(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), fastRetryConfig(2), common.GetLogger(), "test", func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("429 rate limit")
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls, "initial call plus two retries")
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := Retry(ctx, fastRetryConfig(3), common.GetLogger(), "test", func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("503 unavailable")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls, "cancelled context stops before the first backoff completes")
}

func TestGateLimitsConcurrency(t *testing.T) {
	gate := NewGate(1, 0)

	require.NoError(t, gate.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := gate.Acquire(ctx)
	require.Error(t, err, "second acquire must block until release")

	gate.Release()
	require.NoError(t, gate.Acquire(context.Background()))
	gate.Release()
}
