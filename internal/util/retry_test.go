package util

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"
	"testing"
	"time"
)

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
		{
			name:     "ETIMEDOUT",
			err:      syscall.ETIMEDOUT,
			expected: true,
		},
		{
			name:     "ECONNRESET",
			err:      syscall.ECONNRESET,
			expected: true,
		},
		{
			name:     "ENOENT (not retryable)",
			err:      syscall.ENOENT,
			expected: false,
		},
		{
			name:     "marked transient",
			err:      Transient(errors.New("download failed: 503 Service Unavailable")),
			expected: true,
		},
		{
			name:     "wrapped transient",
			err:      fmt.Errorf("fetch: %w", Transient(errors.New("429 Too Many Requests"))),
			expected: true,
		},
		{
			name:     "HTTP 404 (not retryable)",
			err:      errors.New("download failed: 404 Not Found"),
			expected: false,
		},
		{
			name:     "timeout in error message",
			err:      errors.New("dial tcp: i/o timeout"),
			expected: true,
		},
		{
			name:     "connection reset in message",
			err:      errors.New("read: connection reset by peer"),
			expected: true,
		},
		{
			name:     "truncated body",
			err:      errors.New("download interrupted: unexpected EOF"),
			expected: true,
		},
		{
			name:     "cancelled",
			err:      fmt.Errorf("download interrupted: %w", context.Canceled),
			expected: false,
		},
		{
			name:     "PathError with ETIMEDOUT",
			err:      &os.PathError{Op: "open", Path: "/test", Err: syscall.ETIMEDOUT},
			expected: true,
		},
		{
			name:     "generic error (not retryable)",
			err:      errors.New("invalid tar header"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsRetryableError(tt.err)
			if result != tt.expected {
				t.Errorf("IsRetryableError(%v) = %v, expected %v",
					tt.err, result, tt.expected)
			}
		})
	}
}

func testRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts: 3,
		InitialWait: 10 * time.Millisecond,
		MaxWait:     100 * time.Millisecond,
	}
}

func TestRetryWithBackoff_ImmediateSuccess(t *testing.T) {
	attempts := 0

	result, err := RetryWithBackoff(context.Background(), testRetryConfig(), func() (int, error) {
		attempts++
		return 42, nil
	}, "test operation")

	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if result != 42 {
		t.Errorf("Expected result 42, got: %d", result)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt, got: %d", attempts)
	}
}

func TestRetryWithBackoff_SuccessAfterRetries(t *testing.T) {
	attempts := 0

	result, err := RetryWithBackoff(context.Background(), testRetryConfig(), func() (string, error) {
		attempts++
		if attempts < 3 {
			return "", syscall.ETIMEDOUT
		}
		return "success", nil
	}, "test operation")

	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if result != "success" {
		t.Errorf("Expected result 'success', got: %s", result)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got: %d", attempts)
	}
}

func TestRetryWithBackoff_FailureAfterMaxRetries(t *testing.T) {
	attempts := 0

	_, err := RetryWithBackoff(context.Background(), testRetryConfig(), func() (int, error) {
		attempts++
		return 0, syscall.ETIMEDOUT
	}, "test operation")

	if !errors.Is(err, syscall.ETIMEDOUT) {
		t.Errorf("Expected wrapped ETIMEDOUT after max retries, got: %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts (max), got: %d", attempts)
	}
}

func TestRetryWithBackoff_NonRetryableError(t *testing.T) {
	attempts := 0

	_, err := RetryWithBackoff(context.Background(), testRetryConfig(), func() (int, error) {
		attempts++
		return 0, syscall.ENOENT
	}, "test operation")

	if err == nil {
		t.Error("Expected error, got nil")
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt (no retry for non-retryable), got: %d", attempts)
	}
}

func TestRetryWithBackoff_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	cfg := &RetryConfig{
		MaxAttempts: 5,
		InitialWait: time.Hour,
		MaxWait:     time.Hour,
	}

	start := time.Now()
	_, err := RetryWithBackoff(ctx, cfg, func() (int, error) {
		attempts++
		cancel()
		return 0, syscall.ETIMEDOUT
	}, "test operation")

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got: %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt, got: %d", attempts)
	}
	if time.Since(start) > time.Second {
		t.Error("Retry kept waiting after cancellation")
	}
}

func TestRetryWithBackoff_ExponentialBackoff(t *testing.T) {
	attempts := 0
	cfg := &RetryConfig{
		MaxAttempts: 3,
		InitialWait: 50 * time.Millisecond,
		MaxWait:     500 * time.Millisecond,
	}

	start := time.Now()

	_, err := RetryWithBackoff(context.Background(), cfg, func() (int, error) {
		attempts++
		if attempts < 3 {
			return 0, syscall.ETIMEDOUT
		}
		return 42, nil
	}, "test operation")

	totalDuration := time.Since(start)

	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}

	// 50ms + 100ms
	if totalDuration < 150*time.Millisecond {
		t.Errorf("Expected total duration of at least 150ms, got: %v", totalDuration)
	}
}

func TestRetry_NoReturnValue(t *testing.T) {
	attempts := 0

	err := Retry(context.Background(), testRetryConfig(), func() error {
		attempts++
		if attempts < 2 {
			return Transient(errors.New("503 Service Unavailable"))
		}
		return nil
	}, "test operation")

	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if attempts != 2 {
		t.Errorf("Expected 2 attempts, got: %d", attempts)
	}
}
