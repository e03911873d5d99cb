package util

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"
)

// RetryConfig holds retry configuration
type RetryConfig struct {
	MaxAttempts int           // Maximum number of attempts
	InitialWait time.Duration // Initial wait duration (doubled each retry)
	MaxWait     time.Duration // Maximum wait duration between retries
}

// DefaultRetryConfig returns the configuration corpus downloads use
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts: 4,
		InitialWait: 2 * time.Second,
		MaxWait:     30 * time.Second,
	}
}

type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Transient marks err as worth retrying, e.g. an HTTP 503 response
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsRetryableError checks if an error is worth retrying.
// Returns true for errors marked Transient and transient network errors.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// Errors marked by the caller
	var transient *transientError
	if errors.As(err, &transient) {
		return true
	}

	var pathError *os.PathError
	var syscallError syscall.Errno

	// Unwrap PathError
	if errors.As(err, &pathError) {
		err = pathError.Err
	}

	// Check for retryable syscall errors
	if errors.As(err, &syscallError) {
		switch syscallError {
		case syscall.EAGAIN,      // Resource temporarily unavailable
			syscall.ETIMEDOUT,    // Connection timed out
			syscall.ECONNRESET,   // Connection reset
			syscall.ECONNABORTED, // Connection aborted
			syscall.ECONNREFUSED, // Connection refused
			syscall.ENETDOWN,     // Network is down
			syscall.ENETUNREACH,  // Network unreachable
			syscall.EHOSTDOWN,    // Host is down
			syscall.EHOSTUNREACH: // Host unreachable
			return true
		}
	}

	// Check error messages for common transient patterns
	errMsg := strings.ToLower(err.Error())
	transientPatterns := []string{
		"timeout",
		"timed out",
		"connection reset",
		"connection refused",
		"connection aborted",
		"broken pipe",
		"no route to host",
		"network is unreachable",
		"network is down",
		"temporary failure",
		"unexpected eof", // connection dropped mid download
	}

	for _, pattern := range transientPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}

	return false
}

// RetryWithBackoff executes a function with exponential backoff retry logic.
// Returns the result of the function or the final error after all retries
// are exhausted. Waiting stops when ctx is done.
func RetryWithBackoff[T any](ctx context.Context, cfg *RetryConfig, operation func() (T, error), operationName string) (T, error) {
	var result T
	var err error

	if cfg == nil {
		cfg = DefaultRetryConfig()
	}

	waitDuration := cfg.InitialWait

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		result, err = operation()

		// Success - return immediately
		if err == nil {
			if attempt > 1 {
				DebugLog("Retry: %s succeeded on attempt %d/%d",
					operationName, attempt, cfg.MaxAttempts)
			}
			return result, nil
		}

		if !IsRetryableError(err) {
			// Non-retryable error - fail immediately
			DebugLog("Retry: %s failed with non-retryable error: %v", operationName, err)
			return result, err
		}

		// Last attempt - return the error
		if attempt == cfg.MaxAttempts {
			WarnLog("Retry: %s failed after %d attempts: %v",
				operationName, cfg.MaxAttempts, err)
			return result, fmt.Errorf("max retries exceeded (%d attempts): %w",
				cfg.MaxAttempts, err)
		}

		WarnLog("Retry: %s failed (attempt %d/%d), retrying in %v: %v",
			operationName, attempt, cfg.MaxAttempts, waitDuration, err)

		// Wait before retry (exponential backoff)
		timer := time.NewTimer(waitDuration)
		select {
		case <-ctx.Done():
			timer.Stop()
			return result, ctx.Err()
		case <-timer.C:
		}

		// Double the wait time for next retry
		waitDuration *= 2
		if waitDuration > cfg.MaxWait {
			waitDuration = cfg.MaxWait
		}
	}

	// Should never reach here, but return error just in case
	return result, fmt.Errorf("unexpected retry loop exit: %w", err)
}

// Retry executes a function with retry logic (no return value)
func Retry(ctx context.Context, cfg *RetryConfig, operation func() error, operationName string) error {
	_, err := RetryWithBackoff(ctx, cfg, func() (struct{}, error) {
		return struct{}{}, operation()
	}, operationName)
	return err
}
