package ai

import (
	"context"
	"errors"
	"net/http"
	"time"
)

const maxAttempts = 3

// Overridden in tests.
var retryBaseDelay = time.Second

// retryable reports whether a failed request is worth repeating. Rate
// limiting and server-side failures are transient; anything else will
// fail the same way again.
func retryable(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusTooManyRequests || apiErr.Status >= http.StatusInternalServerError
}

// withRetry runs fn up to maxAttempts times, doubling the delay after
// each retryable failure.
func withRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil || !retryable(lastErr) {
			return lastErr
		}

		if attempt < maxAttempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryBaseDelay << uint(attempt)):
			}
		}
	}
	return lastErr
}
