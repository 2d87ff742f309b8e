// Package retry wraps transient persistence failures in a bounded
// exponential-backoff loop. Only connection-class errors are retried;
// business errors surface immediately.
package retry

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	// MaxAttempts bounds the number of tries for a transient failure.
	MaxAttempts = 4

	initialInterval = 50 * time.Millisecond
	maxInterval     = 1 * time.Second
)

// IsTransient reports whether an error looks like a recoverable connection
// failure. Validation and not-found errors are never transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return errors.Is(err, context.DeadlineExceeded)
}

// Connection runs op, retrying transient failures with exponential backoff
// up to MaxAttempts total tries. Non-transient errors are returned as-is on
// the first occurrence. The context cancels the whole loop.
func Connection(ctx context.Context, op func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = initialInterval
	policy.MaxInterval = maxInterval

	wrapped := func() error {
		err := op()
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	return backoff.Retry(
		wrapped,
		backoff.WithContext(backoff.WithMaxRetries(policy, MaxAttempts-1), ctx),
	)
}
