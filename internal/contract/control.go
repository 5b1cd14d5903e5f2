package contract

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/huangsam/repostats/schema"
)

// RetryPolicy bounds the attempts of a retried operation.
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy allows three attempts with exponential backoff.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts:     3,
	InitialInterval: 500 * time.Millisecond,
	MaxInterval:     5 * time.Second,
}

// Permanent marks an error that must not be retried.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// WithRetry runs op until it succeeds, returns a permanent error, the context
// ends, or the policy runs out of attempts. The last error is returned.
func WithRetry[T any](ctx context.Context, policy RetryPolicy, op func(context.Context) (T, error)) (T, error) {
	attempts := max(policy.MaxAttempts, 1)

	eb := backoff.NewExponentialBackOff()
	if policy.InitialInterval > 0 {
		eb.InitialInterval = policy.InitialInterval
	}
	if policy.MaxInterval > 0 {
		eb.MaxInterval = policy.MaxInterval
	}
	eb.MaxElapsedTime = 0

	b := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(attempts-1)), ctx)
	return backoff.RetryWithData(func() (T, error) {
		return op(ctx)
	}, b)
}

// WithTimeout runs op under a deadline. When the deadline passes first, the
// partial result is discarded and an error wrapping schema.ErrTimeout is
// returned. A non-positive limit runs op without a deadline.
func WithTimeout[T any](ctx context.Context, limit time.Duration, operation string, op func(context.Context) (T, error)) (T, error) {
	var zero T
	if limit <= 0 {
		return op(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()

	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)
	go func() {
		v, err := op(ctx)
		done <- result{value: v, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, schema.TimeoutError(operation, limit)
		}
		return r.value, r.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, schema.TimeoutError(operation, limit)
		}
		return zero, ctx.Err()
	}
}
