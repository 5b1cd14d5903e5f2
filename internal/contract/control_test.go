package contract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/huangsam/repostats/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastRetry = RetryPolicy{MaxAttempts: 3, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}

func TestWithRetry(t *testing.T) {
	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		got, err := WithRetry(context.Background(), fastRetry, func(context.Context) (int, error) {
			calls++
			if calls < 3 {
				return 0, errors.New("transient")
			}
			return 42, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 42, got)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		calls := 0
		_, err := WithRetry(context.Background(), fastRetry, func(context.Context) (string, error) {
			calls++
			return "", errors.New("still failing")
		})
		assert.EqualError(t, err, "still failing")
		assert.Equal(t, 3, calls)
	})

	t.Run("permanent error stops immediately", func(t *testing.T) {
		calls := 0
		notFound := errors.New("not found")
		_, err := WithRetry(context.Background(), fastRetry, func(context.Context) (string, error) {
			calls++
			return "", Permanent(notFound)
		})
		assert.ErrorIs(t, err, notFound)
		assert.Equal(t, 1, calls)
	})

	t.Run("zero attempts still runs once", func(t *testing.T) {
		calls := 0
		_, _ = WithRetry(context.Background(), RetryPolicy{}, func(context.Context) (int, error) {
			calls++
			return 0, errors.New("fail")
		})
		assert.Equal(t, 1, calls)
	})

	t.Run("canceled context stops retries", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		slow := RetryPolicy{MaxAttempts: 5, InitialInterval: time.Second, MaxInterval: time.Second}
		_, err := WithRetry(ctx, slow, func(context.Context) (int, error) {
			calls++
			cancel()
			return 0, errors.New("fail")
		})
		assert.Error(t, err)
		assert.Equal(t, 1, calls)
	})
}

func TestWithTimeout(t *testing.T) {
	t.Run("returns value within limit", func(t *testing.T) {
		got, err := WithTimeout(context.Background(), time.Second, "clone", func(context.Context) (string, error) {
			return "done", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "done", got)
	})

	t.Run("reports timeout distinctly", func(t *testing.T) {
		got, err := WithTimeout(context.Background(), 10*time.Millisecond, "analyze", func(ctx context.Context) (string, error) {
			<-ctx.Done()
			return "partial", ctx.Err()
		})
		assert.ErrorIs(t, err, schema.ErrTimeout)
		assert.Contains(t, err.Error(), "analyze")
		assert.Empty(t, got, "partial results are discarded")
	})

	t.Run("ignores operations that never return", func(t *testing.T) {
		block := make(chan struct{})
		defer close(block)
		_, err := WithTimeout(context.Background(), 10*time.Millisecond, "clone", func(context.Context) (int, error) {
			<-block
			return 1, nil
		})
		assert.ErrorIs(t, err, schema.ErrTimeout)
	})

	t.Run("plain errors pass through", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := WithTimeout(context.Background(), time.Second, "clone", func(context.Context) (int, error) {
			return 0, boom
		})
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, schema.ErrTimeout)
	})

	t.Run("no limit runs directly", func(t *testing.T) {
		got, err := WithTimeout(context.Background(), 0, "clone", func(ctx context.Context) (int, error) {
			_, hasDeadline := ctx.Deadline()
			assert.False(t, hasDeadline)
			return 7, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 7, got)
	})
}
