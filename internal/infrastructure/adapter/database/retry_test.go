package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	errs "github.com/amirhossein-jamali/gem-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/gem-ledger/internal/infrastructure/adapter/logger"
)

func fastRetry(maxRetries int) RetryConfig {
	return RetryConfig{
		MaxRetries:    maxRetries,
		RetryInterval: time.Millisecond,
		MaxInterval:   2 * time.Millisecond,
	}
}

func TestRetryOnTransientError(t *testing.T) {
	serialization := &pgconn.PgError{Code: pgerrcode.SerializationFailure}

	t.Run("succeeds after aborted attempts", func(t *testing.T) {
		calls := 0
		err := RetryOnTransientError(context.Background(), fastRetry(5), func() error {
			calls++
			if calls < 3 {
				return serialization
			}
			return nil
		}, logger.NewNoopLogger())

		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("returns business errors at once", func(t *testing.T) {
		calls := 0
		err := RetryOnTransientError(context.Background(), fastRetry(5), func() error {
			calls++
			return errs.ErrInsufficientFunds
		}, logger.NewNoopLogger())

		assert.ErrorIs(t, err, errs.ErrInsufficientFunds)
		assert.Equal(t, 1, calls)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		calls := 0
		err := RetryOnTransientError(context.Background(), fastRetry(3), func() error {
			calls++
			return serialization
		}, logger.NewNoopLogger())

		var pgErr *pgconn.PgError
		assert.True(t, errors.As(err, &pgErr))
		assert.Equal(t, 3, calls)
	})

	t.Run("stops when context is canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		calls := 0
		err := RetryOnTransientError(ctx, RetryConfig{MaxRetries: 5, RetryInterval: time.Hour, MaxInterval: time.Hour}, func() error {
			calls++
			return serialization
		}, logger.NewNoopLogger())

		assert.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("runs once when retries are not configured", func(t *testing.T) {
		calls := 0
		_ = RetryOnTransientError(context.Background(), RetryConfig{}, func() error {
			calls++
			return serialization
		}, logger.NewNoopLogger())

		assert.Equal(t, 1, calls)
	})
}

func TestCalculateBackoffWithJitter(t *testing.T) {
	config := RetryConfig{RetryInterval: 10 * time.Millisecond, MaxInterval: 50 * time.Millisecond}

	assert.Equal(t, 10*time.Millisecond, calculateBackoffWithJitter(0, config))
	assert.Equal(t, 20*time.Millisecond, calculateBackoffWithJitter(1, config))
	assert.Equal(t, 50*time.Millisecond, calculateBackoffWithJitter(5, config))

	config.JitterFactor = 0.5
	for i := 0; i < 20; i++ {
		backoff := calculateBackoffWithJitter(1, config)
		assert.GreaterOrEqual(t, backoff, 20*time.Millisecond)
		assert.LessOrEqual(t, backoff, 30*time.Millisecond)
	}
}
