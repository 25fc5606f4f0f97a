package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient")

func fastConfig(attempts uint) RetryConfig {
	return RetryConfig{Attempts: attempts, Delay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func TestDo_RetriesUntilSuccess(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), fastConfig(3), func(error) bool { return true }, func() (string, error) {
		calls++
		if calls < 3 {
			return "", errTransient
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
}

func TestDo_StopsOnNonRetryableError(t *testing.T) {
	permanent := errors.New("permanent")
	calls := 0
	_, err := Do(context.Background(), fastConfig(5), func(err error) bool { return errors.Is(err, errTransient) }, func() (int, error) {
		calls++
		return 0, permanent
	})

	require.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestDo_ReturnsLastErrorWhenExhausted(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), fastConfig(2), func(error) bool { return true }, func() (int, error) {
		calls++
		return 0, errTransient
	})

	require.ErrorIs(t, err, errTransient)
	assert.Equal(t, 2, calls)
}

func TestApplyDefaults(t *testing.T) {
	rc := RetryConfig{Attempts: 1}
	rc.ApplyDefaults()

	assert.Equal(t, uint(1), rc.Attempts)
	assert.Equal(t, defaultDelay, rc.Delay)
	assert.Equal(t, defaultMaxDelay, rc.MaxDelay)
	assert.Equal(t, *DefaultRetryConfig(), RetryConfig{Attempts: defaultAttempts, Delay: defaultDelay, MaxDelay: defaultMaxDelay})
}
