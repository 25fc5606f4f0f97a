package retry

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	defaultAttempts = 3
	defaultDelay    = 200 * time.Millisecond
	defaultMaxDelay = 2 * time.Second
)

type RetryConfig struct {
	Attempts uint          `env:"ATTEMPTS"`
	Delay    time.Duration `env:"DELAY"`
	MaxDelay time.Duration `env:"MAX_DELAY"`
}

// ApplyDefaults fills zero fields with the package defaults
func (rc *RetryConfig) ApplyDefaults() {
	def := DefaultRetryConfig()
	if rc.Attempts == 0 {
		rc.Attempts = def.Attempts
	}
	if rc.Delay == 0 {
		rc.Delay = def.Delay
	}
	if rc.MaxDelay == 0 {
		rc.MaxDelay = def.MaxDelay
	}
}

func (rc *RetryConfig) ToRetryOptions() []retry.Option {
	return []retry.Option{
		retry.Attempts(rc.Attempts),
		retry.MaxDelay(rc.MaxDelay),
		retry.Delay(rc.Delay),
	}
}

func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		Attempts: defaultAttempts,
		Delay:    defaultDelay,
		MaxDelay: defaultMaxDelay,
	}
}

// Do runs fn until it succeeds, the attempts are exhausted, ctx is done
// or retryIf rejects the error. The last error is returned unwrapped
func Do[T any](ctx context.Context, rc RetryConfig, retryIf func(error) bool, fn func() (T, error)) (T, error) {
	opts := append(rc.ToRetryOptions(),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryIf),
	)

	return retry.DoWithData(fn, opts...)
}
