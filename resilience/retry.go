package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryConfig configures a Retry.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts, including the first.
	// Default: 3
	MaxAttempts uint

	// InitialInterval is the delay before the first retry.
	// Default: 100ms
	InitialInterval time.Duration

	// MaxInterval caps the delay between retries.
	// Default: 5 seconds
	MaxInterval time.Duration

	// MaxElapsedTime bounds the whole retry sequence. Zero means no bound
	// beyond MaxAttempts.
	MaxElapsedTime time.Duration

	// RetryIf decides whether an error is worth retrying. The default
	// retries everything except ErrOpen: an open circuit needs its
	// cool-down, not more traffic.
	RetryIf func(err error) bool

	// OnRetry is notified before each retry with the error and the delay
	// about to be taken.
	OnRetry func(err error, delay time.Duration)
}

// Retry runs operations with exponential backoff.
type Retry struct {
	config RetryConfig
}

// NewRetry creates a Retry, applying defaults for unset fields.
func NewRetry(config RetryConfig) *Retry {
	if config.MaxAttempts == 0 {
		config.MaxAttempts = 3
	}
	if config.InitialInterval <= 0 {
		config.InitialInterval = 100 * time.Millisecond
	}
	if config.MaxInterval <= 0 {
		config.MaxInterval = 5 * time.Second
	}
	if config.RetryIf == nil {
		config.RetryIf = func(err error) bool { return !errors.Is(err, ErrOpen) }
	}
	return &Retry{config: config}
}

// Do runs op until it succeeds, the attempt budget is spent, RetryIf
// declines, or ctx is done. The last error is returned.
func (r *Retry) Do(ctx context.Context, op func(context.Context) error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.config.InitialInterval
	bo.MaxInterval = r.config.MaxInterval

	opts := []backoff.RetryOption{
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(r.config.MaxAttempts),
	}
	if r.config.MaxElapsedTime > 0 {
		opts = append(opts, backoff.WithMaxElapsedTime(r.config.MaxElapsedTime))
	}
	if r.config.OnRetry != nil {
		opts = append(opts, backoff.WithNotify(backoff.Notify(r.config.OnRetry)))
	}

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := op(ctx)
		if err != nil && !r.config.RetryIf(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}, opts...)
	return err
}

// Config returns the effective configuration.
func (r *Retry) Config() RetryConfig {
	return r.config
}
