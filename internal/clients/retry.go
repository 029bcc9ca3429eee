package clients

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/RobsonDevCode/pyninja/internal/configuration"
	"github.com/sony/gobreaker"
)

const (
	DefaultBaseDelay = 200 * time.Millisecond
	DefaultMaxDelay  = 5 * time.Second
)

// RetryPolicy bounds one logical query: each attempt gets Timeout, and failed
// attempts are retried up to MaxRetries times with exponential backoff.
type RetryPolicy struct {
	MaxRetries int
	Timeout    time.Duration
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

func NewRetryPolicy(config *configuration.Config) RetryPolicy {
	return RetryPolicy{
		MaxRetries: config.MaxRetries,
		Timeout:    config.QueryTimeout(),
		BaseDelay:  DefaultBaseDelay,
		MaxDelay:   DefaultMaxDelay,
	}
}

// Backoff is the wait before retry number attempt (starting at 0).
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	delay := p.BaseDelay
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	return min(delay, p.MaxDelay)
}

// Do runs fn until it succeeds, fails permanently, or the retries run out.
func (p RetryPolicy) Do(ctx context.Context, logger *slog.Logger, operation string, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = p.attempt(ctx, fn)
		if err == nil || !isRetryable(ctx, err) || attempt >= p.MaxRetries {
			return err
		}

		delay := p.Backoff(attempt)
		logger.Debug("retrying query", "operation", operation, "attempt", attempt+1, "delay", delay, "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

func (p RetryPolicy) attempt(ctx context.Context, fn func(ctx context.Context) error) error {
	if p.Timeout <= 0 {
		return fn(ctx)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()
	return fn(attemptCtx)
}

func isRetryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}

	if errors.Is(err, ErrPackageNotFound) ||
		errors.Is(err, gobreaker.ErrOpenState) ||
		errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}

	// attempt deadlines and connection failures
	return true
}
