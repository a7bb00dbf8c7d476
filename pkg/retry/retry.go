// Package retry waits for startup dependencies with exponential backoff.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Config holds retry configuration
type Config struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffFactor   float64
	AttemptTimeout  time.Duration
	MaxTotalTimeout time.Duration
}

// DefaultConfig gives a dependency about a minute to come up.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:     10,
		InitialDelay:    100 * time.Millisecond,
		MaxDelay:        10 * time.Second,
		BackoffFactor:   2.0,
		AttemptTimeout:  5 * time.Second,
		MaxTotalTimeout: 60 * time.Second,
	}
}

// Backoff returns the wait after the given failed attempt, counting from 1.
func (c Config) Backoff(attempt int) time.Duration {
	delay := c.InitialDelay
	for i := 1; i < attempt; i++ {
		delay = time.Duration(float64(delay) * c.BackoffFactor)
		if c.MaxDelay > 0 && delay >= c.MaxDelay {
			return c.MaxDelay
		}
	}
	return delay
}

// Until calls check until it succeeds, logging every failed attempt that will
// be retried. Each call gets its own AttemptTimeout when one is set.
func Until(ctx context.Context, cfg Config, dependency string, logger zerolog.Logger, check func(ctx context.Context) error) error {
	if cfg.MaxTotalTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.MaxTotalTimeout)
		defer cancel()
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return aborted(dependency, attempt-1, err, lastErr)
		}

		lastErr = runAttempt(ctx, cfg.AttemptTimeout, check)
		if lastErr == nil {
			return nil
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		delay := cfg.Backoff(attempt)
		logger.Warn().
			Str("dependency", dependency).
			Int("attempt", attempt).
			Err(lastErr).
			Dur("retry_in", delay).
			Msg("Dependency not ready")

		select {
		case <-ctx.Done():
			return aborted(dependency, attempt, ctx.Err(), lastErr)
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("%s: gave up after %d attempts: %w", dependency, cfg.MaxAttempts, lastErr)
}

func runAttempt(ctx context.Context, timeout time.Duration, check func(ctx context.Context) error) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return check(ctx)
}

func aborted(dependency string, attempts int, ctxErr, lastErr error) error {
	if lastErr == nil {
		return fmt.Errorf("%s: retry aborted: %w", dependency, ctxErr)
	}
	return fmt.Errorf("%s: retry aborted after %d attempts: %w (last error: %v)", dependency, attempts, ctxErr, lastErr)
}
