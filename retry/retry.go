// ABOUTME: This file implements exponential backoff retry with jitter
// ABOUTME: Used for transient failures of external service calls
package retry

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"
)

type Config struct {
	MaxAttempts   int
	BaseDelay     time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	JitterFactor  float64
}

// DefaultConfig suits short HTTP calls to in-cluster services.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:   3,
		BaseDelay:     500 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2.0,
		JitterFactor:  0.2,
	}
}

// Classifier reports whether an error is worth retrying.
type Classifier func(error) bool

type Retrier struct {
	config      Config
	isRetryable Classifier
	logger      *slog.Logger
}

// New creates a retrier. A nil classifier treats every error as permanent.
func New(config Config, classifier Classifier, logger *slog.Logger) *Retrier {
	return &Retrier{
		config:      config,
		isRetryable: classifier,
		logger:      logger,
	}
}

// Do runs the operation until it succeeds, exhausts the attempt budget, hits a
// non-retryable error, or the context is canceled.
func (r *Retrier) Do(ctx context.Context, operation func() error) error {
	var lastErr error

	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		lastErr = operation()
		if lastErr == nil {
			if attempt > 1 {
				r.logger.InfoContext(ctx, "operation succeeded after retry", "attempt", attempt)
			}

			return nil
		}

		if attempt == r.config.MaxAttempts {
			break
		}

		if r.isRetryable == nil || !r.isRetryable(lastErr) {
			return lastErr
		}

		delay := r.delay(attempt)

		r.logger.WarnContext(ctx, "operation failed, backing off",
			"attempt", attempt, "delay", delay, "error", lastErr)

		select {
		case <-ctx.Done():
			return fmt.Errorf("retry canceled: %w", ctx.Err())
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("operation failed after %d attempts: %w", r.config.MaxAttempts, lastErr)
}

func (r *Retrier) delay(attempt int) time.Duration {
	delay := float64(r.config.BaseDelay) * math.Pow(r.config.BackoffFactor, float64(attempt-1))

	if delay > float64(r.config.MaxDelay) {
		delay = float64(r.config.MaxDelay)
	}

	// Jitter spreads retries from concurrent locale runs apart.
	delay *= 1.0 + (rand.Float64()-0.5)*r.config.JitterFactor

	return time.Duration(delay)
}
