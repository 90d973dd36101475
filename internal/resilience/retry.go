package resilience

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"go-ai-cache/internal/metrics"
)

// Default retry configuration.
const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = time.Second
	DefaultMaxDelay    = 60 * time.Second
)

// RetryConfig configures the backoff retrier.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Retrier re-invokes fallible operations with exponential backoff.
// Terminal classifications fail immediately; retryable ones are retried
// up to the attempt ceiling.
type Retrier struct {
	config RetryConfig
	logger *zap.Logger
}

// NewRetrier creates a retrier, filling in defaults for unset fields.
func NewRetrier(config RetryConfig, logger *zap.Logger) *Retrier {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultMaxAttempts
	}
	if config.BaseDelay <= 0 {
		config.BaseDelay = DefaultBaseDelay
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = DefaultMaxDelay
	}
	return &Retrier{config: config, logger: logger}
}

// Config returns the effective retry configuration.
func (r *Retrier) Config() RetryConfig {
	return r.config
}

// Do runs op with the configured attempt ceiling.
func (r *Retrier) Do(ctx context.Context, op func(context.Context) error) error {
	return r.DoWithAttempts(ctx, r.config.MaxAttempts, op)
}

// DoWithAttempts runs op with a per-call attempt ceiling; non-positive
// values fall back to the configured ceiling. The first attempt runs
// immediately, delays occur between attempts. On failure the returned
// error is always a *ClassifiedError holding the last classified failure.
func (r *Retrier) DoWithAttempts(ctx context.Context, maxAttempts int, op func(context.Context) error) error {
	if maxAttempts <= 0 {
		maxAttempts = r.config.MaxAttempts
	}

	var last *ClassifiedError
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := op(ctx)
		if err == nil {
			metrics.RecordGenerationAttempt("success")
			if attempt > 1 {
				r.logger.Info("operation succeeded after retry",
					zap.Int("attempt", attempt))
			}
			return nil
		}

		c := Classify(err)
		last = &ClassifiedError{Classification: c, Err: err}
		metrics.RecordGenerationAttempt(string(c.Kind))

		if !c.Retryable {
			r.logger.Warn("terminal error, not retrying",
				zap.String("kind", string(c.Kind)),
				zap.Int("attempt", attempt),
				zap.Error(err))
			return last
		}

		if attempt == maxAttempts {
			break
		}

		delay := r.delayFor(attempt)
		r.logger.Warn("retryable error, backing off",
			zap.String("kind", string(c.Kind)),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err))

		select {
		case <-ctx.Done():
			kind := KindUnknown
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				kind = KindTimeout
			}
			return &ClassifiedError{
				Classification: Classification{Kind: kind},
				Err:            ctx.Err(),
			}
		case <-time.After(delay):
		}
	}

	r.logger.Error("retry attempts exhausted",
		zap.Int("attempts", maxAttempts),
		zap.String("kind", string(last.Classification.Kind)),
		zap.Error(last.Err))
	return last
}

// delayFor computes the delay after the given 1-based attempt:
// base * 2^(attempt-1), capped at MaxDelay.
func (r *Retrier) delayFor(attempt int) time.Duration {
	if attempt > 62 {
		return r.config.MaxDelay
	}
	delay := r.config.BaseDelay << uint(attempt-1)
	if delay <= 0 || delay > r.config.MaxDelay {
		return r.config.MaxDelay
	}
	return delay
}
