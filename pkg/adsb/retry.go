package adsb

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
)

// RetryConfig configures retry behavior with exponential backoff.
//
// The tracker never retries: its poll interval already is the retry policy.
// Retrying is for one-shot callers such as diagnostics and backfills.
type RetryConfig struct {
	// MaxRetries is the maximum number of retry attempts (default: 3)
	MaxRetries int

	// InitialDelay is the initial backoff delay (default: 1 second)
	InitialDelay time.Duration

	// MaxDelay is the maximum backoff delay (default: 60 seconds)
	MaxDelay time.Duration

	// Multiplier is the backoff multiplier (default: 2.0 for exponential)
	Multiplier float64

	// RespectRetryAfter uses the Retry-After header of a 429 when present
	RespectRetryAfter bool
}

// DefaultRetryConfig returns sensible defaults for retry behavior.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:        3,
		InitialDelay:      time.Second,
		MaxDelay:          60 * time.Second,
		Multiplier:        2.0,
		RespectRetryAfter: true,
	}
}

// backoff returns the delay before retry number attempt+1.
func (cfg RetryConfig) backoff(attempt int) time.Duration {
	d := time.Duration(float64(cfg.InitialDelay) * math.Pow(cfg.Multiplier, float64(attempt)))
	if d > cfg.MaxDelay || d < 0 {
		return cfg.MaxDelay
	}
	return d
}

// RetryWithBackoff calls fn until it succeeds, MaxRetries is exhausted or ctx
// is done. Rate limit errors wait for their Retry-After when configured to.
//
// Example usage:
//
//	batch, err := RetryWithBackoff(ctx, DefaultRetryConfig(), logger, func() (Batch, error) {
//	    return client.Fetch(ctx, Query{Category: Military})
//	})
func RetryWithBackoff[T any](ctx context.Context, cfg RetryConfig, logger zerolog.Logger, fn func() (T, error)) (T, error) {
	var result T
	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return result, fmt.Errorf("retry cancelled: %w", ctx.Err())
			case <-timer.C:
			}
		} else if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("retry cancelled: %w", err)
		}

		res, err := fn()
		if err == nil {
			return res, nil
		}
		result = res
		lastErr = err

		if attempt == cfg.MaxRetries {
			break
		}

		delay = cfg.backoff(attempt)
		if rle, ok := IsRateLimitError(err); ok {
			if cfg.RespectRetryAfter && rle.RetryAfter > 0 {
				delay = rle.RetryAfter
			}
			logger.Warn().
				Int("remaining", rle.Headers.Remaining).
				Int("limit", rle.Headers.Limit).
				Time("reset", rle.Headers.Reset).
				Dur("retry_in", delay).
				Msg("Rate limit hit")
		} else {
			logger.Debug().Err(err).Int("attempt", attempt+1).Dur("retry_in", delay).Msg("Retrying")
		}
	}

	return result, fmt.Errorf("max retries (%d) exceeded: %w", cfg.MaxRetries, lastErr)
}
