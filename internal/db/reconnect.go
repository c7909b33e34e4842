package db

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/unklstewy/adsb-tracker/pkg/config"
)

const maxReconnectDelay = 60 * time.Second

// ReconnectWithRetry attempts to connect with exponential backoff, capped at
// one minute between attempts. maxRetries of 0 retries until ctx is done.
func ReconnectWithRetry(
	ctx context.Context,
	cfg config.DatabaseConfig,
	maxRetries int,
	initialDelay time.Duration,
	logger zerolog.Logger,
) (*DB, error) {
	delay := initialDelay

	for attempt := 1; ; attempt++ {
		logger.Debug().Int("attempt", attempt).Msg("Database connection attempt")

		db, err := Connect(ctx, cfg)
		if err == nil {
			logger.Info().Int("attempt", attempt).Msg("Database connected")
			return db, nil
		}

		if maxRetries > 0 && attempt >= maxRetries {
			logger.Error().Err(err).Int("attempts", attempt).Msg("Failed to connect to database")
			return nil, err
		}

		logger.Warn().Err(err).Dur("retry_in", delay).Msg("Database connection failed")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if delay > maxReconnectDelay {
			delay = maxReconnectDelay
		}
	}
}

// EnsureConnection pings db and reconnects when the connection is gone.
// It returns the live connection, which may be a new one.
func EnsureConnection(ctx context.Context, db *DB, cfg config.DatabaseConfig, logger zerolog.Logger) (*DB, error) {
	if db == nil {
		logger.Warn().Msg("Database connection is nil, reconnecting")
		return ReconnectWithRetry(ctx, cfg, 3, time.Second, logger)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		logger.Warn().Err(err).Msg("Database connection lost, reconnecting")
		db.Close()

		return ReconnectWithRetry(ctx, cfg, 3, time.Second, logger)
	}

	return db, nil
}

// HealthCheck reports whether the database answers a trivial query.
func HealthCheck(ctx context.Context, db *DB) bool {
	if db == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var result int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return false
	}

	return result == 1
}

var connectionErrorPatterns = []string{
	"connection refused",
	"broken pipe",
	"no connection",
	"connection reset",
	"bad connection",
	"eof",
	"timeout",
}

// isConnectionError reports whether err looks like a dropped connection
// rather than a query failure.
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, pattern := range connectionErrorPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// WithRetry runs operation, retrying connection failures up to maxRetries
// times with a linearly growing wait. Other errors are returned immediately.
func WithRetry(ctx context.Context, operation func() error, maxRetries int, logger zerolog.Logger) error {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}
		lastErr = err

		if !isConnectionError(err) {
			return err
		}

		if attempt < maxRetries {
			wait := time.Duration(attempt+1) * time.Second
			logger.Warn().Err(err).
				Int("attempt", attempt+1).
				Int("max_attempts", maxRetries+1).
				Dur("retry_in", wait).
				Msg("Database operation failed")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
	}

	return lastErr
}
