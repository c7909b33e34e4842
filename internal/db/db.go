// Package db records tracked aircraft into PostgreSQL.
package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/unklstewy/adsb-tracker/pkg/config"
)

//go:embed schema.sql
var schemaSQL embed.FS

// DB wraps a database connection with helper methods.
type DB struct {
	*sql.DB
	config config.DatabaseConfig
}

// Stats summarises what the recorder holds.
type Stats struct {
	VisibleAircraft  int   `json:"visible_aircraft"`
	MilitaryAircraft int   `json:"military_aircraft"`
	PositionRecords  int64 `json:"position_records"`
}

// Connect establishes a connection to the PostgreSQL database.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	sqlDB, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: sqlDB, config: cfg}, nil
}

// InitSchema creates the tables if they do not exist.
// This should be called once at application startup.
func (db *DB) InitSchema(ctx context.Context) error {
	schemaBytes, err := schemaSQL.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}

	if _, err := db.ExecContext(ctx, string(schemaBytes)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return nil
}

// cleanupCutoffs derives the three cleanup horizons from the retention window.
// Rows go invisible after maxAge, positions are kept for the configured
// retention and invisible aircraft are deleted after twice maxAge.
func cleanupCutoffs(now time.Time, maxAge, positionRetention time.Duration) (hide, positions, remove time.Time) {
	now = now.UTC()
	return now.Add(-maxAge), now.Add(-positionRetention), now.Add(-2 * maxAge)
}

// CleanupOldData hides aircraft not seen within maxAge, deletes position
// history older than the configured retention and drops long-hidden aircraft.
// Should be called periodically to prevent unbounded growth.
func (db *DB) CleanupOldData(ctx context.Context, now time.Time, maxAge time.Duration) error {
	positionRetention := time.Duration(db.config.RetentionHours) * time.Hour
	if positionRetention <= 0 {
		positionRetention = 24 * time.Hour
	}
	hide, positions, remove := cleanupCutoffs(now, maxAge, positionRetention)

	if _, err := db.ExecContext(ctx,
		`UPDATE aircraft SET is_visible = FALSE WHERE last_seen < $1 AND is_visible`,
		hide,
	); err != nil {
		return fmt.Errorf("failed to mark stale aircraft: %w", err)
	}

	if _, err := db.ExecContext(ctx,
		`DELETE FROM aircraft_positions WHERE timestamp < $1`,
		positions,
	); err != nil {
		return fmt.Errorf("failed to delete old positions: %w", err)
	}

	if _, err := db.ExecContext(ctx,
		`DELETE FROM aircraft WHERE last_seen < $1 AND is_visible = FALSE`,
		remove,
	); err != nil {
		return fmt.Errorf("failed to delete old aircraft: %w", err)
	}

	return nil
}

// GetStats returns database statistics.
func (db *DB) GetStats(ctx context.Context) (Stats, error) {
	var s Stats

	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE is_military) FROM aircraft WHERE is_visible`,
	).Scan(&s.VisibleAircraft, &s.MilitaryAircraft)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to count aircraft: %w", err)
	}

	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM aircraft_positions`,
	).Scan(&s.PositionRecords); err != nil {
		return Stats{}, fmt.Errorf("failed to count positions: %w", err)
	}

	return s, nil
}
