package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/unklstewy/adsb-tracker/pkg/adsb"
	"github.com/unklstewy/adsb-tracker/pkg/coordinates"
)

// RecordStats counts what one RecordSnapshot call wrote.
type RecordStats struct {
	Upserted  int
	Positions int
	Skipped   int
}

// SightingRepository persists tracker snapshots.
type SightingRepository struct {
	db     *DB
	logger zerolog.Logger
}

// NewSightingRepository creates a new sighting repository.
func NewSightingRepository(db *DB, logger zerolog.Logger) *SightingRepository {
	return &SightingRepository{db: db, logger: logger}
}

// lastPosition is the stored state a new sighting is compared against.
type lastPosition struct {
	Latitude       *float64
	Longitude      *float64
	AltitudeFt     *int64
	GroundSpeedKts *float64
	Timestamp      time.Time
}

// RecordSnapshot upserts the latest state of every aircraft and appends a
// position history row for each one whose position changed. All rows are
// written in a single transaction.
func (r *SightingRepository) RecordSnapshot(ctx context.Context, aircraft []adsb.Aircraft, now time.Time) (RecordStats, error) {
	var stats RecordStats
	if len(aircraft) == 0 {
		return stats, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now = now.UTC()
	for _, ac := range aircraft {
		if ac.Hex == "" {
			stats.Skipped++
			continue
		}

		prev, err := previousPosition(ctx, tx, ac.Hex)
		if err != nil {
			return stats, err
		}

		if err := upsertAircraft(ctx, tx, ac, now); err != nil {
			return stats, err
		}
		stats.Upserted++

		if !ac.HasPosition() || (prev != nil && positionsEqual(ac, *prev)) {
			continue
		}
		if err := insertPosition(ctx, tx, ac, now, prev); err != nil {
			return stats, err
		}
		stats.Positions++
	}

	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("failed to commit sightings: %w", err)
	}

	r.logger.Debug().
		Int("upserted", stats.Upserted).
		Int("positions", stats.Positions).
		Msg("Recorded snapshot")

	return stats, nil
}

func previousPosition(ctx context.Context, tx *sql.Tx, hex string) (*lastPosition, error) {
	var p lastPosition
	err := tx.QueryRowContext(ctx,
		`SELECT latitude, longitude, altitude_ft, ground_speed_kts, last_seen
		 FROM aircraft
		 WHERE hex = $1`,
		hex,
	).Scan(&p.Latitude, &p.Longitude, &p.AltitudeFt, &p.GroundSpeedKts, &p.Timestamp)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query previous position of %s: %w", hex, err)
	}
	return &p, nil
}

func upsertAircraft(ctx context.Context, tx *sql.Tx, ac adsb.Aircraft, now time.Time) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO aircraft (
			hex, callsign, registration, type_designator, emitter_category,
			squawk, emergency, source_category, feeder_type,
			is_military, is_emergency,
			latitude, longitude, altitude_ft, on_ground,
			ground_speed_kts, track_deg, baro_rate_fpm,
			first_seen, last_seen, sighting_count, is_visible
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17, $18, $19, $19, 1, TRUE
		)
		ON CONFLICT (hex) DO UPDATE SET
			callsign = EXCLUDED.callsign,
			registration = EXCLUDED.registration,
			type_designator = EXCLUDED.type_designator,
			emitter_category = EXCLUDED.emitter_category,
			squawk = EXCLUDED.squawk,
			emergency = EXCLUDED.emergency,
			source_category = EXCLUDED.source_category,
			feeder_type = EXCLUDED.feeder_type,
			is_military = EXCLUDED.is_military,
			is_emergency = EXCLUDED.is_emergency,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			altitude_ft = EXCLUDED.altitude_ft,
			on_ground = EXCLUDED.on_ground,
			ground_speed_kts = EXCLUDED.ground_speed_kts,
			track_deg = EXCLUDED.track_deg,
			baro_rate_fpm = EXCLUDED.baro_rate_fpm,
			last_seen = EXCLUDED.last_seen,
			sighting_count = aircraft.sighting_count + 1,
			is_visible = TRUE`,
		ac.Hex, nullString(ac.Callsign()), nullString(ac.Registration), nullString(ac.TypeDesignator),
		nullString(ac.Category), nullString(ac.Squawk), nullString(ac.Emergency),
		ac.Source.String(), string(ac.Feeder),
		ac.IsMilitary, ac.IsEmergency,
		ac.Lat, ac.Lon, ac.AltBaro, ac.OnGround,
		ac.GroundSpeed, ac.Track, ac.BaroRate,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert aircraft %s: %w", ac.Hex, err)
	}
	return nil
}

func insertPosition(ctx context.Context, tx *sql.Tx, ac adsb.Aircraft, now time.Time, prev *lastPosition) error {
	var deltaTime, deltaDistance sql.NullFloat64

	if prev != nil && prev.Latitude != nil && prev.Longitude != nil {
		if dt := now.Sub(prev.Timestamp).Seconds(); dt > 0 {
			deltaTime = sql.NullFloat64{Float64: dt, Valid: true}

			cur, _ := ac.Position()
			from := coordinates.Geographic{Latitude: *prev.Latitude, Longitude: *prev.Longitude}
			deltaDistance = sql.NullFloat64{
				Float64: coordinates.DistanceNauticalMiles(from, cur),
				Valid:   true,
			}
		}
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO aircraft_positions (
			hex, timestamp, latitude, longitude, altitude_ft,
			ground_speed_kts, track_deg, baro_rate_fpm,
			delta_time_seconds, delta_distance_nm
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		ac.Hex, now, *ac.Lat, *ac.Lon, ac.AltBaro,
		ac.GroundSpeed, ac.Track, ac.BaroRate,
		deltaTime, deltaDistance,
	)
	if err != nil {
		return fmt.Errorf("failed to insert position for %s: %w", ac.Hex, err)
	}
	return nil
}

// positionsEqual reports whether a new sighting repeats the stored position
// of a stationary aircraft. Moving aircraft always get a new history row.
func positionsEqual(current adsb.Aircraft, prev lastPosition) bool {
	// 0.000001 degrees is about 0.1 meters
	const positionTolerance = 0.000001
	const altitudeTolerance = 1
	const speedThreshold = 1.0

	if current.Lat == nil || current.Lon == nil || prev.Latitude == nil || prev.Longitude == nil {
		return false
	}

	if math.Abs(*current.Lat-*prev.Latitude) > positionTolerance ||
		math.Abs(*current.Lon-*prev.Longitude) > positionTolerance {
		return false
	}

	switch {
	case current.AltBaro == nil && prev.AltitudeFt == nil:
	case current.AltBaro == nil || prev.AltitudeFt == nil:
		return false
	default:
		d := *current.AltBaro - *prev.AltitudeFt
		if d > altitudeTolerance || d < -altitudeTolerance {
			return false
		}
	}

	moving := func(gs *float64) bool { return gs != nil && *gs >= speedThreshold }
	return !moving(current.GroundSpeed) && !moving(prev.GroundSpeedKts)
}

// Position is one stored history row.
type Position struct {
	Timestamp       time.Time `json:"timestamp"`
	Latitude        float64   `json:"lat"`
	Longitude       float64   `json:"lon"`
	AltitudeFt      *int64    `json:"alt_baro,omitempty"`
	GroundSpeedKts  *float64  `json:"gs,omitempty"`
	TrackDeg        *float64  `json:"track,omitempty"`
	DeltaDistanceNM *float64  `json:"delta_distance_nm,omitempty"`
}

// GetPositionHistory returns positions of hex recorded at or after since,
// oldest first.
func (r *SightingRepository) GetPositionHistory(ctx context.Context, hex string, since time.Time) ([]Position, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT timestamp, latitude, longitude, altitude_ft,
		        ground_speed_kts, track_deg, delta_distance_nm
		 FROM aircraft_positions
		 WHERE hex = $1 AND timestamp >= $2
		 ORDER BY timestamp ASC`,
		hex, since.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	var positions []Position
	for rows.Next() {
		var p Position
		if err := rows.Scan(
			&p.Timestamp, &p.Latitude, &p.Longitude, &p.AltitudeFt,
			&p.GroundSpeedKts, &p.TrackDeg, &p.DeltaDistanceNM,
		); err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}

	return positions, rows.Err()
}

// TrackDistanceNM sums the great-circle distance along a position history.
func TrackDistanceNM(positions []Position) float64 {
	var total float64
	for i := 1; i < len(positions); i++ {
		a := coordinates.Geographic{Latitude: positions[i-1].Latitude, Longitude: positions[i-1].Longitude}
		b := coordinates.Geographic{Latitude: positions[i].Latitude, Longitude: positions[i].Longitude}
		total += coordinates.DistanceNauticalMiles(a, b)
	}
	return total
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
