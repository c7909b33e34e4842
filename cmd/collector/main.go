package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/unklstewy/adsb-tracker/internal/app"
	"github.com/unklstewy/adsb-tracker/internal/db"
)

// Collector keeps the tracker pointed at the configured observer area and
// records every snapshot into the database, so that clients can read history
// without polling the aggregator themselves.
func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to configuration file")
	statsEvery := flag.Duration("stats", time.Minute, "Interval between statistics log lines")
	flag.Parse()

	cfg, log, err := app.Bootstrap(*configPath, "collector")
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	if !cfg.Database.Enabled {
		log.Fatal().Msg("Collector requires database.enabled")
	}
	if cfg.Observer.RadiusNM <= 0 {
		log.Fatal().Msg("Collector requires an observer radius")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := app.OpenDatabase(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer database.Close()

	a, err := app.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build tracker")
	}
	defer a.Close()

	rec := a.Record(ctx, database)

	if err := a.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to set viewport")
	}

	log.Info().
		Str("observer", cfg.Observer.Name).
		Strs("categories", cfg.ADSB.Categories).
		Float64("radius_nm", cfg.Observer.RadiusNM).
		Msg("Collector started")

	ticker := time.NewTicker(*statsEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Interface("recorder", rec.Stats()).Msg("Collector stopped")
			return
		case <-ticker.C:
			logStats(ctx, log, a, database, rec)
		}
	}
}

func logStats(ctx context.Context, log zerolog.Logger, a *app.App, database *db.DB, rec *app.Recorder) {
	st := a.Tracker.Status()
	rs := rec.Stats()

	event := log.Info().
		Int("cached", st.Cached).
		Dur("interval", st.CurrentInterval).
		Time("last_update", st.LastUpdate).
		Int64("recorded", rs.Recorded).
		Int64("dropped", rs.Dropped).
		Int64("failed", rs.Failed)

	if st.LastError != nil {
		event = event.AnErr("last_error", st.LastError)
	}

	if !db.HealthCheck(ctx, database) {
		event.Bool("database_healthy", false).Msg("Collector stats")
		return
	}

	var stats db.Stats
	err := db.WithRetry(ctx, func() error {
		var err error
		stats, err = database.GetStats(ctx)
		return err
	}, 2, log)
	if err != nil {
		event.Err(err).Msg("Collector stats")
		return
	}

	event.
		Int("visible", stats.VisibleAircraft).
		Int("military", stats.MilitaryAircraft).
		Int64("positions", stats.PositionRecords).
		Msg("Collector stats")
}
