package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/unklstewy/adsb-tracker/internal/app"
	"github.com/unklstewy/adsb-tracker/internal/db"
)

// track-history prints the recorded position history of one aircraft from
// the sighting database.
func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to configuration file")
	hex := flag.String("hex", "", "ICAO hex code of the aircraft")
	since := flag.Duration("since", time.Hour, "How far back to look")
	flag.Parse()

	if *hex == "" {
		fmt.Fprintln(os.Stderr, "-hex is required")
		os.Exit(2)
	}

	cfg, log, err := app.Bootstrap(*configPath, "track-history")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if !cfg.Database.Enabled {
		log.Fatal().Msg("History requires database.enabled")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	database, err := app.OpenDatabase(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer database.Close()

	repo := db.NewSightingRepository(database, log)

	var positions []db.Position
	err = db.WithRetry(ctx, func() error {
		var err error
		positions, err = repo.GetPositionHistory(ctx, strings.ToLower(*hex), time.Now().Add(-*since))
		return err
	}, 3, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load history")
	}

	if len(positions) == 0 {
		fmt.Printf("No positions recorded for %s in the last %s\n", *hex, *since)
		return
	}

	for _, p := range positions {
		alt := "-"
		if p.AltitudeFt != nil {
			alt = fmt.Sprintf("%d ft", *p.AltitudeFt)
		}
		gs := "-"
		if p.GroundSpeedKts != nil {
			gs = fmt.Sprintf("%.0f kt", *p.GroundSpeedKts)
		}
		fmt.Printf("%s  %9.4f %10.4f  %-9s %s\n",
			p.Timestamp.Local().Format("15:04:05"), p.Latitude, p.Longitude, alt, gs)
	}

	first, last := positions[0], positions[len(positions)-1]
	fmt.Printf("%d positions over %s, %.1f nm flown\n",
		len(positions), last.Timestamp.Sub(first.Timestamp).Round(time.Second), db.TrackDistanceNM(positions))
}
