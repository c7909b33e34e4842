package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/unklstewy/adsb-tracker/internal/app"
	"github.com/unklstewy/adsb-tracker/pkg/adsb"
	"github.com/unklstewy/adsb-tracker/pkg/airports"
	"github.com/unklstewy/adsb-tracker/pkg/coordinates"
	"github.com/unklstewy/adsb-tracker/pkg/tracking"
)

// track-aircraft follows one aircraft by ICAO address, printing its reported
// and dead-reckoned position relative to the observer until it drops out of
// coverage or the duration runs out.
func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to configuration file")
	hex := flag.String("hex", "", "ICAO hex code of the aircraft to follow (e.g., a12345)")
	duration := flag.Duration("duration", 5*time.Minute, "How long to follow the aircraft")
	every := flag.Duration("every", 5*time.Second, "Lookup interval")
	latency := flag.Duration("latency", 2500*time.Millisecond, "Feed latency to compensate for")
	flag.Parse()

	if *hex == "" {
		fmt.Fprintln(os.Stderr, "-hex is required")
		os.Exit(2)
	}

	cfg, log, err := app.Bootstrap(*configPath, "track-aircraft")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	client, err := app.NewClient(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create client")
	}
	dir, err := app.LoadAirports(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load airports")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *duration)
	defer cancel()

	observer := cfg.Observer.Center()
	log.Info().Str("hex", *hex).Str("observer", observer.String()).Msg("Following aircraft")

	ticker := time.NewTicker(*every)
	defer ticker.Stop()

	misses := 0
	for {
		fetched := time.Now()
		ac, err := client.FetchHex(ctx, *hex)
		switch {
		case ctx.Err() != nil:
			return
		case err != nil:
			log.Warn().Err(err).Msg("Lookup failed")
		case ac == nil:
			misses++
			log.Warn().Int("misses", misses).Msg("Aircraft not in coverage")
			if misses >= 3 {
				log.Info().Msg("Giving up")
				return
			}
		default:
			misses = 0
			report(*ac, observer, dir, fetched, *latency)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func report(ac adsb.Aircraft, observer coordinates.Geographic, dir *airports.Directory, fetched time.Time, latency time.Duration) {
	p, ok := tracking.PredictWithLatency(ac, fetched, time.Now(), latency)
	if !ok {
		fmt.Printf("%s %-8s no position\n", fetched.Format("15:04:05"), ac.Callsign())
		return
	}

	alt := "-"
	if p.AltitudeFt != nil {
		alt = fmt.Sprintf("%.0f ft", *p.AltitudeFt)
	}
	if ac.OnGround {
		alt = "ground"
	}

	line := fmt.Sprintf("%s %-8s %s %s  %.1f nm @ %03.0f°  conf %.2f",
		fetched.Format("15:04:05"), ac.Callsign(), p.Position, alt,
		coordinates.DistanceNauticalMiles(observer, p.Position),
		coordinates.Bearing(observer, p.Position),
		p.Confidence)

	if near := dir.Nearby(p.Position, 10); len(near) > 0 {
		line += fmt.Sprintf("  near %s (%.1f nm)", near[0].ICAO, near[0].DistanceNM)
	}
	if s := ac.SpecialSquawk(); s != "" {
		line += "  SQUAWK " + ac.Squawk + " " + s
	}

	fmt.Println(line)
}
