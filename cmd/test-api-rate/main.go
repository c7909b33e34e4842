package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/unklstewy/adsb-tracker/internal/app"
	"github.com/unklstewy/adsb-tracker/pkg/adsb"
	"github.com/unklstewy/adsb-tracker/pkg/config"
)

// test-api-rate brackets the delay between aggregator calls to find the
// fastest rate that does not draw 429 responses.
func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to configuration file")
	minDelay := flag.Duration("min", time.Second, "Shortest delay between calls")
	maxDelay := flag.Duration("max", 10*time.Second, "Longest delay between calls")
	calls := flag.Int("calls", 5, "Calls per probe")
	flag.Parse()

	cfg, log, err := app.Bootstrap(*configPath, "test-api-rate")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log.Info().
		Str("base_url", cfg.ADSB.BaseURL).
		Dur("min", *minDelay).
		Dur("max", *maxDelay).
		Int("calls", *calls).
		Msg("Starting rate bracketing")

	probe := func(delay time.Duration) (bool, error) {
		return probeRate(cfg, log, delay, *calls)
	}

	safe := bracket(*minDelay, *maxDelay, 10, probe, func(delay time.Duration, ok bool, err error) {
		event := log.Info()
		if !ok {
			event = log.Warn().AnErr("error", err)
		}
		event.Dur("delay", delay).Bool("ok", ok).Msg("Probe finished")
		time.Sleep(3 * time.Second)
	})

	rps := float64(time.Second) / float64(safe)
	fmt.Printf("Recommended delay: %s\n", safe)
	fmt.Printf("Set adsb.requests_per_second to %.2f (%.0f calls per minute)\n", rps, rps*60)
}

// probeRate makes calls regular queries spaced delay apart. It reports false
// on the first rate limit response.
func probeRate(cfg *config.Config, log zerolog.Logger, delay time.Duration, calls int) (bool, error) {
	adsbCfg := cfg.ADSB
	adsbCfg.RequestsPerSecond = float64(time.Second) / float64(delay)
	adsbCfg.Burst = 1

	probeCfg := *cfg
	probeCfg.ADSB = adsbCfg

	client, err := app.NewClient(&probeCfg, log)
	if err != nil {
		return false, err
	}

	q := adsb.Query{
		Category: adsb.Regular,
		Lat:      cfg.Observer.Latitude,
		Lon:      cfg.Observer.Longitude,
		RadiusNM: cfg.ADSB.DefaultRadiusNM,
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(calls+1)*delay+time.Minute)
	defer cancel()

	for i := 0; i < calls; i++ {
		if _, err := client.Fetch(ctx, q); err != nil {
			var rle *adsb.RateLimitError
			if errors.As(err, &rle) {
				return false, rle
			}
			return false, err
		}
	}
	return true, nil
}

// bracket narrows [lo, hi] to the smallest delay probe accepts, halving
// the gap each step until it is under half a second or maxIter probes ran.
func bracket(lo, hi time.Duration, maxIter int, probe func(time.Duration) (bool, error), after func(time.Duration, bool, error)) time.Duration {
	safe, failed := hi, lo
	delay := hi

	for i := 0; i < maxIter && safe-failed > 500*time.Millisecond; i++ {
		ok, err := probe(delay)
		if after != nil {
			after(delay, ok, err)
		}

		if ok {
			safe = delay
		} else {
			failed = delay
			if delay >= safe {
				// Even the slowest rate failed; nothing left to try
				return safe
			}
		}
		delay = (safe + failed) / 2
	}

	return safe
}
