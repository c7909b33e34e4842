package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/unklstewy/adsb-tracker/internal/app"
	"github.com/unklstewy/adsb-tracker/pkg/adsb"
	"github.com/unklstewy/adsb-tracker/pkg/coordinates"
)

// test-adsb fetches one category from the aggregator and prints what the
// parser made of it. Useful for checking connectivity and feed changes.
func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to configuration file")
	category := flag.String("category", "regular", "Category to fetch: regular, pia, mil, ladd")
	lat := flag.Float64("lat", 35.2144, "Center latitude for regular queries")
	lon := flag.Float64("lon", -80.9431, "Center longitude for regular queries")
	radius := flag.Float64("radius", 50, "Radius in nautical miles for regular queries")
	hex := flag.String("hex", "", "Look up a single ICAO address instead")
	limit := flag.Int("limit", 25, "Maximum aircraft to print")
	flag.Parse()

	cfg, log, err := app.Bootstrap(*configPath, "test-adsb")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	client, err := app.NewClient(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create client")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if *hex != "" {
		ac, err := client.FetchHex(ctx, *hex)
		if err != nil {
			log.Fatal().Err(err).Str("hex", *hex).Msg("Lookup failed")
		}
		if ac == nil {
			fmt.Printf("%s is not currently tracked\n", *hex)
			return
		}
		printAircraft(*ac, nil)
		return
	}

	c, err := adsb.ParseCategory(*category)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid category")
	}
	center := coordinates.Geographic{Latitude: *lat, Longitude: *lon}
	if err := center.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid center")
	}

	q := adsb.Query{Category: c, Lat: *lat, Lon: *lon, RadiusNM: *radius}
	log.Info().Str("path", q.Path()).Msg("Fetching")

	start := time.Now()
	batch, err := adsb.RetryWithBackoff(ctx, adsb.DefaultRetryConfig(), log, func() (adsb.Batch, error) {
		return client.Fetch(ctx, q)
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Fetch failed")
	}

	fmt.Printf("Fetched %d aircraft in %s (total %d, dropped %d, parsed via %s)\n",
		len(batch.Aircraft), time.Since(start).Round(time.Millisecond), batch.Total, batch.Dropped, batch.Step)
	if batch.Msg != "" {
		fmt.Printf("Server message: %s\n", batch.Msg)
	}
	fmt.Println("=====================================")

	list := batch.Aircraft
	if c == adsb.Regular {
		sort.Slice(list, func(i, j int) bool {
			return distance(center, list[i]) < distance(center, list[j])
		})
	}
	if *limit > 0 && len(list) > *limit {
		list = list[:*limit]
	}
	for _, ac := range list {
		var from *coordinates.Geographic
		if c == adsb.Regular {
			from = &center
		}
		printAircraft(ac, from)
	}

	var military, emergency, noPosition int
	for _, ac := range batch.Aircraft {
		if ac.IsMilitary {
			military++
		}
		if ac.IsEmergency {
			emergency++
		}
		if !ac.HasPosition() {
			noPosition++
		}
	}
	fmt.Println("=====================================")
	fmt.Printf("Military: %d  Emergency: %d  Without position: %d\n", military, emergency, noPosition)
}

func distance(center coordinates.Geographic, ac adsb.Aircraft) float64 {
	pos, ok := ac.Position()
	if !ok {
		return 1e9
	}
	return coordinates.DistanceNauticalMiles(center, pos)
}

func printAircraft(ac adsb.Aircraft, from *coordinates.Geographic) {
	callsign := ac.Callsign()
	if callsign == "" {
		callsign = "-"
	}

	alt := "-"
	switch {
	case ac.OnGround:
		alt = "ground"
	case ac.AltBaro != nil:
		alt = fmt.Sprintf("%d ft", *ac.AltBaro)
	}

	line := fmt.Sprintf("%-6s %-8s %-5s %-9s", ac.Hex, callsign, ac.TypeDesignator, alt)

	if pos, ok := ac.Position(); ok {
		line += " " + pos.String()
		if from != nil {
			line += fmt.Sprintf(" %5.1f nm @ %03.0f°",
				coordinates.DistanceNauticalMiles(*from, pos), coordinates.Bearing(*from, pos))
		}
	}
	if ac.IsMilitary {
		line += " [MIL]"
	}
	if ac.IsEmergency {
		line += " [EMERGENCY " + ac.Emergency + "]"
	}
	if s := ac.SpecialSquawk(); s != "" {
		line += " [squawk " + ac.Squawk + ": " + s + "]"
	}
	if d := ac.CategoryDescription(); d != "" {
		line += " (" + d + ")"
	}

	fmt.Println(line)
}
