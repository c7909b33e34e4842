package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/unklstewy/adsb-tracker/internal/app"
	"github.com/unklstewy/adsb-tracker/pkg/adsb"
	"github.com/unklstewy/adsb-tracker/pkg/config"
	"github.com/unklstewy/adsb-tracker/pkg/logger"
)

// tui-viewfinder shows the tracked aircraft on a terminal radar scope and
// lets the user pan, zoom and pick which source categories are polled.
func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to configuration file")
	logPath := flag.String("log", "tui-viewfinder.log", "Log file, the terminal belongs to the UI")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logFile, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil || cfg.Logging.Level == "" {
		level = zerolog.InfoLevel
	}
	log := logger.NewWithWriter(logFile, level).With().Str("component", "tui-viewfinder").Logger()

	if cfg.Observer.RadiusNM <= 0 {
		cfg.Observer.RadiusNM = cfg.ADSB.DefaultRadiusNM
	}

	a, err := app.New(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build tracker: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	updates := make(chan []adsb.Aircraft, 1)
	unsubscribe := a.Tracker.Subscribe(func(list []adsb.Aircraft) {
		// Runs on the fetch goroutine. Replace an unread snapshot rather than wait.
		select {
		case <-updates:
		default:
		}
		select {
		case updates <- list:
		default:
		}
	})
	defer unsubscribe()

	if err := a.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set viewport: %v\n", err)
		os.Exit(1)
	}

	m := newModel(a.Tracker, a.Airports, cfg, updates)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
