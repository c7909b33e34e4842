// ADS-B Tracker Web Server
// Runs the tracker and serves its snapshot, status and controls over REST
package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/unklstewy/adsb-tracker/internal/api"
	"github.com/unklstewy/adsb-tracker/internal/app"
	"github.com/unklstewy/adsb-tracker/internal/db"
)

var configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")

func main() {
	flag.Parse()

	cfg, log, err := app.Bootstrap(*configPath, "web-server")
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build tracker")
	}
	defer a.Close()

	opts := api.Options{
		Tracker:         a.Tracker,
		Airports:        a.Airports,
		Auth:            app.NewAuthService(cfg),
		StaleThreshold:  cfg.Tracker.StaleThreshold(),
		DefaultRadiusNM: cfg.ADSB.DefaultRadiusNM,
		CORSOrigins:     cfg.Server.CORSOrigins,
		Logger:          log.With().Str("component", "api").Logger(),
	}
	if opts.Auth == nil {
		log.Warn().Msg("Authentication disabled, operator endpoints are open")
	}

	database, err := app.OpenDatabase(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	if database != nil {
		defer database.Close()
		a.Record(ctx, database)
		opts.History = db.NewSightingRepository(database, log)
		log.Info().Str("host", cfg.Database.Host).Msg("Recording sightings")
	}

	if err := a.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to set initial viewport")
	}

	httpServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewServer(opts),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", httpServer.Addr).
			Bool("tls", cfg.Server.TLSEnabled).
			Msg("Server listening")

		var err error
		if cfg.Server.TLSEnabled {
			err = httpServer.ListenAndServeTLS(cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile)
		} else {
			err = httpServer.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
	case err := <-errCh:
		log.Error().Err(err).Msg("Server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
