// Package app assembles the tracker and its collaborators from configuration.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/unklstewy/adsb-tracker/internal/auth"
	"github.com/unklstewy/adsb-tracker/internal/db"
	"github.com/unklstewy/adsb-tracker/pkg/adsb"
	"github.com/unklstewy/adsb-tracker/pkg/airports"
	"github.com/unklstewy/adsb-tracker/pkg/config"
	"github.com/unklstewy/adsb-tracker/pkg/logger"
	"github.com/unklstewy/adsb-tracker/pkg/scheduler"
	"github.com/unklstewy/adsb-tracker/pkg/tracker"
)

// App is a configured, not yet started tracker with its data sources.
type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Client   *adsb.Client
	Tracker  *tracker.Tracker
	Airports *airports.Directory
}

// Bootstrap loads configuration and initialises logging for a binary.
func Bootstrap(configPath, component string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logger.Init(cfg.Logging); err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("failed to initialise logging: %w", err)
	}

	return cfg, logger.WithComponent(component), nil
}

// NewClient builds the aggregator client with the configured normalizer.
func NewClient(cfg *config.Config, log zerolog.Logger) (*adsb.Client, error) {
	opts, err := cfg.Tracker.NormalizerOptions()
	if err != nil {
		return nil, err
	}

	parser := adsb.NewParser(adsb.NewNormalizer(opts), log.With().Str("component", "parser").Logger())
	return adsb.NewClient(cfg.ADSB.ClientConfig(), parser), nil
}

// LoadAirports returns the configured airport table, or the built-in one.
func LoadAirports(cfg *config.Config) (*airports.Directory, error) {
	if cfg.Airports.File == "" {
		return airports.Default(), nil
	}

	dir, err := airports.LoadFile(cfg.Airports.File)
	if err != nil {
		return nil, fmt.Errorf("failed to load airports: %w", err)
	}
	return dir, nil
}

// New wires a client, tracker and airport directory.
func New(cfg *config.Config, log zerolog.Logger) (*App, error) {
	client, err := NewClient(cfg, log)
	if err != nil {
		return nil, err
	}

	tcfg, err := cfg.TrackerConfig()
	if err != nil {
		return nil, err
	}

	dir, err := LoadAirports(cfg)
	if err != nil {
		return nil, err
	}

	trk := tracker.New(tcfg, client, scheduler.RealClock{}, log.With().Str("component", "tracker").Logger())

	return &App{
		Config:   cfg,
		Logger:   log,
		Client:   client,
		Tracker:  trk,
		Airports: dir,
	}, nil
}

// Start points the tracker at the configured observer viewport. A zero radius
// leaves the tracker idle until a viewport is set.
func (a *App) Start() error {
	obs := a.Config.Observer
	if obs.RadiusNM <= 0 {
		a.Logger.Info().Msg("No initial viewport configured, waiting for one")
		return nil
	}

	a.Logger.Info().
		Str("observer", obs.Name).
		Str("center", obs.Center().String()).
		Float64("radius_nm", obs.RadiusNM).
		Msg("Starting at observer viewport")

	return a.Tracker.SetViewport(obs.Center(), obs.RadiusNM, obs.Zoom)
}

// Close stops the tracker.
func (a *App) Close() error {
	return a.Tracker.Close()
}

// NewAuthService returns the operator login service, or nil when
// authentication is disabled.
func NewAuthService(cfg *config.Config) *auth.Service {
	if !cfg.Auth.Enabled {
		return nil
	}
	return auth.NewService(auth.Config{
		JWTSecret:            cfg.Auth.JWTSecret,
		TokenDuration:        time.Duration(cfg.Auth.TokenTTLMinutes) * time.Minute,
		OperatorUsername:     cfg.Auth.OperatorUsername,
		OperatorPasswordHash: cfg.Auth.OperatorPasswordHash,
	})
}

// OpenDatabase connects to PostgreSQL and creates the schema when recording
// is enabled. It returns nil, nil when it is not.
func OpenDatabase(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*db.DB, error) {
	if !cfg.Database.Enabled {
		return nil, nil
	}

	database, err := db.ReconnectWithRetry(ctx, cfg.Database, 5, time.Second, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.InitSchema(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return database, nil
}
