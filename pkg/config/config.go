package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/unklstewy/adsb-tracker/pkg/adsb"
	"github.com/unklstewy/adsb-tracker/pkg/coordinates"
	"github.com/unklstewy/adsb-tracker/pkg/logger"
	"github.com/unklstewy/adsb-tracker/pkg/scheduler"
	"github.com/unklstewy/adsb-tracker/pkg/tracker"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ADSB_TRACKER_"

// Config represents the complete application configuration.
// It is read from a JSON or YAML file and then overridden from the environment.
type Config struct {
	Server   ServerConfig   `json:"server" yaml:"server"`
	Database DatabaseConfig `json:"database" yaml:"database"`
	ADSB     ADSBConfig     `json:"adsb" yaml:"adsb"`
	Tracker  TrackerConfig  `json:"tracker" yaml:"tracker"`
	Observer ObserverConfig `json:"observer" yaml:"observer"`
	Airports AirportsConfig `json:"airports" yaml:"airports"`
	Auth     AuthConfig     `json:"auth" yaml:"auth"`
	Logging  logger.Config  `json:"logging" yaml:"logging"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	// Port is the HTTP server port (default: 8080)
	Port string `json:"port" yaml:"port"`

	// Host is the server bind address (default: "0.0.0.0")
	Host string `json:"host" yaml:"host"`

	TLSEnabled  bool   `json:"tls_enabled" yaml:"tls_enabled"`
	TLSCertFile string `json:"tls_cert_file" yaml:"tls_cert_file"`
	TLSKeyFile  string `json:"tls_key_file" yaml:"tls_key_file"`

	// CORSOrigins lists the browser origins allowed to call the API.
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins"`
}

// DatabaseConfig contains the optional sighting recorder connection.
type DatabaseConfig struct {
	// Enabled turns on recording of tracked aircraft to PostgreSQL
	Enabled bool `json:"enabled" yaml:"enabled"`

	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	Database string `json:"database" yaml:"database"`
	Username string `json:"username" yaml:"username"`

	// Password for database authentication (should be loaded from environment)
	Password string `json:"password" yaml:"password"`

	// SSLMode for PostgreSQL connections (disable, require, verify-ca, verify-full)
	SSLMode string `json:"ssl_mode" yaml:"ssl_mode"`

	MaxOpenConns int `json:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns int `json:"max_idle_conns" yaml:"max_idle_conns"`

	// RetentionHours is how long sightings are kept before cleanup
	RetentionHours int `json:"retention_hours" yaml:"retention_hours"`
}

// ADSBConfig contains the upstream aggregator settings.
type ADSBConfig struct {
	// BaseURL is the aggregator API root, e.g. "https://api.adsb.lol/v2"
	BaseURL string `json:"base_url" yaml:"base_url"`

	TimeoutSeconds int `json:"timeout_seconds" yaml:"timeout_seconds"`

	// RequestsPerSecond limits outbound calls. 0 disables the limiter.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
	Burst             int     `json:"burst" yaml:"burst"`

	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// DefaultRadiusNM is used when a viewport is set without a radius
	DefaultRadiusNM float64 `json:"default_radius_nm" yaml:"default_radius_nm"`

	// Categories enabled at startup: regular, pia, mil, ladd
	Categories []string `json:"categories" yaml:"categories"`
}

// TrackerConfig tunes the fetch coordinator, cache and scheduler.
type TrackerConfig struct {
	RetentionSeconds    int `json:"retention_seconds" yaml:"retention_seconds"`
	FetchTimeoutSeconds int `json:"fetch_timeout_seconds" yaml:"fetch_timeout_seconds"`

	// BurstCount ticks are fired BurstIntervalMS apart after an area change
	BurstCount      int `json:"burst_count" yaml:"burst_count"`
	BurstIntervalMS int `json:"burst_interval_ms" yaml:"burst_interval_ms"`

	// AreaChangeFraction is the share of the current radius the viewport must
	// move or grow by before the cache is flushed
	AreaChangeFraction float64 `json:"area_change_fraction" yaml:"area_change_fraction"`

	// Validity is "position" or "position_and_callsign"
	Validity string `json:"validity" yaml:"validity"`

	// MilitaryPolicy is "callsign" or "type_designator"
	MilitaryPolicy    string   `json:"military_policy" yaml:"military_policy"`
	MilitaryCallsigns []string `json:"military_callsigns" yaml:"military_callsigns"`

	// SafeIntegerLimit caps integer magnitudes before the sanitizing parse
	// path is used. 0 selects 2^53-1, negative disables the check.
	SafeIntegerLimit int64 `json:"safe_integer_limit" yaml:"safe_integer_limit"`

	// StaleThresholdSeconds marks data stale for display purposes
	StaleThresholdSeconds int `json:"stale_threshold_seconds" yaml:"stale_threshold_seconds"`
}

// ObserverConfig is the initial viewport the tracker starts with.
type ObserverConfig struct {
	Name      string  `json:"name" yaml:"name"`
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
	RadiusNM  float64 `json:"radius_nm" yaml:"radius_nm"`
	Zoom      float64 `json:"zoom" yaml:"zoom"`
}

// AirportsConfig points at an optional airport table replacing the built-in one.
type AirportsConfig struct {
	File string `json:"file" yaml:"file"`
}

// AuthConfig guards the mutating API endpoints.
type AuthConfig struct {
	Enabled         bool   `json:"enabled" yaml:"enabled"`
	JWTSecret       string `json:"jwt_secret" yaml:"jwt_secret"`
	TokenTTLMinutes int    `json:"token_ttl_minutes" yaml:"token_ttl_minutes"`

	OperatorUsername string `json:"operator_username" yaml:"operator_username"`

	// OperatorPasswordHash is a bcrypt hash
	OperatorPasswordHash string `json:"operator_password_hash" yaml:"operator_password_hash"`
}

// Load reads configuration from a JSON or YAML file, chosen by extension.
// Values absent from the file keep their defaults. If the file doesn't exist,
// the default configuration is used. A .env file next to the config file or in
// the working directory is loaded before environment overrides are applied.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(path); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := unmarshal(path, data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnvironmentOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func unmarshal(path string, data []byte, cfg *Config) error {
	if isYAML(path) {
		return yaml.Unmarshal(data, cfg)
	}
	return json.Unmarshal(data, cfg)
}

// loadDotEnv loads .env files without overriding variables already set.
func loadDotEnv(path string) error {
	candidates := []string{filepath.Join(filepath.Dir(path), ".env"), ".env"}

	seen := make(map[string]bool)
	for _, f := range candidates {
		abs, err := filepath.Abs(f)
		if err != nil || seen[abs] {
			continue
		}
		seen[abs] = true

		if _, err := os.Stat(abs); err != nil {
			continue
		}
		if err := godotenv.Load(abs); err != nil {
			return fmt.Errorf("failed to load %s: %w", abs, err)
		}
	}

	return nil
}

// Save writes the configuration as JSON or YAML depending on the extension.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8080",
			Host:        "0.0.0.0",
			CORSOrigins: []string{"*"},
		},
		Database: DatabaseConfig{
			Enabled:        false,
			Host:           "localhost",
			Port:           5432,
			Database:       "adsbtracker",
			Username:       "adsbtracker",
			SSLMode:        "disable",
			MaxOpenConns:   25,
			MaxIdleConns:   5,
			RetentionHours: 24,
		},
		ADSB: ADSBConfig{
			BaseURL:           adsb.DefaultBaseURL,
			TimeoutSeconds:    int(adsb.DefaultTimeout / time.Second),
			RequestsPerSecond: 1,
			Burst:             4,
			UserAgent:         "adsb-tracker/1.0",
			DefaultRadiusNM:   50,
			Categories:        []string{adsb.Regular.String()},
		},
		Tracker: TrackerConfig{
			RetentionSeconds:      10,
			FetchTimeoutSeconds:   int(tracker.DefaultFetchTimeout / time.Second),
			BurstCount:            3,
			BurstIntervalMS:       1000,
			AreaChangeFraction:    tracker.DefaultAreaChangeFraction,
			Validity:              adsb.RequirePosition.String(),
			MilitaryPolicy:        "callsign",
			StaleThresholdSeconds: 60,
		},
		Observer: ObserverConfig{
			Name:      "Primary Observer",
			Latitude:  0.0,
			Longitude: 0.0,
			RadiusNM:  50,
			Zoom:      10,
		},
		Auth: AuthConfig{
			Enabled:          false,
			TokenTTLMinutes:  24 * 60,
			OperatorUsername: "operator",
		},
		Logging: logger.DefaultConfig(),
	}
}

// Validate rejects values the tracker cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.ADSB.BaseURL == "" {
		errs = append(errs, errors.New("adsb.base_url is required"))
	}
	if c.ADSB.TimeoutSeconds < 0 {
		errs = append(errs, errors.New("adsb.timeout_seconds must not be negative"))
	}
	if c.ADSB.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("adsb.requests_per_second must not be negative"))
	}
	if c.ADSB.DefaultRadiusNM <= 0 {
		errs = append(errs, errors.New("adsb.default_radius_nm must be positive"))
	}
	if _, err := c.ADSB.CategorySet(); err != nil {
		errs = append(errs, err)
	}

	if c.Tracker.RetentionSeconds <= 0 {
		errs = append(errs, errors.New("tracker.retention_seconds must be positive"))
	}
	if c.Tracker.BurstCount < 0 || c.Tracker.BurstIntervalMS < 0 {
		errs = append(errs, errors.New("tracker burst settings must not be negative"))
	}
	if c.Tracker.AreaChangeFraction <= 0 {
		errs = append(errs, errors.New("tracker.area_change_fraction must be positive"))
	}
	if _, err := adsb.ParseValidityRule(c.Tracker.Validity); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Tracker.NormalizerOptions(); err != nil {
		errs = append(errs, err)
	}

	if err := c.Observer.Center().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("observer: %w", err))
	}
	if c.Observer.RadiusNM < 0 {
		errs = append(errs, errors.New("observer.radius_nm must not be negative"))
	}

	if c.Auth.Enabled && c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required when auth is enabled"))
	}

	return errors.Join(errs...)
}

// ClientConfig maps the adsb section onto the HTTP client settings.
func (c *ADSBConfig) ClientConfig() adsb.ClientConfig {
	return adsb.ClientConfig{
		BaseURL:           c.BaseURL,
		Timeout:           time.Duration(c.TimeoutSeconds) * time.Second,
		RequestsPerSecond: c.RequestsPerSecond,
		Burst:             c.Burst,
		UserAgent:         c.UserAgent,
	}
}

// CategorySet parses the configured category names.
func (c *ADSBConfig) CategorySet() (adsb.CategorySet, error) {
	var set adsb.CategorySet
	for _, name := range c.Categories {
		cat, err := adsb.ParseCategory(name)
		if err != nil {
			return 0, fmt.Errorf("adsb.categories: %w", err)
		}
		set = set.With(cat)
	}
	return set, nil
}

// NormalizerOptions resolves the military policy and integer limit.
func (c *TrackerConfig) NormalizerOptions() (adsb.NormalizerOptions, error) {
	policy, err := adsb.ParseMilitaryPolicy(c.MilitaryPolicy)
	if err != nil {
		return adsb.NormalizerOptions{}, err
	}
	if p, ok := policy.(adsb.CallsignPrefixPolicy); ok && len(c.MilitaryCallsigns) > 0 {
		p.Prefixes = c.MilitaryCallsigns
		policy = p
	}

	return adsb.NormalizerOptions{
		Military:         policy,
		SafeIntegerLimit: c.SafeIntegerLimit,
	}, nil
}

// StaleThreshold returns the display staleness threshold.
func (c *TrackerConfig) StaleThreshold() time.Duration {
	return time.Duration(c.StaleThresholdSeconds) * time.Second
}

// TrackerConfig builds the coordinator settings from the tracker and adsb sections.
func (c *Config) TrackerConfig() (tracker.Config, error) {
	validity, err := adsb.ParseValidityRule(c.Tracker.Validity)
	if err != nil {
		return tracker.Config{}, err
	}
	categories, err := c.ADSB.CategorySet()
	if err != nil {
		return tracker.Config{}, err
	}

	return tracker.Config{
		FetchTimeout: time.Duration(c.Tracker.FetchTimeoutSeconds) * time.Second,
		Retention:    time.Duration(c.Tracker.RetentionSeconds) * time.Second,
		Validity:     validity,
		Burst: scheduler.Config{
			BurstCount:    c.Tracker.BurstCount,
			BurstInterval: time.Duration(c.Tracker.BurstIntervalMS) * time.Millisecond,
		},
		AreaChangeFraction: c.Tracker.AreaChangeFraction,
		Categories:         categories,
	}, nil
}

// Center returns the initial viewport center.
func (o ObserverConfig) Center() coordinates.Geographic {
	return coordinates.Geographic{Latitude: o.Latitude, Longitude: o.Longitude}
}

// DSN returns a lib/pq connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.Username, d.Password, d.Database, d.SSLMode)
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
// This allows sensitive data like passwords to be kept out of config files.
func (c *Config) applyEnvironmentOverrides() error {
	setString(&c.Server.Port, "PORT")
	setString(&c.Database.Host, "DB_HOST")
	setString(&c.Database.Password, "DB_PASSWORD")
	setString(&c.ADSB.BaseURL, "ADSB_BASE_URL")
	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setString(&c.Auth.OperatorPasswordHash, "OPERATOR_PASSWORD_HASH")
	setString(&c.Logging.Level, "LOG_LEVEL")

	if v := os.Getenv(EnvPrefix + "CATEGORIES"); v != "" {
		c.ADSB.Categories = strings.Split(v, ",")
	}

	var errs []error
	errs = append(errs, setBool(&c.Database.Enabled, "DB_ENABLED"))
	errs = append(errs, setBool(&c.Auth.Enabled, "AUTH_ENABLED"))
	errs = append(errs, setFloat(&c.Observer.Latitude, "OBSERVER_LAT"))
	errs = append(errs, setFloat(&c.Observer.Longitude, "OBSERVER_LON"))
	errs = append(errs, setFloat(&c.Observer.RadiusNM, "OBSERVER_RADIUS_NM"))

	return errors.Join(errs...)
}

func setString(dst *string, key string) {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(EnvPrefix + key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	*dst = b
	return nil
}

func setFloat(dst *float64, key string) error {
	v := os.Getenv(EnvPrefix + key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	*dst = f
	return nil
}
