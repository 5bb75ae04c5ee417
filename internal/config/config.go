// Package config loads and saves the fincast TOML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/theirongolddev/fincast/internal/forecast"
	"github.com/theirongolddev/fincast/internal/model"
	"go.uber.org/zap"
)

// Config holds all fincast configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Forecast   ForecastConfig   `toml:"forecast"`
	Server     ServerConfig     `toml:"server"`
	Logging    LoggingConfig    `toml:"logging"`
	Appearance AppearanceConfig `toml:"appearance"`
}

// GeneralConfig holds storage locations.
type GeneralConfig struct {
	DBPath    string `toml:"db_path,omitempty"`
	DataDir   string `toml:"data_dir,omitempty"`
	ImportDir string `toml:"import_dir,omitempty"`
}

// ForecastConfig tunes the forecast engine.
type ForecastConfig struct {
	MinPeriods  int     `toml:"min_periods"`
	RidgeLambda float64 `toml:"ridge_lambda"`
	Horizons    []int   `toml:"horizons"`
	Anchor      string  `toml:"anchor,omitempty"`
}

// ServerConfig holds daemon settings.
type ServerConfig struct {
	Addr         string `toml:"addr"`
	EventsBuffer int    `toml:"events_buffer"`
	SyncInterval string `toml:"sync_interval,omitempty"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Forecast: ForecastConfig{
			MinPeriods:  3,
			RidgeLambda: 1e-6,
			Horizons:    []int{30, 60},
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8787",
			EventsBuffer: 200,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// Validate checks values the engine and daemon cannot recover from.
func (c Config) Validate() error {
	var errs []error
	if c.Forecast.MinPeriods < 2 {
		errs = append(errs, fmt.Errorf("forecast.min_periods must be at least 2, got %d", c.Forecast.MinPeriods))
	}
	if c.Forecast.RidgeLambda <= 0 {
		errs = append(errs, fmt.Errorf("forecast.ridge_lambda must be positive, got %g", c.Forecast.RidgeLambda))
	}
	for _, h := range c.Forecast.Horizons {
		if h != 30 && h != 60 {
			errs = append(errs, fmt.Errorf("forecast.horizons: %d is not 30 or 60", h))
		}
	}
	if c.Forecast.Anchor != "" {
		if _, err := model.ParsePeriod(c.Forecast.Anchor); err != nil {
			errs = append(errs, fmt.Errorf("forecast.anchor: %w", err))
		}
	}
	if c.Server.EventsBuffer < 0 {
		errs = append(errs, fmt.Errorf("server.events_buffer must not be negative"))
	}
	if _, err := c.SyncEvery(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// AnchorPeriod returns the configured anchor, if any.
func (c Config) AnchorPeriod() (model.Period, bool) {
	if c.Forecast.Anchor == "" {
		return model.Period{}, false
	}
	p, err := model.ParsePeriod(c.Forecast.Anchor)
	if err != nil {
		return model.Period{}, false
	}
	return p, true
}

// SyncEvery parses server.sync_interval. An empty value disables sync.
func (c Config) SyncEvery() (time.Duration, error) {
	if c.Server.SyncInterval == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Server.SyncInterval)
	if err != nil {
		return 0, fmt.Errorf("server.sync_interval: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("server.sync_interval must not be negative")
	}
	return d, nil
}

// EngineOptions translates the forecast section into engine options.
func (c Config) EngineOptions(logger *zap.Logger) []forecast.Option {
	opts := []forecast.Option{
		forecast.WithMinPeriods(c.Forecast.MinPeriods),
		forecast.WithRidgeLambda(c.Forecast.RidgeLambda),
	}
	if logger != nil {
		opts = append(opts, forecast.WithLogger(logger))
	}
	if p, ok := c.AnchorPeriod(); ok {
		opts = append(opts, forecast.WithAnchor(p))
	}
	return opts
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "fincast")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "fincast")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads the config at path, returning defaults if it doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the config to the default path.
func Save(cfg Config) error {
	return SaveTo(Path(), cfg)
}

// SaveTo writes the config to path.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}
