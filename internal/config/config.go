// Package config loads and saves the cashcast TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/theirongolddev/cashcast/internal/budget"
	"github.com/theirongolddev/cashcast/internal/forecast"
)

// Environment overrides.
const (
	EnvConfig = "CASHCAST_CONFIG"
	EnvDB     = "CASHCAST_DB"
)

// Config holds all cashcast configuration.
type Config struct {
	General  GeneralConfig  `toml:"general"`
	Storage  StorageConfig  `toml:"storage"`
	Forecast ForecastConfig `toml:"forecast"`
	Budget   BudgetConfig   `toml:"budget"`
	Daemon   DaemonConfig   `toml:"daemon"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	Scenario     string `toml:"scenario"`
	HorizonDays  int    `toml:"horizon_days"`
	Grouping     string `toml:"grouping"`
	BudgetPeriod string `toml:"budget_period"`
	IncludeTrend bool   `toml:"include_trend"`
}

// StorageConfig locates the database.
type StorageConfig struct {
	DBPath string `toml:"db_path,omitempty"`
}

// ForecastConfig tunes the simulator and risk reporting.
type ForecastConfig struct {
	Precision      string `toml:"precision"`
	RiskWindowDays int    `toml:"risk_window_days"`
}

// BudgetConfig tunes the budget report.
type BudgetConfig struct {
	MergeMixedTypes bool `toml:"merge_mixed_types"`
}

// DaemonConfig holds the background monitor settings.
type DaemonConfig struct {
	Addr         string `toml:"addr"`
	Interval     string `toml:"interval"`
	EventsBuffer int    `toml:"events_buffer"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			Scenario:     "baseline",
			HorizonDays:  90,
			Grouping:     string(forecast.GroupDaily),
			BudgetPeriod: string(budget.Month),
			IncludeTrend: true,
		},
		Forecast: ForecastConfig{
			Precision:      forecast.PrecisionRounded.String(),
			RiskWindowDays: 60,
		},
		Daemon: DaemonConfig{
			Addr:         "127.0.0.1:8787",
			Interval:     "1m",
			EventsBuffer: 200,
		},
	}
}

// Validate checks the enumerated and numeric settings.
func (c Config) Validate() error {
	if c.General.HorizonDays < 0 {
		return fmt.Errorf("general.horizon_days must not be negative, got %d", c.General.HorizonDays)
	}
	if c.General.HorizonDays > forecast.MaxHorizonDays {
		return fmt.Errorf("general.horizon_days must be at most %d, got %d", forecast.MaxHorizonDays, c.General.HorizonDays)
	}
	if _, err := forecast.ParseGrouping(c.General.Grouping); err != nil {
		return fmt.Errorf("general.grouping: %w", err)
	}
	if _, err := budget.ParsePeriod(c.General.BudgetPeriod); err != nil {
		return fmt.Errorf("general.budget_period: %w", err)
	}
	if _, err := forecast.ParsePrecision(c.Forecast.Precision); err != nil {
		return fmt.Errorf("forecast.precision: %w", err)
	}
	if c.Forecast.RiskWindowDays < 1 || c.Forecast.RiskWindowDays > forecast.MaxHorizonDays {
		return fmt.Errorf("forecast.risk_window_days must be in [1, %d], got %d", forecast.MaxHorizonDays, c.Forecast.RiskWindowDays)
	}
	if _, err := c.DaemonInterval(); err != nil {
		return err
	}
	return nil
}

// DaemonInterval parses the daemon poll interval.
func (c Config) DaemonInterval() (time.Duration, error) {
	d, err := time.ParseDuration(c.Daemon.Interval)
	if err != nil {
		return 0, fmt.Errorf("daemon.interval: %w", err)
	}
	if d < time.Second {
		return 0, fmt.Errorf("daemon.interval must be at least 1s, got %s", d)
	}
	return d, nil
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "cashcast")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "cashcast")
}

// Path returns the full path to the config file. CASHCAST_CONFIG overrides it.
func Path() string {
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
// CASHCAST_DB overrides storage.db_path.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(Path())
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err == nil {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	if db := os.Getenv(EnvDB); db != "" {
		cfg.Storage.DBPath = db
	}
	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}
