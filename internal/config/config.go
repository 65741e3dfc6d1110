// Package config provides application configuration loading from environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// DatabaseURL is optional. When empty the application runs in
	// local-only mode: every operation is served from the local store.
	DatabaseURL string

	// UserID identifies the session owner. Empty means an anonymous
	// local-only session.
	UserID string

	LogLevel     string
	LocalDataDir string

	ExchangeAPIURL   string
	ExchangeCacheTTL time.Duration
	SimulatedRates   bool

	AutoSyncInterval      time.Duration
	BackupCheckInterval   time.Duration
	SnapshotRetentionDays int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		UserID:         os.Getenv("FINANCE_USER_ID"),
		LogLevel:       os.Getenv("LOG_LEVEL"),
		ExchangeAPIURL: os.Getenv("EXCHANGE_API_URL"),
	}

	cfg.LocalDataDir = "./data"
	if dir := os.Getenv("LOCAL_DATA_DIR"); dir != "" {
		cfg.LocalDataDir = dir
	}

	cfg.SimulatedRates = os.Getenv("SIMULATED_RATES") == "true"

	cfg.ExchangeCacheTTL = 12 * time.Hour
	if ttl, ok := parseDuration(os.Getenv("EXCHANGE_CACHE_TTL")); ok {
		cfg.ExchangeCacheTTL = ttl
	}

	cfg.AutoSyncInterval = 5 * time.Minute
	if d, ok := parseDuration(os.Getenv("AUTO_SYNC_INTERVAL")); ok {
		cfg.AutoSyncInterval = d
	}

	cfg.BackupCheckInterval = time.Hour
	if d, ok := parseDuration(os.Getenv("BACKUP_CHECK_INTERVAL")); ok {
		cfg.BackupCheckInterval = d
	}

	cfg.SnapshotRetentionDays = 90
	if daysStr := os.Getenv("SNAPSHOT_RETENTION_DAYS"); daysStr != "" {
		if days, err := strconv.Atoi(daysStr); err == nil && days > 0 {
			cfg.SnapshotRetentionDays = days
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseDuration(s string) (time.Duration, bool) {
	if s == "" {
		return 0, false
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}

// validate checks that configuration values are usable.
func (c *Config) validate() error {
	var errs []string

	if c.LocalDataDir == "" {
		errs = append(errs, "LOCAL_DATA_DIR must not be empty")
	}

	if c.AutoSyncInterval < time.Minute {
		errs = append(errs, "AUTO_SYNC_INTERVAL must be at least 1m")
	}

	if c.BackupCheckInterval < time.Minute {
		errs = append(errs, "BACKUP_CHECK_INTERVAL must be at least 1m")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// RemoteEnabled reports whether a remote database is configured.
func (c *Config) RemoteEnabled() bool {
	return c.DatabaseURL != ""
}
