// Package config loads floortrack settings from YAML files and the
// environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config is the full application configuration
type Config struct {
	DataDir        string        `mapstructure:"data_dir" yaml:"data_dir"`
	Timezone       string        `mapstructure:"timezone" yaml:"timezone"`
	CategoriesFile string        `mapstructure:"categories_file" yaml:"categories_file,omitempty"`
	NodeID         int64         `mapstructure:"node_id" yaml:"node_id"`
	User           string        `mapstructure:"user" yaml:"user,omitempty"` // default worker for CLI commands
	Server         ServerConfig  `mapstructure:"server" yaml:"server"`
	Store          StoreConfig   `mapstructure:"store" yaml:"store"`
	Ledger         LedgerConfig  `mapstructure:"ledger" yaml:"ledger,omitempty"`
	Metrics        MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
	Mode string `mapstructure:"mode" yaml:"mode"` // gin mode: debug, release or test
}

// StoreConfig selects the record store backend
type StoreConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"` // json, sqlite or mysql
	DSN    string `mapstructure:"dsn" yaml:"dsn,omitempty"`
}

// LedgerConfig configures the completion log
type LedgerConfig struct {
	LegacyPath string `mapstructure:"legacy_path" yaml:"legacy_path,omitempty"`
}

// MetricsConfig configures the recompute pipeline
type MetricsConfig struct {
	Watch      bool          `mapstructure:"watch" yaml:"watch"`
	Debounce   time.Duration `mapstructure:"debounce" yaml:"debounce"`
	WindowDays int           `mapstructure:"window_days" yaml:"window_days"`
}

// Store drivers
const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Validate rejects settings the application cannot start with
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverJSON, DriverSQLite, DriverMySQL:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Store.Driver == DriverMySQL && c.Store.DSN == "" {
		return fmt.Errorf("store.dsn is required for the mysql driver")
	}
	if c.NodeID < 0 || c.NodeID > 1023 {
		return fmt.Errorf("node_id must be between 0 and 1023, got %d", c.NodeID)
	}
	if c.Metrics.WindowDays < 1 {
		return fmt.Errorf("metrics.window_days must be at least 1")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the configured timezone; empty means the host zone
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// TasksDir holds the per-user JSON record files
func (c *Config) TasksDir() string {
	return filepath.Join(c.DataDir, "tasks")
}

// LedgerDir holds the completion log partitions
func (c *Config) LedgerDir() string {
	return filepath.Join(c.DataDir, "ledger")
}

// DerivedDir holds the per-category projections
func (c *Config) DerivedDir() string {
	return filepath.Join(c.DataDir, "derived")
}

// BackupDir holds dated ledger backups
func (c *Config) BackupDir() string {
	return filepath.Join(c.DataDir, "backup")
}

// CSVDir holds the per-day raw and cleaned splits
func (c *Config) CSVDir() string {
	return filepath.Join(c.DataDir, "csv")
}

// expandHome resolves a leading ~ against the user's home directory
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
