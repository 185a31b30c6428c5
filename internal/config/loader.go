package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. FLOORTRACK_SERVER_ADDR
const EnvPrefix = "FLOORTRACK"

// Load merges the global file, then the project file or explicitPath, then
// environment variables over the defaults. A missing explicitPath is an
// error; missing global or project files are not.
func Load(explicitPath string) (*Config, error) {
	v := newViper()

	if global := GlobalConfigPath(); global != "" {
		if err := mergeFile(v, global); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	if explicitPath != "" {
		if err := mergeFile(v, expandHome(explicitPath)); err != nil {
			return nil, err
		}
	} else if err := mergeFile(v, ProjectConfigPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.DataDir = expandHome(cfg.DataDir)
	cfg.CategoriesFile = expandHome(cfg.CategoriesFile)
	cfg.Ledger.LegacyPath = expandHome(cfg.Ledger.LegacyPath)
	if cfg.Store.Driver == DriverSQLite {
		cfg.Store.DSN = expandHome(cfg.Store.DSN)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newViper registers every key with its default so environment variables
// are picked up by Unmarshal
func newViper() *viper.Viper {
	d := DefaultConfig()
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("timezone", d.Timezone)
	v.SetDefault("categories_file", d.CategoriesFile)
	v.SetDefault("node_id", d.NodeID)
	v.SetDefault("user", d.User)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.mode", d.Server.Mode)
	v.SetDefault("store.driver", d.Store.Driver)
	v.SetDefault("store.dsn", d.Store.DSN)
	v.SetDefault("ledger.legacy_path", d.Ledger.LegacyPath)
	v.SetDefault("metrics.watch", d.Metrics.Watch)
	v.SetDefault("metrics.debounce", d.Metrics.Debounce)
	v.SetDefault("metrics.window_days", d.Metrics.WindowDays)
	return v
}

func mergeFile(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return nil
}

// GlobalConfigPath returns ~/.floortrack/config.yaml
func GlobalConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".floortrack", "config.yaml")
}

// ProjectConfigPath returns ./floortrack.yaml
func ProjectConfigPath() string {
	cwd, _ := os.Getwd()
	return filepath.Join(cwd, "floortrack.yaml")
}
