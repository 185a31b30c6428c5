package commands

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/floortrack/internal/categories"
	"github.com/balkashynov/floortrack/internal/config"
	"github.com/balkashynov/floortrack/internal/db"
	"github.com/balkashynov/floortrack/internal/ids"
	"github.com/balkashynov/floortrack/internal/ledger"
	"github.com/balkashynov/floortrack/internal/lifecycle"
	"github.com/balkashynov/floortrack/internal/metrics"
	"github.com/balkashynov/floortrack/internal/store"
)

// app is everything a command needs, opened from the loaded configuration
type app struct {
	cfg        *config.Config
	loc        *time.Location
	store      store.RecordStore
	ledger     *ledger.Ledger
	categories *categories.Table
	manager    *lifecycle.Manager
	logger     *log.Logger
}

// newLogger returns a prefixed component logger; quiet unless --verbose
func newLogger(prefix string) *log.Logger {
	if !verbose {
		return log.New(io.Discard, "", 0)
	}
	return log.New(os.Stderr, prefix, log.LstdFlags|log.Lshortfile)
}

// openApp loads the configuration and wires the store, ledger and manager
func openApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	table := categories.Default()
	if cfg.CategoriesFile != "" {
		if table, err = categories.Load(cfg.CategoriesFile); err != nil {
			return nil, err
		}
	}

	st, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	lg, err := ledger.New(ledger.Options{
		Dir:        cfg.LedgerDir(),
		LegacyPath: cfg.Ledger.LegacyPath,
		Location:   loc,
		Logger:     newLogger("[ledger] "),
	})
	if err != nil {
		st.Close()
		return nil, err
	}

	gen, err := ids.NewSnowflake(cfg.NodeID)
	if err != nil {
		st.Close()
		return nil, err
	}

	return &app{
		cfg:        cfg,
		loc:        loc,
		store:      st,
		ledger:     lg,
		categories: table,
		manager:    lifecycle.NewManager(st, lg, table, gen, lifecycle.WithLogger(newLogger("[lifecycle] "))),
		logger:     newLogger("[floortrack] "),
	}, nil
}

// openStore picks the record store backend named by the config
func openStore(cfg *config.Config) (store.RecordStore, error) {
	switch cfg.Store.Driver {
	case config.DriverJSON:
		fs, err := store.NewFileStore(cfg.TasksDir())
		if err != nil {
			return nil, err
		}
		return fs, nil
	case config.DriverSQLite, config.DriverMySQL:
		dsn := cfg.Store.DSN
		if dsn == "" {
			dsn = db.DefaultSQLitePath(cfg.DataDir)
		}
		conn, err := db.Open(cfg.Store.Driver, dsn, verbose)
		if err != nil {
			return nil, err
		}
		return db.NewStore(conn), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// Close releases the record store
func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Printf("close store: %v", err)
	}
}

// pipeline builds a metrics pipeline reading this app's ledger
func (a *app) pipeline(pub metrics.Publisher, withEvents bool, logger *log.Logger) *metrics.Pipeline {
	var events <-chan ledger.Event
	if withEvents {
		events = a.ledger.Subscribe()
	}
	watchDir := ""
	if a.cfg.Metrics.Watch {
		watchDir = a.ledger.Dir()
	}
	return metrics.NewPipeline(a.ledger, events, pub, metrics.Config{
		DerivedDir: a.cfg.DerivedDir(),
		WatchDir:   watchDir,
		Debounce:   a.cfg.Metrics.Debounce,
		Window:     metrics.Window{Days: a.cfg.Metrics.WindowDays, Location: a.loc},
		Logger:     logger,
	})
}

// username resolves --user, then the configured default worker
func (a *app) username() (string, error) {
	name := strings.TrimSpace(userFlag)
	if name == "" {
		name = strings.TrimSpace(a.cfg.User)
	}
	if name == "" {
		return "", fmt.Errorf("no worker given: pass --user or set user in the config (FLOORTRACK_USER)")
	}
	return name, nil
}

// withApp opens the app around a RunE body
func withApp(fn func(a *app, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(a, cmd, args)
	}
}
