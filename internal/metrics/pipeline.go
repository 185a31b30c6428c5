package metrics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/balkashynov/floortrack/internal/ledger"
	"github.com/balkashynov/floortrack/internal/models"
)

// DefaultDebounce coalesces bursts of log changes into one recompute
const DefaultDebounce = 250 * time.Millisecond

// Source reads the whole completion log
type Source interface {
	ReadAll(ctx context.Context) ([]models.LogEntry, []ledger.ParseWarning, error)
}

// Publisher receives every recomputed dataset
type Publisher interface {
	Publish(ds Dataset)
}

// Config configures a Pipeline
type Config struct {
	DerivedDir string // where category projections are written; empty skips them
	WatchDir   string // directory watched for external edits; empty disables watching
	Debounce   time.Duration
	Window     Window
	Logger     *log.Logger
	Now        func() time.Time
}

// Pipeline recomputes the dataset whenever the completion log changes
type Pipeline struct {
	source  Source
	events  <-chan ledger.Event
	pub     Publisher
	cfg     Config
	trigger chan struct{}

	mu sync.Mutex
}

// NewPipeline wires a pipeline. events may be nil when only the watcher or
// manual triggers should drive recomputes.
func NewPipeline(source Source, events <-chan ledger.Event, pub Publisher, cfg Config) *Pipeline {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard, "", 0)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Pipeline{
		source:  source,
		events:  events,
		pub:     pub,
		cfg:     cfg,
		trigger: make(chan struct{}, 1),
	}
}

// Recompute reads the full log, rebuilds the dataset, publishes it and
// rewrites the projections. Bad rows are logged and skipped. A projection
// failure is returned along with the dataset that was already published.
func (p *Pipeline) Recompute(ctx context.Context) (Dataset, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	entries, warnings, err := p.source.ReadAll(ctx)
	if err != nil {
		return Dataset{}, fmt.Errorf("failed to read completion log: %w", err)
	}
	for _, w := range warnings {
		p.cfg.Logger.Printf("warning: %s", w)
	}

	ds := Compute(entries, p.cfg.Now(), p.cfg.Window)
	if ds.Skipped > 0 {
		p.cfg.Logger.Printf("warning: skipped %d entries without start or end time", ds.Skipped)
	}

	// subscribers get the dataset even when the projections cannot be written
	if p.pub != nil {
		p.pub.Publish(ds)
	}
	if p.cfg.DerivedDir != "" {
		if err := WriteProjections(p.cfg.DerivedDir, ds); err != nil {
			return ds, err
		}
	}

	p.cfg.Logger.Printf("recomputed %d rows across %d categories", len(ds.Series), len(ds.CategoryTotals))
	return ds, nil
}

// Trigger asks the running loop for a recompute without blocking
func (p *Pipeline) Trigger() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

// Run performs an initial recompute, then recomputes after every burst of
// log events until ctx is done. Recompute failures are logged and the loop
// keeps running.
func (p *Pipeline) Run(ctx context.Context) error {
	var fsEvents <-chan fsnotify.Event
	var fsErrors <-chan error
	if p.cfg.WatchDir != "" {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("failed to create watcher: %w", err)
		}
		defer watcher.Close()
		if err := watcher.Add(p.cfg.WatchDir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p.cfg.WatchDir, err)
		}
		fsEvents = watcher.Events
		fsErrors = watcher.Errors
		p.cfg.Logger.Printf("watching %s for external edits", p.cfg.WatchDir)
	}

	p.recomputeAndLog(ctx)

	events := p.events
	var timer *time.Timer
	var fire <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(p.cfg.Debounce)
		} else {
			timer.Reset(p.cfg.Debounce)
		}
		fire = timer.C
	}
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			schedule()
		case ev, ok := <-fsEvents:
			if !ok {
				fsEvents = nil
				continue
			}
			if relevant(ev) {
				schedule()
			}
		case err, ok := <-fsErrors:
			if !ok {
				fsErrors = nil
				continue
			}
			p.cfg.Logger.Printf("watcher error: %v", err)
		case <-p.trigger:
			schedule()
		case <-fire:
			fire = nil
			p.recomputeAndLog(ctx)
		}
	}
}

func (p *Pipeline) recomputeAndLog(ctx context.Context) {
	if _, err := p.Recompute(ctx); err != nil && !errors.Is(err, context.Canceled) {
		p.cfg.Logger.Printf("recompute failed: %v", err)
	}
}

// relevant filters watcher noise: temp files and chmod-only events
func relevant(ev fsnotify.Event) bool {
	name := filepath.Base(ev.Name)
	if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".csv") {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
}
