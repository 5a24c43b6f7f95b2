// Package integration connects phasescope to the world outside the engine:
// filesystem notifications and the project watcher built on them.
package integration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/valter-silva-au/phasescope/internal/core"
	"github.com/valter-silva-au/phasescope/pkg/models"
)

// DefaultDebounce is the quiet period after the last filesystem event
// before a rescan.
const DefaultDebounce = 300 * time.Millisecond

// Update is one rescan of a watched project whose fingerprint differs from
// the previous one.
type Update struct {
	Snapshot    models.ProjectSnapshot
	Phases      models.PhaseState
	Summary     models.ComprehensiveSummary
	Fingerprint string
	// Initial marks the scan taken when the watcher starts.
	Initial bool
}

// ProjectWatcher rescans a project root whenever its artifacts change.
type ProjectWatcher interface {
	// Start takes an initial scan, begins watching and returns the update
	// stream. The channel is closed once the watcher stops, either through
	// Stop or ctx cancellation.
	Start(ctx context.Context) (<-chan Update, error)
	// Stop ends watching and waits for the watch loop to exit. It is safe to
	// call more than once.
	Stop() error
}

// WatcherConfig configures a ProjectWatcher.
type WatcherConfig struct {
	Root     string
	Debounce time.Duration
	Builder  core.SnapshotBuilder
	Logger   *slog.Logger
}

type projectWatcher struct {
	root     string
	debounce time.Duration
	builder  core.SnapshotBuilder
	analyzer core.PhaseAnalyzer
	summary  core.SummaryReconciler
	logger   *slog.Logger

	mu       sync.Mutex
	fsw      *fsnotify.Watcher
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
	lastFP   string
}

// NewProjectWatcher creates a ProjectWatcher. Zero debounce means
// DefaultDebounce; a nil builder or logger get defaults.
func NewProjectWatcher(cfg WatcherConfig) ProjectWatcher {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Builder == nil {
		cfg.Builder = core.NewSnapshotBuilder(cfg.Logger)
	}
	return &projectWatcher{
		root:     filepath.Clean(cfg.Root),
		debounce: cfg.Debounce,
		builder:  cfg.Builder,
		analyzer: core.NewPhaseAnalyzer(),
		summary:  core.NewSummaryReconciler(),
		logger:   cfg.Logger.With("root", filepath.Clean(cfg.Root)),
	}
}

func (w *projectWatcher) Start(ctx context.Context) (<-chan Update, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fsw != nil {
		return nil, fmt.Errorf("starting watcher: already started")
	}

	info, err := os.Stat(w.root)
	if err != nil {
		return nil, fmt.Errorf("starting watcher: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("starting watcher: %s is not a directory", w.root)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	if err := fsw.Add(w.root); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", w.root, err)
	}
	for _, dir := range core.WatchedDirs(w.root) {
		w.addTree(fsw, dir)
	}

	ctx, cancel := context.WithCancel(ctx)
	w.fsw = fsw
	w.cancel = cancel
	w.done = make(chan struct{})

	updates := make(chan Update, 1)
	first, _ := w.scan(true)
	updates <- first

	go w.loop(ctx, fsw, updates)
	return updates, nil
}

func (w *projectWatcher) Stop() error {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.mu.Unlock()
	if cancel == nil {
		return nil
	}

	w.stopOnce.Do(func() {
		cancel()
		<-done
	})
	return nil
}

// loop owns fsw: it reads events, debounces them and rescans.
func (w *projectWatcher) loop(ctx context.Context, fsw *fsnotify.Watcher, updates chan<- Update) {
	defer close(w.done)
	defer close(updates)
	defer func() { _ = fsw.Close() }()

	trigger := make(chan struct{}, 1)
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					w.addTree(fsw, event.Name)
				}
			}
			w.logger.Debug("filesystem event", "op", event.Op.String(), "path", event.Name)

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, func() {
				select {
				case trigger <- struct{}{}:
				default:
				}
			})

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("fsnotify error", "error", err)

		case <-trigger:
			u, changed := w.scan(false)
			if !changed {
				w.logger.Debug("rescan unchanged")
				continue
			}
			select {
			case updates <- u:
			case <-ctx.Done():
				return
			}
		}
	}
}

// scan rebuilds the snapshot and reports whether its fingerprint changed.
func (w *projectWatcher) scan(initial bool) (Update, bool) {
	snap := w.builder.Build(w.root)
	fp, err := core.Fingerprint(snap)
	if err != nil {
		// Without a fingerprint every scan counts as a change.
		w.logger.Warn("fingerprinting snapshot", "error", err)
	}
	changed := err != nil || fp != w.lastFP
	w.lastFP = fp
	return Update{
		Snapshot:    snap,
		Phases:      w.analyzer.Analyze(snap),
		Summary:     w.summary.Reconcile(snap),
		Fingerprint: fp,
		Initial:     initial,
	}, changed
}

// relevant drops events for hidden files and the checkpoint writer's
// scratch files.
func (w *projectWatcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".lock") || strings.HasSuffix(name, ".tmp") {
		return false
	}
	return true
}

// addTree watches dir and every non-hidden directory below it. Missing
// directories are ignored; they are picked up when created.
func (w *projectWatcher) addTree(fsw *fsnotify.Watcher, dir string) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			w.logger.Debug("walking watched directory", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			w.logger.Warn("watching directory", "path", path, "error", err)
		}
		return nil
	})
}
