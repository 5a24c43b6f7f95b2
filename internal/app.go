// Package internal provides the App struct that wires all components of
// phasescope together and initializes the CLI layer.
package internal

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/valter-silva-au/phasescope/internal/cli"
	"github.com/valter-silva-au/phasescope/internal/core"
	"github.com/valter-silva-au/phasescope/internal/observability"
	"github.com/valter-silva-au/phasescope/pkg/models"
)

// RootEnv overrides project root discovery.
const RootEnv = "PHASESCOPE_ROOT"

// App holds all service dependencies for phasescope.
type App struct {
	ProjectRoot string
	HomeDir     string

	// Configuration
	ConfigMgr core.ConfigurationManager
	Config    *models.Config
	Logger    *slog.Logger

	// Engine
	Builder    core.SnapshotBuilder
	Analyzer   core.PhaseAnalyzer
	Reconciler core.SummaryReconciler

	// Observability
	EventLog    observability.EventLog
	AlertEngine observability.AlertEngine
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier
}

// NewApp creates and wires all components. projectRoot is where the
// configuration file is looked up first; homeDir is the fallback location
// and anchors "~" in configured paths.
func NewApp(projectRoot, homeDir string) (*App, error) {
	app := &App{ProjectRoot: projectRoot, HomeDir: homeDir}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(homeDir)
	cfg, loadErr := app.ConfigMgr.LoadConfig(projectRoot)
	if loadErr != nil {
		// Use defaults if the config file is unreadable; warned below once
		// the logger exists.
		cfg = core.DefaultConfig(homeDir)
	}
	if err := app.ConfigMgr.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	app.Config = cfg

	app.Logger = observability.NewLogger(cfg.Log, os.Stderr)
	if loadErr != nil {
		app.Logger.Warn("using default configuration", "error", loadErr)
	}

	// --- Engine ---
	app.Builder = core.NewSnapshotBuilder(app.Logger)
	app.Analyzer = core.NewPhaseAnalyzer()
	app.Reconciler = core.NewSummaryReconciler()

	// --- Observability ---
	if cfg.Events.Enabled {
		eventLog, err := observability.NewJSONLEventLog(cfg.Events.Path)
		if err != nil {
			// Non-fatal: history and alerts are unavailable without the log.
			app.Logger.Warn("event log disabled", "path", cfg.Events.Path, "error", err)
		} else {
			app.EventLog = eventLog
		}
	}
	if app.EventLog != nil {
		thresholds := observability.DefaultAlertThresholds()
		if cfg.Alerts.StallDays > 0 {
			thresholds.StallDays = cfg.Alerts.StallDays
		}
		if cfg.Alerts.MaxReopenings > 0 {
			thresholds.MaxReopenings = cfg.Alerts.MaxReopenings
		}
		app.AlertEngine = observability.NewAlertEngine(app.EventLog, thresholds)
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
	}
	if cfg.Alerts.SlackWebhook != "" {
		app.Notifier = observability.NewSlackNotifier(cfg.Alerts.SlackWebhook)
	}

	// --- Wire CLI package-level variables ---
	cli.Config = app.Config
	cli.Logger = app.Logger
	cli.Builder = app.Builder
	cli.Analyzer = app.Analyzer
	cli.Reconciler = app.Reconciler

	cli.EventLog = app.EventLog
	cli.AlertEngine = app.AlertEngine
	cli.MetricsCalc = app.MetricsCalc
	cli.Notifier = app.Notifier

	return app, nil
}

// Close releases resources held by the App, such as the event log file handle.
// It is safe to call Close on an App whose EventLog is nil.
func (a *App) Close() error {
	if a.EventLog != nil {
		if err := a.EventLog.Close(); err != nil {
			return fmt.Errorf("closing event log: %w", err)
		}
	}
	return nil
}

// ResolveProjectRoot determines the project root used for configuration
// lookup. It checks PHASESCOPE_ROOT, then walks up from the working
// directory to the first directory holding .phasescope.yaml or a specs/
// directory, and falls back to the working directory.
func ResolveProjectRoot() string {
	if root := os.Getenv(RootEnv); root != "" {
		return root
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	for dir := cwd; ; {
		if isProjectRoot(dir) {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return cwd
}

func isProjectRoot(dir string) bool {
	if _, err := os.Stat(filepath.Join(dir, core.ConfigFileName+".yaml")); err == nil {
		return true
	}
	info, err := os.Stat(filepath.Join(dir, "specs"))
	return err == nil && info.IsDir()
}
