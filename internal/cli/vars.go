package cli

import (
	"log/slog"

	"github.com/valter-silva-au/phasescope/internal/core"
	"github.com/valter-silva-au/phasescope/internal/observability"
	"github.com/valter-silva-au/phasescope/pkg/models"
)

// Engine and configuration, set during app initialization in app.go.
var (
	Config     *models.Config
	Logger     *slog.Logger
	Builder    core.SnapshotBuilder
	Analyzer   core.PhaseAnalyzer
	Reconciler core.SummaryReconciler
)

// Observability service instances, set during app initialization in app.go.
// Any of them may be nil when the event log is disabled or unavailable.
var (
	EventLog    observability.EventLog
	AlertEngine observability.AlertEngine
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier
)
