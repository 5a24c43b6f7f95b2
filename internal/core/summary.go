package core

import "github.com/valter-silva-au/phasescope/pkg/models"

// SummaryReconciler reduces a snapshot to aggregate counts and flags.
type SummaryReconciler interface {
	Reconcile(snap models.ProjectSnapshot) models.ComprehensiveSummary
}

type summaryReconciler struct{}

// NewSummaryReconciler creates a SummaryReconciler.
func NewSummaryReconciler() SummaryReconciler {
	return &summaryReconciler{}
}

// ReconcileSummary is shorthand for NewSummaryReconciler().Reconcile(snap).
func ReconcileSummary(snap models.ProjectSnapshot) models.ComprehensiveSummary {
	return NewSummaryReconciler().Reconcile(snap)
}

// Reconcile counts tasks by folder, credits active-folder tasks whose
// inline status is completed, and forces completion when progress data
// reports every feature verified.
func (r *summaryReconciler) Reconcile(snap models.ProjectSnapshot) models.ComprehensiveSummary {
	tasks := countTasks(snap.Tasks)

	s := models.ComprehensiveSummary{
		TotalFeatures:          len(snap.Features),
		FeaturesWithDesignSpec: snap.FeaturesWithDesignSpec(),
		VerifiedFeatures:       VerifiedFeatureCount(snap.Progress),

		TotalTasks:     tasks.total,
		CompletedTasks: tasks.completed(),
		BlockedTasks:   tasks.blocked,
		ActiveTasks:    max(tasks.remaining(), 0),

		HasPRD:            snap.HasPRD(),
		HasConstitution:   snap.HasConstitution(),
		HasDesignSystem:   snap.DesignSystem.Exists,
		HasDesignTokens:   snap.DesignTokens.Exists,
		HasUXResearch:     snap.UXResearch.Exists,
		ComponentSpecs:    snap.ComponentSpecs.Count,
		HasArchitecture:   snap.Architecture.Exists,
		ArchitectureDocs:  len(snap.Architecture.Docs),
		Epics:             len(snap.Epics.Epics),
		ResearchSessions:  len(snap.Research.Sessions),
		HasQAReport:       snap.QAReport.Exists,
		HasReviewReport:   snap.ReviewReport.Exists,
		HasMetrics:        snap.Metrics.Exists,
		HasCheckpoint:     snap.Checkpoint.Exists,
		HasFinalReport:    snap.FinalReport.Exists,
		HasE2ETests:       snap.E2ETests.Exists,
		E2ETestFiles:      len(snap.E2ETests.TestFiles),
		HasConfig:         snap.Config.Exists,
		HasProgressStatus: snap.Progress != nil,

		TokenUsage: sumTokens(snap.TokenUsage),
	}

	if tasks.total > 0 && AllFeaturesVerified(snap.Progress) {
		s.VerificationOverride = true
		s.CompletedTasks = tasks.total
		s.ActiveTasks = 0
	}
	return s
}

func sumTokens(records []models.TokenUsageRecord) models.TokenTotals {
	t := models.TokenTotals{Records: len(records)}
	for _, r := range records {
		t.InputTokens += r.InputTokens
		t.OutputTokens += r.OutputTokens
		t.TotalTokens += r.TotalTokens
		t.CostUSD += r.CostUSD
	}
	return t
}
