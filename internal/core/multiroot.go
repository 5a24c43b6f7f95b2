package core

import (
	"context"

	"github.com/sourcegraph/conc/iter"

	"github.com/valter-silva-au/phasescope/pkg/models"
)

// RootScan is the result of scanning one project root.
type RootScan struct {
	Root     string                      `json:"root"`
	Snapshot models.ProjectSnapshot      `json:"-"`
	Phases   models.PhaseState           `json:"phases"`
	Summary  models.ComprehensiveSummary `json:"summary"`
	// Err is set when the context was cancelled before the root was scanned.
	Err error `json:"-"`
}

// ScanRoots builds, analyzes and reconciles several project roots in
// parallel. Results are returned in the order of roots. Roots not yet
// started when ctx is cancelled carry ctx.Err().
func ScanRoots(ctx context.Context, builder SnapshotBuilder, roots []string) []RootScan {
	analyzer := NewPhaseAnalyzer()
	reconciler := NewSummaryReconciler()

	return iter.Map(roots, func(root *string) RootScan {
		if err := ctx.Err(); err != nil {
			return RootScan{Root: *root, Err: err}
		}
		snap := builder.Build(*root)
		return RootScan{
			Root:     snap.Root,
			Snapshot: snap,
			Phases:   analyzer.Analyze(snap),
			Summary:  reconciler.Reconcile(snap),
		}
	})
}
