package core

import (
	"fmt"

	"github.com/valter-silva-au/phasescope/pkg/models"
)

// PhaseAnalyzer derives the pipeline phase state from a snapshot.
type PhaseAnalyzer interface {
	Analyze(snap models.ProjectSnapshot) models.PhaseState
}

type phaseAnalyzer struct{}

// NewPhaseAnalyzer creates a PhaseAnalyzer.
func NewPhaseAnalyzer() PhaseAnalyzer {
	return &phaseAnalyzer{}
}

// AnalyzePhases is shorthand for NewPhaseAnalyzer().Analyze(snap).
func AnalyzePhases(snap models.ProjectSnapshot) models.PhaseState {
	return NewPhaseAnalyzer().Analyze(snap)
}

// Analyze evaluates every phase in pipeline order. Completion of a phase
// depends only on its own evidence; in-progress flags may also look at
// the previous phase. The current phase is the first incomplete one, or
// report once all nine are complete.
func (a *phaseAnalyzer) Analyze(snap models.ProjectSnapshot) models.PhaseState {
	tasks := countTasks(snap.Tasks)
	features := len(snap.Features)
	withDesign := snap.FeaturesWithDesignSpec()
	verified := AllFeaturesVerified(snap.Progress)

	discover := models.PhaseStatus{Phase: models.PhaseDiscover, Artifacts: []string{}}
	discover.Completed = snap.HasPRD() && snap.HasConstitution()
	discover.InProgress = snap.HasPRD() && !snap.HasConstitution()
	if snap.HasPRD() {
		discover.Artifacts = append(discover.Artifacts, "PRD")
	}
	if snap.HasConstitution() {
		discover.Artifacts = append(discover.Artifacts, "constitution")
	}

	design := models.PhaseStatus{Phase: models.PhaseDesignSystem, Artifacts: []string{}}
	design.Completed = snap.DesignSystem.Exists
	design.InProgress = discover.Completed && !design.Completed
	if snap.DesignSystem.Exists {
		design.Artifacts = append(design.Artifacts, "design system")
		if snap.DesignSystem.Philosophy != "" {
			design.Artifacts = append(design.Artifacts, "philosophy: "+snap.DesignSystem.Philosophy)
		}
		if snap.DesignSystem.AnimationTier != "" {
			design.Artifacts = append(design.Artifacts, "animation tier: "+snap.DesignSystem.AnimationTier)
		}
	}
	if snap.DesignTokens.Exists {
		design.Artifacts = append(design.Artifacts, plural(snap.DesignTokens.Count, "design token file"))
	}
	if snap.UXResearch.Exists {
		design.Artifacts = append(design.Artifacts, "UX research")
	}
	if snap.ComponentSpecs.Exists {
		design.Artifacts = append(design.Artifacts, plural(snap.ComponentSpecs.Count, "component spec"))
	}

	specs := models.PhaseStatus{Phase: models.PhaseSpecs, Artifacts: []string{}}
	specs.Completed = features > 0 && snap.Architecture.Exists
	specs.InProgress = design.Completed && !specs.Completed && features > 0
	if features > 0 {
		specs.Artifacts = append(specs.Artifacts, plural(features, "feature spec"))
	}
	if snap.Architecture.Exists {
		specs.Artifacts = append(specs.Artifacts, plural(len(snap.Architecture.Docs), "architecture doc"))
	}
	if snap.Epics.Exists {
		specs.Artifacts = append(specs.Artifacts, plural(len(snap.Epics.Epics), "epic"))
	}

	featureDesign := models.PhaseStatus{Phase: models.PhaseFeatureDesign, Artifacts: []string{}}
	featureDesign.Completed = features > 0 && withDesign == features
	featureDesign.InProgress = specs.Completed && withDesign > 0 && withDesign < features
	if features > 0 {
		featureDesign.Artifacts = append(featureDesign.Artifacts,
			fmt.Sprintf("%d/%d features with design spec", withDesign, features))
	}

	tasksPhase := models.PhaseStatus{Phase: models.PhaseTasks, Artifacts: []string{}}
	tasksPhase.Completed = tasks.total > 0 && tasks.active > 0
	tasksPhase.InProgress = featureDesign.Completed && !tasksPhase.Completed
	if tasks.total > 0 {
		tasksPhase.Artifacts = append(tasksPhase.Artifacts,
			fmt.Sprintf("%s (%d active, %d completed, %d blocked)",
				plural(tasks.total, "task"), tasks.active, tasks.completedFolder, tasks.blocked))
	}

	implement := models.PhaseStatus{Phase: models.PhaseImplement, Artifacts: []string{}}
	done := tasks.completed()
	implement.Completed = verified || (done > 0 && tasks.remaining() == 0 && tasks.blocked == 0)
	implement.InProgress = tasksPhase.Completed &&
		(done > 0 || VerifiedFeatureCount(snap.Progress) > 0) &&
		!implement.Completed
	if tasks.total > 0 {
		implement.Artifacts = append(implement.Artifacts, fmt.Sprintf("%d/%d tasks completed", done, tasks.total))
	}
	if verified {
		implement.Artifacts = append(implement.Artifacts, "all features verified")
	}

	quality := models.PhaseStatus{Phase: models.PhaseQuality, Artifacts: []string{}}
	quality.Completed = snap.QAReport.Exists || snap.ReviewReport.Exists
	quality.InProgress = implement.Completed && !quality.Completed
	if snap.QAReport.Exists {
		quality.Artifacts = append(quality.Artifacts, "QA report")
	}
	if snap.ReviewReport.Exists {
		quality.Artifacts = append(quality.Artifacts, "review report")
	}
	if snap.Metrics.Exists {
		quality.Artifacts = append(quality.Artifacts, "metrics")
	}

	verify := models.PhaseStatus{Phase: models.PhaseVerify, Artifacts: []string{}}
	verify.Completed = snap.E2ETests.Exists && quality.Completed
	verify.InProgress = quality.Completed && !verify.Completed
	if snap.E2ETests.Exists {
		verify.Artifacts = append(verify.Artifacts, plural(len(snap.E2ETests.TestFiles), "e2e test file"))
	}
	if snap.E2ETests.HasFixtures {
		verify.Artifacts = append(verify.Artifacts, "e2e fixtures")
	}

	report := models.PhaseStatus{Phase: models.PhaseReport, Artifacts: []string{}}
	report.Completed = snap.FinalReport.Exists
	report.InProgress = verify.Completed && !report.Completed
	if snap.FinalReport.Exists {
		report.Artifacts = append(report.Artifacts, "final report")
	}

	state := models.PhaseState{
		Phases: []models.PhaseStatus{
			discover, design, specs, featureDesign, tasksPhase,
			implement, quality, verify, report,
		},
	}
	state.CurrentPhase = currentPhase(state.Phases)
	return state
}

// currentPhase returns the first incomplete phase. In-progress flags are
// not consulted.
func currentPhase(phases []models.PhaseStatus) models.Phase {
	for _, p := range phases {
		if !p.Completed {
			return p.Phase
		}
	}
	return models.PhaseReport
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
