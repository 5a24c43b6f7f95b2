package core

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/sourcegraph/conc/panics"

	"github.com/valter-silva-au/phasescope/pkg/models"
)

// SnapshotBuilder assembles a ProjectSnapshot from a project root.
type SnapshotBuilder interface {
	// Build scans root from scratch and returns the snapshot. It never
	// fails: missing or malformed artifacts read as absent.
	Build(root string) models.ProjectSnapshot
}

type snapshotBuilder struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewSnapshotBuilder creates a SnapshotBuilder that reports skipped files
// and recovered probe failures to logger. A nil logger discards them.
func NewSnapshotBuilder(logger *slog.Logger) SnapshotBuilder {
	if logger == nil {
		logger = discardLogger()
	}
	return &snapshotBuilder{logger: logger, now: time.Now}
}

// BuildSnapshot scans root with a builder that does not log.
func BuildSnapshot(root string) models.ProjectSnapshot {
	return NewSnapshotBuilder(nil).Build(root)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (b *snapshotBuilder) Build(root string) models.ProjectSnapshot {
	root = filepath.Clean(root)
	log := b.logger.With("root", root)

	snap := models.ProjectSnapshot{
		Root:      root,
		ScannedAt: b.now().UTC(),
	}

	snap.PRD = safeProbe(log, "prd", nil, func() *string { return ProbePRD(root) })
	snap.Constitution = safeProbe(log, "constitution", nil, func() *string { return ProbeConstitution(root) })
	snap.Features = safeProbe(log, "features", []models.Feature{}, func() []models.Feature { return b.features(log, root) })
	snap.Tasks = safeProbe(log, "tasks", emptyTaskLists(), func() models.TaskLists { return b.tasks(log, root) })
	snap.Progress = safeProbe(log, "progress", nil, func() *models.ProgressData { return ProbeProgress(root) })
	snap.TokenUsage = safeProbe(log, "token-usage", []models.TokenUsageRecord{}, func() []models.TokenUsageRecord { return ProbeTokenUsage(root) })

	snap.DesignSystem = safeProbe(log, "design-system", models.DesignSystemInfo{Sections: []string{}}, func() models.DesignSystemInfo { return ProbeDesignSystem(root) })
	snap.DesignTokens = safeProbe(log, "design-tokens", emptyFileSet(), func() models.FileSetInfo { return ProbeDesignTokens(root) })
	snap.UXResearch = safeProbe(log, "ux-research", models.DocumentInfo{}, func() models.DocumentInfo { return ProbeUXResearch(root) })
	snap.ComponentSpecs = safeProbe(log, "component-specs", emptyFileSet(), func() models.FileSetInfo { return ProbeComponentSpecs(root) })
	snap.Architecture = safeProbe(log, "architecture", emptyArchitecture(), func() models.ArchitectureInfo { return ProbeArchitecture(root) })
	snap.Epics = safeProbe(log, "epics", models.EpicsInfo{Epics: []models.Epic{}}, func() models.EpicsInfo { return ProbeEpics(root) })
	snap.Research = safeProbe(log, "research", emptyResearch(), func() models.ResearchInfo { return ProbeResearch(root) })

	emptyJSON := models.JSONDocumentInfo{Keys: []string{}}
	snap.QAReport = safeProbe(log, "qa-report", emptyJSON, func() models.JSONDocumentInfo { return ProbeQAReport(root) })
	snap.ReviewReport = safeProbe(log, "review-report", emptyJSON, func() models.JSONDocumentInfo { return ProbeReviewReport(root) })
	snap.Metrics = safeProbe(log, "metrics", emptyJSON, func() models.JSONDocumentInfo { return ProbeMetrics(root) })
	snap.Checkpoint = safeProbe(log, "checkpoint", emptyJSON, func() models.JSONDocumentInfo { return ProbeCheckpoint(root) })
	snap.Config = safeProbe(log, "config", emptyJSON, func() models.JSONDocumentInfo { return ProbeConfig(root) })
	snap.FinalReport = safeProbe(log, "final-report", models.DocumentInfo{}, func() models.DocumentInfo { return ProbeFinalReport(root) })
	snap.E2ETests = safeProbe(log, "e2e-tests", emptyE2E(), func() models.E2ETestsInfo { return ProbeE2ETests(root) })

	return snap
}

// tasks parses tasks/<folder>/*.md for every folder in lexical file order.
func (b *snapshotBuilder) tasks(log *slog.Logger, root string) models.TaskLists {
	lists := emptyTaskLists()
	for _, folder := range models.AllTaskFolders() {
		dir := filepath.Join(root, tasksDir, string(folder))
		parsed := make([]models.Task, 0)
		for _, name := range listFiles(dir, isMarkdown) {
			path := filepath.Join(dir, name)
			t := ParseTask(path)
			if t == nil {
				log.Debug("skipping task document without id", "path", relPath(root, path))
				continue
			}
			t.SourcePath = relPath(root, path)
			parsed = append(parsed, *t)
		}
		switch folder {
		case models.FolderActive:
			lists.Active = parsed
		case models.FolderCompleted:
			lists.Completed = parsed
		case models.FolderBlocked:
			lists.Blocked = parsed
		}
	}
	return lists
}

// features parses specs/features/<dir>/spec.md for every feature folder.
func (b *snapshotBuilder) features(log *slog.Logger, root string) []models.Feature {
	base := filepath.Join(root, featuresDir)
	features := []models.Feature{}
	for _, dir := range listDirs(base) {
		path := filepath.Join(base, dir, "spec.md")
		f := ParseFeature(path)
		if f == nil {
			log.Debug("skipping feature document without id", "path", relPath(root, path))
			continue
		}
		f.SourcePath = relPath(root, path)
		if f.DesignSpecPath != "" {
			f.DesignSpecPath = relPath(root, f.DesignSpecPath)
		}
		features = append(features, *f)
	}
	return features
}

// safeProbe runs probe and returns fallback if it panics.
func safeProbe[T any](log *slog.Logger, name string, fallback T, probe func() T) T {
	var (
		catcher panics.Catcher
		out     T
	)
	catcher.Try(func() {
		out = probe()
	})
	if r := catcher.Recovered(); r != nil {
		log.LogAttrs(context.Background(), slog.LevelWarn, "probe failed",
			slog.String("probe", name),
			slog.String("error", r.AsError().Error()),
		)
		return fallback
	}
	return out
}

func emptyTaskLists() models.TaskLists {
	return models.TaskLists{
		Active:    []models.Task{},
		Completed: []models.Task{},
		Blocked:   []models.Task{},
	}
}

func emptyFileSet() models.FileSetInfo {
	return models.FileSetInfo{Files: []string{}}
}

func emptyArchitecture() models.ArchitectureInfo {
	return models.ArchitectureInfo{
		Docs: []models.ArchitectureDoc{},
		Counts: map[models.ArchitectureDocKind]int{
			models.ArchOverview: 0,
			models.ArchADR:      0,
			models.ArchDiagram:  0,
			models.ArchGeneric:  0,
		},
	}
}

func emptyResearch() models.ResearchInfo {
	return models.ResearchInfo{ProjectFiles: []string{}, Sessions: []models.ResearchSession{}}
}

func emptyE2E() models.E2ETestsInfo {
	return models.E2ETestsInfo{TestFiles: []string{}, FeatureFiles: []string{}}
}
