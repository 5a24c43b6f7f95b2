package core

import (
	"reflect"
	"testing"
	"time"

	"github.com/valter-silva-au/phasescope/pkg/models"
)

func TestProbes_EmptyRoot(t *testing.T) {
	root := t.TempDir()

	if ProbePRD(root) != nil || ProbeConstitution(root) != nil {
		t.Error("text probes should return nil for a missing file")
	}
	if ProbeProgress(root) != nil {
		t.Error("ProbeProgress should return nil without status.json")
	}

	if ds := ProbeDesignSystem(root); ds.Exists || ds.Sections == nil {
		t.Errorf("ProbeDesignSystem = %+v, want absent with non-nil sections", ds)
	}
	for name, fs := range map[string]models.FileSetInfo{
		"tokens":     ProbeDesignTokens(root),
		"components": ProbeComponentSpecs(root),
	} {
		if fs.Exists || fs.Files == nil || fs.Count != 0 {
			t.Errorf("%s = %+v, want absent with empty files", name, fs)
		}
	}
	for name, doc := range map[string]models.DocumentInfo{
		"ux-research":  ProbeUXResearch(root),
		"final-report": ProbeFinalReport(root),
	} {
		if doc.Exists {
			t.Errorf("%s should be absent", name)
		}
	}
	if arch := ProbeArchitecture(root); arch.Exists || arch.Docs == nil || len(arch.Counts) != 4 {
		t.Errorf("ProbeArchitecture = %+v, want absent with zeroed counts", arch)
	}
	if epics := ProbeEpics(root); epics.Exists || epics.Epics == nil {
		t.Errorf("ProbeEpics = %+v", epics)
	}
	if r := ProbeResearch(root); r.Exists || r.ProjectFiles == nil || r.Sessions == nil {
		t.Errorf("ProbeResearch = %+v", r)
	}
	for name, doc := range map[string]models.JSONDocumentInfo{
		"qa":         ProbeQAReport(root),
		"review":     ProbeReviewReport(root),
		"metrics":    ProbeMetrics(root),
		"checkpoint": ProbeCheckpoint(root),
		"config":     ProbeConfig(root),
	} {
		if doc.Exists || doc.Keys == nil {
			t.Errorf("%s = %+v, want absent with empty keys", name, doc)
		}
	}
	if e2e := ProbeE2ETests(root); e2e.Exists || e2e.TestFiles == nil || e2e.FeatureFiles == nil {
		t.Errorf("ProbeE2ETests = %+v", e2e)
	}
	if usage := ProbeTokenUsage(root); usage == nil || len(usage) != 0 {
		t.Errorf("ProbeTokenUsage = %#v, want empty non-nil", usage)
	}
}

func TestClassifyArchitectureDoc(t *testing.T) {
	tests := []struct {
		rel  string
		want models.ArchitectureDocKind
	}{
		{"overview.md", models.ArchOverview},
		{"README.md", models.ArchOverview},
		{"system-overview.md", models.ArchOverview},
		{"adr-001-use-go.md", models.ArchADR},
		{"0001-record-decisions.md", models.ArchADR},
		{"decisions/use-postgres.md", models.ArchADR},
		{"adr/nested/deep.md", models.ArchADR},
		{"c4-context.md", models.ArchDiagram},
		{"sequence-login.md", models.ArchDiagram},
		{"diagrams/flow.md", models.ArchDiagram},
		{"overview/data.md", models.ArchOverview},
		{"components/api.md", models.ArchGeneric},
		{"security.md", models.ArchGeneric},
	}
	for _, tt := range tests {
		if got := ClassifyArchitectureDoc(tt.rel); got != tt.want {
			t.Errorf("ClassifyArchitectureDoc(%q) = %s, want %s", tt.rel, got, tt.want)
		}
	}
}

func TestProbeArchitecture_Recursive(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "specs/architecture/overview.md", "# System Overview\n")
	writeFile(t, root, "specs/architecture/adr/0001-use-go.md", "# Use Go\n")
	writeFile(t, root, "specs/architecture/adr/2024/0002-sqlite.md", "# SQLite\n")
	writeFile(t, root, "specs/architecture/diagrams/context.md", "# Context\n")
	writeFile(t, root, "specs/architecture/notes.txt", "not markdown")

	arch := ProbeArchitecture(root)
	if !arch.Exists {
		t.Fatal("expected architecture to exist")
	}
	if len(arch.Docs) != 4 {
		t.Fatalf("got %d docs, want 4: %+v", len(arch.Docs), arch.Docs)
	}
	want := map[models.ArchitectureDocKind]int{
		models.ArchOverview: 1,
		models.ArchADR:      2,
		models.ArchDiagram:  1,
		models.ArchGeneric:  0,
	}
	if !reflect.DeepEqual(arch.Counts, want) {
		t.Errorf("Counts = %v, want %v", arch.Counts, want)
	}
	for _, d := range arch.Docs {
		if d.Path == "specs/architecture/overview.md" && d.Title != "System Overview" {
			t.Errorf("overview title = %q", d.Title)
		}
	}
}

func TestParseResearchSessionName(t *testing.T) {
	s := ParseResearchSessionName("MARKET-20250101120000")
	if s.ID != "MARKET-20250101120000" || s.Type != "MARKET" {
		t.Errorf("got id %q type %q", s.ID, s.Type)
	}
	if want := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC); !s.Timestamp.Equal(want) {
		t.Errorf("Timestamp = %s, want %s", s.Timestamp, want)
	}

	for _, name := range []string{"notes", "MARKET-2025", "20250101120000"} {
		s := ParseResearchSessionName(name)
		if s.ID != name || s.Type != models.ResearchTypeUnknown || !s.Timestamp.IsZero() {
			t.Errorf("ParseResearchSessionName(%q) = %+v, want UNKNOWN record", name, s)
		}
	}
}

func TestProbeResearch(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "research/project/market.md", "# Market\n")
	writeFile(t, root, "research/sessions/TECH-20250301090000/findings.md", "# Findings\n")
	writeFile(t, root, "research/sessions/misc/notes.md", "notes")

	r := ProbeResearch(root)
	if !r.Exists {
		t.Fatal("expected research to exist")
	}
	if want := []string{"research/project/market.md"}; !reflect.DeepEqual(r.ProjectFiles, want) {
		t.Errorf("ProjectFiles = %q", r.ProjectFiles)
	}
	if len(r.Sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(r.Sessions))
	}
	if r.Sessions[0].Type != "TECH" || r.Sessions[0].Path != "research/sessions/TECH-20250301090000" {
		t.Errorf("first session = %+v", r.Sessions[0])
	}
	if want := []string{"research/sessions/TECH-20250301090000/findings.md"}; !reflect.DeepEqual(r.Sessions[0].Files, want) {
		t.Errorf("session files = %q", r.Sessions[0].Files)
	}
	if r.Sessions[1].Type != models.ResearchTypeUnknown {
		t.Errorf("second session type = %q, want UNKNOWN", r.Sessions[1].Type)
	}
}

func TestProbeProgress_InvalidJSON(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "progress/status.json", "{not json")
	if p := ProbeProgress(root); p != nil {
		t.Errorf("expected nil for corrupt status.json, got %+v", p)
	}
}

func TestProbeProgress_DecodesBlocksIndependently(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "progress/status.json", `{
  "features": {"FTR-001": "verified", "FTR-002": {"status": "Complete"}},
  "tasks": {"TASK-001": "done"},
  "status": "in-progress",
  "summary": "not an object"
}`)

	p := ProbeProgress(root)
	if p == nil {
		t.Fatal("expected progress data")
	}
	if len(p.Features) != 2 || p.Features["FTR-002"].Normalized() != "complete" {
		t.Errorf("Features = %v", p.Features)
	}
	if p.Tasks["TASK-001"] != "done" {
		t.Errorf("Tasks = %v", p.Tasks)
	}
	if p.Status != "in-progress" {
		t.Errorf("Status = %q", p.Status)
	}
	if p.Summary != nil {
		t.Errorf("malformed summary block should be dropped, got %+v", p.Summary)
	}
	if !AllFeaturesVerified(p) {
		t.Error("every feature is verified or complete")
	}
}

func TestProbeTokenUsage(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "progress/token-usage/a.json", `[
  {"input_tokens": 100, "output_tokens": 50, "cost": "$0.25", "model": "m1"},
  {"promptTokens": 10, "completionTokens": 5, "totalTokens": 20, "timestamp": "2026-01-02T03:04:05Z"}
]`)
	writeFile(t, root, "progress/token-usage/b.json", `{"inputTokens": 1, "outputTokens": 2, "costUSD": 0.5}`)
	writeFile(t, root, "progress/token-usage/c.json", `oops`)
	writeFile(t, root, "progress/token-usage/notes.txt", `{"inputTokens": 999}`)

	records := ProbeTokenUsage(root)
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3: %+v", len(records), records)
	}
	if r := records[0]; r.InputTokens != 100 || r.OutputTokens != 50 || r.TotalTokens != 150 || r.CostUSD != 0.25 || r.Model != "m1" {
		t.Errorf("first record = %+v", r)
	}
	if r := records[1]; r.TotalTokens != 20 || r.Timestamp.IsZero() {
		t.Errorf("second record = %+v", r)
	}
	if r := records[2]; r.Source != "progress/token-usage/b.json" || r.CostUSD != 0.5 {
		t.Errorf("third record = %+v", r)
	}
}

func TestProbeDesignSystem(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "specs/design/design-system.md", `# Design System

**Design Philosophy:** Calm and minimal

## Colors
Primary is blue.

## Animation Tier

Tier 2 (subtle)

## Typography
`)

	ds := ProbeDesignSystem(root)
	if !ds.Exists {
		t.Fatal("expected design system to exist")
	}
	if ds.Philosophy != "Calm and minimal" {
		t.Errorf("Philosophy = %q", ds.Philosophy)
	}
	if ds.AnimationTier != "Tier 2 (subtle)" {
		t.Errorf("AnimationTier = %q", ds.AnimationTier)
	}
	if want := []string{"Colors", "Animation Tier", "Typography"}; !reflect.DeepEqual(ds.Sections, want) {
		t.Errorf("Sections = %q, want %q", ds.Sections, want)
	}
}

func TestProbeDesignSystem_HeadingWithValue(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "specs/design/design-system.md", "## Philosophy: Bold\n\nAnimation tier: 3\n")

	ds := ProbeDesignSystem(root)
	if ds.Philosophy != "Bold" {
		t.Errorf("Philosophy = %q, want Bold", ds.Philosophy)
	}
	if ds.AnimationTier != "3" {
		t.Errorf("AnimationTier = %q, want 3", ds.AnimationTier)
	}
}

func TestProbeE2ETests(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "tests/e2e/login.spec.ts", "")
	writeFile(t, root, "tests/e2e/flows/checkout.test.js", "")
	writeFile(t, root, "tests/e2e/helpers.ts", "")
	writeFile(t, root, "tests/e2e/fixtures/user.json", "{}")
	writeFile(t, root, "tests/e2e/features/login.feature", "Feature: Login")

	e2e := ProbeE2ETests(root)
	if !e2e.Exists || !e2e.HasFixtures || !e2e.HasFeatures {
		t.Errorf("flags = %+v", e2e)
	}
	if want := []string{"tests/e2e/flows/checkout.test.js", "tests/e2e/login.spec.ts"}; !reflect.DeepEqual(e2e.TestFiles, want) {
		t.Errorf("TestFiles = %q, want %q", e2e.TestFiles, want)
	}
	if want := []string{"tests/e2e/features/login.feature"}; !reflect.DeepEqual(e2e.FeatureFiles, want) {
		t.Errorf("FeatureFiles = %q", e2e.FeatureFiles)
	}
}

func TestProbeE2ETests_FixturesOnlyIsAbsent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "tests/e2e/fixtures/user.json", "{}")

	e2e := ProbeE2ETests(root)
	if e2e.Exists {
		t.Error("e2e tests should be absent without test files")
	}
	if !e2e.HasFixtures {
		t.Error("expected HasFixtures")
	}
}

func TestProbeEpics(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "specs/epics/EPIC-001-auth.md", "# Authentication\n")
	writeFile(t, root, "specs/epics/roadmap.md", "no heading")

	epics := ProbeEpics(root)
	want := []models.Epic{
		{ID: "EPIC-001", Title: "Authentication", Path: "specs/epics/EPIC-001-auth.md"},
		{ID: "roadmap", Title: "roadmap", Path: "specs/epics/roadmap.md"},
	}
	if !epics.Exists || !reflect.DeepEqual(epics.Epics, want) {
		t.Errorf("ProbeEpics = %+v, want %+v", epics.Epics, want)
	}
}

func TestProbeJSONDocument(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "progress/qa-report.json", `{"passed": 3, "failed": 0}`)
	writeFile(t, root, "progress/review-report.json", `[1, 2]`)

	qa := ProbeQAReport(root)
	if !qa.Exists || !reflect.DeepEqual(qa.Keys, []string{"failed", "passed"}) {
		t.Errorf("ProbeQAReport = %+v", qa)
	}
	if review := ProbeReviewReport(root); review.Exists {
		t.Error("a JSON array is not a report object")
	}
}

func TestProbeFileSets(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "specs/design/tokens/colors.json", "{}")
	writeFile(t, root, "specs/design/tokens/.hidden", "")
	writeFile(t, root, "specs/design/components/button.md", "# Button\n")
	writeFile(t, root, "specs/design/components/button.png", "")

	tokens := ProbeDesignTokens(root)
	if want := []string{"specs/design/tokens/colors.json"}; !reflect.DeepEqual(tokens.Files, want) || tokens.Count != 1 {
		t.Errorf("tokens = %+v", tokens)
	}
	components := ProbeComponentSpecs(root)
	if want := []string{"specs/design/components/button.md"}; !reflect.DeepEqual(components.Files, want) {
		t.Errorf("components = %+v", components)
	}
}
