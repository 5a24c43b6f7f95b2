package core

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/valter-silva-au/phasescope/pkg/models"
)

func fullProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"specs/PRD.md":                          "# PRD\n",
		"specs/constitution.md":                 "# Constitution\n",
		"specs/features/FTR-001/spec.md":        "---\nid: FTR-001\nname: Login\n---\n",
		"specs/features/FTR-001/design-spec.md": "# Login design\n",
		"specs/features/FTR-002/spec.md":        "# FTR-002: Search\n",
		"specs/features/notes/spec.md":          "# Loose notes\n",
		"specs/design/design-system.md":         "# Design\n",
		"specs/architecture/overview.md":        "# Overview\n",
		"tasks/active/TASK-001.md":              "---\nid: TASK-001\nstatus: active\n---\n",
		"tasks/active/README.md":                "# How tasks work\n",
		"tasks/completed/TASK-002.md":           "# TASK-002: Done thing\n\n- **Status:** completed\n",
		"tasks/blocked/TASK-003.md":             "# TASK-003: Waiting\n",
	}
	for name, content := range files {
		writeFile(t, root, name, content)
	}
	return root
}

func TestBuild_AssemblesSnapshot(t *testing.T) {
	root := fullProject(t)
	snap := NewSnapshotBuilder(nil).Build(root)

	if snap.Root != filepath.Clean(root) {
		t.Errorf("Root = %q", snap.Root)
	}
	if snap.ScannedAt.IsZero() {
		t.Error("ScannedAt should be set")
	}
	if !snap.HasPRD() || !snap.HasConstitution() {
		t.Error("expected PRD and constitution")
	}
	if len(snap.Features) != 2 {
		t.Fatalf("got %d features, want 2 (folder without id skipped)", len(snap.Features))
	}
	if f := snap.Features[0]; f.ID != "FTR-001" || !f.HasDesignSpec || f.DesignSpecPath != "specs/features/FTR-001/design-spec.md" {
		t.Errorf("first feature = %+v", f)
	}
	if f := snap.Features[1]; f.ID != "FTR-002" || f.SourcePath != "specs/features/FTR-002/spec.md" {
		t.Errorf("second feature = %+v", f)
	}

	if len(snap.Tasks.Active) != 1 || snap.Tasks.Active[0].SourcePath != "tasks/active/TASK-001.md" {
		t.Errorf("active tasks = %+v (document without id should be skipped)", snap.Tasks.Active)
	}
	if len(snap.Tasks.Completed) != 1 || snap.Tasks.Completed[0].Title != "Done thing" {
		t.Errorf("completed tasks = %+v", snap.Tasks.Completed)
	}
	if len(snap.Tasks.Blocked) != 1 || snap.Tasks.Blocked[0].Status != models.StatusPending {
		t.Errorf("blocked tasks = %+v (inline status defaults to pending)", snap.Tasks.Blocked)
	}
	if !snap.DesignSystem.Exists || !snap.Architecture.Exists {
		t.Error("expected design system and architecture")
	}
}

func TestBuild_EmptyRoot(t *testing.T) {
	snap := BuildSnapshot(t.TempDir())

	if snap.Features == nil || snap.Tasks.Active == nil || snap.Tasks.Completed == nil || snap.Tasks.Blocked == nil {
		t.Error("lists must be non-nil")
	}
	if snap.TokenUsage == nil {
		t.Error("TokenUsage must be non-nil")
	}
	if snap.HasPRD() || snap.Progress != nil {
		t.Error("nothing should be present")
	}
}

func TestBuild_MissingRoot(t *testing.T) {
	snap := BuildSnapshot(filepath.Join(t.TempDir(), "does-not-exist"))
	if len(snap.Features) != 0 || snap.Tasks.Total() != 0 {
		t.Errorf("missing root should scan as empty, got %+v", snap)
	}
}

func TestBuild_LogsSkippedDocuments(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	NewSnapshotBuilder(logger).Build(fullProject(t))

	out := buf.String()
	if !strings.Contains(out, "skipping task document without id") || !strings.Contains(out, "tasks/active/README.md") {
		t.Errorf("expected skipped task to be logged:\n%s", out)
	}
	if !strings.Contains(out, "skipping feature document without id") {
		t.Errorf("expected skipped feature to be logged:\n%s", out)
	}
}

func TestSafeProbe_RecoversPanic(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	got := safeProbe(logger, "boom", []string{"fallback"}, func() []string {
		panic("probe exploded")
	})
	if len(got) != 1 || got[0] != "fallback" {
		t.Errorf("safeProbe() = %v, want fallback", got)
	}
	if !strings.Contains(buf.String(), "probe failed") || !strings.Contains(buf.String(), "boom") {
		t.Errorf("expected recovered panic to be logged:\n%s", buf.String())
	}
}

func TestBuild_UsesInjectedClock(t *testing.T) {
	at := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	b := &snapshotBuilder{logger: discardLogger(), now: func() time.Time { return at }}

	if snap := b.Build(t.TempDir()); !snap.ScannedAt.Equal(at) {
		t.Errorf("ScannedAt = %s, want %s", snap.ScannedAt, at)
	}
}
