package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/valter-silva-au/phasescope/pkg/models"
)

const waitTimeout = 5 * time.Second

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func receive(t *testing.T, updates <-chan Update) Update {
	t.Helper()
	select {
	case u, ok := <-updates:
		if !ok {
			t.Fatal("update channel closed")
		}
		return u
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for update")
	}
	return Update{}
}

func startWatcher(t *testing.T, root string) (ProjectWatcher, <-chan Update) {
	t.Helper()
	w := NewProjectWatcher(WatcherConfig{Root: root, Debounce: 20 * time.Millisecond})
	updates, err := w.Start(context.Background())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { _ = w.Stop() })
	return w, updates
}

func TestWatcher_InitialUpdate(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "specs/PRD.md", "# PRD\n")

	_, updates := startWatcher(t, root)
	u := receive(t, updates)

	if !u.Initial {
		t.Error("first update should be marked initial")
	}
	if u.Phases.CurrentPhase != models.PhaseDiscover {
		t.Errorf("CurrentPhase = %s, want discover", u.Phases.CurrentPhase)
	}
	if u.Fingerprint == "" {
		t.Error("Fingerprint should be set")
	}
}

func TestWatcher_ChangeEmitsUpdate(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "specs/PRD.md", "# PRD\n")

	_, updates := startWatcher(t, root)
	first := receive(t, updates)

	writeFile(t, root, "specs/constitution.md", "# Constitution\n")
	u := receive(t, updates)

	if u.Initial {
		t.Error("rescan should not be marked initial")
	}
	if u.Fingerprint == first.Fingerprint {
		t.Error("fingerprint should change after adding a document")
	}
	if u.Phases.CurrentPhase != models.PhaseDesignSystem {
		t.Errorf("CurrentPhase = %s, want design-system", u.Phases.CurrentPhase)
	}
}

func TestWatcher_NewDirectoryIsWatched(t *testing.T) {
	root := t.TempDir()
	_, updates := startWatcher(t, root)
	receive(t, updates)

	writeFile(t, root, "tasks/active/TASK-001.md", "---\nid: TASK-001\n---\n")
	u := receive(t, updates)

	if u.Summary.TotalTasks != 1 {
		t.Errorf("TotalTasks = %d, want 1", u.Summary.TotalTasks)
	}
}

func TestWatcher_StopClosesChannel(t *testing.T) {
	root := t.TempDir()
	w, updates := startWatcher(t, root)
	receive(t, updates)

	if err := w.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Fatalf("second Stop() error = %v", err)
	}

	select {
	case _, ok := <-updates:
		if ok {
			t.Error("expected closed channel after Stop")
		}
	case <-time.After(waitTimeout):
		t.Fatal("channel not closed after Stop")
	}
}

func TestWatcher_ContextCancelStops(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	w := NewProjectWatcher(WatcherConfig{Root: root})
	updates, err := w.Start(ctx)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	receive(t, updates)
	cancel()

	select {
	case _, ok := <-updates:
		if ok {
			t.Error("expected closed channel after cancel")
		}
	case <-time.After(waitTimeout):
		t.Fatal("channel not closed after cancel")
	}
}

func TestWatcher_StartErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")
	if _, err := NewProjectWatcher(WatcherConfig{Root: missing}).Start(context.Background()); err == nil {
		t.Error("expected error for missing root")
	}

	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewProjectWatcher(WatcherConfig{Root: file}).Start(context.Background()); err == nil {
		t.Error("expected error for a file root")
	}

	root := t.TempDir()
	w, _ := startWatcher(t, root)
	if _, err := w.Start(context.Background()); err == nil {
		t.Error("expected error when started twice")
	}
}
