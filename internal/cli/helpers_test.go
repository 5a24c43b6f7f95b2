package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

// writeProject creates a project root holding files, keyed by slash paths.
func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("creating dir for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	return root
}

// sampleProject is a project whose discover phase is complete and whose
// current phase is design-system.
func sampleProject(t *testing.T) string {
	return writeProject(t, map[string]string{
		"specs/PRD.md":                   "# PRD\n",
		"specs/constitution.md":          "# Constitution\n",
		"specs/features/FTR-001/spec.md": "---\nid: FTR-001\nname: Login\n---\n# Login\n",
		"tasks/active/TASK-001.md": "---\nid: TASK-001\ntitle: Build login form\nstatus: active\n" +
			"dependencies: []\n---\n# Build login form\n",
		"tasks/completed/TASK-002.md": "# TASK-002: Scaffold app\n\n**Status:** completed\n",
	})
}

// runCmd invokes cmd's RunE with output captured.
func runCmd(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	defer cmd.SetOut(nil)
	err := cmd.RunE(cmd, args)
	return out.String(), err
}

// withCleanGlobals resets the package-level services for one test.
func withCleanGlobals(t *testing.T) {
	t.Helper()
	origConfig, origLogger := Config, Logger
	origBuilder, origAnalyzer, origReconciler := Builder, Analyzer, Reconciler
	origEventLog, origEngine, origCalc, origNotifier := EventLog, AlertEngine, MetricsCalc, Notifier
	t.Cleanup(func() {
		Config, Logger = origConfig, origLogger
		Builder, Analyzer, Reconciler = origBuilder, origAnalyzer, origReconciler
		EventLog, AlertEngine, MetricsCalc, Notifier = origEventLog, origEngine, origCalc, origNotifier
	})
	Config, Logger = nil, nil
	Builder, Analyzer, Reconciler = nil, nil, nil
	EventLog, AlertEngine, MetricsCalc, Notifier = nil, nil, nil, nil
}
