package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/valter-silva-au/phasescope/internal/core"
	"github.com/valter-silva-au/phasescope/pkg/models"
)

// Style definitions shared by the plain commands and the dashboard.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	phaseDone       = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	phaseInProgress = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	phasePending    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	phaseCurrent    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("141"))

	severityHigh   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	severityMedium = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	severityLow    = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// rootArg returns the project root named by args, or the working directory.
func rootArg(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return "."
}

// commandContext returns the command's context, or Background when the
// command was invoked without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// absRoot resolves root to an absolute path so event log entries for the
// same project always match.
func absRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving project root %s: %w", root, err)
	}
	return abs, nil
}

func snapshotBuilder() core.SnapshotBuilder {
	if Builder == nil {
		return core.NewSnapshotBuilder(Logger)
	}
	return Builder
}

func phaseAnalyzer() core.PhaseAnalyzer {
	if Analyzer == nil {
		return core.NewPhaseAnalyzer()
	}
	return Analyzer
}

func summaryReconciler() core.SummaryReconciler {
	if Reconciler == nil {
		return core.NewSummaryReconciler()
	}
	return Reconciler
}

// scanResult is one pass of the engine over a project root.
type scanResult struct {
	Snapshot models.ProjectSnapshot
	Phases   models.PhaseState
	Summary  models.ComprehensiveSummary
}

func scanProject(root string) scanResult {
	snap := snapshotBuilder().Build(root)
	return scanResult{
		Snapshot: snap,
		Phases:   phaseAnalyzer().Analyze(snap),
		Summary:  summaryReconciler().Reconcile(snap),
	}
}

// wantJSON reports whether a command should print JSON, either because the
// flag was passed or because output.json is set in the configuration.
func wantJSON(flag bool) bool {
	return flag || (Config != nil && Config.Output.JSON)
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("formatting output as JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// phaseMarker returns the status glyph and style for one phase row.
func phaseMarker(ps models.PhaseStatus) (string, lipgloss.Style) {
	switch {
	case ps.Completed:
		return "✓", phaseDone
	case ps.InProgress:
		return "~", phaseInProgress
	default:
		return "·", phasePending
	}
}

// renderPhases formats the nine phases, one per line, marking the current
// phase and listing each phase's evidence.
func renderPhases(state models.PhaseState) string {
	var b strings.Builder
	for i, ps := range state.Phases {
		glyph, style := phaseMarker(ps)
		name := fmt.Sprintf("%d. %-15s", i+1, ps.Phase)
		if ps.Phase == state.CurrentPhase {
			name = phaseCurrent.Render(name)
		}
		line := fmt.Sprintf("  %s %s", style.Render(glyph), name)
		if len(ps.Artifacts) > 0 {
			line += " " + helpStyle.Render(strings.Join(ps.Artifacts, ", "))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

type summaryRow struct {
	label string
	value string
}

// renderSummary formats the counts of a summary as an aligned table.
func renderSummary(s models.ComprehensiveSummary) string {
	var b strings.Builder
	rows := []summaryRow{
		{"Features", fmt.Sprintf("%d (%d with design spec, %d verified)", s.TotalFeatures, s.FeaturesWithDesignSpec, s.VerifiedFeatures)},
		{"Tasks", fmt.Sprintf("%d total, %d completed, %d active, %d blocked", s.TotalTasks, s.CompletedTasks, s.ActiveTasks, s.BlockedTasks)},
		{"Architecture docs", fmt.Sprintf("%d", s.ArchitectureDocs)},
		{"Component specs", fmt.Sprintf("%d", s.ComponentSpecs)},
		{"Epics", fmt.Sprintf("%d", s.Epics)},
		{"Research sessions", fmt.Sprintf("%d", s.ResearchSessions)},
		{"E2E test files", fmt.Sprintf("%d", s.E2ETestFiles)},
	}
	if s.TokenUsage.Records > 0 {
		rows = append(rows, summaryRow{"Tokens", fmt.Sprintf("%d (%d records, $%.2f)", s.TokenUsage.TotalTokens, s.TokenUsage.Records, s.TokenUsage.CostUSD)})
	}
	for _, r := range rows {
		fmt.Fprintf(&b, "  %-20s %s\n", r.label+":", r.value)
	}
	if s.VerificationOverride {
		b.WriteString(helpStyle.Render("  task counts forced complete: progress data reports every feature verified"))
		b.WriteString("\n")
	}
	return b.String()
}

// presentArtifacts lists the names of the artifacts a summary found.
func presentArtifacts(s models.ComprehensiveSummary) []string {
	flags := []struct {
		name string
		ok   bool
	}{
		{"PRD", s.HasPRD},
		{"constitution", s.HasConstitution},
		{"design system", s.HasDesignSystem},
		{"design tokens", s.HasDesignTokens},
		{"UX research", s.HasUXResearch},
		{"architecture", s.HasArchitecture},
		{"progress status", s.HasProgressStatus},
		{"QA report", s.HasQAReport},
		{"review report", s.HasReviewReport},
		{"metrics", s.HasMetrics},
		{"checkpoint", s.HasCheckpoint},
		{"final report", s.HasFinalReport},
		{"e2e tests", s.HasE2ETests},
		{"config", s.HasConfig},
	}
	var out []string
	for _, f := range flags {
		if f.ok {
			out = append(out, f.name)
		}
	}
	return out
}

func styleForSeverity(severity string) lipgloss.Style {
	switch strings.ToLower(severity) {
	case "high":
		return severityHigh
	case "medium":
		return severityMedium
	case "low":
		return severityLow
	default:
		return lipgloss.NewStyle()
	}
}
