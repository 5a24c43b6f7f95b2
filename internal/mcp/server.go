// Package mcp provides an MCP (Model Context Protocol) server that exposes
// phasescope scans as MCP tools for AI coding assistants.
package mcp

import (
	"context"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/valter-silva-au/phasescope/internal/core"
	"github.com/valter-silva-au/phasescope/internal/observability"
	"github.com/valter-silva-au/phasescope/pkg/models"
)

// Server wraps the scanning engine and exposes it as MCP tools.
type Server struct {
	server      *gomcp.Server
	builder     core.SnapshotBuilder
	analyzer    core.PhaseAnalyzer
	summary     core.SummaryReconciler
	defaultRoot string
	metricsCalc observability.MetricsCalculator
	alertEngine observability.AlertEngine
}

// NewServer creates a new MCP server that scans defaultRoot unless a tool
// call names another root. metricsCalc and alertEngine may be nil if the
// event log is disabled.
func NewServer(builder core.SnapshotBuilder, defaultRoot string, metricsCalc observability.MetricsCalculator, alertEngine observability.AlertEngine, version string) *Server {
	if version == "" {
		version = "dev"
	}
	if builder == nil {
		builder = core.NewSnapshotBuilder(nil)
	}

	s := &Server{
		builder:     builder,
		analyzer:    core.NewPhaseAnalyzer(),
		summary:     core.NewSummaryReconciler(),
		defaultRoot: defaultRoot,
		metricsCalc: metricsCalc,
		alertEngine: alertEngine,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "phasescope", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on stdio, blocking until the client
// disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type rootInput struct {
	Root string `json:"root,omitempty" jsonschema:"project root to scan. Defaults to the directory the server was started in."`
}

type taskOutput struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	FeatureID          string   `json:"feature_id,omitempty"`
	Type               string   `json:"type,omitempty"`
	Priority           string   `json:"priority,omitempty"`
	Status             string   `json:"status"`
	EstimatedEffort    string   `json:"estimated_effort,omitempty"`
	Description        string   `json:"description,omitempty"`
	AcceptanceCriteria []string `json:"acceptance_criteria"`
	Dependencies       []string `json:"dependencies"`
	SourcePath         string   `json:"source_path"`
}

type featureOutput struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Status        string   `json:"status,omitempty"`
	Priority      string   `json:"priority,omitempty"`
	UserStories   []string `json:"user_stories"`
	HasDesignSpec bool     `json:"has_design_spec"`
	SourcePath    string   `json:"source_path"`
}

type snapshotOutput struct {
	Root           string          `json:"root"`
	ScannedAt      string          `json:"scanned_at"`
	Fingerprint    string          `json:"fingerprint"`
	Features       []featureOutput `json:"features"`
	ActiveTasks    []taskOutput    `json:"active_tasks"`
	CompletedTasks []taskOutput    `json:"completed_tasks"`
	BlockedTasks   []taskOutput    `json:"blocked_tasks"`
	Artifacts      map[string]bool `json:"artifacts"`
}

type phaseOutput struct {
	Phase      string   `json:"phase"`
	Completed  bool     `json:"completed"`
	InProgress bool     `json:"in_progress"`
	Artifacts  []string `json:"artifacts"`
}

type phaseStateOutput struct {
	Root         string        `json:"root"`
	CurrentPhase string        `json:"current_phase"`
	Phases       []phaseOutput `json:"phases"`
}

type summaryOutput struct {
	Root    string                      `json:"root"`
	Summary models.ComprehensiveSummary `json:"summary"`
}

type parseTaskInput struct {
	Root string `json:"root,omitempty" jsonschema:"project root the path is relative to. Defaults to the directory the server was started in."`
	Path string `json:"path" jsonschema:"required,path of the task document relative to the root (e.g. tasks/active/TASK-001.md)"`
}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

type metricsOutput struct {
	Scans            int               `json:"scans"`
	PhaseChanges     int               `json:"phase_changes"`
	Regressions      int               `json:"regressions"`
	Checkpoints      int               `json:"checkpoints"`
	PhaseCompletions map[string]int    `json:"phase_completions"`
	PhaseReopenings  map[string]int    `json:"phase_reopenings"`
	CurrentPhase     map[string]string `json:"current_phase"`
	EventCount       int               `json:"event_count"`
	OldestEvent      string            `json:"oldest_event,omitempty"`
	NewestEvent      string            `json:"newest_event,omitempty"`
}

type getAlertsInput struct{}

type alertOutput struct {
	ID          string `json:"id"`
	Root        string `json:"root"`
	Condition   string `json:"condition"`
	Severity    string `json:"severity"`
	Message     string `json:"message"`
	TriggeredAt string `json:"triggered_at"`
}

type getAlertsOutput struct {
	Alerts []alertOutput `json:"alerts"`
	Count  int           `json:"count"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_snapshot",
		Description: "Scan a project root and return its features, tasks by folder, artifact presence flags and snapshot fingerprint.",
	}, s.handleGetSnapshot)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_phase_state",
		Description: "Scan a project root and return the nine pipeline phases with completion, in-progress flags and evidence, plus the current phase.",
	}, s.handleGetPhaseState)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_summary",
		Description: "Scan a project root and return the reconciled summary: feature, task and artifact counts and presence flags.",
	}, s.handleGetSummary)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "parse_task",
		Description: "Parse a single task document under the project root. Fails if the document declares no task id.",
	}, s.handleParseTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_metrics",
		Description: "Get phase transition metrics from the event log: scans, phase changes, regressions and per-phase completions.",
	}, s.handleGetMetrics)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_alerts",
		Description: "Evaluate and return active pipeline alerts (regressed, stalled and flapping phases).",
	}, s.handleGetAlerts)
}

// --- Tool handlers ---

func (s *Server) handleGetSnapshot(_ context.Context, _ *gomcp.CallToolRequest, input rootInput) (*gomcp.CallToolResult, snapshotOutput, error) {
	root, err := s.resolveRoot(input.Root)
	if err != nil {
		return errorResult(err.Error()), emptySnapshotOutput(), nil
	}

	snap := s.builder.Build(root)
	fp, err := core.Fingerprint(snap)
	if err != nil {
		return errorResult(fmt.Sprintf("fingerprinting snapshot: %s", err)), emptySnapshotOutput(), nil
	}

	out := snapshotOutput{
		Root:           snap.Root,
		ScannedAt:      snap.ScannedAt.Format(time.RFC3339),
		Fingerprint:    fp,
		Features:       make([]featureOutput, len(snap.Features)),
		ActiveTasks:    tasksToOutput(snap.Tasks.Active),
		CompletedTasks: tasksToOutput(snap.Tasks.Completed),
		BlockedTasks:   tasksToOutput(snap.Tasks.Blocked),
		Artifacts:      artifactFlags(snap),
	}
	for i, f := range snap.Features {
		out.Features[i] = featureOutput{
			ID:            f.ID,
			Name:          f.Name,
			Status:        f.Status,
			Priority:      f.Priority,
			UserStories:   nonNil(f.UserStories),
			HasDesignSpec: f.HasDesignSpec,
			SourcePath:    f.SourcePath,
		}
	}
	return nil, out, nil
}

func (s *Server) handleGetPhaseState(_ context.Context, _ *gomcp.CallToolRequest, input rootInput) (*gomcp.CallToolResult, phaseStateOutput, error) {
	root, err := s.resolveRoot(input.Root)
	if err != nil {
		return errorResult(err.Error()), phaseStateOutput{Phases: []phaseOutput{}}, nil
	}

	state := s.analyzer.Analyze(s.builder.Build(root))
	out := phaseStateOutput{
		Root:         root,
		CurrentPhase: string(state.CurrentPhase),
		Phases:       make([]phaseOutput, len(state.Phases)),
	}
	for i, p := range state.Phases {
		out.Phases[i] = phaseOutput{
			Phase:      string(p.Phase),
			Completed:  p.Completed,
			InProgress: p.InProgress,
			Artifacts:  nonNil(p.Artifacts),
		}
	}
	return nil, out, nil
}

func (s *Server) handleGetSummary(_ context.Context, _ *gomcp.CallToolRequest, input rootInput) (*gomcp.CallToolResult, summaryOutput, error) {
	root, err := s.resolveRoot(input.Root)
	if err != nil {
		return errorResult(err.Error()), summaryOutput{}, nil
	}

	return nil, summaryOutput{
		Root:    root,
		Summary: s.summary.Reconcile(s.builder.Build(root)),
	}, nil
}

func (s *Server) handleParseTask(_ context.Context, _ *gomcp.CallToolRequest, input parseTaskInput) (*gomcp.CallToolResult, taskOutput, error) {
	if input.Path == "" {
		return errorResult("path is required"), emptyTaskOutput(), nil
	}
	root, err := s.resolveRoot(input.Root)
	if err != nil {
		return errorResult(err.Error()), emptyTaskOutput(), nil
	}

	rel := filepath.Clean(filepath.FromSlash(input.Path))
	if filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return errorResult(fmt.Sprintf("path %q must be relative to the project root", input.Path)), emptyTaskOutput(), nil
	}

	abs := filepath.Join(root, rel)
	if _, err := os.Stat(abs); err != nil {
		return errorResult(fmt.Sprintf("reading task %s: %s", input.Path, err)), emptyTaskOutput(), nil
	}

	task := core.ParseTask(abs)
	if task == nil {
		return errorResult(fmt.Sprintf("task %s declares no id", input.Path)), emptyTaskOutput(), nil
	}
	task.SourcePath = filepath.ToSlash(rel)
	return nil, taskToOutput(*task), nil
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, metricsOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("metrics calculator not available (event log may be disabled)"), emptyMetricsOutput(), nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}

	sinceTime, err := observability.ParseSince(sinceStr)
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), emptyMetricsOutput(), nil
	}

	metrics, err := s.metricsCalc.Calculate(sinceTime)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), emptyMetricsOutput(), nil
	}

	out := emptyMetricsOutput()
	out.Scans = metrics.Scans
	out.PhaseChanges = metrics.PhaseChanges
	out.Regressions = metrics.Regressions
	out.Checkpoints = metrics.Checkpoints
	out.EventCount = metrics.EventCount
	maps.Copy(out.PhaseCompletions, metrics.PhaseCompletions)
	maps.Copy(out.PhaseReopenings, metrics.PhaseReopenings)
	maps.Copy(out.CurrentPhase, metrics.CurrentPhase)
	if metrics.OldestEvent != nil {
		out.OldestEvent = metrics.OldestEvent.Format(time.RFC3339)
	}
	if metrics.NewestEvent != nil {
		out.NewestEvent = metrics.NewestEvent.Format(time.RFC3339)
	}

	return nil, out, nil
}

func (s *Server) handleGetAlerts(_ context.Context, _ *gomcp.CallToolRequest, _ getAlertsInput) (*gomcp.CallToolResult, getAlertsOutput, error) {
	if s.alertEngine == nil {
		return errorResult("alert engine not available (event log may be disabled)"), getAlertsOutput{Alerts: []alertOutput{}}, nil
	}

	alerts, err := s.alertEngine.Evaluate()
	if err != nil {
		return errorResult(fmt.Sprintf("evaluating alerts: %s", err)), getAlertsOutput{Alerts: []alertOutput{}}, nil
	}

	out := getAlertsOutput{
		Alerts: make([]alertOutput, len(alerts)),
		Count:  len(alerts),
	}
	for i, a := range alerts {
		out.Alerts[i] = alertOutput{
			ID:          a.ID,
			Root:        a.Root,
			Condition:   a.Condition,
			Severity:    string(a.Severity),
			Message:     a.Message,
			TriggeredAt: a.TriggeredAt.Format(time.RFC3339),
		}
	}

	return nil, out, nil
}

// --- Helpers ---

// resolveRoot returns the absolute project root for a tool call.
func (s *Server) resolveRoot(root string) (string, error) {
	if root == "" {
		root = s.defaultRoot
	}
	if root == "" {
		return "", fmt.Errorf("root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving root %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("reading root %s: %w", root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("root %s is not a directory", root)
	}
	return abs, nil
}

func taskToOutput(t models.Task) taskOutput {
	return taskOutput{
		ID:                 t.ID,
		Title:              t.Title,
		FeatureID:          t.FeatureID,
		Type:               t.Type,
		Priority:           t.Priority,
		Status:             string(t.Status),
		EstimatedEffort:    t.EstimatedEffort,
		Description:        t.Description,
		AcceptanceCriteria: nonNil(t.AcceptanceCriteria),
		Dependencies:       nonNil(t.Dependencies),
		SourcePath:         t.SourcePath,
	}
}

func tasksToOutput(tasks []models.Task) []taskOutput {
	out := make([]taskOutput, len(tasks))
	for i, t := range tasks {
		out[i] = taskToOutput(t)
	}
	return out
}

// artifactFlags reports which well-known artifacts the scan found.
func artifactFlags(snap models.ProjectSnapshot) map[string]bool {
	return map[string]bool{
		"prd":             snap.HasPRD(),
		"constitution":    snap.HasConstitution(),
		"progress_status": snap.Progress != nil,
		"design_system":   snap.DesignSystem.Exists,
		"design_tokens":   snap.DesignTokens.Exists,
		"ux_research":     snap.UXResearch.Exists,
		"component_specs": snap.ComponentSpecs.Exists,
		"architecture":    snap.Architecture.Exists,
		"epics":           snap.Epics.Exists,
		"research":        snap.Research.Exists,
		"qa_report":       snap.QAReport.Exists,
		"review_report":   snap.ReviewReport.Exists,
		"metrics":         snap.Metrics.Exists,
		"checkpoint":      snap.Checkpoint.Exists,
		"final_report":    snap.FinalReport.Exists,
		"e2e_tests":       snap.E2ETests.Exists,
		"config":          snap.Config.Exists,
	}
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

func emptyTaskOutput() taskOutput {
	return taskOutput{AcceptanceCriteria: []string{}, Dependencies: []string{}}
}

func emptySnapshotOutput() snapshotOutput {
	return snapshotOutput{
		Features:       []featureOutput{},
		ActiveTasks:    []taskOutput{},
		CompletedTasks: []taskOutput{},
		BlockedTasks:   []taskOutput{},
		Artifacts:      map[string]bool{},
	}
}

func emptyMetricsOutput() metricsOutput {
	return metricsOutput{
		PhaseCompletions: make(map[string]int),
		PhaseReopenings:  make(map[string]int),
		CurrentPhase:     make(map[string]string),
	}
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}
