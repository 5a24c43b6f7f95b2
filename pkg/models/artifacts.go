package models

import "time"

// DesignSystemInfo describes specs/design/design-system.md.
type DesignSystemInfo struct {
	Exists        bool     `json:"exists"`
	Path          string   `json:"path,omitempty"`
	Philosophy    string   `json:"philosophy,omitempty"`
	AnimationTier string   `json:"animationTier,omitempty"`
	Sections      []string `json:"sections"`
}

// FileSetInfo describes a category that is just a set of files, such as
// design tokens or component specs.
type FileSetInfo struct {
	Exists bool     `json:"exists"`
	Files  []string `json:"files"`
	Count  int      `json:"count"`
}

// DocumentInfo describes a single markdown document.
type DocumentInfo struct {
	Exists bool   `json:"exists"`
	Path   string `json:"path,omitempty"`
	Title  string `json:"title,omitempty"`
}

// ArchitectureDocKind classifies a document under specs/architecture.
type ArchitectureDocKind string

const (
	ArchOverview ArchitectureDocKind = "overview"
	ArchADR      ArchitectureDocKind = "adr"
	ArchDiagram  ArchitectureDocKind = "diagram"
	ArchGeneric  ArchitectureDocKind = "generic"
)

// ArchitectureDoc is one markdown file found under specs/architecture.
type ArchitectureDoc struct {
	Path  string              `json:"path"`
	Title string              `json:"title,omitempty"`
	Kind  ArchitectureDocKind `json:"kind"`
}

// ArchitectureInfo describes the architecture documentation tree.
type ArchitectureInfo struct {
	Exists bool                        `json:"exists"`
	Docs   []ArchitectureDoc           `json:"docs"`
	Counts map[ArchitectureDocKind]int `json:"counts"`
}

// Epic is one markdown file under specs/epics.
type Epic struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Path  string `json:"path"`
}

// EpicsInfo describes specs/epics.
type EpicsInfo struct {
	Exists bool   `json:"exists"`
	Epics  []Epic `json:"epics"`
}

// ResearchTypeUnknown is the session type assigned to folders that do not
// follow the <TYPE>-<14 digit timestamp> naming convention.
const ResearchTypeUnknown = "UNKNOWN"

// ResearchSession is one folder under research/sessions.
type ResearchSession struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Path      string    `json:"path"`
	Files     []string  `json:"files"`
}

// ResearchInfo describes research/project and research/sessions.
type ResearchInfo struct {
	Exists       bool              `json:"exists"`
	ProjectFiles []string          `json:"projectFiles"`
	Sessions     []ResearchSession `json:"sessions"`
}

// JSONDocumentInfo describes a JSON file under progress/. Fields holds the
// decoded top-level object; it is empty when the file is absent or corrupt.
type JSONDocumentInfo struct {
	Exists bool           `json:"exists"`
	Path   string         `json:"path,omitempty"`
	Keys   []string       `json:"keys"`
	Fields map[string]any `json:"fields,omitempty"`
}

// E2ETestsInfo describes tests/e2e.
type E2ETestsInfo struct {
	Exists       bool     `json:"exists"`
	TestFiles    []string `json:"testFiles"`
	HasFixtures  bool     `json:"hasFixtures"`
	HasFeatures  bool     `json:"hasFeatures"`
	FeatureFiles []string `json:"featureFiles"`
}

// TokenUsageRecord is one entry from progress/token-usage/*.json.
type TokenUsageRecord struct {
	Source       string    `json:"source"`
	Session      string    `json:"session,omitempty"`
	Model        string    `json:"model,omitempty"`
	InputTokens  int       `json:"inputTokens"`
	OutputTokens int       `json:"outputTokens"`
	TotalTokens  int       `json:"totalTokens"`
	CostUSD      float64   `json:"costUsd"`
	Timestamp    time.Time `json:"timestamp,omitempty"`
}
