package models

import "time"

// ProjectSnapshot is one read of a project's artifacts at a point in time.
// It is built once by the snapshot builder and never modified afterwards.
type ProjectSnapshot struct {
	Root      string    `json:"root"`
	ScannedAt time.Time `json:"scannedAt"`

	PRD          *string   `json:"prd,omitempty"`
	Constitution *string   `json:"constitution,omitempty"`
	Features     []Feature `json:"features"`
	Tasks        TaskLists `json:"tasks"`

	Progress   *ProgressData      `json:"progress,omitempty"`
	TokenUsage []TokenUsageRecord `json:"tokenUsage"`

	DesignSystem   DesignSystemInfo `json:"designSystem"`
	DesignTokens   FileSetInfo      `json:"designTokens"`
	UXResearch     DocumentInfo     `json:"uxResearch"`
	ComponentSpecs FileSetInfo      `json:"componentSpecs"`
	Architecture   ArchitectureInfo `json:"architecture"`
	Epics          EpicsInfo        `json:"epics"`
	Research       ResearchInfo     `json:"research"`

	QAReport     JSONDocumentInfo `json:"qaReport"`
	ReviewReport JSONDocumentInfo `json:"reviewReport"`
	Metrics      JSONDocumentInfo `json:"metrics"`
	Checkpoint   JSONDocumentInfo `json:"checkpoint"`
	FinalReport  DocumentInfo     `json:"finalReport"`
	E2ETests     E2ETestsInfo     `json:"e2eTests"`
	Config       JSONDocumentInfo `json:"config"`
}

// HasPRD reports whether specs/PRD.md was read.
func (s ProjectSnapshot) HasPRD() bool { return s.PRD != nil }

// HasConstitution reports whether specs/constitution.md was read.
func (s ProjectSnapshot) HasConstitution() bool { return s.Constitution != nil }

// FeaturesWithDesignSpec counts features that have a design-spec.md.
func (s ProjectSnapshot) FeaturesWithDesignSpec() int {
	n := 0
	for _, f := range s.Features {
		if f.HasDesignSpec {
			n++
		}
	}
	return n
}
