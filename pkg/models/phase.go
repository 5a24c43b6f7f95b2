package models

// Phase is one of the nine fixed pipeline stages.
type Phase string

const (
	PhaseDiscover      Phase = "discover"
	PhaseDesignSystem  Phase = "design-system"
	PhaseSpecs         Phase = "specs"
	PhaseFeatureDesign Phase = "feature-design"
	PhaseTasks         Phase = "tasks"
	PhaseImplement     Phase = "implement"
	PhaseQuality       Phase = "quality"
	PhaseVerify        Phase = "verify"
	PhaseReport        Phase = "report"
)

// AllPhases returns all phases in pipeline order.
func AllPhases() []Phase {
	return []Phase{
		PhaseDiscover,
		PhaseDesignSystem,
		PhaseSpecs,
		PhaseFeatureDesign,
		PhaseTasks,
		PhaseImplement,
		PhaseQuality,
		PhaseVerify,
		PhaseReport,
	}
}

// Index returns the position of p in pipeline order, or -1 if p is not a
// known phase.
func (p Phase) Index() int {
	for i, phase := range AllPhases() {
		if phase == p {
			return i
		}
	}
	return -1
}

// Valid reports whether p is one of the nine phases.
func (p Phase) Valid() bool {
	return p.Index() >= 0
}

// PhaseStatus is the evaluated state of one phase.
type PhaseStatus struct {
	Phase      Phase    `json:"phase"`
	Completed  bool     `json:"completed"`
	InProgress bool     `json:"inProgress"`
	Artifacts  []string `json:"artifacts"`
}

// PhaseState is the analyzer output: one status per phase in pipeline order
// plus the current phase.
type PhaseState struct {
	CurrentPhase Phase         `json:"currentPhase"`
	Phases       []PhaseStatus `json:"phases"`
}

// Status returns the status for the given phase and whether it was found.
func (s PhaseState) Status(p Phase) (PhaseStatus, bool) {
	for _, ps := range s.Phases {
		if ps.Phase == p {
			return ps, true
		}
	}
	return PhaseStatus{}, false
}

// CompletedCount returns how many phases are completed.
func (s PhaseState) CompletedCount() int {
	n := 0
	for _, ps := range s.Phases {
		if ps.Completed {
			n++
		}
	}
	return n
}
