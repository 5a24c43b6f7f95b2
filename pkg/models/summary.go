package models

// ComprehensiveSummary is the reconciled set of aggregate counts and
// presence flags derived from a ProjectSnapshot.
type ComprehensiveSummary struct {
	TotalFeatures          int `json:"totalFeatures"`
	FeaturesWithDesignSpec int `json:"featuresWithDesignSpec"`
	VerifiedFeatures       int `json:"verifiedFeatures"`

	TotalTasks     int `json:"totalTasks"`
	CompletedTasks int `json:"completedTasks"`
	BlockedTasks   int `json:"blockedTasks"`
	ActiveTasks    int `json:"activeTasks"`

	// VerificationOverride is true when externally written progress data
	// reported every feature verified and forced the task counts.
	VerificationOverride bool `json:"verificationOverride"`

	HasPRD            bool `json:"hasPRD"`
	HasConstitution   bool `json:"hasConstitution"`
	HasDesignSystem   bool `json:"hasDesignSystem"`
	HasDesignTokens   bool `json:"hasDesignTokens"`
	HasUXResearch     bool `json:"hasUXResearch"`
	ComponentSpecs    int  `json:"componentSpecs"`
	HasArchitecture   bool `json:"hasArchitecture"`
	ArchitectureDocs  int  `json:"architectureDocs"`
	Epics             int  `json:"epics"`
	ResearchSessions  int  `json:"researchSessions"`
	HasQAReport       bool `json:"hasQAReport"`
	HasReviewReport   bool `json:"hasReviewReport"`
	HasMetrics        bool `json:"hasMetrics"`
	HasCheckpoint     bool `json:"hasCheckpoint"`
	HasFinalReport    bool `json:"hasFinalReport"`
	HasE2ETests       bool `json:"hasE2ETests"`
	E2ETestFiles      int  `json:"e2eTestFiles"`
	HasConfig         bool `json:"hasConfig"`
	HasProgressStatus bool `json:"hasProgressStatus"`

	TokenUsage TokenTotals `json:"tokenUsage"`
}

// TokenTotals sums all token usage records.
type TokenTotals struct {
	Records      int     `json:"records"`
	InputTokens  int     `json:"inputTokens"`
	OutputTokens int     `json:"outputTokens"`
	TotalTokens  int     `json:"totalTokens"`
	CostUSD      float64 `json:"costUsd"`
}
