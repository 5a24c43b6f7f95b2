package models

import (
	"encoding/json"
	"strings"
)

// StatusValue is a status entry in progress/status.json. Writers have used
// both a bare string ("verified") and an object ({"status": "verified"}),
// so both decode to the same value.
type StatusValue string

// UnmarshalJSON accepts a string, an object with a "status" key, or
// anything else (which decodes to the empty status).
func (s *StatusValue) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = StatusValue(str)
		return nil
	}
	var obj struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		*s = StatusValue(obj.Status)
		return nil
	}
	*s = ""
	return nil
}

// Normalized returns the lowercased, trimmed status.
func (s StatusValue) Normalized() string {
	return strings.ToLower(strings.TrimSpace(string(s)))
}

// VerificationSummary is the verified/total pair written by the verifier.
type VerificationSummary struct {
	Verified int `json:"verified"`
	Total    int `json:"total"`
}

// LegacyMetrics is the metrics block older status.json files carry.
type LegacyMetrics struct {
	TasksTotal       int     `json:"tasksTotal,omitempty"`
	TasksCompleted   int     `json:"tasksCompleted,omitempty"`
	FeaturesTotal    int     `json:"featuresTotal,omitempty"`
	FeaturesVerified int     `json:"featuresVerified,omitempty"`
	TestCoverage     float64 `json:"testCoverage,omitempty"`
}

// ProgressData is the externally authored content of progress/status.json.
type ProgressData struct {
	Path     string                 `json:"path"`
	Tasks    map[string]StatusValue `json:"tasks,omitempty"`
	Features map[string]StatusValue `json:"features,omitempty"`
	Status   string                 `json:"status,omitempty"`
	Summary  *VerificationSummary   `json:"summary,omitempty"`
	Metrics  *LegacyMetrics         `json:"metrics,omitempty"`
}
