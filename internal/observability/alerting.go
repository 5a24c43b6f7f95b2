package observability

import (
	"fmt"
	"sort"
	"time"

	"github.com/valter-silva-au/phasescope/pkg/models"
)

// AlertSeverity represents the urgency of an alert.
type AlertSeverity string

const (
	SeverityHigh   AlertSeverity = "high"
	SeverityMedium AlertSeverity = "medium"
	SeverityLow    AlertSeverity = "low"
)

// Alert represents a triggered alert condition.
type Alert struct {
	ID          string        `json:"id"`
	Condition   string        `json:"condition"`
	Severity    AlertSeverity `json:"severity"`
	Root        string        `json:"root"`
	Message     string        `json:"message"`
	TriggeredAt time.Time     `json:"triggered_at"`
}

// AlertThresholds configures when alerts fire.
type AlertThresholds struct {
	StallDays     int `yaml:"stall_days" mapstructure:"stall_days" json:"stall_days"`
	MaxReopenings int `yaml:"max_reopenings" mapstructure:"max_reopenings" json:"max_reopenings"`
}

// DefaultAlertThresholds returns the default alert thresholds.
func DefaultAlertThresholds() AlertThresholds {
	return AlertThresholds{
		StallDays:     7,
		MaxReopenings: 2,
	}
}

// AlertEngine evaluates alert conditions against the event log.
type AlertEngine interface {
	Evaluate() ([]Alert, error)
}

type alertEngine struct {
	eventLog   EventLog
	thresholds AlertThresholds
	now        func() time.Time
}

// NewAlertEngine creates an AlertEngine reading from eventLog.
func NewAlertEngine(eventLog EventLog, thresholds AlertThresholds) AlertEngine {
	return &alertEngine{
		eventLog:   eventLog,
		thresholds: thresholds,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// rootState is the per-root view of the event log.
type rootState struct {
	phase     string
	since     time.Time
	regressed bool
	reopened  map[string]int
}

// Evaluate replays the event log per root and returns the triggered alerts
// sorted by id.
func (ae *alertEngine) Evaluate() ([]Alert, error) {
	events, err := ae.eventLog.Read(EventFilter{})
	if err != nil {
		return nil, fmt.Errorf("reading events for alerts: %w", err)
	}

	roots := make(map[string]*rootState)
	state := func(root string) *rootState {
		s, ok := roots[root]
		if !ok {
			s = &rootState{reopened: make(map[string]int)}
			roots[root] = s
		}
		return s
	}

	for _, event := range events {
		if event.Root == "" {
			continue
		}
		s := state(event.Root)
		phase := event.Phase()
		switch event.Type {
		case EventScanned:
			if phase != "" && phase != s.phase {
				s.phase = phase
				s.since = event.Time
			}
		case EventPhaseChanged:
			s.phase = phase
			s.since = event.Time
			s.regressed = event.Level == "WARN"
		case EventPhaseReopened:
			if phase != "" {
				s.reopened[phase]++
			}
		}
	}

	now := ae.now()
	stall := time.Duration(ae.thresholds.StallDays) * 24 * time.Hour
	var alerts []Alert
	for root, s := range roots {
		if s.regressed {
			alerts = append(alerts, Alert{
				ID:          "regressed-" + root,
				Condition:   "phase_regressed",
				Severity:    SeverityHigh,
				Root:        root,
				Message:     fmt.Sprintf("%s moved back to phase %s", root, s.phase),
				TriggeredAt: now,
			})
		}
		if s.phase != "" && s.phase != string(models.PhaseReport) && ae.thresholds.StallDays > 0 && now.Sub(s.since) > stall {
			alerts = append(alerts, Alert{
				ID:          "stalled-" + root,
				Condition:   "phase_stalled",
				Severity:    SeverityMedium,
				Root:        root,
				Message:     fmt.Sprintf("%s has been in phase %s for more than %d days", root, s.phase, ae.thresholds.StallDays),
				TriggeredAt: now,
			})
		}
		for phase, n := range s.reopened {
			if ae.thresholds.MaxReopenings > 0 && n > ae.thresholds.MaxReopenings {
				alerts = append(alerts, Alert{
					ID:          fmt.Sprintf("flapping-%s-%s", root, phase),
					Condition:   "phase_flapping",
					Severity:    SeverityLow,
					Root:        root,
					Message:     fmt.Sprintf("%s reopened phase %s %d times", root, phase, n),
					TriggeredAt: now,
				})
			}
		}
	}

	sort.Slice(alerts, func(i, j int) bool { return alerts[i].ID < alerts[j].ID })
	return alerts, nil
}
