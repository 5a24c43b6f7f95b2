package observability

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Metrics holds pipeline metrics derived from the event log.
type Metrics struct {
	Scans            int            `json:"scans"`
	PhaseChanges     int            `json:"phase_changes"`
	Regressions      int            `json:"regressions"`
	Checkpoints      int            `json:"checkpoints"`
	PhaseCompletions map[string]int `json:"phase_completions"`
	PhaseReopenings  map[string]int `json:"phase_reopenings"`
	// CurrentPhase is the latest known phase per project root.
	CurrentPhase map[string]string `json:"current_phase"`
	EventCount   int               `json:"event_count"`
	OldestEvent  *time.Time        `json:"oldest_event,omitempty"`
	NewestEvent  *time.Time        `json:"newest_event,omitempty"`
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

// metricsCalculator implements MetricsCalculator by reading from an EventLog.
type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a new MetricsCalculator that reads from the given EventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate reads all events since the given time and aggregates them.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{
		PhaseCompletions: make(map[string]int),
		PhaseReopenings:  make(map[string]int),
		CurrentPhase:     make(map[string]string),
	}

	m.EventCount = len(events)

	for i, event := range events {
		phase := event.Phase()
		if i == 0 {
			t := event.Time
			m.OldestEvent = &t
		}
		t := event.Time
		m.NewestEvent = &t

		switch event.Type {
		case EventScanned:
			m.Scans++
			if phase != "" && event.Root != "" {
				m.CurrentPhase[event.Root] = phase
			}
		case EventPhaseChanged:
			m.PhaseChanges++
			if event.Level == "WARN" {
				m.Regressions++
			}
			if phase != "" && event.Root != "" {
				m.CurrentPhase[event.Root] = phase
			}
		case EventPhaseCompleted:
			if phase != "" {
				m.PhaseCompletions[phase]++
			}
		case EventPhaseReopened:
			if phase != "" {
				m.PhaseReopenings[phase]++
			}
		case EventCheckpointWritten:
			m.Checkpoints++
		}
	}

	return m, nil
}

// ParseSince parses a human-friendly window like "7d", "30d" or "24h" and
// returns the corresponding time in the past.
func ParseSince(s string) (time.Time, error) {
	now := time.Now().UTC()
	s = strings.TrimSpace(s)

	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return time.Time{}, fmt.Errorf("invalid day duration %q", s)
		}
		return now.AddDate(0, 0, -n), nil
	}

	if hours, ok := strings.CutSuffix(s, "h"); ok {
		n, err := strconv.Atoi(hours)
		if err != nil || n < 0 {
			return time.Time{}, fmt.Errorf("invalid hour duration %q", s)
		}
		return now.Add(-time.Duration(n) * time.Hour), nil
	}

	return time.Time{}, fmt.Errorf("unsupported duration format %q (use e.g. 7d, 30d, 24h)", s)
}
