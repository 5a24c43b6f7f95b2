package observability

import (
	"fmt"
	"time"

	"github.com/valter-silva-au/phasescope/pkg/models"
)

// Event types written by the watcher and the checkpoint command.
const (
	EventScanned           = "pipeline.scanned"
	EventPhaseChanged      = "pipeline.phase_changed"
	EventPhaseCompleted    = "pipeline.phase_completed"
	EventPhaseReopened     = "pipeline.phase_reopened"
	EventCheckpointWritten = "checkpoint.written"
)

// PhaseTransitions compares two phase states of the same root and returns
// the events describing the difference. prev may be nil for the first scan,
// in which case a single scanned event is returned.
func PhaseTransitions(root string, prev *models.PhaseState, next models.PhaseState, now time.Time) []Event {
	if prev == nil {
		return []Event{{
			Time:    now,
			Level:   "INFO",
			Type:    EventScanned,
			Root:    root,
			Message: fmt.Sprintf("current phase %s", next.CurrentPhase),
			Data: map[string]any{
				"phase":     string(next.CurrentPhase),
				"completed": next.CompletedCount(),
			},
		}}
	}

	var events []Event
	if prev.CurrentPhase != next.CurrentPhase {
		level := "INFO"
		if next.CurrentPhase.Index() < prev.CurrentPhase.Index() {
			level = "WARN"
		}
		events = append(events, Event{
			Time:    now,
			Level:   level,
			Type:    EventPhaseChanged,
			Root:    root,
			Message: fmt.Sprintf("phase %s -> %s", prev.CurrentPhase, next.CurrentPhase),
			Data: map[string]any{
				"from": string(prev.CurrentPhase),
				"to":   string(next.CurrentPhase),
			},
		})
	}

	for _, ps := range next.Phases {
		before, ok := prev.Status(ps.Phase)
		if !ok || before.Completed == ps.Completed {
			continue
		}
		e := Event{
			Time: now,
			Root: root,
			Data: map[string]any{"phase": string(ps.Phase)},
		}
		if ps.Completed {
			e.Level = "INFO"
			e.Type = EventPhaseCompleted
			e.Message = fmt.Sprintf("phase %s completed", ps.Phase)
		} else {
			e.Level = "WARN"
			e.Type = EventPhaseReopened
			e.Message = fmt.Sprintf("phase %s no longer complete", ps.Phase)
		}
		events = append(events, e)
	}
	return events
}
