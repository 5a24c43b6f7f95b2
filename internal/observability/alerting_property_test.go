package observability

import (
	"path/filepath"
	"testing"
	"time"

	"pgregory.net/rapid"
)

// Feature: observability, Property 3: Stall Threshold Monotonicity
// *For any* time spent in a non-final phase and any stall threshold, a
// phase_stalled alert SHALL fire if and only if the time in phase exceeds
// the threshold.
func TestProperty3_StallThresholdMonotonicity(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		el, err := NewJSONLEventLog(filepath.Join(t.TempDir(), "events.jsonl"))
		if err != nil {
			t.Fatalf("creating event log: %v", err)
		}
		defer el.Close()

		now := time.Date(2026, 6, 20, 12, 0, 0, 0, time.UTC)
		hoursInPhase := rapid.IntRange(0, 24*30).Draw(rt, "hoursInPhase")
		stallDays := rapid.IntRange(1, 20).Draw(rt, "stallDays")

		if err := el.Write(Event{
			Time:  now.Add(-time.Duration(hoursInPhase) * time.Hour),
			Level: "INFO",
			Type:  EventScanned,
			Root:  "/p",
			Data:  map[string]any{"phase": "implement"},
		}); err != nil {
			t.Fatalf("writing event: %v", err)
		}

		thresholds := AlertThresholds{StallDays: stallDays, MaxReopenings: 3}
		alerts, err := newTestAlertEngine(el, thresholds, now).Evaluate()
		if err != nil {
			t.Fatalf("evaluating alerts: %v", err)
		}

		stalled := false
		for _, a := range alerts {
			if a.Condition == "phase_stalled" {
				stalled = true
			}
		}
		want := time.Duration(hoursInPhase)*time.Hour > time.Duration(stallDays)*24*time.Hour
		if stalled != want {
			rt.Errorf("stalled = %v, want %v (hours=%d, days=%d)", stalled, want, hoursInPhase, stallDays)
		}
	})
}
