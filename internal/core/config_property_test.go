package core

import (
	"fmt"
	"testing"
	"time"

	"pgregory.net/rapid"
)

// Feature: phasescope, Property 9: Configuration Round Trip
// *For any* valid log level, log format and debounce written to
// .phasescope.yaml, LoadConfig SHALL return those values and the result SHALL
// pass ValidateConfig.
func TestProperty9_ConfigurationRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		level := rapid.SampledFrom([]string{"debug", "info", "warn", "error"}).Draw(rt, "level")
		format := rapid.SampledFrom([]string{"text", "json"}).Draw(rt, "format")
		debounceMS := rapid.IntRange(0, 10000).Draw(rt, "debounceMS")
		stallDays := rapid.IntRange(0, 90).Draw(rt, "stallDays")

		home := t.TempDir()
		project := t.TempDir()
		writeFile(t, project, ".phasescope.yaml", fmt.Sprintf(
			"log:\n  level: %s\n  format: %s\nwatch:\n  debounce: %dms\nalerts:\n  stall_days: %d\n",
			level, format, debounceMS, stallDays,
		))

		cm := NewConfigurationManager(home)
		cfg, err := cm.LoadConfig(project)
		if err != nil {
			rt.Fatalf("LoadConfig failed: %v", err)
		}

		if cfg.Log.Level != level {
			rt.Errorf("Log.Level: got %q, want %q", cfg.Log.Level, level)
		}
		if cfg.Log.Format != format {
			rt.Errorf("Log.Format: got %q, want %q", cfg.Log.Format, format)
		}
		if want := time.Duration(debounceMS) * time.Millisecond; cfg.Watch.Debounce != want {
			rt.Errorf("Watch.Debounce: got %s, want %s", cfg.Watch.Debounce, want)
		}
		if cfg.Alerts.StallDays != stallDays {
			rt.Errorf("Alerts.StallDays: got %d, want %d", cfg.Alerts.StallDays, stallDays)
		}
		if err := cm.ValidateConfig(cfg); err != nil {
			rt.Errorf("loaded config failed validation: %v", err)
		}
	})
}

// Feature: phasescope, Property 10: Configuration Validation
// *For any* log level outside debug, info, warn and error, ValidateConfig
// SHALL return an error naming log.level.
func TestProperty10_ConfigurationValidation(t *testing.T) {
	valid := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	cm := NewConfigurationManager(t.TempDir())

	rapid.Check(t, func(rt *rapid.T) {
		level := rapid.StringMatching(`[a-z]{0,8}`).
			Filter(func(s string) bool { return !valid[s] }).
			Draw(rt, "level")

		cfg := DefaultConfig(t.TempDir())
		cfg.Log.Level = level
		err := cm.ValidateConfig(cfg)
		if err == nil {
			rt.Fatalf("expected validation error for log level %q", level)
		}
	})
}
