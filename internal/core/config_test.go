package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/valter-silva-au/phasescope/pkg/models"
)

// --- Helper ---

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// --- LoadConfig tests ---

func TestLoadConfig_Defaults_WhenNoFile(t *testing.T) {
	home := t.TempDir()
	cm := NewConfigurationManager(home)

	cfg, err := cm.LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "warn")
	}
	if cfg.Log.Format != "text" {
		t.Errorf("Log.Format = %q, want %q", cfg.Log.Format, "text")
	}
	if cfg.Watch.Debounce != 300*time.Millisecond {
		t.Errorf("Watch.Debounce = %s, want 300ms", cfg.Watch.Debounce)
	}
	if want := filepath.Join(home, ".phasescope", "events.jsonl"); cfg.Events.Path != want {
		t.Errorf("Events.Path = %q, want %q", cfg.Events.Path, want)
	}
	if !cfg.Events.Enabled {
		t.Error("Events.Enabled = false, want true")
	}
	if cfg.Dashboard.Refresh != 5*time.Second {
		t.Errorf("Dashboard.Refresh = %s, want 5s", cfg.Dashboard.Refresh)
	}
	if cfg.Output.JSON {
		t.Error("Output.JSON = true, want false")
	}
	if cfg.Alerts.StallDays != 7 || cfg.Alerts.MaxReopenings != 2 {
		t.Errorf("Alerts = %+v, want stall 7 and reopenings 2", cfg.Alerts)
	}
}

func TestLoadConfig_ReadsProjectFile(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()
	writeFile(t, project, ".phasescope.yaml", `
log:
  level: DEBUG
  format: json
watch:
  debounce: 1s
events:
  path: ~/logs/phases.jsonl
dashboard:
  refresh: 10s
output:
  json: true
alerts:
  stall_days: 14
  slack_webhook: https://hooks.slack.com/services/T/B/X
`)

	cfg, err := NewConfigurationManager(home).LoadConfig(project)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want lowercased %q", cfg.Log.Level, "debug")
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want %q", cfg.Log.Format, "json")
	}
	if cfg.Watch.Debounce != time.Second {
		t.Errorf("Watch.Debounce = %s, want 1s", cfg.Watch.Debounce)
	}
	if want := filepath.Join(home, "logs", "phases.jsonl"); cfg.Events.Path != want {
		t.Errorf("Events.Path = %q, want %q (home expanded)", cfg.Events.Path, want)
	}
	if cfg.Dashboard.Refresh != 10*time.Second {
		t.Errorf("Dashboard.Refresh = %s, want 10s", cfg.Dashboard.Refresh)
	}
	if !cfg.Output.JSON {
		t.Error("Output.JSON = false, want true")
	}
	if cfg.Alerts.StallDays != 14 {
		t.Errorf("Alerts.StallDays = %d, want 14", cfg.Alerts.StallDays)
	}
	if cfg.Alerts.MaxReopenings != 2 {
		t.Errorf("Alerts.MaxReopenings = %d, want default 2", cfg.Alerts.MaxReopenings)
	}
	if cfg.Alerts.SlackWebhook == "" {
		t.Error("Alerts.SlackWebhook not read")
	}
}

func TestLoadConfig_ProjectFileBeatsHome(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()
	writeFile(t, home, ".phasescope.yaml", "log:\n  level: error\n")
	writeFile(t, project, ".phasescope.yaml", "log:\n  level: info\n")

	cfg, err := NewConfigurationManager(home).LoadConfig(project)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want project value %q", cfg.Log.Level, "info")
	}
}

func TestLoadConfig_FallsBackToHome(t *testing.T) {
	home := t.TempDir()
	writeFile(t, home, ".phasescope.yaml", "log:\n  level: error\n")

	cfg, err := NewConfigurationManager(home).LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("Log.Level = %q, want home value %q", cfg.Log.Level, "error")
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("PHASESCOPE_LOG_LEVEL", "debug")
	t.Setenv("PHASESCOPE_WATCH_DEBOUNCE", "2s")

	cfg, err := NewConfigurationManager(t.TempDir()).LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want env value %q", cfg.Log.Level, "debug")
	}
	if cfg.Watch.Debounce != 2*time.Second {
		t.Errorf("Watch.Debounce = %s, want env value 2s", cfg.Watch.Debounce)
	}
}

func TestLoadConfig_InvalidYAML_ReturnsError(t *testing.T) {
	project := t.TempDir()
	writeFile(t, project, ".phasescope.yaml", "log: [unclosed\n")

	_, err := NewConfigurationManager(t.TempDir()).LoadConfig(project)
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
	if !strings.Contains(err.Error(), ".phasescope.yaml") {
		t.Errorf("error should name the config file: %v", err)
	}
}

// --- ValidateConfig tests ---

func TestValidateConfig_Defaults(t *testing.T) {
	cm := NewConfigurationManager(t.TempDir())
	if err := cm.ValidateConfig(DefaultConfig(t.TempDir())); err != nil {
		t.Errorf("defaults should validate, got: %v", err)
	}
}

func TestValidateConfig_NilConfig_ReturnsError(t *testing.T) {
	cm := NewConfigurationManager(t.TempDir())
	if err := cm.ValidateConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestValidateConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *models.Config)
		want   string
	}{
		{"log level", func(c *models.Config) { c.Log.Level = "verbose" }, "log.level"},
		{"log format", func(c *models.Config) { c.Log.Format = "xml" }, "log.format"},
		{"negative debounce", func(c *models.Config) { c.Watch.Debounce = -time.Second }, "watch.debounce"},
		{"zero refresh", func(c *models.Config) { c.Dashboard.Refresh = 0 }, "dashboard.refresh"},
		{"empty events path", func(c *models.Config) { c.Events.Path = "" }, "events.path"},
		{"negative stall days", func(c *models.Config) { c.Alerts.StallDays = -1 }, "alerts.stall_days"},
		{"negative reopenings", func(c *models.Config) { c.Alerts.MaxReopenings = -2 }, "alerts.max_reopenings"},
		{"http webhook", func(c *models.Config) { c.Alerts.SlackWebhook = "http://example.com" }, "alerts.slack_webhook"},
	}

	cm := NewConfigurationManager(t.TempDir())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig(t.TempDir())
			tt.mutate(cfg)
			err := cm.ValidateConfig(cfg)
			if err == nil {
				t.Fatalf("expected validation error mentioning %s", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %s", err, tt.want)
			}
		})
	}
}

func TestValidateConfig_EventsDisabledAllowsEmptyPath(t *testing.T) {
	cfg := DefaultConfig(t.TempDir())
	cfg.Events.Enabled = false
	cfg.Events.Path = ""

	if err := NewConfigurationManager(t.TempDir()).ValidateConfig(cfg); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateConfig_ReportsAllProblems(t *testing.T) {
	cfg := DefaultConfig(t.TempDir())
	cfg.Log.Level = "loud"
	cfg.Log.Format = "yaml"

	err := NewConfigurationManager(t.TempDir()).ValidateConfig(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "log.level") || !strings.Contains(err.Error(), "log.format") {
		t.Errorf("expected both problems reported, got: %v", err)
	}
}
