// Package core contains the phasescope engine: the document parser, the
// artifact scanner, the snapshot builder, the phase analyzer and the
// summary reconciler, plus configuration loading.
package core

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/valter-silva-au/phasescope/pkg/models"
)

// ConfigFileName is the configuration file looked up in the project root
// and then in the home directory, without extension.
const ConfigFileName = ".phasescope"

// EnvPrefix prefixes environment overrides, e.g. PHASESCOPE_LOG_LEVEL.
const EnvPrefix = "PHASESCOPE"

// ConfigurationManager loads and validates phasescope settings.
type ConfigurationManager interface {
	LoadConfig(projectRoot string) (*models.Config, error)
	ValidateConfig(cfg *models.Config) error
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading YAML configuration files.
type viperConfigManager struct {
	// homeDir is searched after the project root and anchors "~" paths.
	homeDir string
}

// NewConfigurationManager creates a ConfigurationManager that falls back to
// homeDir when the project root has no .phasescope.yaml.
func NewConfigurationManager(homeDir string) ConfigurationManager {
	return &viperConfigManager{homeDir: homeDir}
}

// DefaultConfig returns a Config populated with defaults.
func DefaultConfig(homeDir string) *models.Config {
	return &models.Config{
		Log: models.LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Watch: models.WatchConfig{
			Debounce: 300 * time.Millisecond,
		},
		Events: models.EventsConfig{
			Path:    filepath.Join(homeDir, ".phasescope", "events.jsonl"),
			Enabled: true,
		},
		Dashboard: models.DashboardConfig{
			Refresh: 5 * time.Second,
		},
		Alerts: models.AlertsConfig{
			StallDays:     7,
			MaxReopenings: 2,
		},
	}
}

// LoadConfig reads .phasescope.yaml from projectRoot, then the home
// directory, and applies PHASESCOPE_* environment overrides. A missing file
// yields defaults.
func (cm *viperConfigManager) LoadConfig(projectRoot string) (*models.Config, error) {
	defaults := DefaultConfig(cm.homeDir)

	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType("yaml")
	if projectRoot != "" {
		v.AddConfigPath(projectRoot)
	}
	if cm.homeDir != "" {
		v.AddConfigPath(cm.homeDir)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set Viper defaults so missing keys fall back gracefully.
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)
	v.SetDefault("watch.debounce", defaults.Watch.Debounce)
	v.SetDefault("events.path", defaults.Events.Path)
	v.SetDefault("events.enabled", defaults.Events.Enabled)
	v.SetDefault("dashboard.refresh", defaults.Dashboard.Refresh)
	v.SetDefault("output.json", defaults.Output.JSON)
	v.SetDefault("alerts.stall_days", defaults.Alerts.StallDays)
	v.SetDefault("alerts.max_reopenings", defaults.Alerts.MaxReopenings)
	v.SetDefault("alerts.slack_webhook", defaults.Alerts.SlackWebhook)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading %s.yaml: %w", ConfigFileName, err)
		}
	}

	cfg := &models.Config{
		Log: models.LogConfig{
			Level:  strings.ToLower(v.GetString("log.level")),
			Format: strings.ToLower(v.GetString("log.format")),
		},
		Watch: models.WatchConfig{
			Debounce: v.GetDuration("watch.debounce"),
		},
		Events: models.EventsConfig{
			Path:    cm.expandHome(v.GetString("events.path")),
			Enabled: v.GetBool("events.enabled"),
		},
		Dashboard: models.DashboardConfig{
			Refresh: v.GetDuration("dashboard.refresh"),
		},
		Output: models.OutputConfig{
			JSON: v.GetBool("output.json"),
		},
		Alerts: models.AlertsConfig{
			StallDays:     v.GetInt("alerts.stall_days"),
			MaxReopenings: v.GetInt("alerts.max_reopenings"),
			SlackWebhook:  v.GetString("alerts.slack_webhook"),
		},
	}
	return cfg, nil
}

func (cm *viperConfigManager) expandHome(path string) string {
	if path == "~" {
		return cm.homeDir
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(cm.homeDir, path[2:])
	}
	return path
}

var (
	validLogLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validLogFormats = map[string]bool{"text": true, "json": true}
)

// ValidateConfig checks the configuration for invalid values and reports
// every problem at once.
func (cm *viperConfigManager) ValidateConfig(cfg *models.Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	if !validLogLevels[cfg.Log.Level] {
		errs = append(errs, fmt.Sprintf(
			"log.level %q is invalid, must be one of: debug, info, warn, error",
			cfg.Log.Level,
		))
	}

	if !validLogFormats[cfg.Log.Format] {
		errs = append(errs, fmt.Sprintf(
			"log.format %q is invalid, must be one of: text, json",
			cfg.Log.Format,
		))
	}

	if cfg.Watch.Debounce < 0 {
		errs = append(errs, fmt.Sprintf("watch.debounce must be non-negative, got %s", cfg.Watch.Debounce))
	}

	if cfg.Dashboard.Refresh <= 0 {
		errs = append(errs, fmt.Sprintf("dashboard.refresh must be positive, got %s", cfg.Dashboard.Refresh))
	}

	if cfg.Events.Enabled && cfg.Events.Path == "" {
		errs = append(errs, "events.path must not be empty when events are enabled")
	}

	if cfg.Alerts.StallDays < 0 {
		errs = append(errs, fmt.Sprintf("alerts.stall_days must be non-negative, got %d", cfg.Alerts.StallDays))
	}

	if cfg.Alerts.MaxReopenings < 0 {
		errs = append(errs, fmt.Sprintf("alerts.max_reopenings must be non-negative, got %d", cfg.Alerts.MaxReopenings))
	}

	if hook := cfg.Alerts.SlackWebhook; hook != "" && !strings.HasPrefix(hook, "https://") {
		errs = append(errs, fmt.Sprintf("alerts.slack_webhook %q must be an https URL", hook))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
