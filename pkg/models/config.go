package models

import "time"

// LogConfig controls the slog logger built for the CLI.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// WatchConfig controls the project watcher.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" mapstructure:"debounce"`
}

// EventsConfig controls the phase transition event log.
type EventsConfig struct {
	Path    string `yaml:"path" mapstructure:"path"`
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
}

// DashboardConfig controls the TUI dashboard.
type DashboardConfig struct {
	Refresh time.Duration `yaml:"refresh" mapstructure:"refresh"`
}

// OutputConfig controls default CLI output.
type OutputConfig struct {
	JSON bool `yaml:"json" mapstructure:"json"`
}

// AlertsConfig controls phase alerts evaluated over the event log and the
// optional Slack webhook they are posted to.
type AlertsConfig struct {
	StallDays     int    `yaml:"stall_days" mapstructure:"stall_days"`
	MaxReopenings int    `yaml:"max_reopenings" mapstructure:"max_reopenings"`
	SlackWebhook  string `yaml:"slack_webhook" mapstructure:"slack_webhook"`
}

// Config holds settings read from .phasescope.yaml via Viper.
type Config struct {
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Watch     WatchConfig     `yaml:"watch" mapstructure:"watch"`
	Events    EventsConfig    `yaml:"events" mapstructure:"events"`
	Dashboard DashboardConfig `yaml:"dashboard" mapstructure:"dashboard"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
	Alerts    AlertsConfig    `yaml:"alerts" mapstructure:"alerts"`
}
