package observability

import (
	"io"
	"log/slog"
	"strings"

	"github.com/valter-silva-au/phasescope/pkg/models"
)

// ParseLevel maps a config level name to a slog level. Unknown names are
// warn.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// NewLogger builds the process logger from the log section of the config.
// Format "json" selects the JSON handler; anything else is text.
func NewLogger(cfg models.LogConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With("app", "phasescope")
}
