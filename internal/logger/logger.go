// Package logger constructs the application's slog logger.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// Config selects handler level, format and destination.
type Config struct {
	Level  string
	Format string
	Output string
}

// NewLogger builds a slog logger from cfg. When output is nil the
// destination is resolved from cfg.Output; tests pass an explicit writer to
// capture log output.
func NewLogger(cfg Config, output io.Writer) *slog.Logger {
	if output == nil {
		switch cfg.Output {
		case "stderr":
			output = os.Stderr
		case "file":
			file, err := os.OpenFile("app.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
			if err != nil {
				slog.Warn("failed to open log file, falling back to stdout", "error", err)
				output = os.Stdout
			} else {
				output = file
			}
		default:
			output = os.Stdout
		}
	}

	level := new(slog.Level)
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		*level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}
	return slog.New(handler)
}
