// Package logging builds the structured logger used across the service.
// It wraps slog with configurable log levels and output formats.
package logging

import (
	"io"
	"log/slog"
)

// Level represents a logging severity level.
type Level string

// Log level constants.
const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Format selects the slog handler.
type Format string

// Output format constants.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Config holds logging configuration settings.
type Config struct {
	Level  Level  `toml:"level" validate:"oneof=debug info warn error"`
	Format Format `toml:"format" validate:"oneof=text json"`
}

// New creates a slog.Logger writing to w. It returns a text or JSON
// handler based on the Format setting.
func New(cfg Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.Level.ToSlogLevel(),
	}

	var handler slog.Handler
	if cfg.Format == FormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// ToSlogLevel converts the Level to its slog.Level equivalent.
// Unknown levels default to slog.LevelInfo.
func (l Level) ToSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
