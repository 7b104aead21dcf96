package config

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger returns a slog.Logger for the named service configured from GO_ENV and LOG_LEVEL.
// Production uses the JSON handler, otherwise the text handler.
// LOG_LEVEL may be debug, info, warn or error (default: info).
func NewLogger(service string) *slog.Logger {
	return newLogger(os.Stdout, service, os.Getenv("GO_ENV"), os.Getenv("LOG_LEVEL"))
}

func newLogger(w io.Writer, service, env, levelName string) *slog.Logger {
	level := slog.LevelInfo
	if levelName != "" {
		// Unknown names keep the default.
		_ = level.UnmarshalText([]byte(levelName))
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if env == "production" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With("service", service)
}
