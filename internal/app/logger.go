package app

import (
	"log/slog"
	"os"
)

// NewLogger returns the application logger. Production always emits JSON
// without source annotation; elsewhere LOG_FORMAT selects "json" or the
// human-readable text default, with source locations attached.
func NewLogger(cfg *Config) *slog.Logger {
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	opts := &slog.HandlerOptions{AddSource: true}
	if cfg != nil && cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
