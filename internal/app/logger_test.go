package app_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/procura-erp/procura/internal/app"
)

func TestNewLoggerFormatSelection(t *testing.T) {
	logger := app.NewLogger(&app.Config{LogFormat: "pretty"})
	_, ok := logger.Handler().(*slog.TextHandler)
	require.True(t, ok, "default format is text")

	logger = app.NewLogger(&app.Config{LogFormat: "json"})
	_, ok = logger.Handler().(*slog.JSONHandler)
	require.True(t, ok)

	// Production emits JSON regardless of the configured format.
	logger = app.NewLogger(&app.Config{AppEnv: "production", LogFormat: "pretty"})
	_, ok = logger.Handler().(*slog.JSONHandler)
	require.True(t, ok)
}
