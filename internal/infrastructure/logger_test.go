package infrastructure

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendpulse/internal/config"
)

func TestInitializeLogger(t *testing.T) {
	t.Cleanup(ResetLoggerForTesting)
	ResetLoggerForTesting()

	cfg := config.LoggingConfig{
		Level:    "debug",
		Format:   "json",
		Output:   "file",
		FilePath: filepath.Join(t.TempDir(), "app.log"),
	}

	logger, err := InitializeLogger(cfg)
	require.NoError(t, err)
	require.NotNil(t, logger)

	// A second call returns the already-initialized instance.
	again, err := InitializeLogger(config.LoggingConfig{Output: "console"})
	require.NoError(t, err)
	assert.Same(t, logger, again)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLogLevel(tt.in), "level=%q", tt.in)
	}
}

func TestTraceIDContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx))

	ctx = WithTraceID(ctx, "abc-123")
	assert.Equal(t, "abc-123", GetTraceID(ctx))

	// EnsureTraceID keeps an existing id and generates one otherwise.
	assert.Equal(t, "abc-123", GetTraceID(EnsureTraceID(ctx)))
	generated := GetTraceID(EnsureTraceID(context.Background()))
	assert.NotEmpty(t, generated)
}
