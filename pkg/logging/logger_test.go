package logging

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flightdeck/pkg/config"
)

func TestInit(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(prev)
		EnableTrace = false
	})

	path := filepath.Join(t.TempDir(), "logs", "flightdeck.log")
	cfg := &config.LogConfig{Path: path, Level: "DEBUG", MaxSizeMB: 1, Trace: true}

	var console bytes.Buffer
	cleanup, err := initWith(cfg, &console)
	require.NoError(t, err)

	slog.Debug("debug line")
	slog.Info("info line")
	TraceDefault("trace line")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "debug line")
	assert.Contains(t, string(data), "info line")
	assert.Contains(t, string(data), "trace line")
	assert.True(t, EnableTrace)

	// Console is capped at INFO.
	assert.Contains(t, console.String(), "info line")
	assert.NotContains(t, console.String(), "debug line")
}

func TestInit_RotatesPreviousRun(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	dir := t.TempDir()
	path := filepath.Join(dir, "flightdeck.log")
	require.NoError(t, os.WriteFile(path, []byte("previous run\n"), 0o644))

	var console bytes.Buffer
	cleanup, err := initWith(&config.LogConfig{Path: path, Level: "INFO", MaxBackups: 2}, &console)
	require.NoError(t, err)
	slog.Info("new run")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "previous run")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "current log plus one backup")
}

func TestInit_ConsoleOnly(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var console bytes.Buffer
	cleanup, err := initWith(&config.LogConfig{Level: "WARN"}, &console)
	require.NoError(t, err)
	defer cleanup()

	slog.Info("hidden")
	slog.Warn("shown")
	assert.NotContains(t, console.String(), "hidden")
	assert.Contains(t, console.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"Warn", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},
		{"loud", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestMultiHandler(t *testing.T) {
	var a, b bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&a, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&b, &slog.HandlerOptions{Level: slog.LevelError}),
	}}
	assert.True(t, h.Enabled(context.Background(), slog.LevelDebug))

	l := slog.New(h).With("component", "registry").WithGroup("ev")
	l.Info("registered", "name", "AP_MASTER")
	assert.Contains(t, a.String(), "component=registry")
	assert.Contains(t, a.String(), "ev.name=AP_MASTER")
	assert.Empty(t, b.String())
}
