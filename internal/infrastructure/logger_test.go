package infrastructure

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gdra/internal/config"
)

func fileConfig(t *testing.T) config.LoggingConfig {
	t.Helper()
	return config.LoggingConfig{
		Level:    "debug",
		Format:   "json",
		Output:   "file",
		FilePath: filepath.Join(t.TempDir(), "pipeline.log"),
	}
}

// lastLogLine re-reads the log file and decodes its final JSON record.
func lastLogLine(t *testing.T, path string) map[string]any {
	t.Helper()
	require.NoError(t, CloseLogFile())

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &entry))
	return entry
}

func TestInitializeLogger_WritesJSONToFile(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	cfg := fileConfig(t)
	logger, err := InitializeLogger(cfg)
	require.NoError(t, err)
	require.NotNil(t, logger)

	logger.Info("sources resolved", "source_count", 13)

	entry := lastLogLine(t, cfg.FilePath)
	assert.Equal(t, "sources resolved", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
	assert.EqualValues(t, 13, entry["source_count"])
}

func TestInitializeLogger_IsIdempotent(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	cfg := fileConfig(t)
	first, err := InitializeLogger(cfg)
	require.NoError(t, err)

	// A second call must not reopen files or replace the instance.
	second, err := InitializeLogger(cfg)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Same(t, first, GetLogger())
}

func TestLogger_InjectsTraceIDFromContext(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	cfg := fileConfig(t)
	logger, err := InitializeLogger(cfg)
	require.NoError(t, err)

	ctx := WithTraceID(context.Background(), "run-trace-42")
	logger.InfoContext(ctx, "stage complete")

	entry := lastLogLine(t, cfg.FilePath)
	assert.Equal(t, "run-trace-42", entry["trace_id"])
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		logDebug bool
		want     bool
	}{
		{name: "debug passes at debug", level: "debug", logDebug: true, want: true},
		{name: "debug dropped at info", level: "info", logDebug: true, want: false},
		{name: "warn alias", level: "warning", logDebug: false, want: true},
		{name: "unknown level defaults to info", level: "verbose", logDebug: false, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetLoggerForTesting()
			defer ResetLoggerForTesting()

			cfg := fileConfig(t)
			cfg.Level = tt.level
			logger, err := InitializeLogger(cfg)
			require.NoError(t, err)

			if tt.logDebug {
				logger.Debug("probe")
			} else {
				logger.Warn("probe")
			}
			require.NoError(t, CloseLogFile())

			content, err := os.ReadFile(cfg.FilePath)
			require.NoError(t, err)
			if tt.want {
				assert.Contains(t, string(content), "probe")
			} else {
				assert.NotContains(t, string(content), "probe")
			}
		})
	}
}

func TestInitializeLogger_StdoutOnlySkipsFile(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	path := filepath.Join(t.TempDir(), "unused.log")
	_, err := InitializeLogger(config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "stdout",
		FilePath: path,
	})
	require.NoError(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "stdout output must not create the log file")
}

func TestEnsureTraceID(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	ctx := EnsureTraceID(context.Background())
	traceID := GetTraceID(ctx)
	require.NotEmpty(t, traceID)

	// An existing trace ID survives a second pass through the edge.
	again := EnsureTraceID(ctx)
	assert.Equal(t, traceID, GetTraceID(again))

	// Distinct contexts get distinct IDs.
	other := ContextWithTraceID(context.Background())
	assert.NotEqual(t, traceID, GetTraceID(other))
}

func TestLoggerWithContext(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	cfg := fileConfig(t)
	_, err := InitializeLogger(cfg)
	require.NoError(t, err)

	ctx := WithTraceID(context.Background(), "svc-trace-7")
	LoggerWithContext(ctx).Info("artifact served")

	entry := lastLogLine(t, cfg.FilePath)
	assert.Equal(t, "svc-trace-7", entry["trace_id"])

	// Without a trace ID the plain process logger comes back.
	assert.Same(t, GetLogger(), LoggerWithContext(context.Background()))
}
