package http

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gdra/internal/config"
	"gdra/internal/operations"
	"gdra/internal/services"
)

func healthTestPaths(t *testing.T) *config.Paths {
	t.Helper()
	dir := t.TempDir()
	return &config.Paths{
		OutputDir:           dir,
		UnifiedDatasetCSV:   filepath.Join(dir, config.UnifiedDatasetFile),
		CoverageMatrixCSV:   filepath.Join(dir, config.CoverageMatrixFile),
		ValidationReportTXT: filepath.Join(dir, config.ValidationReportFile),
		RunManifestJSON:     filepath.Join(dir, config.RunManifestFile),
	}
}

// writeServableRun drops a completed run's artifacts so readiness
// checks pass.
func writeServableRun(t *testing.T, paths *config.Paths) {
	t.Helper()
	require.NoError(t, os.WriteFile(paths.UnifiedDatasetCSV, []byte("iso3,year\nKEN,2010\n"), 0o644))
	require.NoError(t, os.WriteFile(paths.CoverageMatrixCSV, []byte("column,coverage_pct,non_null_count\n"), 0o644))
	require.NoError(t, os.WriteFile(paths.ValidationReportTXT, []byte("Status: PASS\n"), 0o644))

	m := operations.NewRunManifest("run-health")
	m.MarkCompleted()
	require.NoError(t, m.SaveToFile(paths.RunManifestJSON))
}

func newHealthRouter(paths *config.Paths) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHealthHandler(services.NewHealthService("1.2.3", paths, logger), logger)

	r := chi.NewRouter()
	r.Get("/health", handler.HealthCheck)
	r.Get("/health/ready", handler.ReadinessCheck)
	r.Get("/health/live", handler.LivenessCheck)
	r.Get("/version", handler.Version)
	return r
}

func TestHealthHandler_HealthCheck(t *testing.T) {
	router := newHealthRouter(healthTestPaths(t))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec.Body)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "1.2.3", body["version"])
}

func TestHealthHandler_ReadinessCheck(t *testing.T) {
	t.Run("no artifacts yet", func(t *testing.T) {
		router := newHealthRouter(healthTestPaths(t))

		req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		body := decodeJSON(t, rec.Body)
		assert.Equal(t, "not_ready", body["status"])
	})

	t.Run("completed run on disk", func(t *testing.T) {
		paths := healthTestPaths(t)
		writeServableRun(t, paths)
		router := newHealthRouter(paths)

		req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeJSON(t, rec.Body)
		assert.Equal(t, "ready", body["status"])
	})
}

func TestHealthHandler_LivenessCheck(t *testing.T) {
	router := newHealthRouter(healthTestPaths(t))

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec.Body)
	assert.Equal(t, "alive", body["status"])

	runtimeInfo, ok := body["runtime"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, runtimeInfo, "go_version")
}

func TestHealthHandler_Version(t *testing.T) {
	router := newHealthRouter(healthTestPaths(t))

	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec.Body)
	assert.Equal(t, "1.2.3", body["version"])
	assert.Contains(t, body, "go_version")
	assert.Contains(t, body, "uptime")
}
