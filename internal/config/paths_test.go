package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gdra/pkg/contracts/domain"
)

func TestResolvePaths(t *testing.T) {
	cfg := Default()

	paths, err := ResolvePaths(cfg)
	require.NoError(t, err)

	workDir, err := os.Getwd()
	require.NoError(t, err)

	assert.Equal(t, workDir, paths.WorkDir)
	assert.Equal(t, filepath.Join(workDir, "data"), paths.DataDir)
	assert.Equal(t, filepath.Join(workDir, "output"), paths.OutputDir)

	// Source dirs nest under the data dir.
	assert.Equal(t, filepath.Join(workDir, "data", "emdat"), paths.SourceDir(domain.SourceEMDAT))
	assert.Equal(t, filepath.Join(workDir, "data", "GDACS"), paths.SourceDir(domain.SourceGDACS))

	// Artifacts nest under the output dir.
	assert.Equal(t, filepath.Join(workDir, "output", UnifiedDatasetFile), paths.UnifiedDatasetCSV)
	assert.Equal(t, filepath.Join(workDir, "output", CoverageMatrixFile), paths.CoverageMatrixCSV)
	assert.Equal(t, filepath.Join(workDir, "output", ValidationReportFile), paths.ValidationReportTXT)
	assert.Equal(t, filepath.Join(workDir, "output", RunManifestFile), paths.RunManifestJSON)
}

func TestResolvePaths_AbsoluteOverrides(t *testing.T) {
	cfg := Default()
	cfg.Paths.DataDir = "/srv/gdra/data"
	cfg.Sources.WDIDir = "/mnt/bulk/wdi"

	paths, err := ResolvePaths(cfg)
	require.NoError(t, err)

	assert.Equal(t, "/srv/gdra/data", paths.DataDir)
	assert.Equal(t, "/mnt/bulk/wdi", paths.SourceDir(domain.SourceWDI))
	assert.Equal(t, filepath.Join("/srv/gdra/data", "emdat"), paths.SourceDir(domain.SourceEMDAT))
}

func TestEnsureDirectories(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := Default()
	cfg.Paths.OutputDir = filepath.Join(tmpDir, "out")
	cfg.Paths.LogsDir = filepath.Join(tmpDir, "logs")

	paths, err := ResolvePaths(cfg)
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())

	assert.DirExists(t, filepath.Join(tmpDir, "out"))
	assert.DirExists(t, filepath.Join(tmpDir, "logs"))
}

func TestFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	existing := filepath.Join(tmpDir, "present.txt")
	require.NoError(t, os.WriteFile(existing, []byte("x"), 0o644))

	assert.True(t, FileExists(existing))
	assert.False(t, FileExists(filepath.Join(tmpDir, "absent.txt")))
}
