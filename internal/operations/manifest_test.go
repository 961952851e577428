package operations

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gdra/internal/config"
	"gdra/pkg/contracts/domain"
)

func TestRunManifest_StageTracking(t *testing.T) {
	m := NewRunManifest("run-1")
	assert.Equal(t, "run-1", m.RunID)
	assert.Equal(t, "pending", m.Status)
	assert.False(t, m.IsStageCompleted(StageIDExtract))

	m.RecordStageStart(StageIDExtract, StageNameExtract)
	assert.Equal(t, "running", m.Status)
	require.Len(t, m.CompletedStages, 1)
	assert.Equal(t, StageNameExtract, m.CompletedStages[0].StageName)
	assert.Equal(t, "running", m.CompletedStages[0].Status)
	assert.False(t, m.IsStageCompleted(StageIDExtract))

	m.RecordStageCompletion(StageIDExtract, map[string]interface{}{"records_extracted": 10})
	require.Len(t, m.CompletedStages, 1)
	assert.Equal(t, "completed", m.CompletedStages[0].Status)
	assert.NotEmpty(t, m.CompletedStages[0].Duration)
	assert.Equal(t, 10, m.CompletedStages[0].Metadata["records_extracted"])
	assert.True(t, m.IsStageCompleted(StageIDExtract))

	m.MarkCompleted()
	assert.Equal(t, "completed", m.Status)
}

func TestRunManifest_RetryReusesStageEntry(t *testing.T) {
	m := NewRunManifest("run-1")
	m.RecordStageStart(StageIDFuse, StageNameFuse)
	m.RecordStageFailure(StageIDFuse, assert.AnError)
	assert.Equal(t, "failed", m.Status)
	assert.Contains(t, m.Error, "stage fuse failed")
	assert.Equal(t, "failed", m.CompletedStages[0].Status)

	// A retry restarts the same entry instead of appending a second one
	// and clears the superseded failure.
	m.RecordStageStart(StageIDFuse, StageNameFuse)
	require.Len(t, m.CompletedStages, 1)
	assert.Equal(t, "running", m.CompletedStages[0].Status)
	assert.Empty(t, m.CompletedStages[0].Error)
	assert.Equal(t, "running", m.Status)
	assert.Empty(t, m.Error)
}

func TestRunManifest_MarkFailed(t *testing.T) {
	m := NewRunManifest("run-1")
	m.MarkFailed(assert.AnError)
	assert.Equal(t, "failed", m.Status)
	assert.Equal(t, assert.AnError.Error(), m.Error)

	// A recorded stage failure is more specific than the run-level
	// error and survives MarkFailed.
	m2 := NewRunManifest("run-2")
	m2.RecordStageStart(StageIDFuse, StageNameFuse)
	m2.RecordStageFailure(StageIDFuse, assert.AnError)
	m2.MarkFailed(errors.New("run aborted"))
	assert.Contains(t, m2.Error, "stage fuse failed")
}

func TestRunManifest_HorizonAndSources(t *testing.T) {
	m := NewRunManifest("run-1")
	m.SetHorizon(2005, 2015)
	m.SetSources([]string{domain.SourceEMDAT, domain.SourceWDI})

	assert.Equal(t, 2005, m.YearStart)
	assert.Equal(t, 2015, m.YearEnd)
	assert.Equal(t, []string{domain.SourceEMDAT, domain.SourceWDI}, m.Sources)
}

func TestRunManifest_AddArtifact(t *testing.T) {
	dir := t.TempDir()
	content := []byte("iso3,year\nKEN,2010\n")
	path := filepath.Join(dir, config.UnifiedDatasetFile)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	m := NewRunManifest("run-1")
	require.NoError(t, m.AddArtifact(config.UnifiedDatasetFile, path))

	a, ok := m.ArtifactByName(config.UnifiedDatasetFile)
	require.True(t, ok)
	assert.Equal(t, config.UnifiedDatasetFile, a.Path, "manifest stores the base name, not the full path")
	assert.Equal(t, int64(len(content)), a.SizeBytes)
	assert.Regexp(t, "^[0-9a-f]{64}$", a.Digest)
	assert.False(t, a.CreatedAt.IsZero())

	_, ok = m.ArtifactByName("missing.csv")
	assert.False(t, ok)

	err := m.AddArtifact("ghost.csv", filepath.Join(dir, "ghost.csv"))
	assert.ErrorContains(t, err, "failed to stat artifact")
}

func TestRunManifest_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.RunManifestFile)

	m := NewRunManifest("run-42")
	m.SetHorizon(2000, 2024)
	m.SetSources([]string{domain.SourceEMDAT, domain.SourceWDI})
	m.RecordStageStart(StageIDExtract, StageNameExtract)
	m.RecordStageCompletion(StageIDExtract, nil)
	m.MarkCompleted()

	require.NoError(t, m.SaveToFile(path))

	loaded, err := LoadManifestFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "run-42", loaded.RunID)
	assert.Equal(t, 2000, loaded.YearStart)
	assert.Equal(t, 2024, loaded.YearEnd)
	assert.Equal(t, []string{domain.SourceEMDAT, domain.SourceWDI}, loaded.Sources)
	assert.Equal(t, "completed", loaded.Status)
	assert.True(t, loaded.IsStageCompleted(StageIDExtract))

	_, err = LoadManifestFromFile(filepath.Join(dir, "absent.json"))
	assert.ErrorContains(t, err, "failed to read manifest")
}
