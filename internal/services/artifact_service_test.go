package services

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gdra/internal/config"
	apperrors "gdra/internal/errors"
	"gdra/internal/operations"
	"gdra/pkg/contracts/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPaths(t *testing.T) *config.Paths {
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

const testDatasetCSV = `iso3,year,region,income_group,gdp_per_capita,emdat_deaths
KEN,2010,Sub-Saharan Africa,Lower middle income,1200.5,12
KEN,2011,Sub-Saharan Africa,Lower middle income,1250.75,
PHL,2010,East Asia & Pacific,Lower middle income,2200,350
`

const testCoverageCSV = `column,coverage_pct,non_null_count
gdp_per_capita,100,3
emdat_deaths,66.7,2
`

const testValidationReport = "DATASET VALIDATION REPORT\nTotal rows: 3\nStatus: PASS\n"

// writeCompletedRun lays down all three artifacts plus a completed
// manifest, the state a successful pipeline run leaves behind.
func writeCompletedRun(t *testing.T, paths *config.Paths) *operations.RunManifest {
	t.Helper()

	require.NoError(t, os.WriteFile(paths.UnifiedDatasetCSV, []byte(testDatasetCSV), 0o644))
	require.NoError(t, os.WriteFile(paths.CoverageMatrixCSV, []byte(testCoverageCSV), 0o644))
	require.NoError(t, os.WriteFile(paths.ValidationReportTXT, []byte(testValidationReport), 0o644))

	m := operations.NewRunManifest("run-test")
	m.SetHorizon(2010, 2011)
	m.SetSources([]string{domain.SourceEMDAT, domain.SourceWDI})
	m.MarkRunning()
	require.NoError(t, m.AddArtifact(config.UnifiedDatasetFile, paths.UnifiedDatasetCSV))
	require.NoError(t, m.AddArtifact(config.CoverageMatrixFile, paths.CoverageMatrixCSV))
	require.NoError(t, m.AddArtifact(config.ValidationReportFile, paths.ValidationReportTXT))
	m.MarkCompleted()
	require.NoError(t, m.SaveToFile(paths.RunManifestJSON))
	return m
}

func saveManifestWithStatus(t *testing.T, paths *config.Paths, mutate func(*operations.RunManifest)) {
	t.Helper()
	m := operations.NewRunManifest("run-test")
	if mutate != nil {
		mutate(m)
	}
	require.NoError(t, m.SaveToFile(paths.RunManifestJSON))
}

func TestArtifactService_Manifest_NoRun(t *testing.T) {
	service := NewArtifactService(testPaths(t), testLogger())

	_, err := service.Manifest(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrNoCompletedRun)
}

func TestArtifactService_Manifest_Corrupted(t *testing.T) {
	paths := testPaths(t)
	require.NoError(t, os.WriteFile(paths.RunManifestJSON, []byte("{not json"), 0o644))
	service := NewArtifactService(paths, testLogger())

	_, err := service.Manifest(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrManifestCorrupted)
}

func TestArtifactService_Manifest_ReportsUnsettledRuns(t *testing.T) {
	// The manifest endpoint is the one place failed and in-flight runs
	// stay visible.
	paths := testPaths(t)
	saveManifestWithStatus(t, paths, func(m *operations.RunManifest) {
		m.MarkFailed(assert.AnError)
	})
	service := NewArtifactService(paths, testLogger())

	manifest, err := service.Manifest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "failed", manifest.Status)
	assert.Equal(t, assert.AnError.Error(), manifest.Error)
}

func TestArtifactService_RequireCompletedRun(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*operations.RunManifest)
		wantErr error
	}{
		{
			name:    "pending run blocks reads",
			mutate:  nil,
			wantErr: apperrors.ErrRunActive,
		},
		{
			name:    "running run blocks reads",
			mutate:  func(m *operations.RunManifest) { m.MarkRunning() },
			wantErr: apperrors.ErrRunActive,
		},
		{
			name:    "failed run has nothing to serve",
			mutate:  func(m *operations.RunManifest) { m.MarkFailed(assert.AnError) },
			wantErr: apperrors.ErrNoCompletedRun,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paths := testPaths(t)
			saveManifestWithStatus(t, paths, tt.mutate)
			service := NewArtifactService(paths, testLogger())

			_, err := service.Records(context.Background(), 1, 10)
			assert.ErrorIs(t, err, tt.wantErr)

			_, _, err = service.DatasetFile(context.Background())
			assert.ErrorIs(t, err, tt.wantErr)

			_, err = service.CoverageMatrix(context.Background())
			assert.ErrorIs(t, err, tt.wantErr)

			_, err = service.ValidationReport(context.Background())
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestArtifactService_DatasetFile(t *testing.T) {
	paths := testPaths(t)
	manifest := writeCompletedRun(t, paths)
	service := NewArtifactService(paths, testLogger())

	path, info, err := service.DatasetFile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, paths.UnifiedDatasetCSV, path)

	want, ok := manifest.ArtifactByName(config.UnifiedDatasetFile)
	require.True(t, ok)
	assert.Equal(t, want.Digest, info.Digest)
	assert.Equal(t, int64(len(testDatasetCSV)), info.SizeBytes)
}

func TestArtifactService_DatasetFile_MissingOnDisk(t *testing.T) {
	// Manifest says completed but the file is gone, someone deleted it
	// out from under the service.
	paths := testPaths(t)
	writeCompletedRun(t, paths)
	require.NoError(t, os.Remove(paths.UnifiedDatasetCSV))
	service := NewArtifactService(paths, testLogger())

	_, _, err := service.DatasetFile(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrArtifactMissing)
}

func TestArtifactService_Records(t *testing.T) {
	paths := testPaths(t)
	writeCompletedRun(t, paths)
	service := NewArtifactService(paths, testLogger())
	ctx := context.Background()

	page, err := service.Records(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"iso3", "year", "region", "income_group", "gdp_per_capita", "emdat_deaths"}, page.Columns)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 2, page.PerPage)
	assert.Equal(t, 3, page.TotalRows)
	require.Len(t, page.Records, 2)

	// Cells come back typed: identity strings, year as int, measures as
	// floats, empty cells as null.
	first := page.Records[0]
	assert.Equal(t, "KEN", first["iso3"])
	assert.Equal(t, 2010, first["year"])
	assert.Equal(t, "Sub-Saharan Africa", first["region"])
	assert.Equal(t, 1200.5, first["gdp_per_capita"])
	assert.Equal(t, float64(12), first["emdat_deaths"])

	second := page.Records[1]
	assert.Equal(t, 2011, second["year"])
	assert.Nil(t, second["emdat_deaths"])

	page2, err := service.Records(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page2.Records, 1)
	assert.Equal(t, "PHL", page2.Records[0]["iso3"])
	assert.Equal(t, 3, page2.TotalRows)

	// Pages past the end are empty but still report the total.
	page9, err := service.Records(ctx, 9, 2)
	require.NoError(t, err)
	assert.Empty(t, page9.Records)
	assert.Equal(t, 3, page9.TotalRows)
}

func TestArtifactService_Records_ClampsPagination(t *testing.T) {
	paths := testPaths(t)
	writeCompletedRun(t, paths)
	service := NewArtifactService(paths, testLogger())

	page, err := service.Records(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, DefaultRecordsPerPage, page.PerPage)

	page, err = service.Records(context.Background(), 1, MaxRecordsPerPage+1)
	require.NoError(t, err)
	assert.Equal(t, MaxRecordsPerPage, page.PerPage)
}

func TestArtifactService_CoverageMatrix(t *testing.T) {
	paths := testPaths(t)
	writeCompletedRun(t, paths)
	service := NewArtifactService(paths, testLogger())

	rows, err := service.CoverageMatrix(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, domain.CoverageRow{Column: "gdp_per_capita", CoveragePct: 100, NonNullCount: 3}, rows[0])
	assert.Equal(t, domain.CoverageRow{Column: "emdat_deaths", CoveragePct: 66.7, NonNullCount: 2}, rows[1])
}

func TestArtifactService_CoverageMatrix_Malformed(t *testing.T) {
	paths := testPaths(t)
	writeCompletedRun(t, paths)
	require.NoError(t, os.WriteFile(paths.CoverageMatrixCSV,
		[]byte("column,coverage_pct,non_null_count\ngdp,not-a-number,3\n"), 0o644))
	service := NewArtifactService(paths, testLogger())

	_, err := service.CoverageMatrix(context.Background())
	assert.ErrorContains(t, err, "coverage_pct")
}

func TestArtifactService_ValidationReport(t *testing.T) {
	paths := testPaths(t)
	writeCompletedRun(t, paths)
	service := NewArtifactService(paths, testLogger())

	report, err := service.ValidationReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testValidationReport, report)
}

func TestArtifactService_VerifyArtifacts(t *testing.T) {
	paths := testPaths(t)
	writeCompletedRun(t, paths)
	service := NewArtifactService(paths, testLogger())

	verifications, err := service.VerifyArtifacts(context.Background())
	require.NoError(t, err)
	require.Len(t, verifications, 3)
	for _, v := range verifications {
		assert.True(t, v.Verified, "artifact %s should verify clean", v.Name)
		assert.Equal(t, v.Expected, v.Actual)
	}
}

func TestArtifactService_VerifyArtifacts_DetectsTampering(t *testing.T) {
	paths := testPaths(t)
	writeCompletedRun(t, paths)

	file, err := os.OpenFile(paths.UnifiedDatasetCSV, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = file.WriteString("ZZZ,2012,,,1,1\n")
	require.NoError(t, err)
	require.NoError(t, file.Close())

	service := NewArtifactService(paths, testLogger())
	verifications, err := service.VerifyArtifacts(context.Background())
	require.NoError(t, err)

	byName := make(map[string]ArtifactVerification, len(verifications))
	for _, v := range verifications {
		byName[v.Name] = v
	}
	assert.False(t, byName[config.UnifiedDatasetFile].Verified)
	assert.NotEqual(t, byName[config.UnifiedDatasetFile].Expected, byName[config.UnifiedDatasetFile].Actual)
	assert.True(t, byName[config.CoverageMatrixFile].Verified)
	assert.True(t, byName[config.ValidationReportFile].Verified)
}
