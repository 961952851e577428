package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"gdra/internal/config"
	apperrors "gdra/internal/errors"
	"gdra/internal/exporter"
	"gdra/internal/operations"
	"gdra/pkg/contracts/domain"
)

// Pagination bounds for the records endpoint.
const (
	DefaultRecordsPerPage = 100
	MaxRecordsPerPage     = 500
)

// ArtifactService serves the persisted pipeline artifacts. It never
// recomputes anything: every byte it returns was written by a pipeline
// run, and the run manifest decides whether the files on disk are
// safe to serve.
type ArtifactService struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewArtifactService creates an artifact service over the resolved
// artifact paths.
func NewArtifactService(paths *config.Paths, logger *slog.Logger) *ArtifactService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ArtifactService{
		paths:  paths,
		logger: logger.With(slog.String("component", "artifact_service")),
	}
}

// RecordPage is one page of unified dataset rows. Columns carries the
// CSV header order since the row objects themselves are unordered.
type RecordPage struct {
	Columns   []string                 `json:"columns"`
	Records   []map[string]interface{} `json:"records"`
	Page      int                      `json:"page"`
	PerPage   int                      `json:"per_page"`
	TotalRows int                      `json:"total_rows"`
}

// ArtifactVerification is the result of recomputing one artifact digest
// against the manifest entry.
type ArtifactVerification struct {
	Name     string `json:"name"`
	Expected string `json:"expected_digest"`
	Actual   string `json:"actual_digest,omitempty"`
	Verified bool   `json:"verified"`
}

// Manifest loads the run manifest regardless of run outcome. Failed and
// in-flight runs stay reportable through it; only the artifact getters
// insist on a completed run.
func (s *ArtifactService) Manifest(ctx context.Context) (*operations.RunManifest, error) {
	manifest, err := operations.LoadManifestFromFile(s.paths.RunManifestJSON)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("run manifest %s: %w", config.RunManifestFile, apperrors.ErrNoCompletedRun)
		}
		logArtifactError(ctx, "load_manifest", "run manifest unreadable",
			slog.String("path", s.paths.RunManifestJSON),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("run manifest %s: %w", config.RunManifestFile, apperrors.ErrManifestCorrupted)
	}
	return manifest, nil
}

// requireCompletedRun gates artifact reads on a settled run. A running
// manifest means the pipeline is mid-rewrite and the files on disk may
// be torn; a failed one means they may be partial.
func (s *ArtifactService) requireCompletedRun(ctx context.Context) (*operations.RunManifest, error) {
	manifest, err := s.Manifest(ctx)
	if err != nil {
		return nil, err
	}

	switch manifest.Status {
	case "completed":
		return manifest, nil
	case "running", "pending":
		return nil, fmt.Errorf("run %s is %s: %w", manifest.RunID, manifest.Status, apperrors.ErrRunActive)
	default:
		return nil, fmt.Errorf("last run %s ended %s: %w", manifest.RunID, manifest.Status, apperrors.ErrNoCompletedRun)
	}
}

// DatasetFile returns the on-disk path of the unified dataset together
// with its manifest entry, for download handlers to serve directly.
func (s *ArtifactService) DatasetFile(ctx context.Context) (string, operations.ArtifactInfo, error) {
	manifest, err := s.requireCompletedRun(ctx)
	if err != nil {
		return "", operations.ArtifactInfo{}, err
	}

	path := s.paths.UnifiedDatasetCSV
	if !config.FileExists(path) {
		logArtifactError(ctx, "dataset_file", "unified dataset missing on disk",
			slog.String("path", path),
			slog.String("run_id", manifest.RunID))
		return "", operations.ArtifactInfo{}, fmt.Errorf("%s: %w", config.UnifiedDatasetFile, apperrors.ErrArtifactMissing)
	}

	info, _ := manifest.ArtifactByName(config.UnifiedDatasetFile)
	return path, info, nil
}

// Records reads one page of the unified dataset. The CSV is scanned in
// a single pass so the total row count comes back with every page.
func (s *ArtifactService) Records(ctx context.Context, page, perPage int) (*RecordPage, error) {
	if _, err := s.requireCompletedRun(ctx); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultRecordsPerPage
	}
	if perPage > MaxRecordsPerPage {
		perPage = MaxRecordsPerPage
	}

	file, err := os.Open(s.paths.UnifiedDatasetCSV)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", config.UnifiedDatasetFile, apperrors.ErrArtifactMissing)
		}
		return nil, fmt.Errorf("failed to open unified dataset: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	columns, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read unified dataset header: %w", err)
	}

	skip := (page - 1) * perPage
	records := make([]map[string]interface{}, 0, perPage)
	total := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read unified dataset row %d: %w", total+1, err)
		}
		if total >= skip && len(records) < perPage {
			records = append(records, recordFromRow(columns, row))
		}
		total++
	}

	return &RecordPage{
		Columns:   columns,
		Records:   records,
		Page:      page,
		PerPage:   perPage,
		TotalRows: total,
	}, nil
}

// recordFromRow types the CSV cells: identity columns stay strings, the
// year becomes an int, and every other column is a float or null.
func recordFromRow(columns, row []string) map[string]interface{} {
	record := make(map[string]interface{}, len(columns))
	for i, column := range columns {
		if i >= len(row) {
			record[column] = nil
			continue
		}
		cell := row[i]
		switch column {
		case domain.ColumnISO3, domain.ColumnRegion, domain.ColumnIncomeGroup:
			record[column] = cell
		case domain.ColumnYear:
			year, err := strconv.Atoi(cell)
			if err != nil {
				record[column] = cell
				continue
			}
			record[column] = year
		default:
			if cell == "" {
				record[column] = nil
				continue
			}
			value, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				record[column] = cell
				continue
			}
			record[column] = value
		}
	}
	return record
}

// CoverageMatrix reads the coverage matrix artifact back into rows.
func (s *ArtifactService) CoverageMatrix(ctx context.Context) ([]domain.CoverageRow, error) {
	if _, err := s.requireCompletedRun(ctx); err != nil {
		return nil, err
	}

	file, err := os.Open(s.paths.CoverageMatrixCSV)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", config.CoverageMatrixFile, apperrors.ErrArtifactMissing)
		}
		return nil, fmt.Errorf("failed to open coverage matrix: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("failed to read coverage matrix header: %w", err)
	}

	var rows []domain.CoverageRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read coverage matrix row: %w", err)
		}
		if len(record) < 3 {
			return nil, fmt.Errorf("coverage matrix row has %d columns, want 3", len(record))
		}
		pct, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse coverage_pct %q: %w", record[1], err)
		}
		count, err := strconv.Atoi(record[2])
		if err != nil {
			return nil, fmt.Errorf("failed to parse non_null_count %q: %w", record[2], err)
		}
		rows = append(rows, domain.CoverageRow{
			Column:       record[0],
			CoveragePct:  pct,
			NonNullCount: count,
		})
	}
	return rows, nil
}

// ValidationReport returns the validation report text verbatim.
func (s *ArtifactService) ValidationReport(ctx context.Context) (string, error) {
	if _, err := s.requireCompletedRun(ctx); err != nil {
		return "", err
	}

	content, err := os.ReadFile(s.paths.ValidationReportTXT)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%s: %w", config.ValidationReportFile, apperrors.ErrArtifactMissing)
		}
		return "", fmt.Errorf("failed to read validation report: %w", err)
	}
	return string(content), nil
}

// VerifyArtifacts recomputes the BLAKE2b digest of every artifact the
// manifest lists and compares it with the recorded one. Two runs over
// identical inputs should verify clean against each other's manifests.
func (s *ArtifactService) VerifyArtifacts(ctx context.Context) ([]ArtifactVerification, error) {
	manifest, err := s.requireCompletedRun(ctx)
	if err != nil {
		return nil, err
	}

	verifications := make([]ArtifactVerification, 0, len(manifest.Artifacts))
	for _, artifact := range manifest.Artifacts {
		verification := ArtifactVerification{
			Name:     artifact.Name,
			Expected: artifact.Digest,
		}
		actual, err := exporter.Digest(filepath.Join(s.paths.OutputDir, artifact.Path))
		if err != nil {
			logArtifactError(ctx, "verify_artifacts", "artifact digest failed",
				slog.String("artifact", artifact.Name),
				slog.String("error", err.Error()))
		} else {
			verification.Actual = actual
			verification.Verified = actual == artifact.Digest
		}
		verifications = append(verifications, verification)
	}
	return verifications, nil
}
