package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gdra/pkg/contracts/domain"
)

// Paths contains all resolved file system paths for one run.
// This is the single source of truth for every path the pipeline
// reads from or writes to.
type Paths struct {
	WorkDir   string
	DataDir   string
	OutputDir string
	LogsDir   string

	// Per-source input directories
	SourceDirs map[string]string

	// Well-known output artifacts
	UnifiedDatasetCSV   string
	CoverageMatrixCSV   string
	ValidationReportTXT string
	RunManifestJSON     string
}

// ResolvePaths builds the path set from the configuration. Relative
// directories are anchored at the working directory; absolute paths
// pass through unchanged.
func ResolvePaths(cfg *Config) (*Paths, error) {
	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	anchor := func(dir string) string {
		if filepath.IsAbs(dir) {
			return dir
		}
		return filepath.Join(workDir, dir)
	}

	dataDir := anchor(cfg.Paths.DataDir)
	outputDir := anchor(cfg.Paths.OutputDir)

	sourceDir := func(dir string) string {
		if filepath.IsAbs(dir) {
			return dir
		}
		return filepath.Join(dataDir, dir)
	}

	paths := &Paths{
		WorkDir:   workDir,
		DataDir:   dataDir,
		OutputDir: outputDir,
		LogsDir:   anchor(cfg.Paths.LogsDir),

		SourceDirs: map[string]string{
			domain.SourceNDGain:      sourceDir(cfg.Sources.NDGainDir),
			domain.SourceNTL:         sourceDir(cfg.Sources.NTLDir),
			domain.SourceEMDAT:       sourceDir(cfg.Sources.EMDATDir),
			domain.SourceGDACS:       sourceDir(cfg.Sources.GDACSDir),
			domain.SourceIMF:         sourceDir(cfg.Sources.IMFDir),
			domain.SourceWDI:         sourceDir(cfg.Sources.WDIDir),
			domain.SourceHDR:         sourceDir(cfg.Sources.HDRDir),
			domain.SourceWGI:         sourceDir(cfg.Sources.WGIDir),
			domain.SourceINFORM:      sourceDir(cfg.Sources.INFORMDir),
			domain.SourceFTS:         sourceDir(cfg.Sources.FTSDir),
			domain.SourceDesinventar: sourceDir(cfg.Sources.DesinventarDir),
			domain.SourceBarroLee:    sourceDir(cfg.Sources.BarroLeeDir),
			domain.SourceOWID:        sourceDir(cfg.Sources.OWIDDir),
		},

		UnifiedDatasetCSV:   filepath.Join(outputDir, UnifiedDatasetFile),
		CoverageMatrixCSV:   filepath.Join(outputDir, CoverageMatrixFile),
		ValidationReportTXT: filepath.Join(outputDir, ValidationReportFile),
		RunManifestJSON:     filepath.Join(outputDir, RunManifestFile),
	}

	return paths, nil
}

// SourceDir returns the input directory for a source key.
func (p *Paths) SourceDir(source string) string {
	return p.SourceDirs[source]
}

// EnsureDirectories creates the output and log directories if they
// don't exist. Input directories are the operator's responsibility.
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.OutputDir,
		p.LogsDir,
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// LogPathResolution logs the resolved path set for debugging
func (p *Paths) LogPathResolution() {
	logger := slog.Default()
	if logger == nil {
		return
	}

	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("work", p.WorkDir),
			slog.String("data", p.DataDir),
			slog.String("output", p.OutputDir),
			slog.String("logs", p.LogsDir),
		),
		slog.Group("artifacts",
			slog.String("unified_dataset", p.UnifiedDatasetCSV),
			slog.String("coverage_matrix", p.CoverageMatrixCSV),
			slog.String("validation_report", p.ValidationReportTXT),
			slog.String("run_manifest", p.RunManifestJSON),
		))
}
