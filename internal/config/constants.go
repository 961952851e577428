package config

import (
	"time"

	"gdra/pkg/contracts"
)

// Application constants for the disaster resilience analytics pipeline
const (
	// Application Info
	AppName    = "Global Disaster Resilience Analytics"
	AppVersion = contracts.Version

	// Output artifact names (written under the output directory)
	UnifiedDatasetFile   = "unified_resilience_dataset.csv"
	CoverageMatrixFile   = "coverage_matrix.csv"
	ValidationReportFile = "validation_report.txt"
	RunManifestFile      = "run_manifest.json"

	// File Paths (relative to working directory)
	DefaultDataDir   = "data"
	DefaultOutputDir = "output"
	DefaultLogsDir   = "logs"

	// Operation Timeouts
	DefaultRunTimeout   = 30 * time.Minute
	ExtractStageTimeout = 15 * time.Minute

	// Network Timeouts
	DefaultHTTPTimeout = 30 * time.Second

	// Log Settings
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "json"
	DefaultLogFilePath = "logs/app.log"
	MaxLogFileSize     = 100 * 1024 * 1024 // 100MB

	// API Endpoints (internal)
	APIBasePath        = "/api/v1"
	HealthEndpoint     = "/api/v1/health"
	DatasetEndpoint    = "/api/v1/dataset"
	CoverageEndpoint   = "/api/v1/coverage"
	ValidationEndpoint = "/api/v1/validation"
	ManifestEndpoint   = "/api/v1/manifest"
	MetricsEndpoint    = "/metrics"
)
