package operations

import (
	"time"

	"gdra/internal/report"
	"gdra/pkg/contracts/domain"
)

// Pipeline stage identifiers
const (
	StageIDExtract  = "extract"
	StageIDFuse     = "fuse"
	StageIDImpute   = "impute"
	StageIDIndices  = "indices"
	StageIDValidate = "validate"
	StageIDExport   = "export"
)

// Pipeline stage names
const (
	StageNameExtract  = "Source Extraction"
	StageNameFuse     = "Dataset Fusion"
	StageNameImpute   = "Gap Imputation"
	StageNameIndices  = "Index Computation"
	StageNameValidate = "Validation Battery"
	StageNameExport   = "Artifact Export"
)

// Context keys for operation state
const (
	ContextKeyRunData          = "run_data"
	ContextKeyRunManifest      = "run_manifest"
	ContextKeyYearStart        = "year_start"
	ContextKeyYearEnd          = "year_end"
	ContextKeyRecordsExtracted = "records_extracted"
	ContextKeySourcesRead      = "sources_read"
	ContextKeyRowsFused        = "rows_fused"
	ContextKeyValuesImputed    = "values_imputed"
	ContextKeyIndicesComputed  = "indices_computed"
)

// Default timeouts
const (
	DefaultStageTimeout    = 30 * time.Minute
	DefaultExtractTimeout  = 15 * time.Minute
	DefaultFuseTimeout     = 10 * time.Minute
	DefaultImputeTimeout   = 10 * time.Minute
	DefaultIndicesTimeout  = 10 * time.Minute
	DefaultValidateTimeout = 5 * time.Minute
	DefaultExportTimeout   = 10 * time.Minute
)

// ExecutionMode defines how stages are executed
type ExecutionMode string

const (
	ExecutionModeSequential ExecutionMode = "sequential"
)

// RetryConfig defines retry behavior for stages
type RetryConfig struct {
	MaxAttempts  int           `json:"max_attempts"`
	InitialDelay time.Duration `json:"initial_delay"`
	MaxDelay     time.Duration `json:"max_delay"`
	Multiplier   float64       `json:"multiplier"`
}

// NewRetryConfig returns the default retry configuration. Stage errors
// are almost never retryable (bad input stays bad), so one attempt is
// the default.
func NewRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  1,
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}

// RunData carries the in-memory dataset through the pipeline. The
// extract stage fills Records; fusion exchanges them for the table;
// imputation and index computation mutate the table in place; the
// validate stage computes Coverage; export persists everything. Each
// stage owns the data exclusively while it runs, so no locking.
type RunData struct {
	Records  []domain.CanonicalRecord
	Table    *domain.FusedTable
	Coverage []domain.CoverageRow

	// Collector accumulates counters and findings across all stages.
	Collector *report.Collector
}

// NewRunData creates the shared data container for one run.
func NewRunData() *RunData {
	return &RunData{Collector: report.NewCollector()}
}

// OperationRequest represents a request to execute a pipeline run
type OperationRequest struct {
	ID         string                 `json:"id"`
	YearStart  int                    `json:"year_start,omitempty"`
	YearEnd    int                    `json:"year_end,omitempty"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
}

// OperationResponse represents the response from a pipeline run
type OperationResponse struct {
	ID       string                `json:"id"`
	Status   OperationStatusValue  `json:"status"`
	Duration time.Duration         `json:"duration"`
	Steps    map[string]*StepState `json:"steps"`
	Error    string                `json:"error,omitempty"`
}
