package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"gdra/internal/catalog"
	"gdra/internal/config"
	"gdra/internal/exporter"
	"gdra/internal/fusion"
	"gdra/internal/impute"
	"gdra/internal/indices"
	"gdra/internal/report"
	"gdra/internal/sources"
	"gdra/pkg/contracts/domain"
)

// runDataFromState returns the shared data container the manager
// placed in the operation state before execution started.
func runDataFromState(stageID string, state *OperationState) (*RunData, error) {
	v, ok := state.GetContext(ContextKeyRunData)
	if !ok {
		return nil, NewValidationError(stageID, "run data missing from operation state")
	}
	data, ok := v.(*RunData)
	if !ok || data == nil {
		return nil, NewValidationError(stageID, "run data has unexpected type")
	}
	return data, nil
}

// manifestFromState returns the run manifest for the current run.
func manifestFromState(stageID string, state *OperationState) (*RunManifest, error) {
	v, ok := state.GetContext(ContextKeyRunManifest)
	if !ok {
		return nil, NewValidationError(stageID, "run manifest missing from operation state")
	}
	manifest, ok := v.(*RunManifest)
	if !ok || manifest == nil {
		return nil, NewValidationError(stageID, "run manifest has unexpected type")
	}
	return manifest, nil
}

// horizonFromState reads the year horizon, preferring per-request
// overrides over the configured defaults.
func horizonFromState(state *OperationState, cfg *config.Config) (int, int) {
	yearStart := cfg.Pipeline.YearStart
	yearEnd := cfg.Pipeline.YearEnd
	if v, ok := state.GetContext(ContextKeyYearStart); ok {
		if y, ok := v.(int); ok && y > 0 {
			yearStart = y
		}
	}
	if v, ok := state.GetContext(ContextKeyYearEnd); ok {
		if y, ok := v.(int); ok && y > 0 {
			yearEnd = y
		}
	}
	return yearStart, yearEnd
}

// ExtractStage runs every enabled source adapter and collects the
// canonical records they emit
type ExtractStage struct {
	BaseStage
	cfg    *config.Config
	paths  *config.Paths
	logger *slog.Logger
}

// NewExtractStage creates the source extraction stage
func NewExtractStage(cfg *config.Config, paths *config.Paths, logger *slog.Logger) *ExtractStage {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("stage", StageIDExtract))
	logger.Info("Extract stage initialized",
		slog.Int("year_start", cfg.Pipeline.YearStart),
		slog.Int("year_end", cfg.Pipeline.YearEnd),
		slog.Int("workers", cfg.Pipeline.Workers))

	return &ExtractStage{
		BaseStage: NewBaseStage(StageIDExtract, StageNameExtract, nil),
		cfg:       cfg,
		paths:     paths,
		logger:    logger,
	}
}

// Execute fans the registered adapters out over a bounded worker pool.
// A source whose input directory is missing or empty is skipped with a
// warning finding; any other adapter error aborts the run.
func (s *ExtractStage) Execute(ctx context.Context, state *OperationState) error {
	step := state.GetStage(s.ID())
	data, err := runDataFromState(s.ID(), state)
	if err != nil {
		return err
	}
	manifest, err := manifestFromState(s.ID(), state)
	if err != nil {
		return err
	}

	yearStart, yearEnd := horizonFromState(state, s.cfg)
	manifest.SetHorizon(yearStart, yearEnd)
	s.logger.Info("Starting source extraction",
		slog.String("operation_id", state.ID),
		slog.Int("year_start", yearStart),
		slog.Int("year_end", yearEnd))

	step.UpdateProgress(5, "Scanning source directories...")

	resolver := catalog.NewResolver(s.logger)

	var (
		mu          sync.Mutex
		records     []domain.CanonicalRecord
		sourcesRead []string
		unavailable int
	)
	disabled := 0

	g, gctx := errgroup.WithContext(ctx)
	workers := s.cfg.Pipeline.Workers
	if workers < 1 {
		workers = 1
	}
	g.SetLimit(workers)

	for _, adapter := range sources.Registry() {
		adapter := adapter
		source := adapter.Source()

		if !s.cfg.SourceEnabled(source) {
			s.logger.Info("Source disabled by configuration", slog.String("source", source))
			disabled++
			continue
		}

		g.Go(func() error {
			recs, counters, err := s.runAdapter(gctx, adapter, yearStart, yearEnd, resolver)
			if errors.Is(err, sources.ErrSourceUnavailable) {
				s.logger.Warn("Source unavailable, skipping",
					slog.String("source", source),
					slog.String("dir", s.paths.SourceDir(source)))
				data.Collector.Add(domain.Finding{
					Rule:     report.RuleSourceHealth,
					Severity: domain.SeverityWarning,
					Message:  fmt.Sprintf("%s: no readable input under %s, source skipped", source, s.paths.SourceDir(source)),
				})
				mu.Lock()
				unavailable++
				mu.Unlock()
				return nil
			}
			if err != nil {
				return fmt.Errorf("source %s: %w", source, err)
			}

			data.Collector.RecordSource(*counters)

			mu.Lock()
			records = append(records, recs...)
			sourcesRead = append(sourcesRead, source)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Error("Source extraction failed", slog.String("error", err.Error()))
		return NewExecutionError(s.ID(), err, false)
	}

	sort.Strings(sourcesRead)
	data.Records = records
	manifest.SetSources(sourcesRead)

	state.SetContext(ContextKeyRecordsExtracted, len(records))
	state.SetContext(ContextKeySourcesRead, len(sourcesRead))
	step.SetMetadata("records_extracted", len(records))
	step.SetMetadata("sources_read", len(sourcesRead))
	step.SetMetadata("sources_unavailable", unavailable)
	step.SetMetadata("sources_disabled", disabled)

	s.logger.Info("Source extraction complete",
		slog.Int("records", len(records)),
		slog.Int("sources_read", len(sourcesRead)),
		slog.Int("sources_unavailable", unavailable),
		slog.Int("sources_disabled", disabled))

	step.UpdateProgress(100, "Source extraction completed")
	return nil
}

// runAdapter executes one adapter with its own span and counters.
func (s *ExtractStage) runAdapter(ctx context.Context, adapter sources.Adapter, yearStart, yearEnd int, resolver *catalog.Resolver) ([]domain.CanonicalRecord, *domain.SourceCounters, error) {
	source := adapter.Source()

	tracer := GetOperationTracer()
	var span trace.Span
	if tracer != nil {
		ctx, span = tracer.TraceSourceExtraction(ctx, source)
		defer span.End()
	}

	pc := sources.NewParseContext(source, s.paths.SourceDir(source), yearStart, yearEnd, s.logger, resolver)

	start := time.Now()
	recs, err := adapter.Parse(ctx, pc)
	if err != nil {
		return nil, nil, err
	}

	elapsed := time.Since(start)
	if tracer != nil {
		tracer.RecordSourceExtractionCompletion(ctx, span, *pc.Counters, elapsed)
	}
	s.logger.Info("Source extracted",
		slog.String("source", source),
		slog.Int("records", len(recs)),
		slog.Int("quarantined", pc.Counters.Quarantined),
		slog.Duration("elapsed", elapsed))

	return recs, pc.Counters, nil
}

// FuseStage merges canonical records into the unified country-year table
type FuseStage struct {
	BaseStage
	cfg    *config.Config
	logger *slog.Logger
}

// NewFuseStage creates the fusion stage
func NewFuseStage(cfg *config.Config, logger *slog.Logger) *FuseStage {
	if logger == nil {
		logger = slog.Default()
	}

	return &FuseStage{
		BaseStage: NewBaseStage(StageIDFuse, StageNameFuse, []string{StageIDExtract}),
		cfg:       cfg,
		logger:    logger.With(slog.String("stage", StageIDFuse)),
	}
}

// Execute builds the fused table from the extracted records
func (s *FuseStage) Execute(ctx context.Context, state *OperationState) error {
	step := state.GetStage(s.ID())
	data, err := runDataFromState(s.ID(), state)
	if err != nil {
		return err
	}

	yearStart, yearEnd := horizonFromState(state, s.cfg)
	step.UpdateProgress(10, "Fusing records...")

	engine := fusion.NewEngine(yearStart, yearEnd, s.logger)
	table, stats := engine.Fuse(ctx, data.Records)

	data.Table = table
	// Records are folded into the table now; release the slice.
	data.Records = nil

	data.Collector.RecordFusion(report.FusionSummary{
		RecordsIn:       stats.RecordsIn,
		RecordsInvalid:  stats.RecordsInvalid,
		Rows:            stats.Rows,
		Entities:        stats.Entities,
		RangeViolations: stats.RangeViolations,
	})

	state.SetContext(ContextKeyRowsFused, stats.Rows)
	step.SetMetadata("records_in", stats.RecordsIn)
	step.SetMetadata("rows", stats.Rows)
	step.SetMetadata("entities", stats.Entities)

	s.logger.Info("Fusion complete",
		slog.Int("records_in", stats.RecordsIn),
		slog.Int("rows", stats.Rows),
		slog.Int("entities", stats.Entities),
		slog.Int("sources", stats.Sources))

	step.UpdateProgress(100, "Fusion completed")
	return nil
}

// ImputeStage fills gaps in the fused table
type ImputeStage struct {
	BaseStage
	logger *slog.Logger
}

// NewImputeStage creates the imputation stage
func NewImputeStage(logger *slog.Logger) *ImputeStage {
	if logger == nil {
		logger = slog.Default()
	}

	return &ImputeStage{
		BaseStage: NewBaseStage(StageIDImpute, StageNameImpute, []string{StageIDFuse}),
		logger:    logger.With(slog.String("stage", StageIDImpute)),
	}
}

// Execute runs the imputation pass over the fused table
func (s *ImputeStage) Execute(ctx context.Context, state *OperationState) error {
	step := state.GetStage(s.ID())
	data, err := runDataFromState(s.ID(), state)
	if err != nil {
		return err
	}
	if data.Table == nil {
		return NewValidationError(s.ID(), "fused table not available, fuse stage must run first")
	}

	step.UpdateProgress(10, "Filling gaps...")

	stats := impute.NewEngine(s.logger).Impute(ctx, data.Table)

	data.Collector.RecordImputation(report.ImputationSummary{
		Interpolated: stats.Interpolated,
		Extended:     stats.Extended,
		ZeroFilled:   stats.ZeroFilled,
	})

	state.SetContext(ContextKeyValuesImputed, stats.Total())
	step.SetMetadata("interpolated", stats.Interpolated)
	step.SetMetadata("extended", stats.Extended)
	step.SetMetadata("zero_filled", stats.ZeroFilled)

	s.logger.Info("Imputation complete",
		slog.Int("interpolated", stats.Interpolated),
		slog.Int("extended", stats.Extended),
		slog.Int("zero_filled", stats.ZeroFilled))

	step.UpdateProgress(100, "Imputation completed")
	return nil
}

// IndicesStage computes the composite indices on the imputed table
type IndicesStage struct {
	BaseStage
	logger *slog.Logger
}

// NewIndicesStage creates the index computation stage
func NewIndicesStage(logger *slog.Logger) *IndicesStage {
	if logger == nil {
		logger = slog.Default()
	}

	return &IndicesStage{
		BaseStage: NewBaseStage(StageIDIndices, StageNameIndices, []string{StageIDImpute}),
		logger:    logger.With(slog.String("stage", StageIDIndices)),
	}
}

// Execute computes DII, RRS and CRI plus their normalized companions
func (s *IndicesStage) Execute(ctx context.Context, state *OperationState) error {
	step := state.GetStage(s.ID())
	data, err := runDataFromState(s.ID(), state)
	if err != nil {
		return err
	}
	if data.Table == nil {
		return NewValidationError(s.ID(), "fused table not available, fuse stage must run first")
	}

	step.UpdateProgress(10, "Computing indices...")

	stats := indices.NewEngine(s.logger).Compute(ctx, data.Table)

	data.Collector.RecordIndices(report.IndexSummary{
		Rows: stats.Rows,
		DII:  stats.DIIComputed,
		RRS:  stats.RRSComputed,
		CRI:  stats.CRIComputed,
	})

	state.SetContext(ContextKeyIndicesComputed, stats.Rows)
	step.SetMetadata("rows", stats.Rows)
	step.SetMetadata("dii_computed", stats.DIIComputed)
	step.SetMetadata("rrs_computed", stats.RRSComputed)
	step.SetMetadata("cri_computed", stats.CRIComputed)

	s.logger.Info("Index computation complete",
		slog.Int("rows", stats.Rows),
		slog.Int("dii", stats.DIIComputed),
		slog.Int("rrs", stats.RRSComputed),
		slog.Int("cri", stats.CRIComputed))

	step.UpdateProgress(100, "Index computation completed")
	return nil
}

// ValidateStage runs the invariant battery over the final table
type ValidateStage struct {
	BaseStage
	cfg    *config.Config
	logger *slog.Logger
}

// NewValidateStage creates the validation stage
func NewValidateStage(cfg *config.Config, logger *slog.Logger) *ValidateStage {
	if logger == nil {
		logger = slog.Default()
	}

	return &ValidateStage{
		BaseStage: NewBaseStage(StageIDValidate, StageNameValidate, []string{StageIDIndices}),
		cfg:       cfg,
		logger:    logger.With(slog.String("stage", StageIDValidate)),
	}
}

// Execute computes column coverage and runs the validation battery.
// Findings accumulate in the collector; only duplicate keys fail the
// stage.
func (s *ValidateStage) Execute(ctx context.Context, state *OperationState) error {
	step := state.GetStage(s.ID())
	data, err := runDataFromState(s.ID(), state)
	if err != nil {
		return err
	}
	if data.Table == nil {
		return NewValidationError(s.ID(), "fused table not available, fuse stage must run first")
	}

	yearStart, yearEnd := horizonFromState(state, s.cfg)

	step.UpdateProgress(20, "Computing column coverage...")
	data.Coverage = report.Coverage(data.Table)

	step.UpdateProgress(50, "Running validation battery...")
	validator := report.NewValidator(yearStart, yearEnd, s.cfg.Pipeline.CoverageFloor, s.logger)
	if err := validator.Validate(ctx, data.Table, data.Coverage, data.Collector); err != nil {
		s.logger.Error("Validation failed", slog.String("error", err.Error()))
		return NewExecutionError(s.ID(), err, false)
	}

	info, warnings, errs := data.Collector.Counts()
	step.SetMetadata("findings_info", info)
	step.SetMetadata("findings_warning", warnings)
	step.SetMetadata("findings_error", errs)

	step.UpdateProgress(100, "Validation completed")
	return nil
}

// ExportStage writes the run's artifacts and records them in the
// manifest
type ExportStage struct {
	BaseStage
	paths  *config.Paths
	logger *slog.Logger
}

// NewExportStage creates the artifact export stage
func NewExportStage(paths *config.Paths, logger *slog.Logger) *ExportStage {
	if logger == nil {
		logger = slog.Default()
	}

	return &ExportStage{
		BaseStage: NewBaseStage(StageIDExport, StageNameExport, []string{StageIDValidate}),
		paths:     paths,
		logger:    logger.With(slog.String("stage", StageIDExport)),
	}
}

// Execute writes the unified dataset, the coverage matrix and the
// validation report, digesting each into the run manifest. The
// manifest file itself is saved by the manager once the run settles.
func (s *ExportStage) Execute(ctx context.Context, state *OperationState) error {
	step := state.GetStage(s.ID())
	data, err := runDataFromState(s.ID(), state)
	if err != nil {
		return err
	}
	manifest, err := manifestFromState(s.ID(), state)
	if err != nil {
		return err
	}
	if data.Table == nil {
		return NewValidationError(s.ID(), "fused table not available, fuse stage must run first")
	}

	coverage := data.Coverage
	if coverage == nil {
		coverage = report.Coverage(data.Table)
	}

	datasets := exporter.NewDatasetExporter(s.paths)

	step.UpdateProgress(10, "Writing unified dataset...")
	if err := datasets.ExportUnifiedDataset(data.Table); err != nil {
		return NewExecutionError(s.ID(), fmt.Errorf("unified dataset: %w", err), false)
	}
	if err := s.record(ctx, manifest, config.UnifiedDatasetFile, s.paths.UnifiedDatasetCSV); err != nil {
		return NewExecutionError(s.ID(), err, false)
	}

	step.UpdateProgress(40, "Writing coverage matrix...")
	if err := datasets.ExportCoverageMatrix(coverage); err != nil {
		return NewExecutionError(s.ID(), fmt.Errorf("coverage matrix: %w", err), false)
	}
	if err := s.record(ctx, manifest, config.CoverageMatrixFile, s.paths.CoverageMatrixCSV); err != nil {
		return NewExecutionError(s.ID(), err, false)
	}

	step.UpdateProgress(70, "Writing validation report...")
	reports := exporter.NewValidationWriter(s.paths)
	if err := reports.WriteReport(data.Table, data.Collector.Findings(), data.Collector.Sources(), time.Now()); err != nil {
		return NewExecutionError(s.ID(), fmt.Errorf("validation report: %w", err), false)
	}
	if err := s.record(ctx, manifest, config.ValidationReportFile, s.paths.ValidationReportTXT); err != nil {
		return NewExecutionError(s.ID(), err, false)
	}

	step.SetMetadata("rows_written", data.Table.Len())
	step.SetMetadata("artifacts_written", len(manifest.Artifacts))

	s.logger.Info("Artifact export complete",
		slog.Int("rows", data.Table.Len()),
		slog.Int("artifacts", len(manifest.Artifacts)),
		slog.String("output_dir", s.paths.OutputDir))

	step.UpdateProgress(100, "Artifact export completed")
	return nil
}

// record digests one written artifact into the manifest and counts its
// bytes toward the export metrics.
func (s *ExportStage) record(ctx context.Context, manifest *RunManifest, name, path string) error {
	if err := manifest.AddArtifact(name, path); err != nil {
		return err
	}
	if tracer := GetOperationTracer(); tracer != nil {
		if a, ok := manifest.ArtifactByName(name); ok {
			tracer.RecordArtifactWritten(ctx, name, a.SizeBytes)
		}
	}
	return nil
}

// StageFactory creates the pipeline stages keyed by stage ID
func StageFactory(cfg *config.Config, paths *config.Paths, logger *slog.Logger) map[string]Step {
	return map[string]Step{
		StageIDExtract:  NewExtractStage(cfg, paths, logger),
		StageIDFuse:     NewFuseStage(cfg, logger),
		StageIDImpute:   NewImputeStage(logger),
		StageIDIndices:  NewIndicesStage(logger),
		StageIDValidate: NewValidateStage(cfg, logger),
		StageIDExport:   NewExportStage(paths, logger),
	}
}

// Compile-time interface checks to ensure all stages properly implement Step interface
var (
	_ Step = (*ExtractStage)(nil)
	_ Step = (*FuseStage)(nil)
	_ Step = (*ImputeStage)(nil)
	_ Step = (*IndicesStage)(nil)
	_ Step = (*ValidateStage)(nil)
	_ Step = (*ExportStage)(nil)
)
