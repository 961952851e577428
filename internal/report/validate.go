package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	apperrors "gdra/internal/errors"
	"gdra/pkg/contracts/domain"
)

// DefaultCoverageFloor is the minimum index coverage, in percent,
// before the battery emits a warning.
const DefaultCoverageFloor = 95.0

// Rule identifiers. Stable across runs; artifacts and tests key on
// them.
const (
	RuleUniqueKeys    = "unique_keys"
	RuleYearHorizon   = "year_horizon"
	RuleIndexRange    = "index_range"
	RuleCoverageFloor = "coverage_floor"
	RuleSourceHealth  = "source_health"
	RuleFusion        = "fusion"
	RuleFusionRange   = "fusion_range"
	RuleImputation    = "imputation"
	RuleIndices       = "indices"
)

// maxKeysInMessage caps how many offending keys a finding lists.
const maxKeysInMessage = 5

// indexColumns pairs each raw index with its normalized companion.
var indexColumns = []struct {
	Raw        string
	Normalized string
}{
	{Raw: domain.FieldDII, Normalized: domain.FieldDIINormalized},
	{Raw: domain.FieldRRS, Normalized: domain.FieldRRSNormalized},
	{Raw: domain.FieldCRI, Normalized: domain.FieldCRINormalized},
}

// Validator runs the invariant battery over the final table.
type Validator struct {
	yearStart     int
	yearEnd       int
	coverageFloor float64
	logger        *slog.Logger
}

// NewValidator creates a validator for the given horizon. A
// non-positive floor falls back to DefaultCoverageFloor.
func NewValidator(yearStart, yearEnd int, coverageFloor float64, logger *slog.Logger) *Validator {
	if coverageFloor <= 0 {
		coverageFloor = DefaultCoverageFloor
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{
		yearStart:     yearStart,
		yearEnd:       yearEnd,
		coverageFloor: coverageFloor,
		logger:        logger,
	}
}

// Validate appends the battery's findings to the collector. Every
// violation is reported and the pipeline continues, except duplicate
// (iso3, year) keys, which make Validate return an error.
func (v *Validator) Validate(ctx context.Context, table *domain.FusedTable, coverage []domain.CoverageRow, c *Collector) error {
	fatal := v.checkUniqueKeys(table, c)
	v.checkYearHorizon(table, c)
	v.checkIndexRanges(table, c)
	v.checkCoverageFloor(coverage, c)
	v.stageFindings(c)

	info, warnings, errs := c.Counts()
	v.logger.InfoContext(ctx, "validation battery complete",
		"rows", table.Len(),
		"info", info,
		"warnings", warnings,
		"errors", errs,
	)
	return fatal
}

// checkUniqueKeys enforces the table's primary key.
func (v *Validator) checkUniqueKeys(table *domain.FusedTable, c *Collector) error {
	dups := table.DuplicateKeys()
	if len(dups) == 0 {
		return nil
	}

	keys := make([]string, 0, len(dups))
	for _, k := range dups {
		if len(keys) == maxKeysInMessage {
			keys = append(keys, "...")
			break
		}
		keys = append(keys, k.String())
	}
	msg := fmt.Sprintf("%d duplicate (iso3, year) keys: %s", len(dups), strings.Join(keys, ", "))
	c.Add(domain.Finding{Rule: RuleUniqueKeys, Severity: domain.SeverityError, Message: msg})
	v.logger.Error("duplicate keys in fused table", "count", len(dups))
	return apperrors.NewAppValidationError(msg)
}

// checkYearHorizon re-checks the horizon clamp independently of the
// adapters.
func (v *Validator) checkYearHorizon(table *domain.FusedTable, c *Collector) {
	count := 0
	var examples []string
	for _, row := range table.Rows {
		if row.Year < v.yearStart || row.Year > v.yearEnd {
			count++
			if len(examples) < maxKeysInMessage {
				examples = append(examples, row.Key().String())
			}
		}
	}
	if count == 0 {
		return
	}
	if count > len(examples) {
		examples = append(examples, "...")
	}
	c.Add(domain.Finding{
		Rule:     RuleYearHorizon,
		Severity: domain.SeverityError,
		Field:    domain.ColumnYear,
		Message:  fmt.Sprintf("%d rows outside horizon %d-%d: %s", count, v.yearStart, v.yearEnd, strings.Join(examples, ", ")),
	})
}

// checkIndexRanges verifies every normalized index stays within
// [0,100].
func (v *Validator) checkIndexRanges(table *domain.FusedTable, c *Collector) {
	for _, idx := range indexColumns {
		violations := 0
		for _, row := range table.Rows {
			value, ok := row.Field(idx.Normalized)
			if !ok {
				continue
			}
			if value < 0 || value > 100 {
				violations++
			}
		}
		if violations == 0 {
			continue
		}
		c.Add(domain.Finding{
			Rule:     RuleIndexRange,
			Severity: domain.SeverityError,
			Field:    idx.Normalized,
			Message:  fmt.Sprintf("%d values outside [0,100]", violations),
		})
	}
}

// checkCoverageFloor warns when an index covers fewer rows than the
// configured floor.
func (v *Validator) checkCoverageFloor(coverage []domain.CoverageRow, c *Collector) {
	for _, idx := range indexColumns {
		row, ok := CoverageOf(coverage, idx.Raw)
		if !ok {
			continue
		}
		if row.CoveragePct >= v.coverageFloor {
			continue
		}
		c.Add(domain.Finding{
			Rule:     RuleCoverageFloor,
			Severity: domain.SeverityWarning,
			Field:    idx.Raw,
			Message:  fmt.Sprintf("coverage %.1f%% below %.1f%% floor", row.CoveragePct, v.coverageFloor),
		})
	}
}

// stageFindings reports the recoverable-error counters every stage
// recorded: one finding per source, plus one per downstream stage.
func (v *Validator) stageFindings(c *Collector) {
	for _, sc := range c.Sources() {
		severity := domain.SeverityInfo
		if sc.Quarantined > 0 || sc.ParseFailures > 0 {
			severity = domain.SeverityWarning
		}
		c.Add(domain.Finding{
			Rule:     RuleSourceHealth,
			Severity: severity,
			Message: fmt.Sprintf("%s: %d rows read, %d records emitted, %d quarantined, %d parse failures, %d outside horizon",
				sc.Source, sc.RowsRead, sc.RecordsEmitted, sc.Quarantined, sc.ParseFailures, sc.YearsOutOfRange),
		})
	}

	if s, ok := c.Fusion(); ok {
		severity := domain.SeverityInfo
		if s.RecordsInvalid > 0 {
			severity = domain.SeverityWarning
		}
		c.Add(domain.Finding{
			Rule:     RuleFusion,
			Severity: severity,
			Message: fmt.Sprintf("%d records fused into %d rows across %d entities, %d invalid records dropped",
				s.RecordsIn, s.Rows, s.Entities, s.RecordsInvalid),
		})
		if s.RangeViolations > 0 {
			c.Add(domain.Finding{
				Rule:     RuleFusionRange,
				Severity: domain.SeverityWarning,
				Field:    domain.FieldGDPPerCapitaBest,
				Message:  fmt.Sprintf("%d non-positive values nulled", s.RangeViolations),
			})
		}
	}

	if s, ok := c.Imputation(); ok {
		c.Add(domain.Finding{
			Rule:     RuleImputation,
			Severity: domain.SeverityInfo,
			Message: fmt.Sprintf("filled %d values: %d interpolated, %d extended, %d zero-filled",
				s.Interpolated+s.Extended+s.ZeroFilled, s.Interpolated, s.Extended, s.ZeroFilled),
		})
	}

	if s, ok := c.Indices(); ok {
		c.Add(domain.Finding{
			Rule:     RuleIndices,
			Severity: domain.SeverityInfo,
			Message:  fmt.Sprintf("computed on %d rows: DII %d, RRS %d, CRI %d", s.Rows, s.DII, s.RRS, s.CRI),
		})
	}
}
