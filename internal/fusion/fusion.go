package fusion

import (
	"context"
	"log/slog"

	"gdra/internal/catalog"
	"gdra/pkg/contracts/domain"
)

// Stats summarizes one fusion pass for the run manifest and the
// validation report.
type Stats struct {
	// RecordsIn is the number of canonical records received.
	RecordsIn int

	// RecordsInvalid counts records dropped for failing structural
	// validation. Adapters never emit such records; a non-zero count
	// points at a bug upstream and surfaces as a warning finding.
	RecordsInvalid int

	// Sources is the number of distinct sources that contributed.
	Sources int

	// Rows and Entities describe the fused table.
	Rows     int
	Entities int

	// ChainFills counts, per consolidated column, the rows where the
	// provenance chain resolved a value.
	ChainFills map[string]int

	// RangeViolations counts rows whose resolved gdp_per_capita_best
	// was non-positive and therefore nulled.
	RangeViolations int

	// Regionless counts rows whose entity the catalog does not know.
	Regionless int
}

// Engine merges per-source canonical records into the unified
// country-year table, resolves the consolidated columns and stamps the
// enrichment columns.
type Engine struct {
	yearStart int
	yearEnd   int
	logger    *slog.Logger
}

// NewEngine creates a fusion engine for the given year horizon.
func NewEngine(yearStart, yearEnd int, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{yearStart: yearStart, yearEnd: yearEnd, logger: logger}
}

// Fuse joins records from every source into one row per (entity, year)
// pair present in the union of inputs. Source fields are carried
// verbatim, consolidated columns are resolved through the provenance
// chains, gdp_per_capita_best is range-guarded and every row receives
// its region and income group. The returned table is sorted by
// (entity_code, year).
func (e *Engine) Fuse(ctx context.Context, records []domain.CanonicalRecord) (*domain.FusedTable, Stats) {
	stats := Stats{
		RecordsIn:  len(records),
		ChainFills: make(map[string]int, len(Chains)),
	}

	rows := make(map[domain.Key]*domain.FusedRecord)
	sources := make(map[string]bool)
	for i := range records {
		rec := &records[i]
		if err := rec.Validate(e.yearStart, e.yearEnd); err != nil {
			stats.RecordsInvalid++
			e.logger.Debug("dropping invalid canonical record",
				"source", rec.Source,
				"entity", rec.EntityCode,
				"year", rec.Year,
				"error", err,
			)
			continue
		}
		sources[rec.Source] = true

		row, ok := rows[rec.Key()]
		if !ok {
			row = domain.NewFusedRecord(rec.EntityCode, rec.Year)
			rows[rec.Key()] = row
		}
		for name, value := range rec.Fields {
			row.SetField(name, value)
		}
	}

	table := &domain.FusedTable{Rows: make([]*domain.FusedRecord, 0, len(rows))}
	for _, row := range rows {
		table.Rows = append(table.Rows, row)
	}
	table.Sort()

	for _, row := range table.Rows {
		e.resolveChains(row, &stats)
		e.enrich(row, &stats)
	}

	stats.Sources = len(sources)
	stats.Rows = table.Len()
	stats.Entities = len(table.Entities())

	e.logger.InfoContext(ctx, "fused canonical records",
		"records_in", stats.RecordsIn,
		"sources", stats.Sources,
		"rows", stats.Rows,
		"entities", stats.Entities,
		"invalid_records", stats.RecordsInvalid,
		"range_violations", stats.RangeViolations,
	)
	return table, stats
}

// resolveChains fills the consolidated columns of one row and applies
// the range guard on gdp_per_capita_best.
func (e *Engine) resolveChains(row *domain.FusedRecord, stats *Stats) {
	for _, chain := range Chains {
		value, ok := chain.Resolve(row)
		if !ok {
			continue
		}
		row.SetField(chain.Target, value)
		stats.ChainFills[chain.Target]++
	}

	// Downstream index math divides by gdp_per_capita_best; a zero or
	// negative value is a source artifact, not an economy.
	if gdp, ok := row.Field(domain.FieldGDPPerCapitaBest); ok && gdp <= 0 {
		row.ClearField(domain.FieldGDPPerCapitaBest)
		stats.RangeViolations++
		e.logger.Debug("nulled non-positive gdp per capita",
			"entity", row.EntityCode,
			"year", row.Year,
			"value", gdp,
		)
	}
}

// enrich stamps the region and income group of one row. Entities the
// catalog does not know keep an empty region and stay in the table.
func (e *Engine) enrich(row *domain.FusedRecord, stats *Stats) {
	region, ok := catalog.RegionOf(row.EntityCode)
	if !ok {
		stats.Regionless++
	}
	row.Region = region

	gdp, ok := row.Field(domain.FieldGDPPerCapitaBest)
	row.IncomeGroup = IncomeGroup(gdp, ok)
}
