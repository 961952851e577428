package exporter

import (
	"fmt"
	"strconv"

	"gdra/internal/config"
	"gdra/pkg/contracts/domain"
)

// DatasetExporter writes the tabular pipeline artifacts: the unified
// resilience dataset and its coverage matrix.
type DatasetExporter struct {
	csvWriter *CSVWriter
	paths     *config.Paths
}

// NewDatasetExporter creates a new dataset exporter
func NewDatasetExporter(paths *config.Paths) *DatasetExporter {
	return &DatasetExporter{
		csvWriter: NewCSVWriter(paths),
		paths:     paths,
	}
}

// coverageHeaders is the column order of the coverage matrix CSV.
var coverageHeaders = []string{"column", "coverage_pct", "non_null_count"}

// ExportUnifiedDataset streams the fused table to the unified dataset
// CSV, one row per (entity, year) in table order, columns in the
// declared output order. The table must already be sorted.
func (d *DatasetExporter) ExportUnifiedDataset(table *domain.FusedTable) error {
	columns := domain.OutputColumns()

	stream, err := d.csvWriter.CreateStreamWriter(d.paths.UnifiedDatasetCSV, columns)
	if err != nil {
		return fmt.Errorf("failed to create stream writer for unified dataset: %w", err)
	}

	for _, row := range table.Rows {
		if err := stream.WriteRecord(d.rowToCSV(row, columns)); err != nil {
			stream.Close()
			return fmt.Errorf("failed to write row %s/%d: %w", row.EntityCode, row.Year, err)
		}
	}

	if err := stream.Close(); err != nil {
		return fmt.Errorf("failed to close unified dataset stream: %w", err)
	}
	return nil
}

// ExportCoverageMatrix writes the coverage matrix CSV in the order the
// reporter computed it.
func (d *DatasetExporter) ExportCoverageMatrix(rows []domain.CoverageRow) error {
	csvRecords := make([][]string, 0, len(rows))
	for _, row := range rows {
		csvRecords = append(csvRecords, []string{
			row.Column,
			formatPct(row.CoveragePct),
			formatInt(row.NonNullCount),
		})
	}

	if err := d.csvWriter.WriteSimpleCSV(d.paths.CoverageMatrixCSV, coverageHeaders, csvRecords); err != nil {
		return fmt.Errorf("failed to write coverage matrix: %w", err)
	}
	return nil
}

// rowToCSV converts a fused record to a CSV row
func (d *DatasetExporter) rowToCSV(row *domain.FusedRecord, columns []string) []string {
	cells := make([]string, 0, len(columns))
	for _, column := range columns {
		switch column {
		case domain.ColumnISO3:
			cells = append(cells, row.EntityCode)
		case domain.ColumnYear:
			cells = append(cells, strconv.Itoa(row.Year))
		case domain.ColumnRegion:
			cells = append(cells, row.Region)
		case domain.ColumnIncomeGroup:
			cells = append(cells, row.IncomeGroup)
		default:
			v, ok := row.Field(column)
			cells = append(cells, formatNullable(v, ok))
		}
	}
	return cells
}
