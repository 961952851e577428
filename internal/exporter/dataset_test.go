package exporter

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gdra/pkg/contracts/domain"
)

// tableRow builds a fused record with enrichment columns and fields.
func tableRow(code string, year int, region, income string, fields map[string]float64) *domain.FusedRecord {
	row := domain.NewFusedRecord(code, year)
	row.Region = region
	row.IncomeGroup = income
	for name, value := range fields {
		row.SetField(name, value)
	}
	return row
}

// colIndex locates a column in the header row.
func colIndex(t *testing.T, header []string, column string) int {
	t.Helper()
	for i, c := range header {
		if c == column {
			return i
		}
	}
	t.Fatalf("column %q not in header", column)
	return -1
}

func TestDatasetExporter_ExportUnifiedDataset(t *testing.T) {
	paths := testPaths(t)
	table := &domain.FusedTable{Rows: []*domain.FusedRecord{
		tableRow("KEN", 2005, "Africa", "Low", map[string]float64{
			domain.FieldGDPPerCapitaBest: 1066.6666666666667,
			domain.FieldHDI:              0.55,
			domain.FieldDII:              0,
		}),
		tableRow("KEN", 2006, "Africa", "Low", map[string]float64{
			domain.FieldGDPPerCapitaBest: 1200,
		}),
	}}

	err := NewDatasetExporter(paths).ExportUnifiedDataset(table)
	require.NoError(t, err)

	rows := readCSV(t, paths.UnifiedDatasetCSV)
	require.Len(t, rows, 3)

	header := rows[0]
	assert.Equal(t, domain.OutputColumns(), header)

	first := rows[1]
	assert.Equal(t, "KEN", first[colIndex(t, header, domain.ColumnISO3)])
	assert.Equal(t, "2005", first[colIndex(t, header, domain.ColumnYear)])
	assert.Equal(t, "Africa", first[colIndex(t, header, domain.ColumnRegion)])
	assert.Equal(t, "Low", first[colIndex(t, header, domain.ColumnIncomeGroup)])
	assert.Equal(t, "1066.6666666666667", first[colIndex(t, header, domain.FieldGDPPerCapitaBest)])
	assert.Equal(t, "0.55", first[colIndex(t, header, domain.FieldHDI)])

	// A recorded zero is "0", a null is an empty cell.
	assert.Equal(t, "0", first[colIndex(t, header, domain.FieldDII)])
	assert.Equal(t, "", first[colIndex(t, header, domain.FieldRRS)])

	second := rows[2]
	assert.Equal(t, "1200", second[colIndex(t, header, domain.FieldGDPPerCapitaBest)])
	assert.Equal(t, "", second[colIndex(t, header, domain.FieldHDI)])
}

func TestDatasetExporter_UnifiedDatasetIsByteIdentical(t *testing.T) {
	table := &domain.FusedTable{Rows: []*domain.FusedRecord{
		tableRow("ARM", 2010, "Asia", "Lower-Middle", map[string]float64{
			domain.FieldGDPPerCapitaBest: 3218.3749999999995,
			domain.FieldPopulationBest:   2877311,
		}),
	}}

	first := testPaths(t)
	require.NoError(t, NewDatasetExporter(first).ExportUnifiedDataset(table))
	second := testPaths(t)
	require.NoError(t, NewDatasetExporter(second).ExportUnifiedDataset(table))

	a, err := os.ReadFile(first.UnifiedDatasetCSV)
	require.NoError(t, err)
	b, err := os.ReadFile(second.UnifiedDatasetCSV)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDatasetExporter_EmptyTableWritesHeaderOnly(t *testing.T) {
	paths := testPaths(t)

	err := NewDatasetExporter(paths).ExportUnifiedDataset(&domain.FusedTable{})
	require.NoError(t, err)

	rows := readCSV(t, paths.UnifiedDatasetCSV)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.OutputColumns(), rows[0])
}

func TestDatasetExporter_ExportCoverageMatrix(t *testing.T) {
	paths := testPaths(t)
	coverage := []domain.CoverageRow{
		{Column: "iso3", CoveragePct: 100, NonNullCount: 4},
		{Column: "hdi", CoveragePct: 66.66666666666667, NonNullCount: 2},
		{Column: "DII", CoveragePct: 0, NonNullCount: 0},
	}

	err := NewDatasetExporter(paths).ExportCoverageMatrix(coverage)
	require.NoError(t, err)

	rows := readCSV(t, paths.CoverageMatrixCSV)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"column", "coverage_pct", "non_null_count"}, rows[0])
	assert.Equal(t, []string{"iso3", "100.0", "4"}, rows[1])
	assert.Equal(t, []string{"hdi", "66.7", "2"}, rows[2])
	assert.Equal(t, []string{"DII", "0.0", "0"}, rows[3])
}
