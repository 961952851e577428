package report

import (
	"sort"

	"gdra/pkg/contracts/domain"
)

// Coverage computes the coverage matrix of the final table: one entry
// per output column with its non-null count and percent, sorted by
// percent descending, ties broken by column name for determinism.
func Coverage(table *domain.FusedTable) []domain.CoverageRow {
	total := table.Len()
	columns := domain.OutputColumns()
	rows := make([]domain.CoverageRow, 0, len(columns))
	for _, column := range columns {
		count := nonNullCount(table, column)
		pct := 0.0
		if total > 0 {
			pct = float64(count) / float64(total) * 100
		}
		rows = append(rows, domain.CoverageRow{
			Column:       column,
			CoveragePct:  pct,
			NonNullCount: count,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].CoveragePct != rows[j].CoveragePct {
			return rows[i].CoveragePct > rows[j].CoveragePct
		}
		return rows[i].Column < rows[j].Column
	})
	return rows
}

// nonNullCount counts the populated cells of one column. The identity
// columns are non-null by construction; the enrichment columns count
// non-empty strings.
func nonNullCount(table *domain.FusedTable, column string) int {
	count := 0
	for _, row := range table.Rows {
		switch column {
		case domain.ColumnISO3, domain.ColumnYear:
			count++
		case domain.ColumnRegion:
			if row.Region != "" {
				count++
			}
		case domain.ColumnIncomeGroup:
			if row.IncomeGroup != "" {
				count++
			}
		default:
			if _, ok := row.Field(column); ok {
				count++
			}
		}
	}
	return count
}

// CoverageOf returns the matrix entry for one column.
func CoverageOf(rows []domain.CoverageRow, column string) (domain.CoverageRow, bool) {
	for _, r := range rows {
		if r.Column == column {
			return r, true
		}
	}
	return domain.CoverageRow{}, false
}
