package sources

import (
	"context"
	"fmt"
	"path/filepath"

	"gdra/pkg/contracts/domain"
)

// barroLeeColumns maps the attainment columns of the Barro-Lee export
// to their fields.
var barroLeeColumns = []struct {
	column string
	field  string
}{
	{"yr_sch", domain.FieldYearsOfSchooling},
	{"yr_sch_pri", domain.FieldYearsPrimarySchooling},
	{"yr_sch_sec", domain.FieldYearsSecondarySchooling},
	{"yr_sch_ter", domain.FieldYearsTertiarySchooling},
	{"lu", domain.FieldNoSchoolingPct},
	{"lp", domain.FieldPrimaryCompletedPct},
	{"ls", domain.FieldSecondaryCompletedPct},
	{"lh", domain.FieldTertiaryCompletedPct},
}

// BarroLee loads the Barro-Lee educational attainment dataset, one row
// per entity-year on a five-year grid. The gaps between grid points
// are left for the imputation stage to fill.
type BarroLee struct{}

// Source implements Adapter.
func (BarroLee) Source() string { return domain.SourceBarroLee }

// Parse implements Adapter.
func (BarroLee) Parse(ctx context.Context, pc *ParseContext) ([]domain.CanonicalRecord, error) {
	path, err := firstFile(pc.Dir, ".csv")
	if err != nil {
		return nil, err
	}
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s contains no data rows", filepath.Base(path))
	}

	header := headerIndex(rows[0])
	isoCol, ok := header["wbcode"]
	if !ok {
		return nil, fmt.Errorf("%s has no WBcode column", filepath.Base(path))
	}
	yearCol, ok := header["year"]
	if !ok {
		return nil, fmt.Errorf("%s has no year column", filepath.Base(path))
	}

	rs := newRecordSet(domain.SourceBarroLee)
	for i, row := range rows[1:] {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		pc.Counters.RowsRead++

		yearRaw := cellAt(row, yearCol)
		if yearRaw == "" {
			continue
		}
		year, ok := parseInt(yearRaw)
		if !ok {
			pc.Counters.ParseFailures++
			continue
		}
		if !pc.inHorizon(year) {
			continue
		}
		code, ok := pc.resolveCode(cellAt(row, isoCol))
		if !ok {
			continue
		}

		for _, bc := range barroLeeColumns {
			col, ok := header[bc.column]
			if !ok {
				continue
			}
			if v, ok := parseFloat(cellAt(row, col)); ok {
				rs.Set(code, year, bc.field, v)
			}
		}
	}

	return emit(pc, rs), nil
}
