package sources

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"gdra/pkg/contracts/domain"
)

const owidGiniFile = "economic-inequality-gini-index.csv"

// OWID loads the World Inequality Database Gini series as published by
// Our World in Data: Entity, Code, Year plus one value column whose
// exact header varies between exports and is found by substring.
type OWID struct{}

// Source implements Adapter.
func (OWID) Source() string { return domain.SourceOWID }

// Parse implements Adapter.
func (OWID) Parse(ctx context.Context, pc *ParseContext) ([]domain.CanonicalRecord, error) {
	path := filepath.Join(pc.Dir, owidGiniFile)
	rows, err := readCSV(path)
	if err != nil {
		return nil, missingAsUnavailable(err, owidGiniFile)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s contains no data rows", filepath.Base(path))
	}

	header := headerIndex(rows[0])
	codeCol, ok := header["code"]
	if !ok {
		return nil, fmt.Errorf("%s has no Code column", filepath.Base(path))
	}
	yearCol, ok := header["year"]
	if !ok {
		return nil, fmt.Errorf("%s has no Year column", filepath.Base(path))
	}
	giniCol, ok := findColumn(header, func(name string) bool {
		return strings.Contains(name, "gini")
	})
	if !ok {
		return nil, fmt.Errorf("%s has no gini column", filepath.Base(path))
	}

	rs := newRecordSet(domain.SourceOWID)
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
		// Regional aggregates ship without a code and rows without a
		// value carry nothing worth keeping.
		v, ok := parseFloat(cellAt(row, giniCol))
		if !ok {
			continue
		}
		code, ok := pc.resolveCode(cellAt(row, codeCol))
		if !ok {
			continue
		}
		rs.Set(code, year, domain.FieldGiniWID, v)
	}

	return emit(pc, rs), nil
}
