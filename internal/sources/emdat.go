package sources

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"gdra/pkg/contracts/domain"
)

// EMDAT loads the EM-DAT international disaster database, the primary
// disaster impact source. The export is one Excel workbook with one
// row per disaster event; impacts are summed per entity-year and events
// counted. Column positions vary between exports, so the header is
// discovered by name.
type EMDAT struct{}

// Source implements Adapter.
func (EMDAT) Source() string { return domain.SourceEMDAT }

// Parse implements Adapter.
func (EMDAT) Parse(ctx context.Context, pc *ParseContext) ([]domain.CanonicalRecord, error) {
	path, err := firstFile(pc.Dir, ".xlsx", ".xls")
	if err != nil {
		return nil, err
	}
	rows, err := readWorkbook(path)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s contains no data rows", filepath.Base(path))
	}

	header := headerIndex(rows[0])
	isoCol, ok := header["iso"]
	if !ok {
		return nil, fmt.Errorf("%s has no ISO column", filepath.Base(path))
	}
	yearCol, ok := findColumn(header, func(name string) bool {
		return strings.Contains(name, "start year")
	})
	if !ok {
		return nil, fmt.Errorf("%s has no start year column", filepath.Base(path))
	}

	deathsCol, hasDeaths := header["total deaths"]
	affectedCol, hasAffected := header["total affected"]
	// Exports carry the damage total both raw and inflation-adjusted;
	// prefer the adjusted one.
	damageCol, hasDamage := findColumn(header, func(name string) bool {
		return strings.Contains(name, "total damage") && strings.Contains(name, "adjusted")
	})
	if !hasDamage {
		damageCol, hasDamage = findColumn(header, func(name string) bool {
			return strings.Contains(name, "total damage")
		})
	}

	rs := newRecordSet(domain.SourceEMDAT)
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

		// A blank impact cell counts as zero so that every entity-year
		// with events carries explicit totals.
		if hasDeaths {
			v, _ := parseFloat(cellAt(row, deathsCol))
			rs.Add(code, year, domain.FieldEMDATDeaths, v)
		}
		if hasAffected {
			v, _ := parseFloat(cellAt(row, affectedCol))
			rs.Add(code, year, domain.FieldEMDATAffected, v)
		}
		if hasDamage {
			v, _ := parseFloat(cellAt(row, damageCol))
			rs.Add(code, year, domain.FieldEMDATDamageUSD, v)
		}
		rs.Add(code, year, domain.FieldEMDATEventCount, 1)
	}

	return emit(pc, rs), nil
}
