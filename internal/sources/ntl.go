package sources

import (
	"context"
	"fmt"
	"path/filepath"

	"gdra/pkg/contracts/domain"
)

const (
	dmspFile  = "DMSP-OLS-nighttime-lights-1992to2013-level0.csv"
	viirsFile = "VIIRS-nighttime-lights-2013m1to2024m5-level0.csv"

	// DMSP annual composites are authoritative through 2012; VIIRS
	// covers 2013 onward.
	dmspLastYear = 2012
)

// NTL loads the harmonized nighttime lights series, an economic
// activity proxy. The DMSP file carries one annual composite per row;
// the VIIRS file is monthly and gets averaged per entity-year. Growth
// is derived afterwards as the year-over-year radiance change.
type NTL struct{}

// Source implements Adapter.
func (NTL) Source() string { return domain.SourceNTL }

// Parse implements Adapter.
func (NTL) Parse(ctx context.Context, pc *ParseContext) ([]domain.CanonicalRecord, error) {
	rs := newRecordSet(domain.SourceNTL)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := parseNTLFile(pc, rs, filepath.Join(pc.Dir, dmspFile), false); err != nil {
		return nil, missingAsUnavailable(err, dmspFile)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := parseNTLFile(pc, rs, filepath.Join(pc.Dir, viirsFile), true); err != nil {
		return nil, missingAsUnavailable(err, viirsFile)
	}

	records := emit(pc, rs)
	attachRadianceGrowth(records)
	return records, nil
}

// parseNTLFile reads one lights file. Annual rows are taken as-is;
// monthly rows accumulate into a per-year mean.
func parseNTLFile(pc *ParseContext, rs *recordSet, path string, monthly bool) error {
	rows, err := readCSV(path)
	if err != nil {
		return err
	}
	if len(rows) < 2 {
		return nil
	}

	header := headerIndex(rows[0])
	isoCol, ok := header["iso"]
	if !ok {
		return fmt.Errorf("%s has no iso column", filepath.Base(path))
	}
	yearCol, ok := header["year"]
	if !ok {
		return fmt.Errorf("%s has no year column", filepath.Base(path))
	}
	sumCol, ok := header["nlsum"]
	if !ok {
		return fmt.Errorf("%s has no nlsum column", filepath.Base(path))
	}

	for _, row := range rows[1:] {
		pc.Counters.RowsRead++
		year, ok := parseInt(cellAt(row, yearCol))
		if !ok {
			pc.Counters.ParseFailures++
			continue
		}
		if !pc.inHorizon(year) {
			continue
		}
		if !monthly && year > dmspLastYear {
			continue
		}
		if monthly && year <= dmspLastYear {
			continue
		}
		code, ok := pc.resolveCode(cellAt(row, isoCol))
		if !ok {
			continue
		}
		v, ok := parseFloat(cellAt(row, sumCol))
		if !ok {
			continue
		}
		if monthly {
			rs.Observe(code, year, domain.FieldNTLRadiance, v)
		} else {
			rs.Set(code, year, domain.FieldNTLRadiance, v)
		}
	}
	return nil
}

// attachRadianceGrowth derives the year-over-year radiance change in
// percent within each entity. Records must be key-sorted. The first
// observation of an entity has no growth, and a zero prior radiance
// leaves the growth absent rather than infinite.
func attachRadianceGrowth(records []domain.CanonicalRecord) {
	for i := 1; i < len(records); i++ {
		prev, cur := records[i-1], records[i]
		if prev.EntityCode != cur.EntityCode {
			continue
		}
		prevRad, okPrev := prev.Fields[domain.FieldNTLRadiance]
		curRad, okCur := cur.Fields[domain.FieldNTLRadiance]
		if !okPrev || !okCur || prevRad == 0 {
			continue
		}
		cur.Fields[domain.FieldNTLGrowth] = (curRad - prevRad) / prevRad * 100
	}
}
