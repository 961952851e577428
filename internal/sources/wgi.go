package sources

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"gdra/pkg/contracts/domain"
)

const wgiFile = "wgidataset.xlsx"

// wgiIndicators maps the six governance pillar codes to their fields.
var wgiIndicators = map[string]string{
	"va": domain.FieldWGIVoiceAccountability,
	"pv": domain.FieldWGIPoliticalStability,
	"ge": domain.FieldWGIGovEffectiveness,
	"rq": domain.FieldWGIRegulatoryQuality,
	"rl": domain.FieldWGIRuleOfLaw,
	"cc": domain.FieldWGIControlCorruption,
}

// WGI loads the Worldwide Governance Indicators workbook, a long table
// with one row per (entity, year, pillar) carrying a point estimate in
// the -2.5 to 2.5 range. Suppressed estimates appear as "..". A
// composite is derived per entity-year as the mean of the pillars
// present.
type WGI struct{}

// Source implements Adapter.
func (WGI) Source() string { return domain.SourceWGI }

// Parse implements Adapter.
func (WGI) Parse(ctx context.Context, pc *ParseContext) ([]domain.CanonicalRecord, error) {
	path := filepath.Join(pc.Dir, wgiFile)
	rows, err := readWorkbook(path)
	if err != nil {
		return nil, missingAsUnavailable(err, wgiFile)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s contains no data rows", filepath.Base(path))
	}

	header := headerIndex(rows[0])
	codeCol, ok := header["code"]
	if !ok {
		return nil, fmt.Errorf("%s has no code column", filepath.Base(path))
	}
	yearCol, ok := header["year"]
	if !ok {
		return nil, fmt.Errorf("%s has no year column", filepath.Base(path))
	}
	indicatorCol, ok := header["indicator"]
	if !ok {
		return nil, fmt.Errorf("%s has no indicator column", filepath.Base(path))
	}
	estimateCol, ok := header["estimate"]
	if !ok {
		return nil, fmt.Errorf("%s has no estimate column", filepath.Base(path))
	}

	rs := newRecordSet(domain.SourceWGI)
	for i, row := range rows[1:] {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		pc.Counters.RowsRead++

		year, ok := parseInt(cellAt(row, yearCol))
		if !ok {
			pc.Counters.ParseFailures++
			continue
		}
		if !pc.inHorizon(year) {
			continue
		}
		field, ok := wgiIndicators[strings.ToLower(cellAt(row, indicatorCol))]
		if !ok {
			continue
		}
		code, ok := pc.resolveCode(cellAt(row, codeCol))
		if !ok {
			continue
		}
		if v, ok := parseFloat(cellAt(row, estimateCol)); ok {
			rs.Observe(code, year, field, v)
		}
	}

	records := emit(pc, rs)
	for i := range records {
		attachGovernanceComposite(records[i].Fields)
	}
	return records, nil
}

// attachGovernanceComposite averages whichever governance pillars an
// entity-year carries.
func attachGovernanceComposite(fields map[string]float64) {
	sum, n := 0.0, 0
	for _, field := range wgiIndicators {
		if v, ok := fields[field]; ok {
			sum += v
			n++
		}
	}
	if n > 0 {
		fields[domain.FieldWGIComposite] = sum / float64(n)
	}
}
