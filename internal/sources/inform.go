package sources

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"gdra/pkg/contracts/domain"
)

const informTrendFile = "INFORM2024_TREND_2015_2024_v70_ALL.xlsx"

// informIndicators maps INFORM indicator identifiers to their fields.
// The upstream identifier scheme swaps the obvious abbreviations for
// the last two dimensions; the published data dictionary assigns
// CC.INF to institutional capacity and CC.INS to infrastructure.
var informIndicators = map[string]string{
	"INFORM": domain.FieldINFORMRisk,
	"HA":     domain.FieldINFORMHazard,
	"VU":     domain.FieldINFORMVulnerability,
	"CC":     domain.FieldINFORMCopingCapacity,
	"HA.NAT": domain.FieldINFORMNaturalHazard,
	"HA.HUM": domain.FieldINFORMHumanHazard,
	"VU.SEV": domain.FieldINFORMSocioecoVuln,
	"VU.VGR": domain.FieldINFORMVulnerableGroups,
	"CC.INF": domain.FieldINFORMInstitutional,
	"CC.INS": domain.FieldINFORMInfrastructure,
}

// INFORM loads the INFORM risk index trend workbook, a long table with
// one row per (entity, year, indicator). Coverage starts at 2015, so
// earlier horizon years stay empty for every INFORM field.
type INFORM struct{}

// Source implements Adapter.
func (INFORM) Source() string { return domain.SourceINFORM }

// Parse implements Adapter.
func (INFORM) Parse(ctx context.Context, pc *ParseContext) ([]domain.CanonicalRecord, error) {
	path := filepath.Join(pc.Dir, informTrendFile)
	rows, err := readWorkbook(path)
	if err != nil {
		return nil, missingAsUnavailable(err, informTrendFile)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s contains no data rows", filepath.Base(path))
	}

	header := headerIndex(rows[0])
	isoCol, ok := header["iso3"]
	if !ok {
		return nil, fmt.Errorf("%s has no Iso3 column", filepath.Base(path))
	}
	yearCol, ok := header["informyear"]
	if !ok {
		return nil, fmt.Errorf("%s has no INFORMYear column", filepath.Base(path))
	}
	indicatorCol, ok := header["indicatorid"]
	if !ok {
		return nil, fmt.Errorf("%s has no IndicatorId column", filepath.Base(path))
	}
	scoreCol, ok := header["indicatorscore"]
	if !ok {
		return nil, fmt.Errorf("%s has no IndicatorScore column", filepath.Base(path))
	}

	rs := newRecordSet(domain.SourceINFORM)
	for i, row := range rows[1:] {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		pc.Counters.RowsRead++

		field, ok := informIndicators[strings.ToUpper(cellAt(row, indicatorCol))]
		if !ok {
			continue
		}
		year, ok := parseInt(cellAt(row, yearCol))
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
		if v, ok := parseFloat(cellAt(row, scoreCol)); ok {
			rs.Observe(code, year, field, v)
		}
	}

	return emit(pc, rs), nil
}
