package sources

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"gdra/pkg/contracts/domain"
)

// imfIndicators maps WEO indicator mnemonics to the fields they feed.
var imfIndicators = map[string]string{
	"NGDP_RPCH":   domain.FieldGDPGrowthIMF,
	"NGDPDPC":     domain.FieldGDPPerCapitaIMF,
	"PCPIPCH":     domain.FieldInflationRate,
	"LUR":         domain.FieldUnemploymentRate,
	"LP":          domain.FieldPopulationIMF,
	"GGR_NGDP":    domain.FieldGovtRevenuePctGDP,
	"GGXWDG_NGDP": domain.FieldGovtDebtPctGDP,
}

// IMF loads the IMF World Economic Outlook bulk export. Each row is
// one series identified by a dotted SERIES_CODE whose first segment
// starts with the ISO3 code and whose second segment is the indicator
// mnemonic, with one column per year.
type IMF struct{}

// Source implements Adapter.
func (IMF) Source() string { return domain.SourceIMF }

// Parse implements Adapter.
func (IMF) Parse(ctx context.Context, pc *ParseContext) ([]domain.CanonicalRecord, error) {
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
	seriesCol, ok := header["series_code"]
	if !ok {
		return nil, fmt.Errorf("%s has no SERIES_CODE column", filepath.Base(path))
	}
	years := yearColumns(rows[0])

	rs := newRecordSet(domain.SourceIMF)
	for i, row := range rows[1:] {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		pc.Counters.RowsRead++

		series := cellAt(row, seriesCol)
		if series == "" {
			continue
		}
		parts := strings.Split(series, ".")
		if len(parts) < 2 || len(parts[0]) < 3 {
			pc.Counters.ParseFailures++
			continue
		}
		field, ok := imfIndicators[parts[1]]
		if !ok {
			// Not a target indicator.
			continue
		}
		code, ok := pc.resolveCode(parts[0][:3])
		if !ok {
			continue
		}

		for year, col := range years {
			if year < pc.YearStart || year > pc.YearEnd {
				continue
			}
			v, ok := parseFloat(cellAt(row, col))
			if !ok {
				continue
			}
			// WEO reports population in millions; store persons so it
			// can substitute for census totals downstream.
			if field == domain.FieldPopulationIMF {
				v *= 1e6
			}
			rs.Set(code, year, field, v)
		}
	}

	return emit(pc, rs), nil
}
