package sources

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gdra/pkg/contracts/domain"
)

const hdrFile = "HDR25_Composite_indices_complete_time_series.csv"

// hdrSeries maps the column prefixes of the HDR time series to the
// fields they feed. Only the plain series count; sex-disaggregated
// variants such as hdi_f_2020 carry an extra prefix segment and fall
// through the pattern.
var hdrSeries = map[string]string{
	"hdi":   domain.FieldHDI,
	"le":    domain.FieldLifeExpectancy,
	"eys":   domain.FieldExpectedYearsSchooling,
	"mys":   domain.FieldMeanYearsSchooling,
	"gnipc": domain.FieldGNIPerCapita,
}

var hdrColPattern = regexp.MustCompile(`^([a-z]+)_(\d{4})$`)

// HDR loads the UNDP Human Development Report composite time series:
// HDI with its component series, one row per entity and one column per
// (series, year) pair. The distribution is encoded as ISO 8859-1.
type HDR struct{}

// Source implements Adapter.
func (HDR) Source() string { return domain.SourceHDR }

// Parse implements Adapter.
func (HDR) Parse(ctx context.Context, pc *ParseContext) ([]domain.CanonicalRecord, error) {
	path := filepath.Join(pc.Dir, hdrFile)
	rows, err := readCSVLatin1(path)
	if err != nil {
		return nil, missingAsUnavailable(err, hdrFile)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s contains no data rows", filepath.Base(path))
	}

	header := headerIndex(rows[0])
	isoCol, ok := header["iso3"]
	if !ok {
		return nil, fmt.Errorf("%s has no iso3 column", filepath.Base(path))
	}

	type seriesColumn struct {
		field string
		year  int
	}
	plan := make(map[int]seriesColumn)
	for i, cell := range rows[0] {
		m := hdrColPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(cell)))
		if m == nil {
			continue
		}
		field, ok := hdrSeries[m[1]]
		if !ok {
			continue
		}
		year, err := strconv.Atoi(m[2])
		if err != nil || year < pc.YearStart || year > pc.YearEnd {
			continue
		}
		plan[i] = seriesColumn{field: field, year: year}
	}
	if len(plan) == 0 {
		return nil, fmt.Errorf("%s has no recognizable series columns", filepath.Base(path))
	}

	rs := newRecordSet(domain.SourceHDR)
	for i, row := range rows[1:] {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		pc.Counters.RowsRead++
		code, ok := pc.resolveCode(cellAt(row, isoCol))
		if !ok {
			continue
		}
		for col, sc := range plan {
			if v, ok := parseFloat(cellAt(row, col)); ok {
				rs.Set(code, sc.year, sc.field, v)
			}
		}
	}

	return emit(pc, rs), nil
}
