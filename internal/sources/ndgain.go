package sources

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gdra/pkg/contracts/domain"
)

// NDGain loads the ND-GAIN climate resilience matrices: the composite
// score with its readiness and vulnerability components, plus the
// optional sector indicators when the distribution ships them. Each
// matrix is one wide CSV with an ISO3 column and one column per year.
type NDGain struct{}

// Source implements Adapter.
func (NDGain) Source() string { return domain.SourceNDGain }

// Parse implements Adapter.
func (NDGain) Parse(ctx context.Context, pc *ParseContext) ([]domain.CanonicalRecord, error) {
	core := []struct {
		rel   string
		field string
	}{
		{filepath.Join("gain", "gain.csv"), domain.FieldNDGainScore},
		{filepath.Join("readiness", "readiness.csv"), domain.FieldNDGainReadiness},
		{filepath.Join("vulnerability", "vulnerability.csv"), domain.FieldNDGainVulnerability},
	}
	indicators := []struct {
		name  string
		field string
	}{
		{"food", domain.FieldNDGainFood},
		{"water", domain.FieldNDGainWater},
		{"health", domain.FieldNDGainHealth},
		{"infrastructure", domain.FieldNDGainInfrastructure},
	}

	rs := newRecordSet(domain.SourceNDGain)

	for _, matrix := range core {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(pc.Dir, matrix.rel)
		if err := parseNDGainMatrix(pc, rs, path, matrix.field); err != nil {
			return nil, missingAsUnavailable(err, matrix.rel)
		}
	}

	for _, indicator := range indicators {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(pc.Dir, "indicators", indicator.name+".csv")
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := parseNDGainMatrix(pc, rs, path, indicator.field); err != nil {
			return nil, err
		}
	}

	return emit(pc, rs), nil
}

// parseNDGainMatrix melts one wide matrix into the record set, keeping
// only the year columns inside the horizon.
func parseNDGainMatrix(pc *ParseContext, rs *recordSet, path, field string) error {
	rows, err := readCSV(path)
	if err != nil {
		return err
	}
	if len(rows) < 2 {
		return nil
	}

	header := headerIndex(rows[0])
	isoCol, ok := header["iso3"]
	if !ok {
		return fmt.Errorf("%s has no ISO3 column", filepath.Base(path))
	}
	years := yearColumns(rows[0])

	for _, row := range rows[1:] {
		pc.Counters.RowsRead++
		code, ok := pc.resolveCode(cellAt(row, isoCol))
		if !ok {
			continue
		}
		for year, col := range years {
			if year < pc.YearStart || year > pc.YearEnd {
				continue
			}
			if v, ok := parseFloat(cellAt(row, col)); ok {
				rs.Set(code, year, field, v)
			}
		}
	}
	return nil
}
