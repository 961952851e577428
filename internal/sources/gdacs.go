package sources

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gdra/pkg/contracts/domain"
)

// gdacsFiles lists the per-hazard event files under the Clean
// subdirectory and the per-type count field each one feeds.
var gdacsFiles = []struct {
	file  string
	field string
}{
	{"Earthquake_clean.csv", domain.FieldGDACSEarthquakeCount},
	{"Flood_clean.csv", domain.FieldGDACSFloodCount},
	{"Drought_clean.csv", domain.FieldGDACSDroughtCount},
	{"Forest_Fires_clean.csv", domain.FieldGDACSForestFireCount},
	{"Tropical_Cyclone_clean.csv", domain.FieldGDACSCycloneCount},
	{"Eruption_clean.csv", domain.FieldGDACSEruptionCount},
}

// GDACS loads the GDACS disaster alert feeds, one event per row split
// across per-hazard files. Each entity-year accumulates total and
// per-type event counts, red and orange alert tallies and two severity
// means: the published alert score and a 1-3 weight derived from the
// alert level.
type GDACS struct{}

// Source implements Adapter.
func (GDACS) Source() string { return domain.SourceGDACS }

// Parse implements Adapter.
func (GDACS) Parse(ctx context.Context, pc *ParseContext) ([]domain.CanonicalRecord, error) {
	cleanDir := filepath.Join(pc.Dir, "Clean")
	rs := newRecordSet(domain.SourceGDACS)

	loaded := 0
	for _, hazard := range gdacsFiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(cleanDir, hazard.file)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := parseGDACSFile(pc, rs, path, hazard.field); err != nil {
			return nil, err
		}
		loaded++
	}
	if loaded == 0 {
		return nil, fmt.Errorf("no event files under %s: %w", cleanDir, ErrSourceUnavailable)
	}

	// Entity-years with any recorded event carry explicit zeros for
	// the hazard types they never saw.
	for _, key := range rs.Keys() {
		for _, hazard := range gdacsFiles {
			rs.SetDefault(key.EntityCode, key.Year, hazard.field, 0)
		}
	}

	return emit(pc, rs), nil
}

// parseGDACSFile folds one per-hazard event file into the running
// aggregates.
func parseGDACSFile(pc *ParseContext, rs *recordSet, path, typeField string) error {
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
		return fmt.Errorf("%s has no iso3 column", filepath.Base(path))
	}
	dateCol, ok := header["fromdate"]
	if !ok {
		return fmt.Errorf("%s has no fromdate column", filepath.Base(path))
	}
	levelCol, hasLevel := header["alertlevel"]
	scoreCol, hasScore := header["alertscore"]

	for _, row := range rows[1:] {
		pc.Counters.RowsRead++

		year, ok := yearFromDate(cellAt(row, dateCol))
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

		level := ""
		if hasLevel {
			level = strings.ToUpper(cellAt(row, levelCol))
		}
		// Unknown alert levels weigh like green ones.
		weight, red, orange := 1.0, 0.0, 0.0
		switch level {
		case "RED":
			weight, red = 3, 1
		case "ORANGE":
			weight, orange = 2, 1
		}

		rs.Add(code, year, domain.FieldGDACSDisasterCount, 1)
		rs.Add(code, year, typeField, 1)
		rs.Add(code, year, domain.FieldGDACSRedAlerts, red)
		rs.Add(code, year, domain.FieldGDACSOrangeAlerts, orange)
		rs.Observe(code, year, domain.FieldGDACSSeverityWeight, weight)
		if hasScore {
			if v, ok := parseFloat(cellAt(row, scoreCol)); ok {
				rs.Observe(code, year, domain.FieldGDACSAvgAlertScore, v)
			}
		}
	}
	return nil
}
