package sources

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gdra/internal/shared/testutil"
	"gdra/pkg/contracts/domain"
)

func TestGDACS_Parse(t *testing.T) {
	dir := t.TempDir()
	fixtures := testutil.NewDatasetFixtures(dir)

	_, err := fixtures.WriteCSVFile(filepath.Join("Clean", "Earthquake_clean.csv"), [][]string{
		{"iso3", "fromdate", "alertlevel", "alertscore", "name"},
		{"KEN", "2010-05-01", "RED", "2.5", "Event A"},
		{"KEN", "2010-07-11", "orange", "1.5", "Event B"},
		{"KEN", "2011-01-01", "GREEN", "1.0", "Event C"},
		{"KEN", "baddate", "GREEN", "1.0", "Event D"},
		{"PHL", "1999-02-02", "RED", "3.0", "Event E"},
	})
	require.NoError(t, err)
	_, err = fixtures.WriteCSVFile(filepath.Join("Clean", "Flood_clean.csv"), [][]string{
		{"iso3", "fromdate", "alertlevel", "alertscore"},
		{"KEN", "2010-03-04", "", ""},
	})
	require.NoError(t, err)

	pc, _ := newTestContext(t, domain.SourceGDACS, dir)
	records, err := GDACS{}.Parse(context.Background(), pc)
	require.NoError(t, err)

	byKey := recordsByKey(records)
	require.Len(t, byKey, 2)

	ken2010 := byKey["KEN/2010"]
	assert.Equal(t, 3.0, ken2010.Fields[domain.FieldGDACSDisasterCount])
	assert.Equal(t, 2.0, ken2010.Fields[domain.FieldGDACSEarthquakeCount])
	assert.Equal(t, 1.0, ken2010.Fields[domain.FieldGDACSFloodCount])
	assert.Equal(t, 1.0, ken2010.Fields[domain.FieldGDACSRedAlerts])
	assert.Equal(t, 1.0, ken2010.Fields[domain.FieldGDACSOrangeAlerts])
	assert.InDelta(t, 2.0, ken2010.Fields[domain.FieldGDACSSeverityWeight], 1e-9, "red weighs 3, orange 2, blank 1")
	assert.InDelta(t, 2.0, ken2010.Fields[domain.FieldGDACSAvgAlertScore], 1e-9, "blank scores stay out of the mean")

	ken2011 := byKey["KEN/2011"]
	assert.Equal(t, 1.0, ken2011.Fields[domain.FieldGDACSDisasterCount])
	assert.Equal(t, 1.0, ken2011.Fields[domain.FieldGDACSEarthquakeCount])
	assert.Equal(t, 0.0, ken2011.Fields[domain.FieldGDACSRedAlerts])
	assert.InDelta(t, 1.0, ken2011.Fields[domain.FieldGDACSAvgAlertScore], 1e-9)

	// Hazard types with no events carry explicit zeros.
	for _, key := range []string{"KEN/2010", "KEN/2011"} {
		fields := byKey[key].Fields
		assert.Equal(t, 0.0, fields[domain.FieldGDACSDroughtCount])
		assert.Equal(t, 0.0, fields[domain.FieldGDACSForestFireCount])
		assert.Equal(t, 0.0, fields[domain.FieldGDACSCycloneCount])
		assert.Equal(t, 0.0, fields[domain.FieldGDACSEruptionCount])
	}

	assert.Equal(t, 6, pc.Counters.RowsRead)
	assert.Equal(t, 2, pc.Counters.RecordsEmitted)
	assert.Equal(t, 1, pc.Counters.ParseFailures)
	assert.Equal(t, 1, pc.Counters.YearsOutOfRange)
}

func TestGDACS_Parse_NoEventFiles(t *testing.T) {
	pc, _ := newTestContext(t, domain.SourceGDACS, t.TempDir())
	_, err := GDACS{}.Parse(context.Background(), pc)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}
