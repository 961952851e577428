package sources

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gdra/internal/shared/testutil"
	"gdra/pkg/contracts/domain"
)

func TestNTL_Parse(t *testing.T) {
	dir := t.TempDir()
	fixtures := testutil.NewDatasetFixtures(dir)

	_, err := fixtures.WriteCSVFile(dmspFile, [][]string{
		{"iso", "year", "nlsum"},
		{"ken", "2000", "100"},
		{"KEN", "2001", "110"},
		{"KEN", "2002", "0"},
		{"KEN", "2003", "50"},
		{"KEN", "2013", "999"}, // DMSP stops being authoritative after 2012
		{"KEN", "1999", "5"},
		{"ETH", "2000", "7"},
		{"KEN", "notayear", "5"},
	})
	require.NoError(t, err)
	_, err = fixtures.WriteCSVFile(viirsFile, [][]string{
		{"iso", "year", "month", "nlsum"},
		{"KEN", "2013", "1", "10"},
		{"KEN", "2013", "2", "20"},
		{"KEN", "2013", "3", "30"},
		{"KEN", "2012", "1", "99"}, // overlap year belongs to DMSP
		{"KEN", "2025", "1", "5"},
	})
	require.NoError(t, err)

	pc, _ := newTestContext(t, domain.SourceNTL, dir)
	records, err := NTL{}.Parse(context.Background(), pc)
	require.NoError(t, err)

	byKey := recordsByKey(records)
	require.Len(t, byKey, 6)

	assert.Equal(t, 100.0, byKey["KEN/2000"].Fields[domain.FieldNTLRadiance])
	assert.Equal(t, 20.0, byKey["KEN/2013"].Fields[domain.FieldNTLRadiance], "monthly rows average per year")

	// Growth is the change against the previous record of the entity.
	assert.NotContains(t, byKey["ETH/2000"].Fields, domain.FieldNTLGrowth)
	assert.NotContains(t, byKey["KEN/2000"].Fields, domain.FieldNTLGrowth)
	assert.InDelta(t, 10.0, byKey["KEN/2001"].Fields[domain.FieldNTLGrowth], 1e-9)
	assert.InDelta(t, -100.0, byKey["KEN/2002"].Fields[domain.FieldNTLGrowth], 1e-9)
	assert.NotContains(t, byKey["KEN/2003"].Fields, domain.FieldNTLGrowth, "zero prior radiance has no defined growth")
	assert.InDelta(t, -60.0, byKey["KEN/2013"].Fields[domain.FieldNTLGrowth], 1e-9)

	assert.Equal(t, 13, pc.Counters.RowsRead)
	assert.Equal(t, 6, pc.Counters.RecordsEmitted)
	assert.Equal(t, 2, pc.Counters.YearsOutOfRange)
	assert.Equal(t, 1, pc.Counters.ParseFailures)
}

func TestNTL_Parse_MissingFile(t *testing.T) {
	dir := t.TempDir()
	fixtures := testutil.NewDatasetFixtures(dir)

	_, err := fixtures.WriteCSVFile(dmspFile, [][]string{
		{"iso", "year", "nlsum"},
		{"KEN", "2000", "100"},
	})
	require.NoError(t, err)

	pc, _ := newTestContext(t, domain.SourceNTL, dir)
	_, err = NTL{}.Parse(context.Background(), pc)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}
