package sources

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gdra/internal/shared/testutil"
	"gdra/pkg/contracts/domain"
)

func TestWDI_Parse(t *testing.T) {
	dir := t.TempDir()
	fixtures := testutil.NewDatasetFixtures(dir)

	_, err := fixtures.WriteCSVFile(wdiFile, [][]string{
		{"Country Name", "Country Code", "Indicator Name", "Indicator Code", "1999", "2000", "2001"},
		{"Kenya", "KEN", "GDP growth (annual %)", "NY.GDP.MKTP.KD.ZG", "", "4.5", "5.1"},
		{"Kenya", "KEN", "Population, total", "SP.POP.TOTL", "", "30000000", "31000000"},
		{"World", "WLD", "GDP growth (annual %)", "NY.GDP.MKTP.KD.ZG", "", "2.9", "3.0"},
		{"Kenya", "KEN", "Arable land (% of land area)", "AG.LND.ARBL.ZS", "1", "2", "3"},
		{"Nowhere", "K1", "GDP growth (annual %)", "NY.GDP.MKTP.KD.ZG", "", "1.0", "1.0"},
	})
	require.NoError(t, err)

	pc, _ := newTestContext(t, domain.SourceWDI, dir)
	records, err := WDI{}.Parse(context.Background(), pc)
	require.NoError(t, err)

	byKey := recordsByKey(records)
	require.Len(t, byKey, 4)

	assert.Equal(t, 4.5, byKey["KEN/2000"].Fields[domain.FieldGDPGrowth])
	assert.Equal(t, 3e7, byKey["KEN/2000"].Fields[domain.FieldPopulation])
	assert.Equal(t, 5.1, byKey["KEN/2001"].Fields[domain.FieldGDPGrowth])

	// Aggregate codes survive extraction; fusion decides what to do
	// with them.
	assert.Equal(t, 2.9, byKey["WLD/2000"].Fields[domain.FieldGDPGrowth])
	assert.Equal(t, 3.0, byKey["WLD/2001"].Fields[domain.FieldGDPGrowth])

	assert.Equal(t, 5, pc.Counters.RowsRead)
	assert.Equal(t, 4, pc.Counters.RecordsEmitted)
	assert.Equal(t, 1, pc.Counters.Quarantined)
}

func TestWDI_Parse_MissingFile(t *testing.T) {
	pc, _ := newTestContext(t, domain.SourceWDI, t.TempDir())
	_, err := WDI{}.Parse(context.Background(), pc)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestWDI_Parse_MissingIndicatorColumn(t *testing.T) {
	dir := t.TempDir()
	fixtures := testutil.NewDatasetFixtures(dir)

	_, err := fixtures.WriteCSVFile(wdiFile, [][]string{
		{"Country Name", "Country Code", "2000"},
		{"Kenya", "KEN", "4.5"},
	})
	require.NoError(t, err)

	pc, _ := newTestContext(t, domain.SourceWDI, dir)
	_, err = WDI{}.Parse(context.Background(), pc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Indicator Code")
}
