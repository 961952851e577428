package fusion

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gdra/internal/shared/testutil"
	"gdra/pkg/contracts/domain"
)

func newTestEngine(t *testing.T) (*Engine, *testutil.BufferedSlogHandler) {
	t.Helper()
	logger, handler := testutil.NewTestLogger(t)
	return NewEngine(domain.DefaultYearStart, domain.DefaultYearEnd, logger), handler
}

func record(source, code string, year int, fields map[string]float64) domain.CanonicalRecord {
	return domain.CanonicalRecord{Source: source, EntityCode: code, Year: year, Fields: fields}
}

func rowByKey(t *testing.T, table *domain.FusedTable, code string, year int) *domain.FusedRecord {
	t.Helper()
	for _, row := range table.Rows {
		if row.EntityCode == code && row.Year == year {
			return row
		}
	}
	t.Fatalf("no row for %s/%d", code, year)
	return nil
}

func TestEngine_Fuse_OuterJoinOverUnionOfKeys(t *testing.T) {
	engine, _ := newTestEngine(t)

	// Three sources, partially overlapping keys. Every pair seen by at
	// least one source gets a row, nothing else does.
	records := []domain.CanonicalRecord{
		record("wdi", "KEN", 2010, map[string]float64{domain.FieldGDPPerCapita: 1200}),
		record("emdat", "KEN", 2010, map[string]float64{domain.FieldEMDATDeaths: 12}),
		record("emdat", "KEN", 2011, map[string]float64{domain.FieldEMDATDeaths: 3}),
		record("owid", "ETH", 2015, map[string]float64{domain.FieldGiniWID: 35.2}),
	}

	table, stats := engine.Fuse(context.Background(), records)

	require.Equal(t, 3, table.Len())
	assert.Equal(t, 4, stats.RecordsIn)
	assert.Equal(t, 3, stats.Rows)
	assert.Equal(t, 2, stats.Entities)
	assert.Equal(t, 3, stats.Sources)
	assert.Empty(t, table.DuplicateKeys())

	// Sorted by entity code, then year.
	assert.Equal(t, "ETH", table.Rows[0].EntityCode)
	assert.Equal(t, "KEN", table.Rows[1].EntityCode)
	assert.Equal(t, 2010, table.Rows[1].Year)
	assert.Equal(t, 2011, table.Rows[2].Year)
}

func TestEngine_Fuse_MergesSourceFieldsIntoOneRow(t *testing.T) {
	engine, _ := newTestEngine(t)

	records := []domain.CanonicalRecord{
		record("wdi", "KEN", 2010, map[string]float64{
			domain.FieldGDPPerCapita: 1200,
			domain.FieldPopulation:   4.1e7,
		}),
		record("emdat", "KEN", 2010, map[string]float64{
			domain.FieldEMDATDeaths:     12,
			domain.FieldEMDATEventCount: 2,
		}),
		record("hdr", "KEN", 2010, map[string]float64{domain.FieldHDI: 0.55}),
	}

	table, _ := engine.Fuse(context.Background(), records)

	require.Equal(t, 1, table.Len())
	row := table.Rows[0]
	for _, name := range []string{
		domain.FieldGDPPerCapita,
		domain.FieldPopulation,
		domain.FieldEMDATDeaths,
		domain.FieldEMDATEventCount,
		domain.FieldHDI,
	} {
		_, ok := row.Field(name)
		assert.True(t, ok, "field %s should survive fusion", name)
	}
}

func TestEngine_Fuse_ChainPrimaryWins(t *testing.T) {
	engine, _ := newTestEngine(t)

	// Both candidates present: the higher-priority source wins, no
	// averaging.
	records := []domain.CanonicalRecord{
		record("wdi", "KEN", 2010, map[string]float64{domain.FieldGDPPerCapita: 1200}),
		record("imf", "KEN", 2010, map[string]float64{domain.FieldGDPPerCapitaIMF: 900}),
	}

	table, stats := engine.Fuse(context.Background(), records)

	row := rowByKey(t, table, "KEN", 2010)
	best, ok := row.Field(domain.FieldGDPPerCapitaBest)
	require.True(t, ok)
	assert.Equal(t, 1200.0, best)
	assert.Equal(t, 1, stats.ChainFills[domain.FieldGDPPerCapitaBest])
}

func TestEngine_Fuse_ChainFallsBack(t *testing.T) {
	engine, _ := newTestEngine(t)

	records := []domain.CanonicalRecord{
		record("imf", "KEN", 2010, map[string]float64{
			domain.FieldGDPPerCapitaIMF: 900,
			domain.FieldPopulationIMF:   4.0e7,
		}),
	}

	table, _ := engine.Fuse(context.Background(), records)

	row := rowByKey(t, table, "KEN", 2010)
	best, ok := row.Field(domain.FieldGDPPerCapitaBest)
	require.True(t, ok)
	assert.Equal(t, 900.0, best)
	pop, ok := row.Field(domain.FieldPopulationBest)
	require.True(t, ok)
	assert.Equal(t, 4.0e7, pop)
}

func TestEngine_Fuse_RecordedZeroStopsChain(t *testing.T) {
	engine, _ := newTestEngine(t)

	// EM-DAT recorded zero deaths; the DesInventar fallback must not
	// override a real observation.
	records := []domain.CanonicalRecord{
		record("emdat", "ARM", 2010, map[string]float64{domain.FieldEMDATDeaths: 0}),
		record("desinventar", "ARM", 2010, map[string]float64{domain.FieldDesinventarDeaths: 7}),
	}

	table, _ := engine.Fuse(context.Background(), records)

	row := rowByKey(t, table, "ARM", 2010)
	deaths, ok := row.Field(domain.FieldTotalDisasterDeaths)
	require.True(t, ok)
	assert.Equal(t, 0.0, deaths)
}

func TestEngine_Fuse_EventCountThirdCandidate(t *testing.T) {
	engine, _ := newTestEngine(t)

	records := []domain.CanonicalRecord{
		record("gdacs", "KEN", 2012, map[string]float64{domain.FieldGDACSDisasterCount: 4}),
	}

	table, _ := engine.Fuse(context.Background(), records)

	row := rowByKey(t, table, "KEN", 2012)
	events, ok := row.Field(domain.FieldTotalDisasterEvents)
	require.True(t, ok)
	assert.Equal(t, 4.0, events)
}

func TestEngine_Fuse_AllNullChainStaysNull(t *testing.T) {
	engine, _ := newTestEngine(t)

	records := []domain.CanonicalRecord{
		record("hdr", "KEN", 2010, map[string]float64{domain.FieldHDI: 0.55}),
	}

	table, stats := engine.Fuse(context.Background(), records)

	row := rowByKey(t, table, "KEN", 2010)
	_, ok := row.Field(domain.FieldGDPPerCapitaBest)
	assert.False(t, ok)
	assert.Zero(t, stats.ChainFills[domain.FieldGDPPerCapitaBest])
}

func TestEngine_Fuse_RangeGuardNullsNonPositiveGDP(t *testing.T) {
	engine, handler := newTestEngine(t)

	records := []domain.CanonicalRecord{
		record("wdi", "KEN", 2010, map[string]float64{domain.FieldGDPPerCapita: -5}),
		record("wdi", "ETH", 2010, map[string]float64{domain.FieldGDPPerCapita: 0}),
		record("wdi", "ARM", 2010, map[string]float64{domain.FieldGDPPerCapita: 3200}),
	}

	table, stats := engine.Fuse(context.Background(), records)

	for _, code := range []string{"KEN", "ETH"} {
		row := rowByKey(t, table, code, 2010)
		_, ok := row.Field(domain.FieldGDPPerCapitaBest)
		assert.False(t, ok, "%s gdp should be nulled", code)
		assert.Empty(t, row.IncomeGroup)
	}
	row := rowByKey(t, table, "ARM", 2010)
	best, ok := row.Field(domain.FieldGDPPerCapitaBest)
	require.True(t, ok)
	assert.Equal(t, 3200.0, best)

	assert.Equal(t, 2, stats.RangeViolations)
	assert.True(t, handler.ContainsMessage("nulled non-positive gdp per capita"))
}

func TestEngine_Fuse_EnrichesRegionAndIncome(t *testing.T) {
	engine, _ := newTestEngine(t)

	records := []domain.CanonicalRecord{
		record("wdi", "KEN", 2010, map[string]float64{domain.FieldGDPPerCapita: 900}),
		record("wdi", "DEU", 2010, map[string]float64{domain.FieldGDPPerCapita: 42000}),
		// Form-valid code the catalog does not know: kept, no region.
		record("wdi", "ZZZ", 2010, map[string]float64{domain.FieldGDPPerCapita: 2000}),
	}

	table, stats := engine.Fuse(context.Background(), records)

	ken := rowByKey(t, table, "KEN", 2010)
	assert.Equal(t, "Africa", ken.Region)
	assert.Equal(t, IncomeLow, ken.IncomeGroup)

	deu := rowByKey(t, table, "DEU", 2010)
	assert.Equal(t, "Europe", deu.Region)
	assert.Equal(t, IncomeHigh, deu.IncomeGroup)

	zzz := rowByKey(t, table, "ZZZ", 2010)
	assert.Empty(t, zzz.Region)
	assert.Equal(t, IncomeLowerMiddle, zzz.IncomeGroup)
	assert.Equal(t, 1, stats.Regionless)
}

func TestEngine_Fuse_SkipsInvalidRecords(t *testing.T) {
	engine, handler := newTestEngine(t)

	records := []domain.CanonicalRecord{
		record("wdi", "KEN", 2010, map[string]float64{domain.FieldGDPPerCapita: 1200}),
		record("wdi", "ken", 2010, map[string]float64{domain.FieldGDPPerCapita: 1200}),
		record("wdi", "ETH", 1980, map[string]float64{domain.FieldGDPPerCapita: 300}),
		record("", "ETH", 2010, map[string]float64{domain.FieldGDPPerCapita: 300}),
	}

	table, stats := engine.Fuse(context.Background(), records)

	assert.Equal(t, 1, table.Len())
	assert.Equal(t, 3, stats.RecordsInvalid)
	assert.True(t, handler.ContainsMessage("dropping invalid canonical record"))
}

func TestEngine_Fuse_EmptyInput(t *testing.T) {
	engine, _ := newTestEngine(t)

	table, stats := engine.Fuse(context.Background(), nil)

	assert.Zero(t, table.Len())
	assert.Zero(t, stats.Rows)
	assert.Zero(t, stats.Sources)
}
