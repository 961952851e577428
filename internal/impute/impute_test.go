package impute

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gdra/internal/shared/testutil"
	"gdra/pkg/contracts/domain"
)

func newTable(rows ...*domain.FusedRecord) *domain.FusedTable {
	table := &domain.FusedTable{Rows: rows}
	table.Sort()
	return table
}

func row(code string, year int, fields map[string]float64) *domain.FusedRecord {
	rec := domain.NewFusedRecord(code, year)
	for name, value := range fields {
		rec.SetField(name, value)
	}
	return rec
}

func fieldAt(t *testing.T, table *domain.FusedTable, code string, year int, name string) (float64, bool) {
	t.Helper()
	for _, r := range table.Rows {
		if r.EntityCode == code && r.Year == year {
			return r.Field(name)
		}
	}
	t.Fatalf("no row for %s/%d", code, year)
	return 0, false
}

func TestEngine_Impute_InterpolatesInteriorGaps(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	engine := NewEngine(logger)

	table := newTable(
		row("AAA", 2000, map[string]float64{domain.FieldGDPPerCapitaBest: 1000}),
		row("AAA", 2001, nil),
		row("AAA", 2002, nil),
		row("AAA", 2003, map[string]float64{domain.FieldGDPPerCapitaBest: 1200}),
	)

	stats := engine.Impute(context.Background(), table)

	v, ok := fieldAt(t, table, "AAA", 2001, domain.FieldGDPPerCapitaBest)
	require.True(t, ok)
	assert.InDelta(t, 1066.67, v, 0.01)
	v, ok = fieldAt(t, table, "AAA", 2002, domain.FieldGDPPerCapitaBest)
	require.True(t, ok)
	assert.InDelta(t, 1133.33, v, 0.01)
	assert.Equal(t, 2, stats.Interpolated)
	assert.Zero(t, stats.Extended)
}

func TestEngine_Impute_WeighsByYearDistance(t *testing.T) {
	engine := NewEngine(nil)

	// The 2001 and 2002 rows do not exist at all; the remaining gap at
	// 2003 sits three quarters of the way from 2000 to 2004.
	table := newTable(
		row("AAA", 2000, map[string]float64{domain.FieldHDI: 0.50}),
		row("AAA", 2003, nil),
		row("AAA", 2004, map[string]float64{domain.FieldHDI: 0.90}),
	)

	engine.Impute(context.Background(), table)

	v, ok := fieldAt(t, table, "AAA", 2003, domain.FieldHDI)
	require.True(t, ok)
	assert.InDelta(t, 0.80, v, 1e-9)
}

func TestEngine_Impute_FlatBoundaryExtension(t *testing.T) {
	engine := NewEngine(nil)

	table := newTable(
		row("AAA", 2000, nil),
		row("AAA", 2001, map[string]float64{domain.FieldGiniBest: 41.5}),
		row("AAA", 2002, nil),
	)

	stats := engine.Impute(context.Background(), table)

	for _, year := range []int{2000, 2001, 2002} {
		v, ok := fieldAt(t, table, "AAA", year, domain.FieldGiniBest)
		require.True(t, ok, "year %d", year)
		assert.Equal(t, 41.5, v, "year %d", year)
	}
	assert.Equal(t, 2, stats.Extended)
	assert.Zero(t, stats.Interpolated)
}

func TestEngine_Impute_EntirelyNullSeriesStaysNull(t *testing.T) {
	engine := NewEngine(nil)

	table := newTable(
		row("AAA", 2000, map[string]float64{domain.FieldHDI: 0.5}),
		row("BBB", 2000, nil),
		row("BBB", 2001, nil),
	)

	engine.Impute(context.Background(), table)

	// BBB never observed hdi; AAA's value must not bleed across.
	for _, year := range []int{2000, 2001} {
		_, ok := fieldAt(t, table, "BBB", year, domain.FieldHDI)
		assert.False(t, ok, "year %d", year)
	}
}

func TestEngine_Impute_CountFieldsZeroFill(t *testing.T) {
	engine := NewEngine(nil)

	table := newTable(
		row("AAA", 2000, nil),
		row("AAA", 2001, map[string]float64{domain.FieldTotalDisasterDeaths: 3}),
		row("AAA", 2002, nil),
	)

	stats := engine.Impute(context.Background(), table)

	want := []float64{0, 3, 0}
	for i, year := range []int{2000, 2001, 2002} {
		v, ok := fieldAt(t, table, "AAA", year, domain.FieldTotalDisasterDeaths)
		require.True(t, ok, "year %d", year)
		assert.Equal(t, want[i], v, "year %d", year)
	}
	assert.Equal(t, 2, stats.ZeroFilled)
}

func TestEngine_Impute_CountFieldsNeverInterpolate(t *testing.T) {
	engine := NewEngine(nil)

	table := newTable(
		row("AAA", 2000, map[string]float64{domain.FieldEMDATDeaths: 10}),
		row("AAA", 2001, nil),
		row("AAA", 2002, map[string]float64{domain.FieldEMDATDeaths: 40}),
	)

	engine.Impute(context.Background(), table)

	v, ok := fieldAt(t, table, "AAA", 2001, domain.FieldEMDATDeaths)
	require.True(t, ok)
	assert.Equal(t, 0.0, v)
}

func TestEngine_Impute_UnobservedCountColumnStaysNull(t *testing.T) {
	engine := NewEngine(nil)

	// No row anywhere carries humanitarian funding: the column keeps
	// meaning "source absent", not "zero dollars".
	table := newTable(
		row("AAA", 2000, map[string]float64{domain.FieldTotalDisasterDeaths: 1}),
		row("BBB", 2000, nil),
	)

	engine.Impute(context.Background(), table)

	_, ok := fieldAt(t, table, "AAA", 2000, domain.FieldHumanitarianFundingUSD)
	assert.False(t, ok)
	_, ok = fieldAt(t, table, "BBB", 2000, domain.FieldHumanitarianFundingUSD)
	assert.False(t, ok)
}

func TestEngine_Impute_ObservedFieldsUntouched(t *testing.T) {
	engine := NewEngine(nil)

	table := newTable(
		row("AAA", 2000, map[string]float64{domain.FieldNTLGrowth: 5.0}),
		row("AAA", 2001, nil),
		row("AAA", 2002, map[string]float64{domain.FieldNTLGrowth: -2.0}),
	)

	engine.Impute(context.Background(), table)

	_, ok := fieldAt(t, table, "AAA", 2001, domain.FieldNTLGrowth)
	assert.False(t, ok)
}

func TestEngine_Impute_FixtureTableFillsSparseEntity(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	engine := NewEngine(logger)

	fixtures := testutil.NewDatasetFixtures(t.TempDir())
	table := fixtures.FusedTable()

	stats := engine.Impute(context.Background(), table)

	// BBB has gdp at 2000 and 2002 but no population at 2002: the
	// rate series extends flat from its single observation.
	v, ok := fieldAt(t, table, "BBB", 2002, domain.FieldPopulationBest)
	require.True(t, ok)
	assert.Equal(t, 5_000_000.0, v)

	// AAA 2003 lost its hdi observation; flat extension from 2002.
	v, ok = fieldAt(t, table, "AAA", 2003, domain.FieldHDI)
	require.True(t, ok)
	assert.Equal(t, 0.71, v)

	assert.Positive(t, stats.Total())
	assert.True(t, handler.ContainsMessage("imputed missing values"))
}
