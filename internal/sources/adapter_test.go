package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gdra/internal/catalog"
	"gdra/internal/shared/testutil"
	"gdra/pkg/contracts/domain"
)

// newTestContext builds a parse context over dir with the default
// 2000-2024 horizon and a buffered logger.
func newTestContext(t *testing.T, source, dir string) (*ParseContext, *testutil.BufferedSlogHandler) {
	t.Helper()
	logger, handler := testutil.NewTestLogger(t)
	pc := NewParseContext(source, dir, 2000, 2024, logger, catalog.NewResolver(logger))
	return pc, handler
}

// recordsByKey indexes records by their "CODE/YEAR" key string.
func recordsByKey(records []domain.CanonicalRecord) map[string]domain.CanonicalRecord {
	byKey := make(map[string]domain.CanonicalRecord, len(records))
	for _, r := range records {
		byKey[domain.Key{EntityCode: r.EntityCode, Year: r.Year}.String()] = r
	}
	return byKey
}

func TestRegistry(t *testing.T) {
	adapters := Registry()
	require.Len(t, adapters, 13)

	var sources []string
	for _, a := range adapters {
		sources = append(sources, a.Source())
	}
	assert.Equal(t, domain.SourceKeys(), sources,
		"registry must cover every declared source in key order")
}

func TestNewParseContext(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	resolver := catalog.NewResolver(logger)

	pc := NewParseContext(domain.SourceEMDAT, "/data/emdat", 2000, 2024, logger, resolver)

	assert.Equal(t, "/data/emdat", pc.Dir)
	assert.Equal(t, 2000, pc.YearStart)
	assert.Equal(t, 2024, pc.YearEnd)
	require.NotNil(t, pc.Counters)
	assert.Equal(t, domain.SourceEMDAT, pc.Counters.Source)
	assert.Same(t, resolver, pc.Resolver)
}

func TestNewParseContext_NilLoggerFallsBack(t *testing.T) {
	pc := NewParseContext(domain.SourceWDI, "/data/wdi", 2000, 2024, nil, nil)
	assert.NotNil(t, pc.Logger)
}

func TestParseContext_InHorizon(t *testing.T) {
	pc, _ := newTestContext(t, "test", t.TempDir())

	assert.True(t, pc.inHorizon(2000))
	assert.True(t, pc.inHorizon(2024))
	assert.False(t, pc.inHorizon(1999))
	assert.False(t, pc.inHorizon(2025))
	assert.Equal(t, 2, pc.Counters.YearsOutOfRange)
}

func TestParseContext_ResolveCode(t *testing.T) {
	pc, handler := newTestContext(t, "test", t.TempDir())

	code, ok := pc.resolveCode(" ken ")
	require.True(t, ok)
	assert.Equal(t, "KEN", code)

	// Form-valid codes outside the catalog pass through.
	code, ok = pc.resolveCode("XKX")
	require.True(t, ok)
	assert.Equal(t, "XKX", code)

	// Placeholder markers are quarantined silently.
	_, ok = pc.resolveCode("")
	assert.False(t, ok)
	assert.False(t, handler.ContainsMessage("entity quarantined"))

	// Anything else unresolvable is quarantined with a debug line.
	_, ok = pc.resolveCode("K1")
	assert.False(t, ok)
	assert.True(t, handler.ContainsMessage("entity quarantined"))

	assert.Equal(t, 2, pc.Counters.Quarantined)
}

func TestParseContext_ResolveName(t *testing.T) {
	pc, _ := newTestContext(t, "test", t.TempDir())

	code, ok := pc.resolveName("Ivory Coast")
	require.True(t, ok)
	assert.Equal(t, "CIV", code)

	_, ok = pc.resolveName("no such place anywhere")
	assert.False(t, ok)
	assert.Equal(t, 1, pc.Counters.Quarantined)
}
