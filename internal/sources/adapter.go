package sources

import (
	"context"
	"errors"
	"log/slog"

	"gdra/internal/catalog"
	"gdra/pkg/contracts/domain"
)

// ErrSourceUnavailable marks a source whose input files are missing
// entirely. The extract stage treats it as a warning and continues
// with the sources that are present; every other Parse error is fatal.
var ErrSourceUnavailable = errors.New("source data unavailable")

// Adapter turns one upstream dataset into canonical records.
type Adapter interface {
	// Source returns the source key the adapter emits under.
	Source() string

	// Parse reads the source's input files and returns canonical
	// records sorted by (entity, year). Malformed rows are counted in
	// the parse context and skipped, never returned as errors.
	Parse(ctx context.Context, pc *ParseContext) ([]domain.CanonicalRecord, error)
}

// ParseContext carries everything an adapter needs for one extraction:
// the input directory, the year horizon to keep, the shared entity
// resolver and the counters the run manifest reports per source.
type ParseContext struct {
	Dir       string
	YearStart int
	YearEnd   int
	Logger    *slog.Logger
	Resolver  *catalog.Resolver
	Counters  *domain.SourceCounters
}

// NewParseContext builds a parse context for one source. A nil logger
// falls back to the default logger.
func NewParseContext(source, dir string, yearStart, yearEnd int, logger *slog.Logger, resolver *catalog.Resolver) *ParseContext {
	if logger == nil {
		logger = slog.Default()
	}
	return &ParseContext{
		Dir:       dir,
		YearStart: yearStart,
		YearEnd:   yearEnd,
		Logger:    logger.With(slog.String("source", source)),
		Resolver:  resolver,
		Counters:  &domain.SourceCounters{Source: source},
	}
}

// inHorizon reports whether year falls inside the configured range and
// counts the rows that do not.
func (pc *ParseContext) inHorizon(year int) bool {
	if year < pc.YearStart || year > pc.YearEnd {
		pc.Counters.YearsOutOfRange++
		return false
	}
	return true
}

// resolveName resolves a free-form entity name or code through the
// catalog. Unresolvable identities are quarantined, not fatal.
func (pc *ParseContext) resolveName(raw string) (string, bool) {
	code, err := pc.Resolver.Resolve(raw)
	if err != nil {
		pc.quarantine(raw, err)
		return "", false
	}
	return code, true
}

// resolveCode standardizes a raw ISO3 code without requiring catalog
// membership, so codes outside the catalog survive with a null region.
func (pc *ParseContext) resolveCode(raw string) (string, bool) {
	code, err := catalog.StandardizeCode(raw)
	if err != nil {
		pc.quarantine(raw, err)
		return "", false
	}
	return code, true
}

func (pc *ParseContext) quarantine(raw string, err error) {
	pc.Counters.Quarantined++
	// Placeholder markers are expected in the raw data and not worth a
	// log line each.
	if !errors.Is(err, catalog.ErrNoData) {
		pc.Logger.Debug("entity quarantined",
			slog.String("raw", raw),
			slog.String("reason", err.Error()))
	}
}

// emit finalizes a record set and stamps the emission count.
func emit(pc *ParseContext, rs *recordSet) []domain.CanonicalRecord {
	records := rs.Records()
	pc.Counters.RecordsEmitted = len(records)
	return records
}

// Registry returns every adapter in canonical processing order. The
// order is stable so manifests and logs line up across runs.
func Registry() []Adapter {
	return []Adapter{
		NDGain{},
		NTL{},
		EMDAT{},
		GDACS{},
		IMF{},
		WDI{},
		HDR{},
		WGI{},
		INFORM{},
		FTS{},
		Desinventar{},
		BarroLee{},
		OWID{},
	}
}
