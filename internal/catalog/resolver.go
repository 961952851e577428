package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sahilm/fuzzy"

	apperrors "gdra/internal/errors"
	"gdra/pkg/contracts/domain"
)

// Resolution failure modes, distinguishable with errors.Is.
var (
	// ErrNoData marks inputs that carry a no-data sentinel instead of
	// an identifier. Callers typically quarantine the row.
	ErrNoData = errors.New("no-data marker")

	// ErrUnresolved marks inputs no resolution stage could match.
	ErrUnresolved = errors.New("entity not resolved")
)

// Inputs shorter than this never reach the fuzzy stage. Subsequence
// matching on two or three letters hits half the catalog.
const minFuzzyInput = 4

// fuzzyEntry pairs one searchable normalized name with its code.
type fuzzyEntry struct {
	norm string
	code string
}

// fuzzyEntries implements fuzzy.Source over the catalog names.
type fuzzyEntries []fuzzyEntry

func (f fuzzyEntries) Len() int            { return len(f) }
func (f fuzzyEntries) String(i int) string { return f[i].norm }

// Resolver maps raw source identifiers onto canonical catalog codes.
// It is immutable after construction and safe for concurrent use.
type Resolver struct {
	logger *slog.Logger
	items  fuzzyEntries
}

// NewResolver creates a resolver over the full catalog.
func NewResolver(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}

	// Searchable names in catalog order so tie-breaking stays
	// deterministic across runs.
	items := make(fuzzyEntries, 0, len(entries)*2)
	for _, e := range entries {
		items = append(items, fuzzyEntry{norm: NormalizeName(e.Name), code: e.Code})
		for _, alias := range e.Aliases {
			items = append(items, fuzzyEntry{norm: NormalizeName(alias), code: e.Code})
		}
	}

	return &Resolver{
		logger: logger.With(slog.String("component", "catalog_resolver")),
		items:  items,
	}
}

// Resolve maps a raw identifier (a code or a free-form name) to its
// canonical 3-letter code. Stages run in order and the first hit wins;
// no-data markers fail before any stage runs.
func (r *Resolver) Resolve(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if IsInvalidMarker(trimmed) {
		return "", fmt.Errorf("resolve %q: %w", raw, ErrNoData)
	}

	// Stage 1: already a canonical code.
	upper := strings.ToUpper(trimmed)
	if len(upper) == 3 {
		if _, ok := byCode[upper]; ok {
			return upper, nil
		}
	}

	// Stage 2: exact name or alias, case-insensitive.
	if e, ok := byExact[upper]; ok {
		return e.Code, nil
	}

	// Stage 3: normalized name or alias.
	normalized := NormalizeName(trimmed)
	if e, ok := byNormName[normalized]; ok {
		return e.Code, nil
	}

	// Stage 4: unambiguous fuzzy match.
	if code, ok := r.fuzzyMatch(normalized); ok {
		r.logger.Debug("entity resolved by fuzzy match",
			slog.String("input", raw),
			slog.String("code", code))
		return code, nil
	}

	return "", apperrors.NewResolutionError(
		fmt.Sprintf("no catalog match for %q", raw), ErrUnresolved)
}

// fuzzyMatch returns the best fuzzy candidate when it is unambiguous:
// no differently-coded candidate may share the top score.
func (r *Resolver) fuzzyMatch(normalized string) (string, bool) {
	if len(normalized) < minFuzzyInput {
		return "", false
	}

	matches := fuzzy.FindFrom(normalized, r.items)
	if len(matches) == 0 {
		return "", false
	}

	best := matches[0]
	bestCode := r.items[best.Index].code
	for _, m := range matches[1:] {
		if m.Score < best.Score {
			break
		}
		if r.items[m.Index].code != bestCode {
			return "", false
		}
	}
	return bestCode, true
}

// StandardizeCode normalizes an identifier that is expected to already
// be a 3-letter code: trims, upper-cases, rejects no-data markers and
// anything that is not three letters. Codes outside the catalog are
// accepted; sources carry historic and territorial codes the catalog
// does not enumerate.
func StandardizeCode(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if IsInvalidMarker(trimmed) {
		return "", fmt.Errorf("standardize %q: %w", raw, ErrNoData)
	}

	code := strings.ToUpper(trimmed)
	if !domain.IsValidEntityCode(code) {
		return "", apperrors.NewResolutionError(
			fmt.Sprintf("identifier %q is not a 3-letter code", raw), ErrUnresolved)
	}
	return code, nil
}
