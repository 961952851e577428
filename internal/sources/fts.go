package sources

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"gdra/pkg/contracts/domain"
)

// FTS loads the OCHA Financial Tracking Service flow exports, one CSV
// per appeal or emergency. A flow addressed to several recipient
// entities is split equally between them; the per-flow shares are
// carried as decimals so repeated splits don't accumulate float drift.
// Files that cannot be read are skipped with a warning because exports
// are downloaded piecemeal and a single bad file should not discard
// the rest.
type FTS struct{}

// Source implements Adapter.
func (FTS) Source() string { return domain.SourceFTS }

// Parse implements Adapter.
func (FTS) Parse(ctx context.Context, pc *ParseContext) ([]domain.CanonicalRecord, error) {
	paths, err := listFiles(pc.Dir, ".csv")
	if err != nil {
		return nil, missingAsUnavailable(err, pc.Dir)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no flow exports in %s: %w", pc.Dir, ErrSourceUnavailable)
	}

	totals := make(map[domain.Key]decimal.Decimal)
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := parseFTSFile(pc, totals, path); err != nil {
			pc.Counters.ParseFailures++
			pc.Logger.Warn("skipping unreadable flow export",
				slog.String("file", filepath.Base(path)),
				slog.String("error", err.Error()))
		}
	}

	rs := newRecordSet(domain.SourceFTS)
	for key, total := range totals {
		rs.Set(key.EntityCode, key.Year, domain.FieldHumanitarianFundingUSD, total.InexactFloat64())
	}
	return emit(pc, rs), nil
}

// parseFTSFile accumulates one flow export into the running totals.
func parseFTSFile(pc *ParseContext, totals map[domain.Key]decimal.Decimal, path string) error {
	rows, err := readCSV(path)
	if err != nil {
		return err
	}
	if len(rows) < 2 {
		return nil
	}

	header := headerIndex(rows[0])
	destCol, ok := header["destlocations"]
	if !ok {
		return fmt.Errorf("%s has no destLocations column", filepath.Base(path))
	}
	amountCol, ok := header["amountusd"]
	if !ok {
		return fmt.Errorf("%s has no amountUSD column", filepath.Base(path))
	}
	yearCol, ok := header["budgetyear"]
	if !ok {
		return fmt.Errorf("%s has no budgetYear column", filepath.Base(path))
	}

	for i, row := range rows[1:] {
		// Exports carry an HXL hashtag row right under the header.
		if i == 0 && isHXLTagRow(row) {
			continue
		}
		pc.Counters.RowsRead++

		amountRaw := strings.ReplaceAll(cellAt(row, amountCol), ",", "")
		if amountRaw == "" {
			continue
		}
		amount, err := decimal.NewFromString(amountRaw)
		if err != nil {
			pc.Counters.ParseFailures++
			continue
		}
		yearRaw := cellAt(row, yearCol)
		if yearRaw == "" {
			continue
		}
		year, ok := parseInt(yearRaw)
		if !ok {
			pc.Counters.ParseFailures++
			continue
		}
		if !pc.inHorizon(year) {
			continue
		}

		// Recipient entities are a comma-separated list of ISO3 codes;
		// anything else in the list is noise.
		var tokens []string
		for _, token := range strings.Split(cellAt(row, destCol), ",") {
			token = strings.TrimSpace(token)
			if len(token) == 3 {
				tokens = append(tokens, token)
			}
		}
		if len(tokens) == 0 {
			continue
		}

		// The equal split divides by the full recipient count even when
		// some recipients fail to resolve, so resolvable ones never
		// absorb a failed sibling's share.
		share := amount.Div(decimal.NewFromInt(int64(len(tokens))))
		for _, token := range tokens {
			code, ok := pc.resolveCode(token)
			if !ok {
				continue
			}
			key := domain.Key{EntityCode: code, Year: year}
			totals[key] = totals[key].Add(share)
		}
	}
	return nil
}

// isHXLTagRow reports whether a row carries HXL hashtags rather than
// data.
func isHXLTagRow(row []string) bool {
	for _, cell := range row {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		return strings.HasPrefix(cell, "#")
	}
	return false
}
