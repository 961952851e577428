package impute

import (
	"context"
	"log/slog"

	"gdra/pkg/contracts/domain"
)

// Stats summarizes one imputation pass.
type Stats struct {
	// Interpolated counts gaps filled between two observations.
	Interpolated int

	// Extended counts boundary nulls filled by flat extension.
	Extended int

	// ZeroFilled counts count-field nulls turned into zeros.
	ZeroFilled int
}

// Total returns the number of values written by the pass.
func (s Stats) Total() int {
	return s.Interpolated + s.Extended + s.ZeroFilled
}

// Engine fills the fused table in place. It must run after fusion and
// before index computation.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates an imputation engine.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// Impute fills rate-field gaps per entity and zero-fills count fields,
// mutating the table. The table must be sorted.
func (e *Engine) Impute(ctx context.Context, table *domain.FusedTable) Stats {
	var stats Stats

	rateFields := domain.FieldsOfKind(domain.KindRate)
	for _, code := range table.Entities() {
		rows := table.EntityRows(code)
		for _, field := range rateFields {
			interpolateSeries(rows, field, &stats)
		}
	}

	for _, field := range domain.FieldsOfKind(domain.KindCount) {
		zeroFill(table, field, &stats)
	}

	e.logger.InfoContext(ctx, "imputed missing values",
		"interpolated", stats.Interpolated,
		"extended", stats.Extended,
		"zero_filled", stats.ZeroFilled,
	)
	return stats
}

// interpolateSeries fills the nulls of one rate field across one
// entity's rows. Interior gaps interpolate linearly on year distance;
// nulls outside the observed range copy the nearest observation.
func interpolateSeries(rows []*domain.FusedRecord, field string, stats *Stats) {
	type point struct {
		year  int
		value float64
	}
	var known []point
	for _, row := range rows {
		if v, ok := row.Field(field); ok {
			known = append(known, point{year: row.Year, value: v})
		}
	}
	if len(known) == 0 {
		return
	}

	next := 0
	for _, row := range rows {
		if _, ok := row.Field(field); ok {
			continue
		}
		for next < len(known) && known[next].year < row.Year {
			next++
		}
		switch {
		case next == 0:
			row.SetField(field, known[0].value)
			stats.Extended++
		case next == len(known):
			row.SetField(field, known[len(known)-1].value)
			stats.Extended++
		default:
			lo, hi := known[next-1], known[next]
			t := float64(row.Year-lo.year) / float64(hi.year-lo.year)
			row.SetField(field, lo.value+t*(hi.value-lo.value))
			stats.Interpolated++
		}
	}
}

// zeroFill replaces the nulls of one count field with zero, provided
// the field was observed at least once anywhere in the table.
func zeroFill(table *domain.FusedTable, field string, stats *Stats) {
	observed := false
	for _, row := range table.Rows {
		if _, ok := row.Field(field); ok {
			observed = true
			break
		}
	}
	if !observed {
		return
	}

	for _, row := range table.Rows {
		if _, ok := row.Field(field); !ok {
			row.SetField(field, 0)
			stats.ZeroFilled++
		}
	}
}
