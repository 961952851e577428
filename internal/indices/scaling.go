package indices

import (
	"math"

	"gdra/pkg/contracts/domain"
)

// fieldRange returns the min and max of a field's non-null, finite
// values across the table. ok is false when no usable value exists.
func fieldRange(table *domain.FusedTable, field string) (lo, hi float64, ok bool) {
	for _, row := range table.Rows {
		v, present := row.Field(field)
		if !present || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if !ok {
			lo, hi, ok = v, v, true
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi, ok
}

// normalize01 maps v onto [0,1] over [lo,hi]. A degenerate range
// (hi == lo) maps every value to the middle.
func normalize01(v, lo, hi float64) float64 {
	if hi == lo {
		return 0.5
	}
	return (v - lo) / (hi - lo)
}

// scaleToHundred fills the normalized companion of a raw index column:
// min-max over the full observed distribution, times 100. The
// transform is monotonic and unclipped; null raw values keep a null
// normalized value.
func scaleToHundred(table *domain.FusedTable, raw, normalized string) {
	lo, hi, ok := fieldRange(table, raw)
	if !ok {
		return
	}
	for _, row := range table.Rows {
		v, present := row.Field(raw)
		if !present {
			continue
		}
		row.SetField(normalized, normalize01(v, lo, hi)*100)
	}
}
