package exporter

import (
	"strconv"
)

// formatFloat formats a float64 value for CSV output in the canonical
// shortest form that round-trips. 1066.6666666666667 stays
// 1066.6666666666667, 1200 becomes 1200, so identical inputs always
// produce byte-identical artifacts.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatNullable renders a possibly-null cell. Nulls are empty cells,
// never zero.
func formatNullable(v float64, ok bool) string {
	if !ok {
		return ""
	}
	return formatFloat(v)
}

// formatPct formats a coverage percentage with one decimal place.
func formatPct(f float64) string {
	return strconv.FormatFloat(f, 'f', 1, 64)
}

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}
