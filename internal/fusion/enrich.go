package fusion

import "math"

// Income group labels match the World Bank classification the output
// schema carries.
const (
	IncomeLow         = "Low"
	IncomeLowerMiddle = "Lower-Middle"
	IncomeUpperMiddle = "Upper-Middle"
	IncomeHigh        = "High"
)

// IncomeBand maps a right-closed gdp-per-capita interval to an income
// group label.
type IncomeBand struct {
	Upper float64
	Label string
}

// IncomeBands holds the World Bank FY24 operational thresholds.
// Intervals are right-closed: a gdp per capita of exactly 1085 is
// still Low income.
var IncomeBands = []IncomeBand{
	{Upper: 1085, Label: IncomeLow},
	{Upper: 4255, Label: IncomeLowerMiddle},
	{Upper: 13205, Label: IncomeUpperMiddle},
	{Upper: math.Inf(1), Label: IncomeHigh},
}

// IncomeGroup classifies a gdp-per-capita value. Null (ok=false) and
// non-positive values have no classification and return the empty
// string.
func IncomeGroup(gdp float64, ok bool) string {
	if !ok || gdp <= 0 || math.IsNaN(gdp) {
		return ""
	}
	for _, band := range IncomeBands {
		if gdp <= band.Upper {
			return band.Label
		}
	}
	return ""
}
