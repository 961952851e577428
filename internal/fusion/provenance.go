package fusion

import "gdra/pkg/contracts/domain"

// Chain declares the ordered source candidates that feed one
// consolidated column. Candidates are tried left to right and the
// first non-null value wins; later candidates never override or
// average into an earlier one. A recorded zero is a real observation
// and stops the chain like any other value.
type Chain struct {
	// Target is the consolidated field the chain resolves.
	Target string

	// Candidates are the source fields in priority order.
	Candidates []string
}

// Resolve walks the chain against a fused row and returns the first
// non-null candidate value.
func (c Chain) Resolve(row *domain.FusedRecord) (float64, bool) {
	for _, name := range c.Candidates {
		if v, ok := row.Field(name); ok {
			return v, true
		}
	}
	return 0, false
}

// Chains is the complete provenance table for the consolidated
// columns, in output order. EM-DAT outranks DesInventar for disaster
// impacts because its records are internationally cross-checked, and
// WDI outranks the IMF WEO for macro series because WEO years mix
// observations with projections.
var Chains = []Chain{
	{
		Target:     domain.FieldTotalDisasterDeaths,
		Candidates: []string{domain.FieldEMDATDeaths, domain.FieldDesinventarDeaths},
	},
	{
		Target:     domain.FieldTotalDisasterAffected,
		Candidates: []string{domain.FieldEMDATAffected, domain.FieldDesinventarAffected},
	},
	{
		Target:     domain.FieldTotalDisasterEvents,
		Candidates: []string{domain.FieldEMDATEventCount, domain.FieldDesinventarEvents, domain.FieldGDACSDisasterCount},
	},
	{
		Target:     domain.FieldGDPPerCapitaBest,
		Candidates: []string{domain.FieldGDPPerCapita, domain.FieldGDPPerCapitaIMF},
	},
	{
		Target:     domain.FieldGDPGrowthBest,
		Candidates: []string{domain.FieldGDPGrowth, domain.FieldGDPGrowthIMF},
	},
	{
		Target:     domain.FieldGiniBest,
		Candidates: []string{domain.FieldGiniIndex, domain.FieldGiniWID},
	},
	{
		Target:     domain.FieldEducationYearsBest,
		Candidates: []string{domain.FieldMeanYearsSchooling, domain.FieldYearsOfSchooling},
	},
	{
		Target:     domain.FieldPopulationBest,
		Candidates: []string{domain.FieldPopulation, domain.FieldPopulationIMF},
	},
}

// ChainFor returns the provenance chain for a consolidated field.
func ChainFor(target string) (Chain, bool) {
	for _, c := range Chains {
		if c.Target == target {
			return c, true
		}
	}
	return Chain{}, false
}
