package indices

import (
	"context"
	"log/slog"
	"math"

	"gdra/pkg/contracts/domain"
)

// Formula constants, calibrated by the original analysis.
const (
	// AffectedWeight scales the affected population share against
	// fatalities inside DII.
	AffectedWeight = 4.0

	// DefaultSeverityWeight applies when GDACS issued no alert for an
	// entity-year.
	DefaultSeverityWeight = 1.0

	// DampingDivisor controls how strongly disaster frequency damps
	// RRS.
	DampingDivisor = 3.0

	// CRIEpsilon keeps the CRI denominator finite when exposure and
	// vulnerability are both zero.
	CRIEpsilon = 0.001
)

// Stats summarizes one index computation pass.
type Stats struct {
	Rows        int
	DIIComputed int
	RRSComputed int
	CRIComputed int
}

// Engine computes the composite indices and their intermediate
// columns on a fused, imputed table.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates an index engine.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// Compute derives the impact-rate and growth-change columns, computes
// raw DII, RRS and CRI per row and fills the 0-100 normalized
// companions. The table is mutated in place; rows missing an input
// keep the affected index null.
func (e *Engine) Compute(ctx context.Context, table *domain.FusedTable) Stats {
	stats := Stats{Rows: table.Len()}

	deriveGrowthChange(table)

	// RRS normalizes hdi and governance over the full distribution.
	hdiLo, hdiHi, _ := fieldRange(table, domain.FieldHDI)
	govLo, govHi, _ := fieldRange(table, domain.FieldWGIComposite)

	for _, row := range table.Rows {
		deriveImpactRates(row)
		if computeDII(row) {
			stats.DIIComputed++
		}
		if computeRRS(row, hdiLo, hdiHi, govLo, govHi) {
			stats.RRSComputed++
		}
		if computeCRI(row) {
			stats.CRIComputed++
		}
	}

	scaleToHundred(table, domain.FieldDII, domain.FieldDIINormalized)
	scaleToHundred(table, domain.FieldRRS, domain.FieldRRSNormalized)
	scaleToHundred(table, domain.FieldCRI, domain.FieldCRINormalized)

	e.logger.InfoContext(ctx, "computed resilience indices",
		"rows", stats.Rows,
		"dii", stats.DIIComputed,
		"rrs", stats.RRSComputed,
		"cri", stats.CRIComputed,
	)
	return stats
}

// deriveGrowthChange stores the year-over-year change of
// gdp_growth_best within each entity. The first row of an entity has
// no prior observation and stays null.
func deriveGrowthChange(table *domain.FusedTable) {
	for _, code := range table.Entities() {
		rows := table.EntityRows(code)
		for i := 1; i < len(rows); i++ {
			curr, okCurr := rows[i].Field(domain.FieldGDPGrowthBest)
			prev, okPrev := rows[i-1].Field(domain.FieldGDPGrowthBest)
			if okCurr && okPrev {
				rows[i].SetField(domain.FieldGDPGrowthChange, curr-prev)
			}
		}
	}
}

// deriveImpactRates stores fatalities per million and affected percent
// for rows with a usable population.
func deriveImpactRates(row *domain.FusedRecord) {
	pop, ok := row.Field(domain.FieldPopulationBest)
	if !ok || pop <= 0 {
		return
	}
	if deaths, ok := row.Field(domain.FieldTotalDisasterDeaths); ok {
		row.SetField(domain.FieldFatalitiesPerMillion, deaths*1e6/pop)
	}
	if affected, ok := row.Field(domain.FieldTotalDisasterAffected); ok {
		row.SetField(domain.FieldAffectedPct, affected*100/pop)
	}
}

// computeDII stores the Disaster Impact Index:
//
//	(fatalities_per_million + AffectedWeight * affected_pct)
//	  / gdp_per_capita_best * severity_weight
func computeDII(row *domain.FusedRecord) bool {
	fatalities, okF := row.Field(domain.FieldFatalitiesPerMillion)
	affected, okA := row.Field(domain.FieldAffectedPct)
	gdp, okG := row.Field(domain.FieldGDPPerCapitaBest)
	if !okF || !okA || !okG || gdp <= 0 {
		return false
	}

	severity := DefaultSeverityWeight
	if w, ok := row.Field(domain.FieldGDACSSeverityWeight); ok {
		severity = w
	}

	return setFinite(row, domain.FieldDII, (fatalities+AffectedWeight*affected)/gdp*severity)
}

// computeRRS stores the Recovery Resilience Score:
//
//	(gdp_growth_change + hdi_norm + governance_norm) / damping
//
// where damping = 1 + ln(1 + total_disaster_events)/DampingDivisor.
// A null event count damps like zero events.
func computeRRS(row *domain.FusedRecord, hdiLo, hdiHi, govLo, govHi float64) bool {
	delta, okD := row.Field(domain.FieldGDPGrowthChange)
	hdi, okH := row.Field(domain.FieldHDI)
	gov, okG := row.Field(domain.FieldWGIComposite)
	if !okD || !okH || !okG {
		return false
	}

	events := 0.0
	if ev, ok := row.Field(domain.FieldTotalDisasterEvents); ok && ev > 0 {
		events = ev
	}
	damping := 1 + math.Log(1+events)/DampingDivisor

	rrs := (delta + normalize01(hdi, hdiLo, hdiHi) + normalize01(gov, govLo, govHi)) / damping
	return setFinite(row, domain.FieldRRS, rrs)
}

// computeCRI stores the Climate Resilience Index:
//
//	adaptive_capacity / (exposure + vulnerability + CRIEpsilon)
func computeCRI(row *domain.FusedRecord) bool {
	adaptive, okA := criAdaptive(row)
	exposure, okE := criExposure(row)
	vulnerability, okV := criVulnerability(row)
	if !okA || !okE || !okV {
		return false
	}
	return setFinite(row, domain.FieldCRI, adaptive/(exposure+vulnerability+CRIEpsilon))
}

// criAdaptive resolves adaptive capacity on a 0-1 scale: ND-GAIN
// readiness first, INFORM coping capacity inverted from its 0-10
// scale as the fallback.
func criAdaptive(row *domain.FusedRecord) (float64, bool) {
	if v, ok := row.Field(domain.FieldNDGainReadiness); ok {
		return v, true
	}
	if v, ok := row.Field(domain.FieldINFORMCopingCapacity); ok {
		return (10 - v) / 10, true
	}
	return 0, false
}

// criExposure resolves exposure from the INFORM hazard score.
func criExposure(row *domain.FusedRecord) (float64, bool) {
	if v, ok := row.Field(domain.FieldINFORMHazard); ok {
		return v / 10, true
	}
	return 0, false
}

// criVulnerability resolves vulnerability: ND-GAIN first, INFORM
// rescaled as the fallback.
func criVulnerability(row *domain.FusedRecord) (float64, bool) {
	if v, ok := row.Field(domain.FieldNDGainVulnerability); ok {
		return v, true
	}
	if v, ok := row.Field(domain.FieldINFORMVulnerability); ok {
		return v / 10, true
	}
	return 0, false
}

// setFinite stores a value unless the arithmetic degenerated; a
// non-finite result leaves the field null.
func setFinite(row *domain.FusedRecord, field string, v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	row.SetField(field, v)
	return true
}
