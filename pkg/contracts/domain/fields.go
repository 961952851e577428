package domain

// Source keys. Every adapter registers under exactly one of these and
// stamps it on the canonical records it emits.
const (
	SourceNDGain      = "ndgain"
	SourceNTL         = "ntl"
	SourceEMDAT       = "emdat"
	SourceGDACS       = "gdacs"
	SourceIMF         = "imf"
	SourceWDI         = "wdi"
	SourceHDR         = "hdr"
	SourceWGI         = "wgi"
	SourceINFORM      = "inform"
	SourceFTS         = "fts"
	SourceDesinventar = "desinventar"
	SourceBarroLee    = "barrolee"
	SourceOWID        = "owid"

	// Pseudo-sources for columns the pipeline derives itself.
	SourceFusion  = "fusion"
	SourceIndices = "indices"
)

// SourceKeys returns the keys of all input sources in registration
// order. Pseudo-sources are excluded.
func SourceKeys() []string {
	return []string{
		SourceNDGain, SourceNTL, SourceEMDAT, SourceGDACS, SourceIMF,
		SourceWDI, SourceHDR, SourceWGI, SourceINFORM, SourceFTS,
		SourceDesinventar, SourceBarroLee, SourceOWID,
	}
}

// FieldKind controls how the imputation stage treats a field.
type FieldKind string

const (
	// KindRate marks continuous measures (rates, scores, levels).
	// Gaps are linearly interpolated within each entity and boundary
	// gaps take the nearest known value.
	KindRate FieldKind = "rate"

	// KindCount marks event-derived tallies. A missing count means no
	// recorded event, so gaps are filled with zero and never
	// interpolated.
	KindCount FieldKind = "count"

	// KindObserved marks fields that are reported as-is. The
	// imputation stage leaves them untouched.
	KindObserved FieldKind = "observed"
)

// FieldSpec describes one numeric column of the fused table.
type FieldSpec struct {
	Name   string    `json:"name"`
	Source string    `json:"source"`
	Kind   FieldKind `json:"kind"`
}

// Derived index columns.
const (
	FieldDII           = "DII"
	FieldDIINormalized = "DII_normalized"
	FieldRRS           = "RRS"
	FieldRRSNormalized = "RRS_normalized"
	FieldCRI           = "CRI"
	FieldCRINormalized = "CRI_normalized"

	FieldFatalitiesPerMillion = "fatalities_per_million"
	FieldAffectedPct          = "affected_pct"
	FieldGDPGrowthChange      = "gdp_growth_change"
)

// Consolidated columns produced by the fusion engine's fallback chains.
const (
	FieldTotalDisasterDeaths   = "total_disaster_deaths"
	FieldTotalDisasterAffected = "total_disaster_affected"
	FieldTotalDisasterEvents   = "total_disaster_events"
	FieldGDPPerCapitaBest      = "gdp_per_capita_best"
	FieldGDPGrowthBest         = "gdp_growth_best"
	FieldGiniBest              = "gini_best"
	FieldEducationYearsBest    = "education_years_best"
	FieldPopulationBest        = "population_best"
)

// ND-GAIN climate resilience scores.
const (
	FieldNDGainScore          = "ndgain_score"
	FieldNDGainReadiness      = "ndgain_readiness"
	FieldNDGainVulnerability  = "ndgain_vulnerability"
	FieldNDGainFood           = "ndgain_food"
	FieldNDGainWater          = "ndgain_water"
	FieldNDGainHealth         = "ndgain_health"
	FieldNDGainInfrastructure = "ndgain_infrastructure"
)

// Harmonized nighttime lights.
const (
	FieldNTLRadiance = "ntl_radiance"
	FieldNTLGrowth   = "ntl_growth"
)

// EM-DAT disaster impacts, aggregated per entity-year.
const (
	FieldEMDATDeaths     = "emdat_deaths"
	FieldEMDATAffected   = "emdat_affected"
	FieldEMDATDamageUSD  = "emdat_damage_usd"
	FieldEMDATEventCount = "emdat_event_count"
)

// GDACS alert aggregates and per-type event counts.
const (
	FieldGDACSDisasterCount   = "gdacs_disaster_count"
	FieldGDACSRedAlerts       = "gdacs_red_alerts"
	FieldGDACSOrangeAlerts    = "gdacs_orange_alerts"
	FieldGDACSAvgAlertScore   = "gdacs_avg_alert_score"
	FieldGDACSSeverityWeight  = "gdacs_severity_weight"
	FieldGDACSEarthquakeCount = "gdacs_earthquake_count"
	FieldGDACSFloodCount      = "gdacs_flood_count"
	FieldGDACSDroughtCount    = "gdacs_drought_count"
	FieldGDACSForestFireCount = "gdacs_forest_fire_count"
	FieldGDACSCycloneCount    = "gdacs_tropical_cyclone_count"
	FieldGDACSEruptionCount   = "gdacs_eruption_count"
)

// IMF World Economic Outlook indicators.
const (
	FieldGDPGrowthIMF      = "gdp_growth_imf"
	FieldGDPPerCapitaIMF   = "gdp_per_capita_imf"
	FieldInflationRate     = "inflation_rate"
	FieldUnemploymentRate  = "unemployment_rate"
	FieldPopulationIMF     = "population_imf"
	FieldGovtRevenuePctGDP = "govt_revenue_pct_gdp"
	FieldGovtDebtPctGDP    = "govt_debt_pct_gdp"
)

// World Bank WDI indicators.
const (
	FieldGDPGrowth               = "gdp_growth"
	FieldGDPPerCapita            = "gdp_per_capita"
	FieldGDPPerCapitaPPP         = "gdp_per_capita_ppp"
	FieldGiniIndex               = "gini_index"
	FieldPovertyRate             = "poverty_rate"
	FieldHospitalBedsPer1K       = "hospital_beds_per_1k"
	FieldPhysiciansPer1K         = "physicians_per_1k"
	FieldInternetUsersPct        = "internet_users_pct"
	FieldLiteracyRate            = "literacy_rate"
	FieldSecondaryEnrollment     = "secondary_enrollment"
	FieldPopulation              = "population"
	FieldUrbanPopulationPct      = "urban_population_pct"
	FieldHealthExpenditurePctGDP = "health_expenditure_pct_gdp"
	FieldElectricityAccessPct    = "electricity_access_pct"
	FieldSanitationAccessPct     = "sanitation_access_pct"
	FieldWaterAccessPct          = "water_access_pct"
	FieldForestAreaPct           = "forest_area_pct"
	FieldCO2EmissionsPerCapita   = "co2_emissions_per_capita"
	FieldEaseDoingBusiness       = "ease_doing_business"
	FieldInflationWDI            = "inflation_wdi"
)

// UNDP Human Development Report composites.
const (
	FieldHDI                    = "hdi"
	FieldLifeExpectancy         = "life_expectancy"
	FieldExpectedYearsSchooling = "expected_years_schooling"
	FieldMeanYearsSchooling     = "mean_years_schooling"
	FieldGNIPerCapita           = "gni_per_capita"
)

// Worldwide Governance Indicators.
const (
	FieldWGIVoiceAccountability = "wgi_voice_accountability"
	FieldWGIPoliticalStability  = "wgi_political_stability"
	FieldWGIGovEffectiveness    = "wgi_gov_effectiveness"
	FieldWGIRegulatoryQuality   = "wgi_regulatory_quality"
	FieldWGIRuleOfLaw           = "wgi_rule_of_law"
	FieldWGIControlCorruption   = "wgi_control_corruption"
	FieldWGIComposite           = "wgi_composite"
)

// INFORM risk index dimensions.
const (
	FieldINFORMRisk             = "inform_risk"
	FieldINFORMHazard           = "inform_hazard"
	FieldINFORMVulnerability    = "inform_vulnerability"
	FieldINFORMCopingCapacity   = "inform_coping_capacity"
	FieldINFORMNaturalHazard    = "inform_natural_hazard"
	FieldINFORMHumanHazard      = "inform_human_hazard"
	FieldINFORMSocioecoVuln     = "inform_socioeconomic_vulnerability"
	FieldINFORMVulnerableGroups = "inform_vulnerable_groups"
	FieldINFORMInstitutional    = "inform_institutional"
	FieldINFORMInfrastructure   = "inform_infrastructure"
)

// FTS humanitarian funding.
const (
	FieldHumanitarianFundingUSD = "humanitarian_funding_usd"
)

// DesInventar disaster loss records, aggregated per entity-year.
const (
	FieldDesinventarEvents          = "desinventar_events"
	FieldDesinventarDeaths          = "desinventar_deaths"
	FieldDesinventarAffected        = "desinventar_affected"
	FieldDesinventarHousesDestroyed = "desinventar_houses_destroyed"
	FieldDesinventarHousesDamaged   = "desinventar_houses_damaged"
)

// Barro-Lee educational attainment.
const (
	FieldYearsOfSchooling        = "years_of_schooling"
	FieldYearsPrimarySchooling   = "years_primary_schooling"
	FieldYearsSecondarySchooling = "years_secondary_schooling"
	FieldYearsTertiarySchooling  = "years_tertiary_schooling"
	FieldNoSchoolingPct          = "no_schooling_pct"
	FieldPrimaryCompletedPct     = "primary_completed_pct"
	FieldSecondaryCompletedPct   = "secondary_completed_pct"
	FieldTertiaryCompletedPct    = "tertiary_completed_pct"
)

// World Inequality Database.
const (
	FieldGiniWID = "gini_wid"
)

// FieldRegistry is the authoritative data dictionary of the fused
// table. Registry order is output order: derived indices first, then
// consolidated columns, then source columns grouped by source. Every
// numeric column every stage reads or writes must be declared here.
var FieldRegistry = []FieldSpec{
	// Derived indices.
	{Name: FieldDII, Source: SourceIndices, Kind: KindObserved},
	{Name: FieldDIINormalized, Source: SourceIndices, Kind: KindObserved},
	{Name: FieldRRS, Source: SourceIndices, Kind: KindObserved},
	{Name: FieldRRSNormalized, Source: SourceIndices, Kind: KindObserved},
	{Name: FieldCRI, Source: SourceIndices, Kind: KindObserved},
	{Name: FieldCRINormalized, Source: SourceIndices, Kind: KindObserved},
	{Name: FieldFatalitiesPerMillion, Source: SourceIndices, Kind: KindObserved},
	{Name: FieldAffectedPct, Source: SourceIndices, Kind: KindObserved},
	{Name: FieldGDPGrowthChange, Source: SourceIndices, Kind: KindObserved},

	// Consolidated fallback-chain outputs.
	{Name: FieldTotalDisasterDeaths, Source: SourceFusion, Kind: KindCount},
	{Name: FieldTotalDisasterAffected, Source: SourceFusion, Kind: KindCount},
	{Name: FieldTotalDisasterEvents, Source: SourceFusion, Kind: KindCount},
	{Name: FieldGDPPerCapitaBest, Source: SourceFusion, Kind: KindRate},
	{Name: FieldGDPGrowthBest, Source: SourceFusion, Kind: KindRate},
	{Name: FieldGiniBest, Source: SourceFusion, Kind: KindRate},
	{Name: FieldEducationYearsBest, Source: SourceFusion, Kind: KindRate},
	{Name: FieldPopulationBest, Source: SourceFusion, Kind: KindRate},

	// ND-GAIN.
	{Name: FieldNDGainScore, Source: SourceNDGain, Kind: KindRate},
	{Name: FieldNDGainReadiness, Source: SourceNDGain, Kind: KindRate},
	{Name: FieldNDGainVulnerability, Source: SourceNDGain, Kind: KindRate},
	{Name: FieldNDGainFood, Source: SourceNDGain, Kind: KindRate},
	{Name: FieldNDGainWater, Source: SourceNDGain, Kind: KindRate},
	{Name: FieldNDGainHealth, Source: SourceNDGain, Kind: KindRate},
	{Name: FieldNDGainInfrastructure, Source: SourceNDGain, Kind: KindRate},

	// Nighttime lights.
	{Name: FieldNTLRadiance, Source: SourceNTL, Kind: KindRate},
	{Name: FieldNTLGrowth, Source: SourceNTL, Kind: KindObserved},

	// EM-DAT.
	{Name: FieldEMDATDeaths, Source: SourceEMDAT, Kind: KindCount},
	{Name: FieldEMDATAffected, Source: SourceEMDAT, Kind: KindCount},
	{Name: FieldEMDATDamageUSD, Source: SourceEMDAT, Kind: KindCount},
	{Name: FieldEMDATEventCount, Source: SourceEMDAT, Kind: KindCount},

	// GDACS.
	{Name: FieldGDACSDisasterCount, Source: SourceGDACS, Kind: KindCount},
	{Name: FieldGDACSRedAlerts, Source: SourceGDACS, Kind: KindCount},
	{Name: FieldGDACSOrangeAlerts, Source: SourceGDACS, Kind: KindCount},
	{Name: FieldGDACSAvgAlertScore, Source: SourceGDACS, Kind: KindObserved},
	{Name: FieldGDACSSeverityWeight, Source: SourceGDACS, Kind: KindObserved},
	{Name: FieldGDACSEarthquakeCount, Source: SourceGDACS, Kind: KindCount},
	{Name: FieldGDACSFloodCount, Source: SourceGDACS, Kind: KindCount},
	{Name: FieldGDACSDroughtCount, Source: SourceGDACS, Kind: KindCount},
	{Name: FieldGDACSForestFireCount, Source: SourceGDACS, Kind: KindCount},
	{Name: FieldGDACSCycloneCount, Source: SourceGDACS, Kind: KindCount},
	{Name: FieldGDACSEruptionCount, Source: SourceGDACS, Kind: KindCount},

	// IMF WEO.
	{Name: FieldGDPGrowthIMF, Source: SourceIMF, Kind: KindRate},
	{Name: FieldGDPPerCapitaIMF, Source: SourceIMF, Kind: KindRate},
	{Name: FieldInflationRate, Source: SourceIMF, Kind: KindRate},
	{Name: FieldUnemploymentRate, Source: SourceIMF, Kind: KindRate},
	{Name: FieldPopulationIMF, Source: SourceIMF, Kind: KindRate},
	{Name: FieldGovtRevenuePctGDP, Source: SourceIMF, Kind: KindRate},
	{Name: FieldGovtDebtPctGDP, Source: SourceIMF, Kind: KindRate},

	// World Bank WDI.
	{Name: FieldGDPGrowth, Source: SourceWDI, Kind: KindRate},
	{Name: FieldGDPPerCapita, Source: SourceWDI, Kind: KindRate},
	{Name: FieldGDPPerCapitaPPP, Source: SourceWDI, Kind: KindRate},
	{Name: FieldGiniIndex, Source: SourceWDI, Kind: KindRate},
	{Name: FieldPovertyRate, Source: SourceWDI, Kind: KindRate},
	{Name: FieldHospitalBedsPer1K, Source: SourceWDI, Kind: KindRate},
	{Name: FieldPhysiciansPer1K, Source: SourceWDI, Kind: KindRate},
	{Name: FieldInternetUsersPct, Source: SourceWDI, Kind: KindRate},
	{Name: FieldLiteracyRate, Source: SourceWDI, Kind: KindRate},
	{Name: FieldSecondaryEnrollment, Source: SourceWDI, Kind: KindRate},
	{Name: FieldPopulation, Source: SourceWDI, Kind: KindRate},
	{Name: FieldUrbanPopulationPct, Source: SourceWDI, Kind: KindRate},
	{Name: FieldHealthExpenditurePctGDP, Source: SourceWDI, Kind: KindRate},
	{Name: FieldElectricityAccessPct, Source: SourceWDI, Kind: KindRate},
	{Name: FieldSanitationAccessPct, Source: SourceWDI, Kind: KindRate},
	{Name: FieldWaterAccessPct, Source: SourceWDI, Kind: KindRate},
	{Name: FieldForestAreaPct, Source: SourceWDI, Kind: KindRate},
	{Name: FieldCO2EmissionsPerCapita, Source: SourceWDI, Kind: KindRate},
	{Name: FieldEaseDoingBusiness, Source: SourceWDI, Kind: KindRate},
	{Name: FieldInflationWDI, Source: SourceWDI, Kind: KindRate},

	// UNDP HDR.
	{Name: FieldHDI, Source: SourceHDR, Kind: KindRate},
	{Name: FieldLifeExpectancy, Source: SourceHDR, Kind: KindRate},
	{Name: FieldExpectedYearsSchooling, Source: SourceHDR, Kind: KindRate},
	{Name: FieldMeanYearsSchooling, Source: SourceHDR, Kind: KindRate},
	{Name: FieldGNIPerCapita, Source: SourceHDR, Kind: KindRate},

	// WGI.
	{Name: FieldWGIVoiceAccountability, Source: SourceWGI, Kind: KindRate},
	{Name: FieldWGIPoliticalStability, Source: SourceWGI, Kind: KindRate},
	{Name: FieldWGIGovEffectiveness, Source: SourceWGI, Kind: KindRate},
	{Name: FieldWGIRegulatoryQuality, Source: SourceWGI, Kind: KindRate},
	{Name: FieldWGIRuleOfLaw, Source: SourceWGI, Kind: KindRate},
	{Name: FieldWGIControlCorruption, Source: SourceWGI, Kind: KindRate},
	{Name: FieldWGIComposite, Source: SourceWGI, Kind: KindRate},

	// INFORM.
	{Name: FieldINFORMRisk, Source: SourceINFORM, Kind: KindRate},
	{Name: FieldINFORMHazard, Source: SourceINFORM, Kind: KindRate},
	{Name: FieldINFORMVulnerability, Source: SourceINFORM, Kind: KindRate},
	{Name: FieldINFORMCopingCapacity, Source: SourceINFORM, Kind: KindRate},
	{Name: FieldINFORMNaturalHazard, Source: SourceINFORM, Kind: KindRate},
	{Name: FieldINFORMHumanHazard, Source: SourceINFORM, Kind: KindRate},
	{Name: FieldINFORMSocioecoVuln, Source: SourceINFORM, Kind: KindRate},
	{Name: FieldINFORMVulnerableGroups, Source: SourceINFORM, Kind: KindRate},
	{Name: FieldINFORMInstitutional, Source: SourceINFORM, Kind: KindRate},
	{Name: FieldINFORMInfrastructure, Source: SourceINFORM, Kind: KindRate},

	// FTS.
	{Name: FieldHumanitarianFundingUSD, Source: SourceFTS, Kind: KindCount},

	// DesInventar.
	{Name: FieldDesinventarEvents, Source: SourceDesinventar, Kind: KindCount},
	{Name: FieldDesinventarDeaths, Source: SourceDesinventar, Kind: KindCount},
	{Name: FieldDesinventarAffected, Source: SourceDesinventar, Kind: KindCount},
	{Name: FieldDesinventarHousesDestroyed, Source: SourceDesinventar, Kind: KindCount},
	{Name: FieldDesinventarHousesDamaged, Source: SourceDesinventar, Kind: KindCount},

	// Barro-Lee.
	{Name: FieldYearsOfSchooling, Source: SourceBarroLee, Kind: KindRate},
	{Name: FieldYearsPrimarySchooling, Source: SourceBarroLee, Kind: KindRate},
	{Name: FieldYearsSecondarySchooling, Source: SourceBarroLee, Kind: KindRate},
	{Name: FieldYearsTertiarySchooling, Source: SourceBarroLee, Kind: KindRate},
	{Name: FieldNoSchoolingPct, Source: SourceBarroLee, Kind: KindRate},
	{Name: FieldPrimaryCompletedPct, Source: SourceBarroLee, Kind: KindRate},
	{Name: FieldSecondaryCompletedPct, Source: SourceBarroLee, Kind: KindRate},
	{Name: FieldTertiaryCompletedPct, Source: SourceBarroLee, Kind: KindRate},

	// WID Gini.
	{Name: FieldGiniWID, Source: SourceOWID, Kind: KindRate},
}

// fieldIndex is built once from FieldRegistry for name lookups.
var fieldIndex = func() map[string]FieldSpec {
	m := make(map[string]FieldSpec, len(FieldRegistry))
	for _, f := range FieldRegistry {
		m[f.Name] = f
	}
	return m
}()

// FieldByName returns the spec for a declared field.
func FieldByName(name string) (FieldSpec, bool) {
	f, ok := fieldIndex[name]
	return f, ok
}

// FieldsOfKind returns the names of all fields with the given kind, in
// registry order.
func FieldsOfKind(kind FieldKind) []string {
	var names []string
	for _, f := range FieldRegistry {
		if f.Kind == kind {
			names = append(names, f.Name)
		}
	}
	return names
}

// FieldsBySource returns the names of all fields a source contributes,
// in registry order.
func FieldsBySource(source string) []string {
	var names []string
	for _, f := range FieldRegistry {
		if f.Source == source {
			names = append(names, f.Name)
		}
	}
	return names
}

// Identity columns of the unified dataset, preceding the declared
// fields in every artifact.
const (
	ColumnISO3        = "iso3"
	ColumnYear        = "year"
	ColumnRegion      = "region"
	ColumnIncomeGroup = "income_group"
)

// OutputColumns returns the full column order of the unified dataset:
// identity columns, then every declared field in registry order.
func OutputColumns() []string {
	cols := []string{ColumnISO3, ColumnYear, ColumnRegion, ColumnIncomeGroup}
	for _, f := range FieldRegistry {
		cols = append(cols, f.Name)
	}
	return cols
}
