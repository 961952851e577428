// Package fusion merges the canonical records of every source into the
// unified country-year table.
//
// The merge is an outer join over (entity, year): a pair present in
// any source gets a row, and no row is invented for pairs absent from
// all of them. Within a row, every source field is carried verbatim;
// the consolidated columns (gdp_per_capita_best, total_disaster_deaths
// and friends) are then resolved through static provenance chains
// where the first non-null candidate wins. A higher-priority source
// always beats a lower one, even when both report a value; chains
// never average.
//
// Fusion also stamps the two enrichment columns: the catalog region
// and the World Bank income group derived from gdp_per_capita_best.
package fusion
