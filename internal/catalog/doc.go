// Package catalog provides the canonical entity catalog and the name
// resolver used to normalize source identifiers onto it.
//
// Every source the pipeline ingests identifies countries differently:
// some carry clean ISO3 codes, some carry codes with stray whitespace
// or sentinel markers, and some carry only free-form names ("Ivory
// Coast", "Côte d'Ivoire", "Turkey", "Türkiye"). The catalog is the
// single authority that maps all of those onto one canonical 3-letter
// code per entity, plus the region used for enrichment.
//
// # Resolution
//
// The resolver applies a fixed sequence of stages and stops at the
// first hit:
//
//	1. Canonical code: the input is already a known 3-letter code.
//	2. Exact name: case-insensitive match on the catalog name.
//	3. Normalized name: diacritics folded, punctuation stripped,
//	   aliases consulted ("IVORY COAST" → CIV).
//	4. Fuzzy match: unambiguous best candidate, guarded so short
//	   inputs never fuzzy-match.
//
// Inputs carrying a no-data marker ("", "NA", "NULL", "...") fail
// before any stage runs. Resolution is deterministic: the same input
// always yields the same code or the same error.
//
// # Usage
//
//	resolver := catalog.NewResolver(logger)
//	code, err := resolver.Resolve("Ivory Coast")  // "CIV"
//	region, _ := catalog.RegionOf(code)           // "Africa"
package catalog
