// Package sources contains one adapter per upstream dataset. Each
// adapter reads its raw files from a configured directory, resolves
// entity identities through the shared catalog, clamps rows to the
// configured year horizon and emits canonical records keyed by
// (entity, year).
//
// Adapters never fail on malformed rows: a row whose identity cannot
// be resolved or whose critical cells cannot be parsed is counted and
// skipped. A Parse error means the source itself could not be read,
// and ErrSourceUnavailable marks the subset of those failures where
// the input files are simply absent so the extract stage can downgrade
// them to warnings.
//
// The Registry function returns every adapter in canonical processing
// order; the extract stage fans them out concurrently, one parse
// context each.
package sources
