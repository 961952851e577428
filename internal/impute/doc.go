// Package impute fills gaps in the fused table according to each
// field's declared kind.
//
// Rate fields are linearly interpolated strictly within each entity's
// own series, weighted by year distance; nulls before the first or
// after the last observation take the nearest known value unchanged.
// No value ever crosses an entity boundary and an entirely null series
// stays null.
//
// Count fields are never interpolated: a null means no recorded event
// and becomes zero. Zero-fill only runs for columns with at least one
// observation in the whole table, so a source that produced nothing
// keeps its columns null instead of reporting a world without events.
//
// Observed fields pass through untouched.
package impute
