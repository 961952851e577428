// Package indices computes the three composite resilience indices on
// the fused table.
//
// DII (Disaster Impact Index) measures human impact against economic
// capacity, RRS (Recovery Resilience Score) measures the capacity to
// absorb and recover from shocks, and CRI (Climate Resilience Index)
// relates adaptive capacity to exposure and vulnerability. Each index
// is stored raw and min-max normalized to 0-100 over the full observed
// distribution.
//
// A missing input leaves an index null, never zero: a country without
// data is unknown, not resilient.
package indices
