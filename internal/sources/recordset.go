package sources

import (
	"sort"

	"gdra/pkg/contracts/domain"
)

// recordSet accumulates field values keyed by (entity, year) while an
// adapter walks its input rows, then emits canonical records in key
// order. Set overwrites, Add sums and Observe keeps a running mean;
// adapters must not mix Add and Observe on the same field.
type recordSet struct {
	source string
	values map[domain.Key]map[string]float64
	counts map[domain.Key]map[string]int
}

func newRecordSet(source string) *recordSet {
	return &recordSet{
		source: source,
		values: make(map[domain.Key]map[string]float64),
		counts: make(map[domain.Key]map[string]int),
	}
}

func (rs *recordSet) fields(code string, year int) map[string]float64 {
	key := domain.Key{EntityCode: code, Year: year}
	m, ok := rs.values[key]
	if !ok {
		m = make(map[string]float64)
		rs.values[key] = m
	}
	return m
}

// Set stores a value, replacing any previous one.
func (rs *recordSet) Set(code string, year int, field string, value float64) {
	rs.fields(code, year)[field] = value
}

// SetDefault stores a value only when the field is still absent.
func (rs *recordSet) SetDefault(code string, year int, field string, value float64) {
	m := rs.fields(code, year)
	if _, ok := m[field]; !ok {
		m[field] = value
	}
}

// Add accumulates a value into a running sum starting at zero.
func (rs *recordSet) Add(code string, year int, field string, value float64) {
	rs.fields(code, year)[field] += value
}

// Observe accumulates a value into a running mean resolved by Records.
func (rs *recordSet) Observe(code string, year int, field string, value float64) {
	key := domain.Key{EntityCode: code, Year: year}
	rs.fields(code, year)[field] += value
	c, ok := rs.counts[key]
	if !ok {
		c = make(map[string]int)
		rs.counts[key] = c
	}
	c[field]++
}

// Len returns the number of distinct entity-year keys.
func (rs *recordSet) Len() int {
	return len(rs.values)
}

// Keys returns the distinct entity-year keys in no particular order.
func (rs *recordSet) Keys() []domain.Key {
	keys := make([]domain.Key, 0, len(rs.values))
	for key := range rs.values {
		keys = append(keys, key)
	}
	return keys
}

// Records finalizes the set into canonical records sorted by key.
// Fields fed through Observe are divided by their observation count,
// so Records must be called at most once.
func (rs *recordSet) Records() []domain.CanonicalRecord {
	keys := rs.Keys()
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].EntityCode != keys[j].EntityCode {
			return keys[i].EntityCode < keys[j].EntityCode
		}
		return keys[i].Year < keys[j].Year
	})

	records := make([]domain.CanonicalRecord, 0, len(keys))
	for _, key := range keys {
		fields := rs.values[key]
		for field, n := range rs.counts[key] {
			if n > 1 {
				fields[field] /= float64(n)
			}
		}
		records = append(records, domain.CanonicalRecord{
			Source:     rs.source,
			EntityCode: key.EntityCode,
			Year:       key.Year,
			Fields:     fields,
		})
	}
	return records
}
