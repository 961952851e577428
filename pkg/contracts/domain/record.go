package domain

import (
	"fmt"
	"regexp"
	"sort"
)

// Default analysis horizon. Sources report observations between these
// inclusive bounds; anything outside is dropped during normalization.
const (
	DefaultYearStart = 2000
	DefaultYearEnd   = 2024
)

// Key identifies one row of the fused table: a single entity in a
// single calendar year. It is the primary key of every output artifact.
type Key struct {
	EntityCode string `json:"entity_code"`
	Year       int    `json:"year"`
}

// String returns the key in "CODE/YEAR" form for logs and error messages.
func (k Key) String() string {
	return fmt.Sprintf("%s/%d", k.EntityCode, k.Year)
}

// CanonicalRecord is the normalized single-source observation: one
// entity, one year, one or more numeric fields. Adapters emit exactly
// one CanonicalRecord per (source, entity, year); records are immutable
// once emitted.
//
// Null values are represented by absence: a field that the source did
// not report (or reported with a no-data marker) is simply not present
// in Fields. This keeps "missing" and "zero" strictly distinct.
type CanonicalRecord struct {
	// Source is the stable source key (e.g. "emdat", "wdi").
	Source string `json:"source" validate:"required"`

	// EntityCode is the canonical 3-letter entity identifier.
	EntityCode string `json:"entity_code" validate:"required,len=3"`

	// Year is the observation year, within the configured horizon.
	Year int `json:"year" validate:"required"`

	// Fields maps canonical field names to observed numeric values.
	Fields map[string]float64 `json:"fields"`
}

// Key returns the (entity, year) key of the record.
func (r *CanonicalRecord) Key() Key {
	return Key{EntityCode: r.EntityCode, Year: r.Year}
}

// entityCodePattern matches canonical 3-letter entity codes.
var entityCodePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// IsValidEntityCode reports whether code has the canonical 3-letter form.
func IsValidEntityCode(code string) bool {
	return entityCodePattern.MatchString(code)
}

// Validate checks the structural invariants of a canonical record
// against the given year horizon.
func (r *CanonicalRecord) Validate(yearStart, yearEnd int) error {
	if r.Source == "" {
		return fmt.Errorf("record source is required")
	}
	if !IsValidEntityCode(r.EntityCode) {
		return fmt.Errorf("entity code %q is not a canonical 3-letter code", r.EntityCode)
	}
	if r.Year < yearStart || r.Year > yearEnd {
		return fmt.Errorf("year %d outside horizon %d-%d", r.Year, yearStart, yearEnd)
	}
	return nil
}

// FusedRecord is one row of the fused table: every field from every
// source for one (entity, year), plus the derived indices and the
// enrichment columns. Created by the fusion engine, mutated once by
// imputation and once by index computation, then frozen.
type FusedRecord struct {
	EntityCode  string             `json:"entity_code"`
	Year        int                `json:"year"`
	Region      string             `json:"region,omitempty"`
	IncomeGroup string             `json:"income_group,omitempty"`
	Fields      map[string]float64 `json:"fields"`
}

// NewFusedRecord creates an empty fused row for the given key.
func NewFusedRecord(code string, year int) *FusedRecord {
	return &FusedRecord{
		EntityCode: code,
		Year:       year,
		Fields:     make(map[string]float64),
	}
}

// Key returns the (entity, year) key of the row.
func (r *FusedRecord) Key() Key {
	return Key{EntityCode: r.EntityCode, Year: r.Year}
}

// Field returns the value of a field and whether it is non-null.
func (r *FusedRecord) Field(name string) (float64, bool) {
	v, ok := r.Fields[name]
	return v, ok
}

// SetField stores a non-null value for a field.
func (r *FusedRecord) SetField(name string, value float64) {
	r.Fields[name] = value
}

// ClearField removes a field, returning it to null.
func (r *FusedRecord) ClearField(name string) {
	delete(r.Fields, name)
}

// FusedTable is the complete fused dataset. Rows are kept sorted by
// (entity_code, year); the table is owned exclusively by whichever
// pipeline stage is currently transforming it.
type FusedTable struct {
	Rows []*FusedRecord `json:"rows"`
}

// Sort orders rows by entity code, then year. All table consumers rely
// on this ordering for deterministic output.
func (t *FusedTable) Sort() {
	sort.Slice(t.Rows, func(i, j int) bool {
		if t.Rows[i].EntityCode != t.Rows[j].EntityCode {
			return t.Rows[i].EntityCode < t.Rows[j].EntityCode
		}
		return t.Rows[i].Year < t.Rows[j].Year
	})
}

// Len returns the number of rows.
func (t *FusedTable) Len() int {
	return len(t.Rows)
}

// Entities returns the distinct entity codes in row order.
func (t *FusedTable) Entities() []string {
	var codes []string
	seen := make(map[string]bool)
	for _, row := range t.Rows {
		if !seen[row.EntityCode] {
			seen[row.EntityCode] = true
			codes = append(codes, row.EntityCode)
		}
	}
	return codes
}

// EntityRows returns the rows belonging to one entity, in year order.
// The table must already be sorted.
func (t *FusedTable) EntityRows(code string) []*FusedRecord {
	var rows []*FusedRecord
	for _, row := range t.Rows {
		if row.EntityCode == code {
			rows = append(rows, row)
		}
	}
	return rows
}

// DuplicateKeys returns every (entity, year) key that appears on more
// than one row. A non-empty result violates the table's primary-key
// contract and is treated as fatal by the validation stage.
func (t *FusedTable) DuplicateKeys() []Key {
	counts := make(map[Key]int, len(t.Rows))
	for _, row := range t.Rows {
		counts[row.Key()]++
	}
	var dups []Key
	for k, n := range counts {
		if n > 1 {
			dups = append(dups, k)
		}
	}
	sort.Slice(dups, func(i, j int) bool {
		if dups[i].EntityCode != dups[j].EntityCode {
			return dups[i].EntityCode < dups[j].EntityCode
		}
		return dups[i].Year < dups[j].Year
	})
	return dups
}
