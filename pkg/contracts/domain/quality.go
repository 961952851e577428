package domain

import "fmt"

// Severity classifies validation findings. Findings of any severity
// are recorded and surfaced in the validation report; the pipeline
// completes regardless, except for the duplicate-key rule which
// aborts the run.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Finding is one validation result: a rule that fired, its severity,
// the field it concerns when there is exactly one, and a
// human-readable message.
type Finding struct {
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Field    string   `json:"field,omitempty"`
	Message  string   `json:"message"`
}

// String renders the finding the way the validation report prints it.
func (f Finding) String() string {
	if f.Field != "" {
		return fmt.Sprintf("[%s] %s (%s): %s", f.Severity, f.Rule, f.Field, f.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", f.Severity, f.Rule, f.Message)
}

// CoverageRow is one line of the coverage matrix: how populated a
// column of the fused table is.
type CoverageRow struct {
	Column       string  `json:"column" csv:"column"`
	CoveragePct  float64 `json:"coverage_pct" csv:"coverage_pct"`
	NonNullCount int     `json:"non_null_count" csv:"non_null_count"`
}

// SourceCounters accumulates per-source extraction tallies. One
// instance belongs to exactly one adapter run; counters are merged
// into the validation report after all adapters finish.
type SourceCounters struct {
	Source string `json:"source"`

	// RowsRead is the number of raw input rows or cells inspected.
	RowsRead int `json:"rows_read"`

	// RecordsEmitted is the number of canonical records produced.
	RecordsEmitted int `json:"records_emitted"`

	// Quarantined counts rows dropped because the entity identifier
	// could not be resolved to a canonical code.
	Quarantined int `json:"quarantined"`

	// ParseFailures counts values that could not be parsed as numbers
	// and were recorded as null.
	ParseFailures int `json:"parse_failures"`

	// YearsOutOfRange counts observations outside the configured
	// horizon, which are dropped.
	YearsOutOfRange int `json:"years_out_of_range"`
}

// Add folds another counter set for the same source into c.
func (c *SourceCounters) Add(other SourceCounters) {
	c.RowsRead += other.RowsRead
	c.RecordsEmitted += other.RecordsEmitted
	c.Quarantined += other.Quarantined
	c.ParseFailures += other.ParseFailures
	c.YearsOutOfRange += other.YearsOutOfRange
}
