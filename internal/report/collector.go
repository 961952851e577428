package report

import (
	"sort"
	"sync"

	"gdra/pkg/contracts/domain"
)

// FusionSummary mirrors the fusion stage's statistics.
type FusionSummary struct {
	RecordsIn       int `json:"records_in"`
	RecordsInvalid  int `json:"records_invalid"`
	Rows            int `json:"rows"`
	Entities        int `json:"entities"`
	RangeViolations int `json:"range_violations"`
}

// ImputationSummary mirrors the imputation stage's statistics.
type ImputationSummary struct {
	Interpolated int `json:"interpolated"`
	Extended     int `json:"extended"`
	ZeroFilled   int `json:"zero_filled"`
}

// IndexSummary mirrors the index stage's statistics.
type IndexSummary struct {
	Rows int `json:"rows"`
	DII  int `json:"dii"`
	RRS  int `json:"rrs"`
	CRI  int `json:"cri"`
}

// Collector is the quality result object of one pipeline run. Stages
// record into it as they complete; the extract stage records from
// concurrent adapter goroutines, so every method is safe for
// concurrent use.
type Collector struct {
	mu         sync.Mutex
	sources    []domain.SourceCounters
	fusion     *FusionSummary
	imputation *ImputationSummary
	indices    *IndexSummary
	findings   []domain.Finding
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// RecordSource stores the extraction counters of one source.
func (c *Collector) RecordSource(counters domain.SourceCounters) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sources = append(c.sources, counters)
}

// RecordFusion stores the fusion stage summary.
func (c *Collector) RecordFusion(s FusionSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fusion = &s
}

// RecordImputation stores the imputation stage summary.
func (c *Collector) RecordImputation(s ImputationSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.imputation = &s
}

// RecordIndices stores the index stage summary.
func (c *Collector) RecordIndices(s IndexSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.indices = &s
}

// Add appends findings in the order given.
func (c *Collector) Add(findings ...domain.Finding) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.findings = append(c.findings, findings...)
}

// Sources returns the recorded counters sorted by source key. Adapters
// finish in nondeterministic order; artifacts need a stable one.
func (c *Collector) Sources() []domain.SourceCounters {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.SourceCounters, len(c.sources))
	copy(out, c.sources)
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out
}

// Fusion returns the fusion summary, if recorded.
func (c *Collector) Fusion() (FusionSummary, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fusion == nil {
		return FusionSummary{}, false
	}
	return *c.fusion, true
}

// Imputation returns the imputation summary, if recorded.
func (c *Collector) Imputation() (ImputationSummary, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.imputation == nil {
		return ImputationSummary{}, false
	}
	return *c.imputation, true
}

// Indices returns the index summary, if recorded.
func (c *Collector) Indices() (IndexSummary, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.indices == nil {
		return IndexSummary{}, false
	}
	return *c.indices, true
}

// Findings returns a copy of the findings in insertion order.
func (c *Collector) Findings() []domain.Finding {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Finding, len(c.findings))
	copy(out, c.findings)
	return out
}

// Counts returns the number of findings per severity.
func (c *Collector) Counts() (info, warnings, errs int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, f := range c.findings {
		switch f.Severity {
		case domain.SeverityInfo:
			info++
		case domain.SeverityWarning:
			warnings++
		case domain.SeverityError:
			errs++
		}
	}
	return info, warnings, errs
}
