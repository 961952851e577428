package exporter

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gdra/internal/config"
	"gdra/pkg/contracts/domain"
)

// ValidationWriter renders the human-readable validation report.
type ValidationWriter struct {
	paths *config.Paths
}

// NewValidationWriter creates a new validation report writer
func NewValidationWriter(paths *config.Paths) *ValidationWriter {
	return &ValidationWriter{paths: paths}
}

// reportBanner separates the report header and footer.
const reportBanner = "================================================================================"

// integratedSources lists the upstream datasets in pipeline order, as
// they appear in the report's DATA SOURCES INTEGRATED section.
var integratedSources = []string{
	"ND-GAIN Climate Resilience Index (Spine)",
	"Harmonized Nighttime Lights (Economic Proxy)",
	"EM-DAT International Disaster Database",
	"GDACS Global Disaster Alerts",
	"IMF World Economic Outlook",
	"World Bank World Development Indicators",
	"UNDP Human Development Reports",
	"Worldwide Governance Indicators",
	"INFORM Risk Index",
	"FTS Humanitarian Funding",
	"DesInventar Disaster Loss Records",
	"Barro-Lee Educational Attainment",
	"World Inequality Database (Gini)",
}

// reportIndices names the derived indices summarized in the report.
var reportIndices = []struct {
	Field string
	Label string
}{
	{domain.FieldDII, "DII (Disaster Impact Index)"},
	{domain.FieldRRS, "RRS (Resilience Recovery Score)"},
	{domain.FieldCRI, "CRI (Composite Resilience Index)"},
}

// WriteReport writes the validation report text file: dataset
// overview, per-index statistics, integrated sources, the findings the
// validation battery produced, per-source extraction counters and the
// index formula reference.
func (w *ValidationWriter) WriteReport(table *domain.FusedTable, findings []domain.Finding, counters []domain.SourceCounters, generatedAt time.Time) error {
	var b strings.Builder

	fmt.Fprintln(&b, reportBanner)
	fmt.Fprintln(&b, "GLOBAL DISASTER RESILIENCE ANALYTICS - DATA VALIDATION REPORT")
	fmt.Fprintln(&b, reportBanner)
	fmt.Fprintf(&b, "Generated: %s\n", generatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Pipeline Version: %s\n", config.AppVersion)

	w.writeOverview(&b, table)
	w.writeIndices(&b, table)
	w.writeSources(&b)
	w.writeFindings(&b, findings)
	w.writeCounters(&b, counters)
	w.writeFormulas(&b)

	fmt.Fprintln(&b, reportBanner)

	dir := filepath.Dir(w.paths.ValidationReportTXT)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(w.paths.ValidationReportTXT, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write validation report: %w", err)
	}
	return nil
}

func (w *ValidationWriter) writeOverview(b *strings.Builder, table *domain.FusedTable) {
	section(b, "DATASET OVERVIEW")
	fmt.Fprintf(b, "Total Rows: %d\n", table.Len())
	fmt.Fprintf(b, "Total Columns: %d\n", len(domain.OutputColumns()))
	fmt.Fprintf(b, "Unique Countries: %d\n", len(table.Entities()))

	if table.Len() > 0 {
		minYear, maxYear := table.Rows[0].Year, table.Rows[0].Year
		for _, row := range table.Rows {
			if row.Year < minYear {
				minYear = row.Year
			}
			if row.Year > maxYear {
				maxYear = row.Year
			}
		}
		fmt.Fprintf(b, "Year Range: %d - %d\n", minYear, maxYear)
	} else {
		fmt.Fprintln(b, "Year Range: n/a")
	}
}

func (w *ValidationWriter) writeIndices(b *strings.Builder, table *domain.FusedTable) {
	section(b, "DERIVED INDICES")
	for _, index := range reportIndices {
		fmt.Fprintf(b, "%s:\n", index.Label)
		stats, ok := indexStats(table, index.Field)
		fmt.Fprintf(b, "  - Coverage: %.1f%%\n", stats.coveragePct)
		if ok {
			fmt.Fprintf(b, "  - Range: %.4f - %.4f\n", stats.min, stats.max)
			fmt.Fprintf(b, "  - Mean: %.4f\n", stats.mean)
		} else {
			fmt.Fprintln(b, "  - No non-null values")
		}
		fmt.Fprintln(b)
	}
}

func (w *ValidationWriter) writeSources(b *strings.Builder) {
	section(b, "DATA SOURCES INTEGRATED")
	for i, name := range integratedSources {
		fmt.Fprintf(b, "%d. %s\n", i+1, name)
	}
}

func (w *ValidationWriter) writeFindings(b *strings.Builder, findings []domain.Finding) {
	section(b, "VALIDATION FINDINGS")
	var errs, warnings, infos int
	for _, f := range findings {
		switch f.Severity {
		case domain.SeverityError:
			errs++
		case domain.SeverityWarning:
			warnings++
		default:
			infos++
		}
	}
	fmt.Fprintf(b, "%d errors, %d warnings, %d info\n", errs, warnings, infos)
	for _, f := range findings {
		fmt.Fprintf(b, "  %s\n", f.String())
	}
}

func (w *ValidationWriter) writeCounters(b *strings.Builder, counters []domain.SourceCounters) {
	section(b, "SOURCE EXTRACTION")
	fmt.Fprintf(b, "%-12s %10s %10s %12s %14s %14s\n",
		"source", "rows_read", "records", "quarantined", "parse_failures", "out_of_range")
	for _, c := range counters {
		fmt.Fprintf(b, "%-12s %10d %10d %12d %14d %14d\n",
			c.Source, c.RowsRead, c.RecordsEmitted, c.Quarantined, c.ParseFailures, c.YearsOutOfRange)
	}
}

func (w *ValidationWriter) writeFormulas(b *strings.Builder) {
	section(b, "FORMULA REFERENCE")
	fmt.Fprintln(b, "DII = ((Fatalities_per_million + 4 x Affected_pct) / GDP_per_capita) x Severity_weight")
	fmt.Fprintln(b, "RRS = (GDP_growth_change + HDI + Governance) / Recovery_factor")
	fmt.Fprintln(b, "CRI = Adaptive_Capacity / (Exposure + Vulnerability)")
	fmt.Fprintln(b)
}

// section writes a report section title with its underline.
func section(b *strings.Builder, title string) {
	fmt.Fprintln(b)
	fmt.Fprintln(b, title)
	fmt.Fprintln(b, strings.Repeat("-", len(title)))
}

// fieldStats summarizes one index column of the table.
type fieldStats struct {
	coveragePct float64
	min         float64
	max         float64
	mean        float64
}

// indexStats computes coverage and distribution statistics for a field.
// The bool result is false when the column has no non-null values.
func indexStats(table *domain.FusedTable, field string) (fieldStats, bool) {
	var stats fieldStats
	stats.min = math.Inf(1)
	stats.max = math.Inf(-1)

	count := 0
	sum := 0.0
	for _, row := range table.Rows {
		v, ok := row.Field(field)
		if !ok {
			continue
		}
		count++
		sum += v
		if v < stats.min {
			stats.min = v
		}
		if v > stats.max {
			stats.max = v
		}
	}
	if table.Len() > 0 {
		stats.coveragePct = float64(count) / float64(table.Len()) * 100
	}
	if count == 0 {
		return fieldStats{}, false
	}
	stats.mean = sum / float64(count)
	return stats, true
}
