// Package exporter writes the pipeline's output artifacts.
//
// This package contains three main components:
//
// CSVWriter: Core CSV writing functionality with support for headers,
// streaming, and optional UTF-8 BOM for Excel compatibility.
//
// DatasetExporter: Streams the unified resilience dataset to CSV in
// the declared column order and writes the coverage matrix. Both
// artifacts are byte-for-byte reproducible across runs on identical
// inputs: floats are rendered in canonical shortest form and nulls as
// empty cells.
//
// ValidationWriter: Renders the validation report text file with the
// dataset overview, per-index statistics, findings and per-source
// extraction counters.
//
// Digest computes BLAKE2b-256 digests of written artifacts for the
// run manifest.
//
// Example usage:
//
//	datasets := exporter.NewDatasetExporter(paths)
//
//	// Export the unified dataset and its coverage matrix
//	err := datasets.ExportUnifiedDataset(table)
//	err = datasets.ExportCoverageMatrix(coverage)
//
//	// Write the validation report
//	reports := exporter.NewValidationWriter(paths)
//	err = reports.WriteReport(table, findings, counters, time.Now())
package exporter
