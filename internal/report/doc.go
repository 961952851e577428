// Package report accumulates and checks the quality of one pipeline
// run.
//
// The Collector is an explicit result object created per run and
// threaded through the stages: adapters record their extraction
// counters, fusion, imputation and the index engine record their
// summaries, and the validation battery appends findings. Nothing in
// this package is global state.
//
// The battery checks the final table independently of how it was
// built: key uniqueness, year horizon, normalized index ranges and
// index coverage floors. Violations are reported, never auto-corrected;
// only the duplicate-key rule aborts the run.
package report
