// Package operations orchestrates the fusion pipeline as a sequence of
// dependent stages.
//
// A run moves through six stages: extract, fuse, impute, indices,
// validate and export. Each stage is a Step registered with a Registry,
// which topologically sorts the dependency graph into execution order.
// The Manager executes the sorted stages one by one, applying per-stage
// timeouts and retry policy, and records every execution in a
// RunManifest saved next to the other artifacts.
//
// Stages exchange data through a RunData container the Manager places
// in the OperationState: extract fills the canonical records, fuse
// exchanges them for the unified table, impute and indices mutate the
// table in place, validate computes coverage and findings, and export
// persists the artifacts with their digests.
//
// Core Components:
//
// Manager: The main orchestrator that manages run execution, stage
// registration and state management.
//
// Step: An interface that defines a single stage of the run. Stages
// declare dependencies on other stages and are executed in the correct
// order.
//
// Registry: Manages the registration and retrieval of stages. It
// validates dependencies and provides topological sorting for
// execution order.
//
// OperationState: Tracks the runtime state of both the run and
// individual stages, including progress, errors, and metadata.
//
// Config: Provides configuration options for run execution, including
// per-stage timeouts and retry policy.
//
// Example usage:
//
//	manager := operations.NewManager(paths, nil, nil)
//
//	for _, step := range operations.StageFactory(cfg, paths, logger) {
//		manager.RegisterStage(step)
//	}
//
//	resp, err := manager.Execute(ctx, operations.OperationRequest{
//		YearStart: 2000,
//		YearEnd:   2023,
//	})
package operations
