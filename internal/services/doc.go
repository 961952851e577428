// Package services implements the read side of the artifacts API: it
// sits between the HTTP handlers and the files a pipeline run left on
// disk, ensuring nothing is served while a run is rewriting them.
//
// # Architecture
//
// Services follow these architectural principles:
//
//	1. Interface-driven design for testability
//	2. Context propagation for cancellation and tracing
//	3. Dependency injection for loose coupling
//	4. Error handling and transformation at the boundary
//
// # Serving Gate
//
// Every artifact read goes through the run manifest first. A manifest
// with status "completed" opens the gate; "running" or "pending" maps
// to ErrRunActive (the files on disk may be mid-rewrite), a failed or
// absent manifest maps to ErrNoCompletedRun. The sentinels live in the
// errors package so handlers can translate them to RFC 7807 responses.
//
// # Available Services
//
// The package provides these core services:
//
//	- ArtifactService: serves the unified dataset, coverage matrix,
//	  validation report and run manifest, plus digest verification
//	- HealthService: liveness, readiness and version reporting keyed
//	  to artifact availability
//
// # Testing
//
// Services read plain files, so tests stage a temp output directory
// with fixture artifacts and a saved manifest instead of mocks.
package services
