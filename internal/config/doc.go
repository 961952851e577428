// Package config provides centralized configuration management for the
// disaster resilience analytics pipeline. It handles loading
// configuration from multiple sources, validation, and provides a
// type-safe API for accessing configuration values throughout the
// application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of
// precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration file (YAML)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern GDRA_* for namespacing:
//
//	GDRA_PIPELINE_YEAR_START=2000
//	GDRA_PIPELINE_YEAR_END=2024
//	GDRA_PATHS_DATA_DIR=/srv/gdra/data
//	GDRA_SERVER_PORT=8080
//	GDRA_LOGGING_LEVEL=debug
//
// # Path Management
//
// The package provides centralized path management through the Paths
// type, which resolves every input directory and output artifact the
// pipeline touches:
//
//	paths, err := config.ResolvePaths(cfg)
//	emdatDir := paths.SourceDir(domain.SourceEMDAT)
//	datasetPath := paths.UnifiedDatasetCSV
//
// # Validation
//
// All configuration is validated at load time to ensure:
//
//	- Values are within acceptable ranges
//	- The year horizon is well-ordered
//	- Disabled source keys are known
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
