package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"gdra/internal/config"
	"gdra/internal/operations"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	buildID   string
	paths     *config.Paths
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a health service bound to the artifact paths
// it reports on.
func NewHealthService(version string, paths *config.Paths, logger *slog.Logger) *HealthService {
	return NewHealthServiceWithBuildInfo(version, "", "", paths, logger)
}

// NewHealthServiceWithBuildInfo creates a health service with build information
func NewHealthServiceWithBuildInfo(version, buildTime, buildID string, paths *config.Paths, logger *slog.Logger) *HealthService {
	// Ensure we have a logger
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", version))

	return &HealthService{
		version:   version,
		buildTime: buildTime,
		buildID:   buildID,
		paths:     paths,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.Debug("HealthCheck: performing health check",
		slog.String("version", hs.version),
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck reports whether the service has artifacts to serve.
// Readiness follows the manifest: without a completed run there is
// nothing behind the artifact endpoints.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]interface{}),
	}

	status.Services["output_dir"] = hs.checkOutputDir()
	status.Services["manifest"] = hs.checkManifest()
	status.Services["dataset"] = hs.checkArtifact(config.UnifiedDatasetFile, hs.paths.UnifiedDatasetCSV)
	status.Services["coverage"] = hs.checkArtifact(config.CoverageMatrixFile, hs.paths.CoverageMatrixCSV)
	status.Services["validation"] = hs.checkArtifact(config.ValidationReportFile, hs.paths.ValidationReportTXT)

	// Determine overall readiness
	allReady := true
	for _, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status != "ready" {
			allReady = false
			break
		}
	}

	if !allReady {
		status.Status = "not_ready"
	}

	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":      hs.version,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}

	// Include build info if available
	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	if hs.buildID != "" {
		result["build_id"] = hs.buildID
	}

	return result
}

// checkOutputDir checks that the artifact directory exists
func (hs *HealthService) checkOutputDir() ServiceHealth {
	info, err := os.Stat(hs.paths.OutputDir)
	if err != nil || !info.IsDir() {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("output directory %s not available", hs.paths.OutputDir),
		}
	}

	return ServiceHealth{
		Status:  "ready",
		Message: hs.paths.OutputDir,
	}
}

// checkManifest checks that the last run settled successfully
func (hs *HealthService) checkManifest() ServiceHealth {
	manifest, err := operations.LoadManifestFromFile(hs.paths.RunManifestJSON)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ServiceHealth{
				Status:  "not_ready",
				Message: "no pipeline run recorded yet",
			}
		}
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("run manifest unreadable: %v", err),
		}
	}

	if manifest.Status != "completed" {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("last run %s is %s", manifest.RunID, manifest.Status),
		}
	}

	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("run %s completed", manifest.RunID),
	}
}

// checkArtifact checks a single artifact file
func (hs *HealthService) checkArtifact(name, path string) ServiceHealth {
	info, err := os.Stat(path)
	if err != nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("%s not written yet", name),
		}
	}

	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("%s (%d bytes)", name, info.Size()),
	}
}
