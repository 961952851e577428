package operations

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gdra/internal/exporter"
)

// RunManifest records what one pipeline run did: its configuration
// echo, every stage execution, and the artifacts it produced with
// their digests. Saved as run_manifest.json next to the other
// artifacts so downstream consumers can verify a run.
type RunManifest struct {
	mu sync.RWMutex `json:"-"`

	// Identity
	ID        string    `json:"id"`
	RunID     string    `json:"run_id"`
	StartTime time.Time `json:"start_time"`

	// Configuration echo
	YearStart int      `json:"year_start"`
	YearEnd   int      `json:"year_end"`
	Sources   []string `json:"sources"`

	// Execution tracking
	CompletedStages []StageExecution `json:"completed_stages"`

	// Artifacts produced by the run
	Artifacts []ArtifactInfo `json:"artifacts"`

	// Current status
	Status      string    `json:"status"` // "pending", "running", "completed", "failed"
	LastUpdated time.Time `json:"last_updated"`
	Error       string    `json:"error,omitempty"`
}

// ArtifactInfo describes one output artifact. The digest is
// BLAKE2b-256 over the file contents, so two runs over identical
// inputs can be compared without re-reading the files.
type ArtifactInfo struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	SizeBytes int64     `json:"size_bytes"`
	Digest    string    `json:"digest"`
	CreatedAt time.Time `json:"created_at"`
}

// StageExecution tracks the execution of a single stage
type StageExecution struct {
	StageID   string                 `json:"stage_id"`
	StageName string                 `json:"stage_name"`
	StartTime time.Time              `json:"start_time"`
	EndTime   time.Time              `json:"end_time"`
	Duration  string                 `json:"duration"`
	Status    string                 `json:"status"` // "running", "completed", "failed"
	Error     string                 `json:"error,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewRunManifest creates a manifest for one run. The horizon and the
// contributing sources are stamped by the extract stage once the
// effective configuration is known.
func NewRunManifest(runID string) *RunManifest {
	return &RunManifest{
		ID:              fmt.Sprintf("manifest-%d", time.Now().Unix()),
		RunID:           runID,
		StartTime:       time.Now(),
		CompletedStages: []StageExecution{},
		Artifacts:       []ArtifactInfo{},
		Status:          "pending",
		LastUpdated:     time.Now(),
	}
}

// SetHorizon records the effective year horizon of the run
func (m *RunManifest) SetHorizon(yearStart, yearEnd int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.YearStart = yearStart
	m.YearEnd = yearEnd
	m.LastUpdated = time.Now()
}

// SetSources records which sources contributed records to the run
func (m *RunManifest) SetSources(sources []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sources = sources
	m.LastUpdated = time.Now()
}

// MarkRunning flags the run as in flight. The manager publishes the
// manifest in this state before the first stage executes, so readers
// can tell a settled dataset from one mid-rewrite.
func (m *RunManifest) MarkRunning() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Status = "running"
	m.LastUpdated = time.Now()
}

// RecordStageStart records the start of a stage execution
func (m *RunManifest) RecordStageStart(stageID, stageName string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// A retry restarts the existing entry and supersedes the recorded
	// failure.
	for i, stage := range m.CompletedStages {
		if stage.StageID == stageID {
			m.CompletedStages[i].StartTime = time.Now()
			m.CompletedStages[i].Status = "running"
			m.CompletedStages[i].Error = ""
			m.Status = "running"
			m.Error = ""
			m.LastUpdated = time.Now()
			return
		}
	}

	m.CompletedStages = append(m.CompletedStages, StageExecution{
		StageID:   stageID,
		StageName: stageName,
		StartTime: time.Now(),
		Status:    "running",
	})
	m.Status = "running"
	m.LastUpdated = time.Now()
}

// RecordStageCompletion records the completion of a stage
func (m *RunManifest) RecordStageCompletion(stageID string, metadata map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, stage := range m.CompletedStages {
		if stage.StageID == stageID {
			m.CompletedStages[i].EndTime = time.Now()
			m.CompletedStages[i].Duration = time.Since(stage.StartTime).String()
			m.CompletedStages[i].Status = "completed"
			m.CompletedStages[i].Metadata = metadata
			break
		}
	}
	m.LastUpdated = time.Now()
}

// RecordStageFailure records a stage failure
func (m *RunManifest) RecordStageFailure(stageID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, stage := range m.CompletedStages {
		if stage.StageID == stageID {
			m.CompletedStages[i].EndTime = time.Now()
			m.CompletedStages[i].Duration = time.Since(stage.StartTime).String()
			m.CompletedStages[i].Status = "failed"
			m.CompletedStages[i].Error = err.Error()
			break
		}
	}
	m.Status = "failed"
	m.Error = fmt.Sprintf("stage %s failed: %v", stageID, err)
	m.LastUpdated = time.Now()
}

// MarkCompleted marks the whole run as completed
func (m *RunManifest) MarkCompleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Status = "completed"
	m.LastUpdated = time.Now()
}

// MarkFailed marks the whole run as failed. A stage failure recorded
// by the execution path carries more detail than the run-level error,
// so it is kept.
func (m *RunManifest) MarkFailed(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Status = "failed"
	if err != nil && m.Error == "" {
		m.Error = err.Error()
	}
	m.LastUpdated = time.Now()
}

// IsStageCompleted checks if a stage has been completed
func (m *RunManifest) IsStageCompleted(stageID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, stage := range m.CompletedStages {
		if stage.StageID == stageID && stage.Status == "completed" {
			return true
		}
	}
	return false
}

// AddArtifact stats and digests a written artifact and records it.
// The manifest stores the file name; the full path stays with the
// caller's path configuration.
func (m *RunManifest) AddArtifact(name, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat artifact %s: %w", name, err)
	}
	digest, err := exporter.Digest(path)
	if err != nil {
		return fmt.Errorf("failed to digest artifact %s: %w", name, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Artifacts = append(m.Artifacts, ArtifactInfo{
		Name:      name,
		Path:      filepath.Base(path),
		SizeBytes: info.Size(),
		Digest:    digest,
		CreatedAt: time.Now(),
	})
	m.LastUpdated = time.Now()
	return nil
}

// ArtifactByName returns the recorded artifact entry for a name.
func (m *RunManifest) ArtifactByName(name string) (ArtifactInfo, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, a := range m.Artifacts {
		if a.Name == name {
			return a, true
		}
	}
	return ArtifactInfo{}, false
}

// SaveToFile saves the manifest to a JSON file
func (m *RunManifest) SaveToFile(path string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest file: %w", err)
	}

	return nil
}

// LoadManifestFromFile loads a manifest from a JSON file
func LoadManifestFromFile(path string) (*RunManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}

	var manifest RunManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
	}

	return &manifest, nil
}
