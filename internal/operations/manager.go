package operations

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"gdra/internal/config"
)

// Manager orchestrates pipeline runs
type Manager struct {
	registry *Registry
	config   *Config
	paths    *config.Paths

	// Active operations
	mu         sync.RWMutex
	operations map[string]*OperationState
	cancels    map[string]context.CancelFunc
}

// NewManager creates a new operation manager with dependency injection
func NewManager(paths *config.Paths, registry *Registry, config *Config) *Manager {
	if registry == nil {
		registry = NewRegistry()
	}
	if config == nil {
		config = NewConfig()
	}

	return &Manager{
		registry:   registry,
		config:     config,
		paths:      paths,
		operations: make(map[string]*OperationState),
		cancels:    make(map[string]context.CancelFunc),
	}
}

// RegisterStage registers a stage with the manager
func (m *Manager) RegisterStage(step Step) error {
	return m.registry.Register(step)
}

// SetConfig updates the operation configuration
func (m *Manager) SetConfig(config *Config) {
	if config != nil {
		m.config = config
	}
}

// GetRegistry returns the registry for accessing registered stages
func (m *Manager) GetRegistry() *Registry {
	return m.registry
}

// Execute runs the full pipeline for the given request
func (m *Manager) Execute(ctx context.Context, req OperationRequest) (*OperationResponse, error) {
	// Generate operation ID if not provided
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	m.logOperationStart(ctx, req.ID, req)

	// Create operation state
	state := NewOperationState(req.ID)

	// Per-request horizon overrides
	if req.YearStart > 0 {
		state.SetContext(ContextKeyYearStart, req.YearStart)
	}
	if req.YearEnd > 0 {
		state.SetContext(ContextKeyYearEnd, req.YearEnd)
	}

	// Copy additional parameters
	for k, v := range req.Parameters {
		state.SetConfig(k, v)
	}

	// Every run gets a fresh data container and manifest. Stages reach
	// both through the operation state.
	data := NewRunData()
	manifest := NewRunManifest(req.ID)
	state.SetContext(ContextKeyRunData, data)
	state.SetContext(ContextKeyRunManifest, manifest)

	// CancelOperation cancels this context to interrupt the run
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Store operation state
	m.storeOperation(state, cancel)
	defer m.removeOperation(req.ID)

	steps, err := m.registry.GetDependencyOrder()
	if err != nil {
		m.logOperationError(ctx, req.ID, fmt.Errorf("failed to get dependency order: %w", err))
		state.Fail(err)
		return m.createResponse(state), err
	}

	slog.InfoContext(ctx, "executing_pipeline",
		slog.Int("stage_count", len(steps)),
		slog.String("operation_id", req.ID))

	// Initialize stage states
	for _, step := range steps {
		state.SetStage(step.ID(), NewStepState(step.ID(), step.Name()))
	}

	var span trace.Span
	tracer := GetOperationTracer()
	if tracer != nil {
		runCtx, span = tracer.TraceOperationExecution(runCtx, req.ID, req)
		defer span.End()
	}

	// Start operation execution
	state.Start()
	manifest.MarkRunning()

	// Publish the running manifest before stages rewrite artifacts;
	// the save after the run settles is the authoritative one.
	if saveErr := m.saveManifest(runCtx, manifest); saveErr != nil {
		slog.WarnContext(runCtx, "running_manifest_not_published",
			slog.String("operation_id", req.ID),
			slog.String("error", saveErr.Error()))
	}

	err = m.executeSequential(runCtx, state, steps)

	// Update final operation state
	if err != nil {
		if GetErrorType(err) == ErrorTypeCancellation {
			state.Cancel()
		} else {
			state.Fail(err)
		}
		manifest.MarkFailed(err)
		if tracer != nil {
			tracer.RecordOperationError(ctx, req.ID, err)
			tracer.RecordOperationCompletion(ctx, span, req.ID, state.Duration(), "failed", m.rowsProduced(data))
		}
	} else {
		state.Complete()
		manifest.MarkCompleted()
		if tracer != nil {
			tracer.RecordOperationCompletion(ctx, span, req.ID, state.Duration(), "success", m.rowsProduced(data))
		}
	}

	// Persist the manifest whatever happened; a failed run's manifest
	// documents how far it got.
	if saveErr := m.saveManifest(ctx, manifest); saveErr != nil && err == nil {
		state.Fail(saveErr)
		err = saveErr
	}

	m.logOperationComplete(ctx, req.ID, state.Duration(), string(state.Status))
	return m.createResponse(state), err
}

// saveManifest writes the run manifest next to the other artifacts.
func (m *Manager) saveManifest(ctx context.Context, manifest *RunManifest) error {
	if m.paths == nil {
		return nil
	}
	if err := manifest.SaveToFile(m.paths.RunManifestJSON); err != nil {
		slog.ErrorContext(ctx, "manifest_save_failed",
			slog.String("operation_id", manifest.RunID),
			slog.String("path", m.paths.RunManifestJSON),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to save run manifest: %w", err)
	}
	slog.InfoContext(ctx, "manifest_saved",
		slog.String("operation_id", manifest.RunID),
		slog.String("path", m.paths.RunManifestJSON))
	return nil
}

// rowsProduced reports the final table size for run metrics.
func (m *Manager) rowsProduced(data *RunData) int64 {
	if data == nil || data.Table == nil {
		return 0
	}
	return int64(data.Table.Len())
}

// executeSequential executes stages one by one
func (m *Manager) executeSequential(ctx context.Context, state *OperationState, steps []Step) error {
	slog.InfoContext(ctx, "sequential_execution_start",
		slog.String("operation_id", state.ID),
		slog.Int("stage_count", len(steps)))
	for i, step := range steps {
		select {
		case <-ctx.Done():
			slog.WarnContext(ctx, "operation_cancelled",
				slog.String("operation_id", state.ID),
				slog.String("stage", step.ID()))
			return NewCancellationError(step.ID())
		default:
			// Check if stage should be skipped due to failed dependencies
			stepState := state.GetStage(step.ID())
			if stepState != nil && stepState.Status == StepStatusSkipped {
				slog.InfoContext(ctx, "stage_skipped",
					slog.String("operation_id", state.ID),
					slog.String("stage", step.ID()),
					slog.Int("stage_number", i+1),
					slog.Int("total_stages", len(steps)))
				continue
			}

			// Check if previous stages are actually complete
			if i > 0 {
				prevStage := steps[i-1]
				prevState := state.GetStage(prevStage.ID())
				if prevState != nil && prevState.Status != StepStatusCompleted && prevState.Status != StepStatusSkipped {
					// If continue on error is enabled and the previous stage failed, allow this stage to continue
					if m.config.ContinueOnError && prevState.Status == StepStatusFailed {
						slog.InfoContext(ctx, "continuing_after_failed_stage",
							slog.String("operation_id", state.ID),
							slog.String("stage", step.ID()),
							slog.String("previous_stage", prevStage.ID()),
							slog.String("previous_status", string(prevState.Status)))
					} else {
						slog.ErrorContext(ctx, "previous_stage_incomplete",
							slog.String("operation_id", state.ID),
							slog.String("stage", step.ID()),
							slog.String("previous_stage", prevStage.ID()),
							slog.String("previous_status", string(prevState.Status)))
						stepState.Skip(fmt.Sprintf("Previous stage %s not completed", prevStage.ID()))
						continue
					}
				}
			}

			slog.InfoContext(ctx, "executing_stage",
				slog.String("operation_id", state.ID),
				slog.String("stage", step.ID()),
				slog.Int("stage_number", i+1),
				slog.Int("total_stages", len(steps)))
			if err := m.executeStage(ctx, state, step); err != nil {
				m.logStageError(ctx, state.ID, step.ID(), err)
				if !m.config.ContinueOnError {
					// Skip all dependent stages
					m.skipDependentStages(state, steps, step.ID())
					return err
				}
				slog.WarnContext(ctx, "stage_failed_continuing",
					slog.String("operation_id", state.ID),
					slog.String("stage", step.ID()),
					slog.String("error", err.Error()))
			}
		}
	}
	slog.InfoContext(ctx, "all_stages_completed",
		slog.String("operation_id", state.ID))
	return nil
}

// executeStage executes a single stage with retry logic
func (m *Manager) executeStage(ctx context.Context, state *OperationState, step Step) error {
	m.logStageStart(ctx, state.ID, step.ID())
	stepState := state.GetStage(step.ID())
	if stepState == nil {
		slog.ErrorContext(ctx, "stage_state_not_found",
			slog.String("operation_id", state.ID),
			slog.String("stage", step.ID()))
		return NewFatalError("stage state not found", nil)
	}
	manifest, _ := manifestFromState(step.ID(), state)

	// Check dependencies
	if err := m.checkDependencies(state, step); err != nil {
		slog.WarnContext(ctx, "dependencies_not_met",
			slog.String("operation_id", state.ID),
			slog.String("stage", step.ID()),
			slog.String("error", err.Error()))
		stepState.Skip(fmt.Sprintf("Dependencies not met: %v", err))
		return err
	}

	// Validate stage
	if err := step.Validate(state); err != nil {
		slog.WarnContext(ctx, "validation_failed",
			slog.String("operation_id", state.ID),
			slog.String("stage", step.ID()),
			slog.String("error", err.Error()))
		stepState.Skip(fmt.Sprintf("Validation failed: %v", err))
		return NewValidationError(step.ID(), err.Error())
	}

	// Get stage timeout
	timeout := m.config.GetStageTimeout(step.ID())
	stageCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Execute with retries
	retryConfig := m.config.RetryConfig
	var lastErr error

	for attempt := 1; attempt <= retryConfig.MaxAttempts; attempt++ {
		stepState.Start()
		if manifest != nil {
			manifest.RecordStageStart(step.ID(), step.Name())
		}

		var span trace.Span
		execCtx := stageCtx
		tracer := GetOperationTracer()
		if tracer != nil {
			execCtx, span = tracer.TraceStageExecution(stageCtx, state.ID, step.ID())
		}

		slog.InfoContext(ctx, "calling_execute",
			slog.String("operation_id", state.ID),
			slog.String("stage", step.ID()),
			slog.Int("attempt", attempt))
		startTime := time.Now()
		err := step.Execute(execCtx, state)
		duration := time.Since(startTime)

		if err == nil {
			m.logStageComplete(ctx, state.ID, step.ID(), duration)
			stepState.Complete()
			if manifest != nil {
				manifest.RecordStageCompletion(step.ID(), stepState.Metadata)
			}
			if tracer != nil {
				tracer.RecordStageCompletion(execCtx, span, state.ID, step.ID(), duration, true, 0)
				span.End()
			}
			return nil
		}

		slog.ErrorContext(ctx, "stage_execution_failed",
			slog.String("operation_id", state.ID),
			slog.String("stage", step.ID()),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))

		// Log stage metadata for debugging
		if stepState.Metadata != nil {
			if metaJSON, jsonErr := json.Marshal(stepState.Metadata); jsonErr == nil {
				slog.ErrorContext(ctx, "stage_metadata",
					slog.String("operation_id", state.ID),
					slog.String("stage", step.ID()),
					slog.String("metadata", string(metaJSON)))
			}
		}

		if tracer != nil {
			tracer.RecordStageError(execCtx, state.ID, step.ID(), err)
			tracer.RecordStageCompletion(execCtx, span, state.ID, step.ID(), duration, false, 0)
			span.End()
		}

		lastErr = err

		// Check if error is retryable
		if !IsRetryable(err) || attempt >= retryConfig.MaxAttempts {
			stepState.Fail(err)
			if manifest != nil {
				manifest.RecordStageFailure(step.ID(), err)
			}
			return WrapError(err, step.ID(), "stage execution failed")
		}

		// Calculate retry delay
		delay := m.calculateRetryDelay(attempt, retryConfig)
		slog.WarnContext(ctx, "stage_retry",
			slog.String("operation_id", state.ID),
			slog.String("stage", step.ID()),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", retryConfig.MaxAttempts),
			slog.Duration("delay", delay),
			slog.String("error", err.Error()))

		// Wait before retry
		select {
		case <-time.After(delay):
			// Continue to next attempt
		case <-stageCtx.Done():
			timeoutErr := NewTimeoutError(step.ID(), timeout.String())
			stepState.Fail(timeoutErr)
			if manifest != nil {
				manifest.RecordStageFailure(step.ID(), timeoutErr)
			}
			return timeoutErr
		}
	}

	// All retries exhausted
	stepState.Fail(lastErr)
	if manifest != nil {
		manifest.RecordStageFailure(step.ID(), lastErr)
	}
	return WrapError(lastErr, step.ID(), "stage execution failed after retries")
}

// skipDependentStages marks all stages that depend on the failed stage as skipped
func (m *Manager) skipDependentStages(state *OperationState, steps []Step, failedStageID string) {
	for _, step := range steps {
		deps := step.GetDependencies()
		for _, dep := range deps {
			if dep == failedStageID {
				stepState := state.GetStage(step.ID())
				if stepState != nil && stepState.Status == StepStatusPending {
					stepState.Skip(fmt.Sprintf("Dependency %s failed", failedStageID))
					// Recursively skip stages that depend on this one
					m.skipDependentStages(state, steps, step.ID())
				}
				break
			}
		}
	}
}

// checkDependencies verifies that all dependencies are satisfied
func (m *Manager) checkDependencies(state *OperationState, step Step) error {
	deps := step.GetDependencies()
	for _, dep := range deps {
		depState := state.GetStage(dep)
		if depState == nil {
			return fmt.Errorf("dependency %s not found", dep)
		}
		if depState.Status != StepStatusCompleted {
			return fmt.Errorf("dependency %s not completed (status: %s)", dep, depState.Status)
		}
	}
	return nil
}

// calculateRetryDelay calculates the delay before next retry
func (m *Manager) calculateRetryDelay(attempt int, config RetryConfig) time.Duration {
	delay := config.InitialDelay * time.Duration(float64(attempt-1)*config.Multiplier)
	if delay > config.MaxDelay {
		delay = config.MaxDelay
	}
	return delay
}

// createResponse creates an operation response from state
func (m *Manager) createResponse(state *OperationState) *OperationResponse {
	resp := &OperationResponse{
		ID:       state.ID,
		Status:   state.Status,
		Duration: state.Duration(),
		Steps:    state.Steps,
	}

	if state.Error != nil {
		resp.Error = state.Error.Error()
	}

	return resp
}

// GetOperation retrieves the state of a running operation
func (m *Manager) GetOperation(id string) (*OperationState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, exists := m.operations[id]
	if !exists {
		return nil, fmt.Errorf("operation %s not found", id)
	}

	return state.Clone(), nil
}

// ListOperations returns all active operations
func (m *Manager) ListOperations() []*OperationState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	operations := make([]*OperationState, 0, len(m.operations))
	for _, state := range m.operations {
		operations = append(operations, state.Clone())
	}

	return operations
}

// CancelOperation cancels a running operation. The run's context is
// cancelled, so the current stage winds down and no further stage
// starts.
func (m *Manager) CancelOperation(id string) error {
	m.mu.Lock()
	state, exists := m.operations[id]
	cancel := m.cancels[id]
	m.mu.Unlock()

	if !exists {
		return fmt.Errorf("operation %s not found", id)
	}

	state.Cancel()
	if cancel != nil {
		cancel()
	}
	if tracer := GetOperationTracer(); tracer != nil {
		tracer.RecordOperationCancellation(context.Background(), id, "user request")
	}
	return nil
}

// storeOperation stores an operation state with its cancel function
func (m *Manager) storeOperation(state *OperationState, cancel context.CancelFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.operations[state.ID] = state
	m.cancels[state.ID] = cancel
}

// removeOperation removes an operation state
func (m *Manager) removeOperation(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.operations, id)
	delete(m.cancels, id)
}

// GetConfig returns the current configuration
func (m *Manager) GetConfig() *Config {
	return m.config
}
