package operations

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gdra/internal/config"
)

// fakeStep is a scriptable stage for exercising the manager and the
// registry without touching real pipeline code.
type fakeStep struct {
	BaseStage
	execute  func(ctx context.Context, state *OperationState) error
	validate func(state *OperationState) error
}

func newFakeStep(id string, deps ...string) *fakeStep {
	return &fakeStep{BaseStage: NewBaseStage(id, "Stage "+id, deps)}
}

func (s *fakeStep) Execute(ctx context.Context, state *OperationState) error {
	if s.execute != nil {
		return s.execute(ctx, state)
	}
	return nil
}

func (s *fakeStep) Validate(state *OperationState) error {
	if s.validate != nil {
		return s.validate(state)
	}
	return s.BaseStage.Validate(state)
}

// testPaths roots the artifact paths in a temporary directory.
func testPaths(t *testing.T) *config.Paths {
	t.Helper()
	dir := t.TempDir()
	return &config.Paths{
		WorkDir:             dir,
		DataDir:             filepath.Join(dir, "data"),
		OutputDir:           dir,
		LogsDir:             filepath.Join(dir, "logs"),
		SourceDirs:          map[string]string{},
		UnifiedDatasetCSV:   filepath.Join(dir, config.UnifiedDatasetFile),
		CoverageMatrixCSV:   filepath.Join(dir, config.CoverageMatrixFile),
		ValidationReportTXT: filepath.Join(dir, config.ValidationReportFile),
		RunManifestJSON:     filepath.Join(dir, config.RunManifestFile),
	}
}

func newTestManager(t *testing.T, steps ...*fakeStep) *Manager {
	t.Helper()
	registry := NewRegistry()
	for _, s := range steps {
		require.NoError(t, registry.Register(s))
	}
	return NewManager(nil, registry, NewConfig())
}

func TestManager_ExecuteRunsStagesInDependencyOrder(t *testing.T) {
	var (
		mu    sync.Mutex
		order []string
	)
	record := func(id string) func(context.Context, *OperationState) error {
		return func(context.Context, *OperationState) error {
			mu.Lock()
			order = append(order, id)
			mu.Unlock()
			return nil
		}
	}

	c := newFakeStep("c", "b")
	c.execute = record("c")
	a := newFakeStep("a")
	a.execute = record("a")
	b := newFakeStep("b", "a")
	b.execute = record("b")

	manager := newTestManager(t, c, a, b)
	resp, err := manager.Execute(context.Background(), OperationRequest{})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, OperationStatusCompleted, resp.Status)
	require.Len(t, resp.Steps, 3)
	for _, id := range []string{"a", "b", "c"} {
		assert.Equal(t, StepStatusCompleted, resp.Steps[id].Status)
	}

	_, err = uuid.Parse(resp.ID)
	assert.NoError(t, err, "an omitted request ID gets a generated UUID")
}

func TestManager_ExecuteProvidesRunDataAndManifest(t *testing.T) {
	probe := newFakeStep("probe")
	var haveData, haveManifest bool
	var yearStart interface{}
	probe.execute = func(_ context.Context, state *OperationState) error {
		_, errData := runDataFromState("probe", state)
		_, errManifest := manifestFromState("probe", state)
		haveData = errData == nil
		haveManifest = errManifest == nil
		yearStart, _ = state.GetContext(ContextKeyYearStart)
		return nil
	}

	manager := newTestManager(t, probe)
	_, err := manager.Execute(context.Background(), OperationRequest{ID: "run-probe", YearStart: 2005})
	require.NoError(t, err)

	assert.True(t, haveData, "run data must be reachable from stages")
	assert.True(t, haveManifest, "run manifest must be reachable from stages")
	assert.Equal(t, 2005, yearStart)
}

func TestManager_ExecuteFailureSkipsDependents(t *testing.T) {
	cause := errors.New("bad input")
	a := newFakeStep("a")
	b := newFakeStep("b", "a")
	b.execute = func(context.Context, *OperationState) error {
		return NewExecutionError("b", cause, false)
	}
	c := newFakeStep("c", "b")

	manager := newTestManager(t, a, b, c)
	resp, err := manager.Execute(context.Background(), OperationRequest{ID: "run-fail"})
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)

	assert.Equal(t, OperationStatusFailed, resp.Status)
	assert.Equal(t, StepStatusCompleted, resp.Steps["a"].Status)
	assert.Equal(t, StepStatusFailed, resp.Steps["b"].Status)
	assert.Equal(t, StepStatusSkipped, resp.Steps["c"].Status)
	assert.Contains(t, resp.Error, "[execution] b")
}

func TestManager_ExecuteValidationFailureSkipsStage(t *testing.T) {
	a := newFakeStep("a")
	a.validate = func(*OperationState) error { return errors.New("fused table not available") }

	manager := newTestManager(t, a)
	resp, err := manager.Execute(context.Background(), OperationRequest{ID: "run-invalid"})
	require.Error(t, err)
	assert.Equal(t, ErrorTypeValidation, GetErrorType(err))
	assert.Equal(t, StepStatusSkipped, resp.Steps["a"].Status)
	assert.Equal(t, OperationStatusFailed, resp.Status)
}

func TestManager_ExecuteRetriesRetryableErrors(t *testing.T) {
	var attempts int32
	flaky := newFakeStep("flaky")
	flaky.execute = func(context.Context, *OperationState) error {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return NewExecutionError("flaky", errors.New("transient"), true)
		}
		return nil
	}

	registry := NewRegistry()
	require.NoError(t, registry.Register(flaky))
	cfg := NewConfigBuilder().
		WithRetryConfig(RetryConfig{
			MaxAttempts:  3,
			InitialDelay: time.Millisecond,
			MaxDelay:     5 * time.Millisecond,
			Multiplier:   1.0,
		}).
		Build()
	manager := NewManager(nil, registry, cfg)

	resp, err := manager.Execute(context.Background(), OperationRequest{ID: "run-retry"})
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
	assert.Equal(t, OperationStatusCompleted, resp.Status)
}

func TestManager_ExecuteGivesUpAfterMaxAttempts(t *testing.T) {
	var attempts int32
	flaky := newFakeStep("flaky")
	flaky.execute = func(context.Context, *OperationState) error {
		atomic.AddInt32(&attempts, 1)
		return NewExecutionError("flaky", errors.New("still broken"), true)
	}

	registry := NewRegistry()
	require.NoError(t, registry.Register(flaky))
	cfg := NewConfigBuilder().
		WithRetryConfig(RetryConfig{
			MaxAttempts:  2,
			InitialDelay: time.Millisecond,
			MaxDelay:     5 * time.Millisecond,
			Multiplier:   1.0,
		}).
		Build()
	manager := NewManager(nil, registry, cfg)

	resp, err := manager.Execute(context.Background(), OperationRequest{ID: "run-exhausted"})
	require.Error(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
	assert.Equal(t, OperationStatusFailed, resp.Status)
	assert.Equal(t, StepStatusFailed, resp.Steps["flaky"].Status)
}

func TestManager_ExecuteContinueOnError(t *testing.T) {
	a := newFakeStep("a")
	a.execute = func(context.Context, *OperationState) error {
		return NewExecutionError("a", errors.New("bad input"), false)
	}
	b := newFakeStep("b")

	registry := NewRegistry()
	require.NoError(t, registry.Register(a))
	require.NoError(t, registry.Register(b))
	cfg := NewConfigBuilder().WithContinueOnError(true).Build()
	manager := NewManager(nil, registry, cfg)

	resp, err := manager.Execute(context.Background(), OperationRequest{ID: "run-continue"})
	require.NoError(t, err)
	assert.Equal(t, StepStatusFailed, resp.Steps["a"].Status)
	assert.Equal(t, StepStatusCompleted, resp.Steps["b"].Status)
	assert.Equal(t, OperationStatusCompleted, resp.Status)
}

func TestManager_ExecuteFailsOnUnresolvableDependencies(t *testing.T) {
	orphan := newFakeStep("orphan", "ghost")
	manager := newTestManager(t, orphan)

	resp, err := manager.Execute(context.Background(), OperationRequest{ID: "run-bad-deps"})
	require.ErrorContains(t, err, "non-existent stage")
	assert.Equal(t, OperationStatusFailed, resp.Status)
}

func TestManager_ExecuteSavesManifest(t *testing.T) {
	paths := testPaths(t)
	a := newFakeStep("a")
	b := newFakeStep("b", "a")

	registry := NewRegistry()
	require.NoError(t, registry.Register(a))
	require.NoError(t, registry.Register(b))
	manager := NewManager(paths, registry, NewConfig())

	resp, err := manager.Execute(context.Background(), OperationRequest{ID: "run-manifest"})
	require.NoError(t, err)
	assert.Equal(t, OperationStatusCompleted, resp.Status)

	loaded, err := LoadManifestFromFile(paths.RunManifestJSON)
	require.NoError(t, err)
	assert.Equal(t, "run-manifest", loaded.RunID)
	assert.Equal(t, "completed", loaded.Status)
	assert.True(t, loaded.IsStageCompleted("a"))
	assert.True(t, loaded.IsStageCompleted("b"))
}

func TestManager_ExecuteSavesManifestOnFailure(t *testing.T) {
	paths := testPaths(t)
	a := newFakeStep("a")
	a.execute = func(context.Context, *OperationState) error {
		return NewExecutionError("a", errors.New("bad input"), false)
	}

	registry := NewRegistry()
	require.NoError(t, registry.Register(a))
	manager := NewManager(paths, registry, NewConfig())

	_, err := manager.Execute(context.Background(), OperationRequest{ID: "run-manifest-fail"})
	require.Error(t, err)

	loaded, loadErr := LoadManifestFromFile(paths.RunManifestJSON)
	require.NoError(t, loadErr, "a failed run still documents how far it got")
	assert.Equal(t, "failed", loaded.Status)
	assert.Contains(t, loaded.Error, "stage a failed")
}

func TestManager_CancelOperation(t *testing.T) {
	started := make(chan struct{})
	blocker := newFakeStep("blocker")
	blocker.execute = func(ctx context.Context, _ *OperationState) error {
		close(started)
		<-ctx.Done()
		return nil
	}
	tail := newFakeStep("tail", "blocker")

	manager := newTestManager(t, blocker, tail)

	type result struct {
		resp *OperationResponse
		err  error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := manager.Execute(context.Background(), OperationRequest{ID: "run-cancel"})
		done <- result{resp, err}
	}()

	<-started

	ops := manager.ListOperations()
	require.Len(t, ops, 1)
	assert.Equal(t, "run-cancel", ops[0].ID)

	state, err := manager.GetOperation("run-cancel")
	require.NoError(t, err)
	assert.Equal(t, OperationStatusRunning, state.Status)

	require.NoError(t, manager.CancelOperation("run-cancel"))

	res := <-done
	require.Error(t, res.err)
	assert.Equal(t, ErrorTypeCancellation, GetErrorType(res.err))
	assert.Equal(t, OperationStatusCancelled, res.resp.Status)

	_, err = manager.GetOperation("run-cancel")
	assert.ErrorContains(t, err, "not found")
	assert.ErrorContains(t, manager.CancelOperation("run-cancel"), "not found")
}

func TestManager_Accessors(t *testing.T) {
	manager := NewManager(nil, nil, nil)
	require.NotNil(t, manager.GetRegistry())
	require.NotNil(t, manager.GetConfig())

	require.NoError(t, manager.RegisterStage(newFakeStep("a")))
	assert.True(t, manager.GetRegistry().Has("a"))

	custom := NewConfigBuilder().WithContinueOnError(true).Build()
	manager.SetConfig(custom)
	assert.True(t, manager.GetConfig().ContinueOnError)
	manager.SetConfig(nil)
	assert.True(t, manager.GetConfig().ContinueOnError, "nil config is ignored")
}
