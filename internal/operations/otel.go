package operations

import (
	"context"
	"fmt"
	"time"

	"gdra/internal/infrastructure"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"gdra/pkg/contracts/domain"
)

const (
	TracerName = "gdra.operations"
)

// OperationTracer provides OpenTelemetry instrumentation for pipeline runs
type OperationTracer struct {
	tracer          trace.Tracer
	meter           metric.Meter
	businessMetrics *infrastructure.BusinessMetrics
}

// NewOperationTracer creates a new operation tracer
func NewOperationTracer(providers *infrastructure.OTelProviders) (*OperationTracer, error) {
	businessMetrics, err := infrastructure.CreateBusinessMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	return &OperationTracer{
		tracer:          otel.Tracer(TracerName),
		meter:           providers.Meter,
		businessMetrics: businessMetrics,
	}, nil
}

// TraceOperationExecution creates a span for the entire pipeline run
func (pt *OperationTracer) TraceOperationExecution(ctx context.Context, operationID string, req OperationRequest) (context.Context, trace.Span) {
	ctx, span := pt.tracer.Start(ctx, "operation.execute",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", operationID),
			attribute.Int("operation.year_start", req.YearStart),
			attribute.Int("operation.year_end", req.YearEnd),
			attribute.String("operation.operation", "execute"),
		),
	)

	// Record operation start metric
	pt.businessMetrics.OperationExecutionsTotal.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", "start"),
		),
	)

	pt.businessMetrics.OperationActiveOperations.Add(ctx, 1)

	return ctx, span
}

// TraceStageExecution creates a span for individual stage execution
func (pt *OperationTracer) TraceStageExecution(ctx context.Context, operationID, stageID string) (context.Context, trace.Span) {
	spanName := fmt.Sprintf("operation.stage.%s", stageID)
	ctx, span := pt.tracer.Start(ctx, spanName,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", operationID),
			attribute.String("stage.id", stageID),
			attribute.String("stage.operation", "execute"),
		),
	)

	// Record stage start metric
	pt.businessMetrics.OperationStepsTotal.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("stage_id", stageID),
			attribute.String("operation", "start"),
		),
	)

	return ctx, span
}

// RecordOperationCompletion records run completion with metrics and span events
func (pt *OperationTracer) RecordOperationCompletion(ctx context.Context, span trace.Span, operationID string, duration time.Duration, status string, rowsProduced int64) {
	// Update span attributes
	span.SetAttributes(
		attribute.String("operation.status", status),
		attribute.Float64("operation.duration_seconds", duration.Seconds()),
		attribute.Int64("operation.rows_produced", rowsProduced),
	)

	// Record completion metrics
	pt.businessMetrics.OperationExecutionDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("status", status),
		),
	)

	pt.businessMetrics.OperationActiveOperations.Add(ctx, -1)

	// Add span event
	infrastructure.AddSpanEvent(ctx, "operation.completed", map[string]interface{}{
		"operation_id":  operationID,
		"status":        status,
		"duration":      duration.Seconds(),
		"rows_produced": rowsProduced,
	})

	// Set span status
	if status == "success" {
		span.SetStatus(codes.Ok, "operation completed successfully")
	} else {
		span.SetStatus(codes.Error, fmt.Sprintf("operation failed with status: %s", status))
	}
}

// RecordStageCompletion records stage completion with metrics and span events
func (pt *OperationTracer) RecordStageCompletion(ctx context.Context, span trace.Span, operationID, stageID string, duration time.Duration, success bool, itemsProcessed int64) {
	status := "success"
	if !success {
		status = "failure"
	}

	// Update span attributes
	span.SetAttributes(
		attribute.String("stage.status", status),
		attribute.Float64("stage.duration_seconds", duration.Seconds()),
		attribute.Int64("stage.items_processed", itemsProcessed),
	)

	// Record stage metrics
	pt.businessMetrics.OperationStepDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("stage_id", stageID),
			attribute.String("status", status),
		),
	)

	// Add span event
	infrastructure.AddSpanEvent(ctx, "stage.completed", map[string]interface{}{
		"stage_id":        stageID,
		"status":          status,
		"duration":        duration.Seconds(),
		"items_processed": itemsProcessed,
	})

	// Set span status
	if success {
		span.SetStatus(codes.Ok, "stage completed successfully")
	} else {
		span.SetStatus(codes.Error, "stage execution failed")
	}
}

// RecordStageError records stage errors with proper error tracking
func (pt *OperationTracer) RecordStageError(ctx context.Context, operationID, stageID string, err error) {
	infrastructure.RecordError(ctx, err,
		trace.WithAttributes(
			attribute.String("stage_id", stageID),
			attribute.String("error.type", "stage_execution_error"),
		),
	)

	// Record error metrics
	pt.businessMetrics.OperationErrors.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("stage_id", stageID),
			attribute.String("error_type", "stage_execution_error"),
		),
	)
}

// RecordOperationError records run errors with proper error tracking
func (pt *OperationTracer) RecordOperationError(ctx context.Context, operationID string, err error) {
	infrastructure.RecordError(ctx, err,
		trace.WithAttributes(
			attribute.String("operation_id", operationID),
			attribute.String("error.type", "operation_execution_error"),
		),
	)

	// Decrement active operation count on error
	pt.businessMetrics.OperationActiveOperations.Add(ctx, -1)
}

// TraceSourceExtraction creates a span for one adapter's extraction
func (pt *OperationTracer) TraceSourceExtraction(ctx context.Context, source string) (context.Context, trace.Span) {
	spanName := fmt.Sprintf("operation.source.%s", source)
	ctx, span := pt.tracer.Start(ctx, spanName,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("source.name", source),
			attribute.String("source.operation", "extract"),
		),
	)

	return ctx, span
}

// RecordSourceExtractionCompletion records completion of one adapter's extraction
func (pt *OperationTracer) RecordSourceExtractionCompletion(ctx context.Context, span trace.Span, counters domain.SourceCounters, duration time.Duration) {
	span.SetAttributes(
		attribute.Int("source.rows_read", counters.RowsRead),
		attribute.Int("source.records_emitted", counters.RecordsEmitted),
		attribute.Int("source.quarantined", counters.Quarantined),
		attribute.Int("source.parse_failures", counters.ParseFailures),
		attribute.Float64("source.duration_seconds", duration.Seconds()),
	)

	infrastructure.RecordSourceExtraction(ctx, pt.businessMetrics, counters.Source,
		counters.RecordsEmitted, counters.Quarantined, counters.ParseFailures)

	infrastructure.AddSpanEvent(ctx, "source.extraction.completed", map[string]interface{}{
		"source":          counters.Source,
		"records_emitted": counters.RecordsEmitted,
		"quarantined":     counters.Quarantined,
		"duration":        duration.Seconds(),
	})

	span.SetStatus(codes.Ok, fmt.Sprintf("Extracted %d records in %v", counters.RecordsEmitted, duration))
}

// RecordArtifactWritten counts the bytes of one persisted artifact
func (pt *OperationTracer) RecordArtifactWritten(ctx context.Context, name string, sizeBytes int64) {
	pt.businessMetrics.ArtifactBytesWritten.Add(ctx, sizeBytes,
		metric.WithAttributes(
			attribute.String("artifact", name),
		),
	)
}

// RecordOperationCancellation notes a user-requested cancellation
func (pt *OperationTracer) RecordOperationCancellation(ctx context.Context, operationID, reason string) {
	infrastructure.RecordOperationCancellation(ctx, pt.businessMetrics, operationID, "pipeline", reason)
}

// GetGlobalOperationTracer returns a global operation tracer instance
var globalOperationTracer *OperationTracer

// InitGlobalOperationTracer initializes the global operation tracer
func InitGlobalOperationTracer(providers *infrastructure.OTelProviders) error {
	tracer, err := NewOperationTracer(providers)
	if err != nil {
		return err
	}
	globalOperationTracer = tracer
	return nil
}

// GetOperationTracer returns the global operation tracer
func GetOperationTracer() *OperationTracer {
	return globalOperationTracer
}
