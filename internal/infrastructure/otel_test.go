package infrastructure

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func telemetryConfig() *OTelConfig {
	return &OTelConfig{
		ServiceName:    "gdra-test",
		ServiceVersion: "0.0.0",
		Environment:    "test",
		TraceExporter:  "stdout",
		MetricExporter: "prometheus",
		EnableMetrics:  true,
		EnableTracing:  true,
		SampleRatio:    1.0,
	}
}

func TestInitializeOTel_NilConfigUsesDefaults(t *testing.T) {
	providers, err := InitializeOTel(nil, quietLogger())
	require.NoError(t, err)
	require.NotNil(t, providers)

	assert.NotNil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.PrometheusHTTP)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

func TestInitializeOTel_Modes(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*OTelConfig)
		wantTracer bool
		wantMeter  bool
	}{
		{
			name:       "tracing and metrics on",
			mutate:     func(*OTelConfig) {},
			wantTracer: true,
			wantMeter:  true,
		},
		{
			name:       "tracing switched off",
			mutate:     func(c *OTelConfig) { c.EnableTracing = false; c.SampleRatio = 0 },
			wantTracer: false,
			wantMeter:  true,
		},
		{
			name:       "trace exporter none leaves provider unset",
			mutate:     func(c *OTelConfig) { c.TraceExporter = "none" },
			wantTracer: false,
			wantMeter:  true,
		},
		{
			name:       "metrics switched off",
			mutate:     func(c *OTelConfig) { c.EnableMetrics = false },
			wantTracer: true,
			wantMeter:  false,
		},
		{
			name:       "metric exporter none leaves meter unset",
			mutate:     func(c *OTelConfig) { c.MetricExporter = "none" },
			wantTracer: true,
			wantMeter:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := telemetryConfig()
			tt.mutate(cfg)

			providers, err := InitializeOTel(cfg, quietLogger())
			require.NoError(t, err)
			defer providers.Shutdown(context.Background())

			if tt.wantTracer {
				assert.NotNil(t, providers.TracerProvider)
				assert.NotNil(t, providers.Tracer)
			} else {
				assert.Nil(t, providers.TracerProvider)
			}
			if tt.wantMeter {
				assert.NotNil(t, providers.MeterProvider)
				assert.NotNil(t, providers.Meter)
			} else {
				assert.Nil(t, providers.Meter)
			}
		})
	}
}

func TestInitializeOTel_RejectsUnknownExporters(t *testing.T) {
	cfg := telemetryConfig()
	cfg.TraceExporter = "jaeger"
	_, err := InitializeOTel(cfg, quietLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported trace exporter")

	cfg = telemetryConfig()
	cfg.MetricExporter = "statsd"
	_, err = InitializeOTel(cfg, quietLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported metric exporter")
}

func TestTraceIDFromContext(t *testing.T) {
	providers, err := InitializeOTel(telemetryConfig(), quietLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	// No span, no trace ID.
	assert.Empty(t, TraceIDFromContext(context.Background()))

	ctx, span := providers.Tracer.Start(context.Background(), "extract")
	defer span.End()

	got := TraceIDFromContext(ctx)
	require.NotEmpty(t, got)
	assert.Equal(t, span.SpanContext().TraceID().String(), got)

	// Child spans stay in the parent's trace.
	_, child := providers.Tracer.Start(ctx, "extract.emdat")
	defer child.End()
	assert.Equal(t, got, child.SpanContext().TraceID().String())
	assert.NotEqual(t, span.SpanContext().SpanID(), child.SpanContext().SpanID())
}

func TestCreateBusinessMetrics(t *testing.T) {
	providers, err := InitializeOTel(telemetryConfig(), quietLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)
	require.NotNil(t, metrics)

	assert.NotNil(t, metrics.HTTPRequestsTotal)
	assert.NotNil(t, metrics.HTTPRequestDuration)
	assert.NotNil(t, metrics.OperationExecutionsTotal)
	assert.NotNil(t, metrics.OperationCancellations)
	assert.NotNil(t, metrics.SourceRecordsExtracted)
	assert.NotNil(t, metrics.SourceRowsQuarantined)
	assert.NotNil(t, metrics.SourceParseFailures)
	assert.NotNil(t, metrics.RowsFused)
	assert.NotNil(t, metrics.ValuesImputed)
	assert.NotNil(t, metrics.ValidationFindings)
	assert.NotNil(t, metrics.ArtifactBytesWritten)
	assert.NotNil(t, metrics.SystemErrors)
}

func TestRecordHelpers_NilMetricsAreNoOps(t *testing.T) {
	ctx := context.Background()

	// Stages record unconditionally; a run without telemetry must not
	// panic.
	RecordSourceExtraction(ctx, nil, "emdat", 10, 1, 2)
	RecordOperationMetrics(ctx, nil, "op-1", "pipeline_run", time.Second, true, nil)
	RecordOperationStepMetrics(ctx, nil, "op-1", "fuse", "stage", time.Second, true)
	RecordActiveOperationChange(ctx, nil, 1, "pipeline_run")
	RecordOperationCancellation(ctx, nil, "op-1", "pipeline_run", "shutdown")
}

func TestPrometheusEndpoint_ExposesPipelineCounters(t *testing.T) {
	providers, err := InitializeOTel(telemetryConfig(), quietLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)

	RecordSourceExtraction(context.Background(), metrics, "gdacs", 120, 3, 1)

	server := httptest.NewServer(providers.PrometheusHTTP)
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "pipeline_source_records_extracted")
	assert.Contains(t, string(body), "pipeline_source_rows_quarantined")
}

func TestSpanHelpers(t *testing.T) {
	providers, err := InitializeOTel(telemetryConfig(), quietLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	ctx, span := providers.Tracer.Start(context.Background(), "export")
	defer span.End()

	SetSpanAttributes(ctx, map[string]interface{}{
		"artifact":   "unified_dataset.csv",
		"rows":       4200,
		"bytes":      int64(987654),
		"compressed": false,
		"ratio":      0.42,
	})
	AddSpanEvent(ctx, "artifact.flushed", map[string]interface{}{
		"bytes": 987654,
	})
	RecordError(ctx, assert.AnError)

	assert.True(t, span.IsRecording())
	assert.NotNil(t, SpanFromContext(ctx))

	// The helpers must tolerate a context without a span.
	SetSpanAttributes(context.Background(), map[string]interface{}{"k": "v"})
	AddSpanEvent(context.Background(), "noop", nil)
	RecordError(context.Background(), assert.AnError)
}

func TestOTelWithLoggerTraceCorrelation(t *testing.T) {
	providers, err := InitializeOTel(telemetryConfig(), quietLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	ctx, span := providers.Tracer.Start(context.Background(), "run")
	defer span.End()

	// The span's trace ID can be carried into the slog context chain.
	ctx = WithTraceID(ctx, TraceIDFromContext(ctx))
	assert.Equal(t, span.SpanContext().TraceID().String(), GetTraceID(ctx))
}

func BenchmarkSpanCreation(b *testing.B) {
	cfg := telemetryConfig()
	providers, err := InitializeOTel(cfg, quietLogger())
	require.NoError(b, err)
	defer providers.Shutdown(context.Background())

	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, span := providers.Tracer.Start(ctx, "stage")
		span.End()
	}
}
