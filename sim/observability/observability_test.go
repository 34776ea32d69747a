package observability

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestOtelMetrics_RecordsIntoReader(t *testing.T) {
	// GIVEN a recorder bound to a private meter provider
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	m, err := newOtelMetricsFrom(provider)
	require.NoError(t, err)
	ctx := context.Background()

	// WHEN kernel activity is recorded
	m.RecordHandoff(ctx)
	m.RecordHandoff(ctx)
	m.RecordActivation(ctx, "Activate")
	m.RecordTermination(ctx, false)
	m.RecordTermination(ctx, true)
	m.RecordRun(ctx, true, 250, 2*time.Millisecond)

	// THEN the flattened snapshot carries the totals
	got, err := Collect(ctx, reader)
	require.NoError(t, err)
	assert.Equal(t, 2.0, got["procsim.kernel.handoffs"])
	assert.Equal(t, 1.0, got["procsim.kernel.activations"])
	assert.Equal(t, 2.0, got["procsim.kernel.terminations"])
	assert.Equal(t, 1.0, got["procsim.run.count"])
	assert.Equal(t, 250.0, got["procsim.run.sim_time.sum"])
	assert.Equal(t, 1.0, got["procsim.run.latency_ms.count"])
}

func TestNoop_DoesNothing(t *testing.T) {
	var m MetricsRecorder = NoopMetrics{}
	ctx := context.Background()
	m.RecordHandoff(ctx)
	m.RecordRun(ctx, false, 1, time.Second)

	var s SpanManager = NoopSpanManager{}
	got, span := s.StartRunSpan(ctx, "id", "main")
	assert.Equal(t, ctx, got)
	s.EndSpan(span, 1, errors.New("boom"))
}

func TestSpanManager_RecordsStatus(t *testing.T) {
	// GIVEN a span manager on an in-memory exporter
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer provider.Shutdown(context.Background())
	spans := &otelSpans{tracer: provider.Tracer("test")}

	// WHEN one run succeeds and one fails
	_, ok := spans.StartRunSpan(context.Background(), "run-1", "main")
	spans.EndSpan(ok, 10, nil)
	_, failed := spans.StartRunSpan(context.Background(), "run-2", "main")
	spans.EndSpan(failed, 3, errors.New("event list is empty"))

	// THEN both spans are exported with the matching status
	got := exporter.GetSpans()
	require.Len(t, got, 2)
	assert.Equal(t, "simulation.run", got[0].Name)
	assert.Equal(t, codes.Ok, got[0].Status.Code)
	assert.Equal(t, codes.Error, got[1].Status.Code)
}

func TestInitStdoutTracing_WritesSpans(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := InitStdoutTracing("procsim-test", "dev", &buf)
	require.NoError(t, err)

	spans := NewSpanManager()
	_, span := spans.StartRunSpan(context.Background(), "run-1", "main")
	spans.EndSpan(span, 5, nil)
	require.NoError(t, shutdown(context.Background()))

	assert.Contains(t, buf.String(), "simulation.run")
}
