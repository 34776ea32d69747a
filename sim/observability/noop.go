package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// NoopMetrics is a MetricsRecorder that does nothing.
// Use when metrics are disabled to avoid overhead.
type NoopMetrics struct{}

// Compile-time interface check.
var _ MetricsRecorder = NoopMetrics{}

// RecordHandoff does nothing.
func (NoopMetrics) RecordHandoff(_ context.Context) {}

// RecordActivation does nothing.
func (NoopMetrics) RecordActivation(_ context.Context, _ string) {}

// RecordTermination does nothing.
func (NoopMetrics) RecordTermination(_ context.Context, _ bool) {}

// RecordRun does nothing.
func (NoopMetrics) RecordRun(_ context.Context, _ bool, _ float64, _ time.Duration) {}

// NoopSpanManager is a SpanManager that does nothing.
type NoopSpanManager struct{}

// Compile-time interface check.
var _ SpanManager = NoopSpanManager{}

var noopSpan = noop.Span{}

// StartRunSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartRunSpan(ctx context.Context, _, _ string) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// EndSpan does nothing.
func (NoopSpanManager) EndSpan(_ trace.Span, _ float64, _ error) {}
