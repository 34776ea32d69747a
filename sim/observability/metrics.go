// Package observability provides OpenTelemetry metrics and run spans for
// simulation sessions.
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records kernel metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordHandoff records a transfer of control between execution contexts.
	RecordHandoff(ctx context.Context)

	// RecordActivation records an activate or reactivate call that placed a process.
	RecordActivation(ctx context.Context, op string)

	// RecordTermination records a finished process; unwound is true when the
	// shutdown cascade ended it.
	RecordTermination(ctx context.Context, unwound bool)

	// RecordRun records a completed run with its final simulated time.
	RecordRun(ctx context.Context, success bool, simTime float64, duration time.Duration)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	handoffs     metric.Int64Counter
	activations  metric.Int64Counter
	terminations metric.Int64Counter
	runs         metric.Int64Counter
	runLatency   metric.Float64Histogram
	simTime      metric.Float64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance on the global provider.
func newOtelMetrics() (*otelMetrics, error) {
	return newOtelMetricsFrom(otel.GetMeterProvider())
}

func newOtelMetricsFrom(provider metric.MeterProvider) (*otelMetrics, error) {
	meter := provider.Meter("procsim")

	handoffs, err := meter.Int64Counter("procsim.kernel.handoffs",
		metric.WithDescription("Number of control transfers between process contexts"),
	)
	if err != nil {
		return nil, err
	}

	activations, err := meter.Int64Counter("procsim.kernel.activations",
		metric.WithDescription("Number of activate/reactivate calls that placed a process"),
	)
	if err != nil {
		return nil, err
	}

	terminations, err := meter.Int64Counter("procsim.kernel.terminations",
		metric.WithDescription("Number of processes that finished their life cycle"),
	)
	if err != nil {
		return nil, err
	}

	runs, err := meter.Int64Counter("procsim.run.count",
		metric.WithDescription("Number of simulation runs"),
	)
	if err != nil {
		return nil, err
	}

	runLatency, err := meter.Float64Histogram("procsim.run.latency_ms",
		metric.WithDescription("Wall-clock duration of a simulation run in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	simTime, err := meter.Float64Histogram("procsim.run.sim_time",
		metric.WithDescription("Simulated time reached when a run ended"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		handoffs:     handoffs,
		activations:  activations,
		terminations: terminations,
		runs:         runs,
		runLatency:   runLatency,
		simTime:      simTime,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		logrus.Warnf("metrics initialization failed, using no-op recorder: %v", err)
		return NoopMetrics{}
	}
	return m
}

// RecordHandoff records a context switch.
func (m *otelMetrics) RecordHandoff(ctx context.Context) {
	m.handoffs.Add(ctx, 1)
}

// RecordActivation records a scheduling call.
func (m *otelMetrics) RecordActivation(ctx context.Context, op string) {
	m.activations.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
}

// RecordTermination records a finished process.
func (m *otelMetrics) RecordTermination(ctx context.Context, unwound bool) {
	m.terminations.Add(ctx, 1, metric.WithAttributes(attribute.Bool("unwound", unwound)))
}

// RecordRun records a run.
func (m *otelMetrics) RecordRun(ctx context.Context, success bool, simTime float64, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.Bool("success", success),
	}
	m.runs.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.runLatency.Record(ctx, float64(duration.Microseconds())/1000, metric.WithAttributes(attrs...))
	m.simTime.Record(ctx, simTime, metric.WithAttributes(attrs...))
}
