package observability

import (
	"context"
	"io"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// SpanManager creates one span per simulation run.
type SpanManager interface {
	// StartRunSpan starts the span of a run of the named main process.
	StartRunSpan(ctx context.Context, runID, mainName string) (context.Context, trace.Span)

	// EndSpan records the final simulated time and status and ends the span.
	EndSpan(span trace.Span, simTime float64, err error)
}

// otelSpans implements SpanManager with the global tracer provider.
type otelSpans struct {
	tracer trace.Tracer
}

// NewSpanManager returns a SpanManager using the global OTel tracer provider.
func NewSpanManager() SpanManager {
	return &otelSpans{tracer: otel.Tracer("procsim")}
}

func (s *otelSpans) StartRunSpan(ctx context.Context, runID, mainName string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "simulation.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run_id", runID),
			attribute.String("main", mainName),
		),
	)
}

func (s *otelSpans) EndSpan(span trace.Span, simTime float64, err error) {
	span.SetAttributes(attribute.Float64("sim_time", simTime))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

var (
	providerOnce sync.Once
	providerErr  error
	provider     *sdktrace.TracerProvider
)

// InitStdoutTracing installs a global tracer provider exporting spans as JSON
// to w. The first call wins; later calls return the first result. The
// returned function flushes and shuts the provider down.
func InitStdoutTracing(serviceName, serviceVersion string, w io.Writer) (func(context.Context) error, error) {
	providerOnce.Do(func() {
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			providerErr = err
			return
		}
		res, err := resource.New(context.Background(),
			resource.WithAttributes(
				attribute.String("service.name", serviceName),
				attribute.String("service.version", serviceVersion),
			),
		)
		if err != nil {
			providerErr = err
			return
		}
		provider = sdktrace.NewTracerProvider(
			sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(provider)
	})
	if providerErr != nil {
		return nil, providerErr
	}
	return provider.Shutdown, nil
}
