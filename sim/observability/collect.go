package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// InstallManualMeterProvider sets a global meter provider backed by a
// manual reader and returns the reader. Call it before NewMetricsRecorder.
func InstallManualMeterProvider() *sdkmetric.ManualReader {
	reader := sdkmetric.NewManualReader()
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	return reader
}

// Collect reads every metric from reader and flattens it to name → value.
// Counters report their total, histograms their sum and count as
// "<name>.sum" and "<name>.count".
func Collect(ctx context.Context, reader sdkmetric.Reader) (map[string]float64, error) {
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		return nil, fmt.Errorf("collect metrics: %w", err)
	}
	out := make(map[string]float64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					out[m.Name] += float64(dp.Value)
				}
			case metricdata.Sum[float64]:
				for _, dp := range data.DataPoints {
					out[m.Name] += dp.Value
				}
			case metricdata.Histogram[float64]:
				for _, dp := range data.DataPoints {
					out[m.Name+".sum"] += dp.Sum
					out[m.Name+".count"] += float64(dp.Count)
				}
			}
		}
	}
	return out, nil
}
