// Package telemetry provides OpenTelemetry instrumentation for metadata
// resolution.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ResolutionMeterName is the name used for the resolution metrics meter
const ResolutionMeterName = "github.com/conduit-lang/pagemeta/resolution"

// ResolutionMetrics holds the instruments recorded per resolution pass
type ResolutionMetrics struct {
	passes    metric.Int64Counter
	fallbacks metric.Int64Counter
	duration  metric.Float64Histogram
}

// NewResolutionMetrics creates resolution metrics with the given meter
// provider. If provider is nil, it returns nil (no-op metrics).
func NewResolutionMetrics(provider metric.MeterProvider) (*ResolutionMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(ResolutionMeterName)

	passes, err := meter.Int64Counter(
		"pagemeta_resolution_passes_total",
		metric.WithDescription("Number of metadata resolution passes"),
		metric.WithUnit("{pass}"),
	)
	if err != nil {
		return nil, err
	}

	fallbacks, err := meter.Int64Counter(
		"pagemeta_fallback_passes_total",
		metric.WithDescription("Number of not-found fallback resolution passes"),
		metric.WithUnit("{pass}"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"pagemeta_resolution_duration_seconds",
		metric.WithDescription("Duration of metadata resolution passes in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5),
	)
	if err != nil {
		return nil, err
	}

	return &ResolutionMetrics{
		passes:    passes,
		fallbacks: fallbacks,
		duration:  duration,
	}, nil
}

// RecordPass records one resolution pass
func (m *ResolutionMetrics) RecordPass(ctx context.Context, convention string, duration time.Duration, err error) {
	if m == nil {
		return
	}

	if convention == "" {
		convention = "none"
	}
	attrs := metric.WithAttributes(
		attribute.String("convention", convention),
		attribute.Bool("success", err == nil),
	)

	m.passes.Add(ctx, 1, attrs)
	m.duration.Record(ctx, duration.Seconds(), attrs)
}

// RecordFallback records that a not-found fallback pass was started
func (m *ResolutionMetrics) RecordFallback(ctx context.Context) {
	if m == nil {
		return
	}
	m.fallbacks.Add(ctx, 1)
}
