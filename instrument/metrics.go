package instrument

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// callMetrics holds the per-client instruments. Every instrumented call adds
// to the counters and records its duration, attributed by transport kind and
// instance name.
type callMetrics struct {
	calls    metric.Int64Counter
	failures metric.Int64Counter
	duration metric.Float64Histogram
}

func newCallMetrics(meter metric.Meter) (*callMetrics, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter("traceops")
	}
	calls, err := meter.Int64Counter("traceops.client.calls",
		metric.WithDescription("Instrumented calls issued."),
	)
	if err != nil {
		return nil, err
	}
	failures, err := meter.Int64Counter("traceops.client.errors",
		metric.WithDescription("Instrumented calls that failed."),
	)
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("traceops.client.duration",
		metric.WithDescription("Instrumented call duration."),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}
	return &callMetrics{calls: calls, failures: failures, duration: duration}, nil
}

func (m *callMetrics) record(ctx context.Context, kind, instance string, d time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("instance", instance),
	)
	m.calls.Add(ctx, 1, attrs)
	if err != nil {
		m.failures.Add(ctx, 1, attrs)
	}
	m.duration.Record(ctx, float64(d)/float64(time.Millisecond), attrs)
}
