package telemetry_test

import (
	"context"

	"github.com/jonwraymond/traceops/telemetry"
)

func ExampleNew() {
	ctx := context.Background()
	provider, err := telemetry.New(ctx, telemetry.Config{
		ServiceName: "checkout",
		Version:     "1.4.0",
		Tracing:     telemetry.TracingConfig{Enabled: true, Exporter: "stdout", SamplePct: 0.1},
		Metrics:     telemetry.MetricsConfig{Enabled: true, Exporter: "prometheus"},
	})
	if err != nil {
		panic(err)
	}
	defer provider.Shutdown(ctx)

	ctx, span := provider.Tracer().Start(ctx, "checkout.place-order")
	defer span.End()

	_ = ctx
}
