// Package observability wires OpenTelemetry tracing and metrics into
// framegraph.
//
// The telemetry Component exports over OTLP/HTTP while it runs:
//
//	c := observability.NewComponent("framegraph", version, env, cfg.Telemetry)
//	registry.Register(c)
//
// Engine instruments are created on any meter, global or not:
//
//	metrics, err := observability.NewMetrics(observability.Meter("framegraph"))
//	metrics.RecordNodeStep(ctx, "detector", "success", elapsed, true)
package observability
