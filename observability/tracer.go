package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Span names.
const (
	SpanCycle = "framegraph.cycle"
	SpanNode  = "framegraph.node"
)

// Attribute keys.
const (
	AttrServiceName = "service.name"
	AttrGraphID     = "framegraph.graph.id"
	AttrGraphName   = "framegraph.graph.name"
	AttrCycle       = "framegraph.cycle"
	AttrNodeName    = "framegraph.node.name"
	AttrNodeID      = "framegraph.node.id"
	AttrStatus      = "framegraph.status"
)

// Tracer returns a named tracer from the global provider, a no-op until
// the telemetry component starts.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}

// serviceResource describes the process exporting telemetry.
func serviceResource(service, version, environment string) (*resource.Resource, error) {
	return resource.Merge(resource.Default(), resource.NewSchemaless(
		attribute.String(AttrServiceName, service),
		attribute.String("service.version", version),
		attribute.String("deployment.environment", environment),
	))
}

func newTracerProvider(ctx context.Context, cfg Config, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exp, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("trace exporter: %w", err)
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sampler(cfg.SampleRate))),
	), nil
}

func sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1:
		return sdktrace.AlwaysSample()
	case rate <= 0:
		return sdktrace.NeverSample()
	}
	return sdktrace.TraceIDRatioBased(rate)
}
