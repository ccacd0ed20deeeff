package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

func newMeterProvider(ctx context.Context, cfg Config, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exp, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("metric exporter: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, readerOpts...)),
		sdkmetric.WithResource(res),
	), nil
}

// Metrics records node and cycle outcomes. Durations are in milliseconds.
type Metrics struct {
	steps         metric.Int64Counter
	stepDuration  metric.Float64Histogram
	cycles        metric.Int64Counter
	cycleDuration metric.Float64Histogram
	errors        metric.Int64Counter
}

// instrumentSet creates instruments and keeps the first error.
type instrumentSet struct {
	meter metric.Meter
	err   error
}

func (s *instrumentSet) counter(name, desc string) metric.Int64Counter {
	c, err := s.meter.Int64Counter(name, metric.WithDescription(desc))
	if err != nil && s.err == nil {
		s.err = fmt.Errorf("counter %s: %w", name, err)
	}
	return c
}

func (s *instrumentSet) histogram(name, desc string) metric.Float64Histogram {
	h, err := s.meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit("ms"))
	if err != nil && s.err == nil {
		s.err = fmt.Errorf("histogram %s: %w", name, err)
	}
	return h
}

// NewMetrics creates the instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	s := &instrumentSet{meter: meter}
	m := &Metrics{
		steps:         s.counter("framegraph.node.steps", "Node outcomes by node and status"),
		stepDuration:  s.histogram("framegraph.node.duration", "Node step duration"),
		cycles:        s.counter("framegraph.cycles", "Execution cycles by result"),
		cycleDuration: s.histogram("framegraph.cycle.duration", "Execution cycle duration"),
		errors:        s.counter("framegraph.errors", "Engine errors by type and node"),
	}
	if s.err != nil {
		return nil, s.err
	}
	return m, nil
}

// RecordNodeStep counts one node outcome. Only stepped nodes are timed.
func (m *Metrics) RecordNodeStep(ctx context.Context, node, status string, d time.Duration, stepped bool) {
	nodeAttr := attribute.String("node", node)
	m.steps.Add(ctx, 1, metric.WithAttributes(nodeAttr, attribute.String("status", status)))
	if stepped {
		m.stepDuration.Record(ctx, millis(d), metric.WithAttributes(nodeAttr))
	}
}

// RecordCycle counts a finished cycle and records its duration.
func (m *Metrics) RecordCycle(ctx context.Context, graph string, success bool, d time.Duration) {
	result := "failure"
	if success {
		result = "success"
	}
	graphAttr := attribute.String("graph", graph)
	m.cycles.Add(ctx, 1, metric.WithAttributes(graphAttr, attribute.String("result", result)))
	m.cycleDuration.Record(ctx, millis(d), metric.WithAttributes(graphAttr))
}

// RecordError counts an engine error such as a recovered panic.
func (m *Metrics) RecordError(ctx context.Context, kind, node string) {
	m.errors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", kind),
		attribute.String("node", node),
	))
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
