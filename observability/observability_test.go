package observability

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/framegraph/component"
)

func TestConfigApplyDefaults(t *testing.T) {
	tests := []struct {
		name string
		in   Config
		want Config
	}{
		{
			"empty",
			Config{},
			Config{Endpoint: "localhost:4318", SampleRate: 1, Interval: 15 * time.Second},
		},
		{
			"explicit kept",
			Config{Endpoint: "collector:4318", SampleRate: 0.25, Interval: time.Second},
			Config{Endpoint: "collector:4318", SampleRate: 0.25, Interval: time.Second},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.in
			cfg.ApplyDefaults()
			if diff := cmp.Diff(tt.want, cfg); diff != "" {
				t.Errorf("defaults mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1, sdktrace.AlwaysSample().Description()},
		{2, sdktrace.AlwaysSample().Description()},
		{0, sdktrace.NeverSample().Description()},
		{0.5, sdktrace.TraceIDRatioBased(0.5).Description()},
	}
	for _, tt := range tests {
		if got := sampler(tt.rate).Description(); got != tt.want {
			t.Errorf("sampler(%v) = %s, want %s", tt.rate, got, tt.want)
		}
	}
}

func TestServiceResource(t *testing.T) {
	res, err := serviceResource("framegraph", "1.0.0", "test")
	if err != nil {
		t.Fatalf("serviceResource: %v", err)
	}
	got := map[string]string{}
	for _, kv := range res.Attributes() {
		got[string(kv.Key)] = kv.Value.Emit()
	}
	for k, v := range map[string]string{
		AttrServiceName:          "framegraph",
		"service.version":        "1.0.0",
		"deployment.environment": "test",
	} {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}
}

func TestMetricsNoop(t *testing.T) {
	m, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	ctx := t.Context()
	m.RecordNodeStep(ctx, "source", "success", time.Millisecond, true)
	m.RecordCycle(ctx, "g", true, 2*time.Millisecond)
	m.RecordError(ctx, "step_panic", "sink")
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(t.Context(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			out[md.Name] = md.Data
		}
	}
	return out
}

func TestMetricsRecorded(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	ctx := t.Context()
	m.RecordNodeStep(ctx, "source", "success", 3*time.Millisecond, true)
	m.RecordNodeStep(ctx, "sink", "skipped", 0, false)
	m.RecordCycle(ctx, "g", false, 1500*time.Microsecond)
	m.RecordError(ctx, "failure_memory", "sink")

	data := collect(t, reader)

	steps, ok := data["framegraph.node.steps"].(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("node.steps = %T", data["framegraph.node.steps"])
	}
	if len(steps.DataPoints) != 2 {
		t.Errorf("node.steps has %d series, want 2", len(steps.DataPoints))
	}

	stepDur, ok := data["framegraph.node.duration"].(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("node.duration = %T", data["framegraph.node.duration"])
	}
	if len(stepDur.DataPoints) != 1 || stepDur.DataPoints[0].Sum != 3 {
		t.Errorf("node.duration points = %+v, want one sample of 3ms", stepDur.DataPoints)
	}

	cycleDur, ok := data["framegraph.cycle.duration"].(metricdata.Histogram[float64])
	if !ok || len(cycleDur.DataPoints) != 1 || cycleDur.DataPoints[0].Sum != 1.5 {
		t.Errorf("cycle.duration = %+v", data["framegraph.cycle.duration"])
	}

	for _, name := range []string{"framegraph.cycles", "framegraph.errors"} {
		if _, ok := data[name]; !ok {
			t.Errorf("metric %s not collected", name)
		}
	}
}

func TestComponentBeforeStart(t *testing.T) {
	c := NewComponent("framegraph", "dev", "test", Config{SampleRate: 0.5})
	if c.Name() != "telemetry" {
		t.Errorf("Name = %s", c.Name())
	}
	if h := c.Health(t.Context()); h.Status != component.StatusUnhealthy {
		t.Errorf("health before start = %s", h.Status)
	}
	if err := c.Stop(t.Context()); err != nil {
		t.Errorf("Stop before Start: %v", err)
	}
	want := component.Description{
		Name:    "OpenTelemetry",
		Type:    "telemetry",
		Details: "otlp/http localhost:4318 sample=0.50",
	}
	if diff := cmp.Diff(want, c.Describe()); diff != "" {
		t.Errorf("Describe mismatch (-want +got):\n%s", diff)
	}
}
