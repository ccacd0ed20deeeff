package observability

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/framegraph/component"
	"github.com/kbukum/framegraph/logger"
)

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// Component installs OTLP tracer and meter providers globally while it runs.
type Component struct {
	service     string
	version     string
	environment string
	cfg         Config

	mu sync.Mutex
	tp *sdktrace.TracerProvider
	mp *sdkmetric.MeterProvider
}

// NewComponent creates the telemetry component. Nothing is exported until
// Start.
func NewComponent(service, version, environment string, cfg Config) *Component {
	cfg.ApplyDefaults()
	return &Component{service: service, version: version, environment: environment, cfg: cfg}
}

func (c *Component) Name() string { return "telemetry" }

// Start creates both providers and makes them global.
func (c *Component) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tp != nil {
		return errors.New("telemetry: already started")
	}

	res, err := serviceResource(c.service, c.version, c.environment)
	if err != nil {
		return fmt.Errorf("telemetry: resource: %w", err)
	}
	tp, err := newTracerProvider(ctx, c.cfg, res)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	mp, err := newMeterProvider(ctx, c.cfg, res)
	if err != nil {
		return errors.Join(fmt.Errorf("telemetry: %w", err), tp.Shutdown(ctx))
	}

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	c.tp, c.mp = tp, mp

	logger.Info("telemetry started", logger.Fields(
		"endpoint", c.cfg.Endpoint,
		"sample_rate", c.cfg.SampleRate,
		"interval", c.cfg.Interval.String(),
	))
	return nil
}

// Stop flushes and shuts down both providers.
func (c *Component) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tp == nil {
		return nil
	}
	err := errors.Join(c.tp.Shutdown(ctx), c.mp.Shutdown(ctx))
	c.tp, c.mp = nil, nil
	return err
}

// Health is healthy while the providers are installed.
func (c *Component) Health(context.Context) component.Health {
	c.mu.Lock()
	defer c.mu.Unlock()
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	if c.tp == nil {
		h.Status = component.StatusUnhealthy
		h.Message = "providers not running"
	}
	return h
}

func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "OpenTelemetry",
		Type:    "telemetry",
		Details: fmt.Sprintf("otlp/http %s sample=%.2f", c.cfg.Endpoint, c.cfg.SampleRate),
	}
}
