package dag

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/framegraph/logger"
	"github.com/kbukum/framegraph/observability"
)

// Observer is notified as a cycle progresses. Calls happen on the goroutine
// running Execute, in order: CycleStarted, then per node NodeStarted (only
// when Step is about to be invoked) and NodeFinished, then CycleFinished.
type Observer interface {
	CycleStarted(ctx context.Context, cycle uint64)
	NodeStarted(ctx context.Context, id NodeID, name string)
	NodeFinished(ctx context.Context, result NodeResult)
	CycleFinished(ctx context.Context, result *Result)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	OnCycleStarted  func(ctx context.Context, cycle uint64)
	OnNodeStarted   func(ctx context.Context, id NodeID, name string)
	OnNodeFinished  func(ctx context.Context, result NodeResult)
	OnCycleFinished func(ctx context.Context, result *Result)
}

var _ Observer = ObserverFuncs{}

func (f ObserverFuncs) CycleStarted(ctx context.Context, cycle uint64) {
	if f.OnCycleStarted != nil {
		f.OnCycleStarted(ctx, cycle)
	}
}

func (f ObserverFuncs) NodeStarted(ctx context.Context, id NodeID, name string) {
	if f.OnNodeStarted != nil {
		f.OnNodeStarted(ctx, id, name)
	}
}

func (f ObserverFuncs) NodeFinished(ctx context.Context, result NodeResult) {
	if f.OnNodeFinished != nil {
		f.OnNodeFinished(ctx, result)
	}
}

func (f ObserverFuncs) CycleFinished(ctx context.Context, result *Result) {
	if f.OnCycleFinished != nil {
		f.OnCycleFinished(ctx, result)
	}
}

// --- logging ---

// LoggingObserver logs node outcomes at debug level and each cycle's result.
type LoggingObserver struct {
	log *logger.Logger
}

// NewLoggingObserver creates a LoggingObserver writing to log.
func NewLoggingObserver(log *logger.Logger) *LoggingObserver {
	return &LoggingObserver{log: log}
}

func (o *LoggingObserver) CycleStarted(context.Context, uint64)        {}
func (o *LoggingObserver) NodeStarted(context.Context, NodeID, string) {}

func (o *LoggingObserver) NodeFinished(_ context.Context, r NodeResult) {
	if !o.log.DebugEnabled() {
		return
	}
	fields := logger.DurationFields("step", r.Duration)
	fields[logger.FieldNode] = r.Name
	fields[logger.FieldNodeID] = r.ID.String()
	fields[logger.FieldStatus] = r.Status.String()
	if r.Tripped {
		fields["tripped"] = true
	}
	o.log.Debug("node finished", fields)
}

func (o *LoggingObserver) CycleFinished(_ context.Context, r *Result) {
	counts := r.Counts()
	fields := logger.DurationFields("cycle", r.Duration)
	fields[logger.FieldCycle] = r.Cycle
	fields["success"] = r.Success
	fields["failed"] = counts[StatusFailure]
	fields["skipped"] = counts[StatusSkipped]
	if r.Success {
		o.log.Debug("cycle finished", fields)
	} else {
		o.log.Info("cycle failed", fields)
	}
}

// --- tracing ---

// TracingObserver records a span per cycle with a child span per stepped
// node. Skipped and short-circuited nodes become events on the cycle span.
type TracingObserver struct {
	tracer trace.Tracer
	graph  *Graph

	cycleCtx  context.Context
	cycleSpan trace.Span
	nodeSpan  trace.Span
}

// NewTracingObserver creates a TracingObserver. A nil tracer uses the
// global provider.
func NewTracingObserver(tracer trace.Tracer, g *Graph) *TracingObserver {
	if tracer == nil {
		tracer = observability.Tracer("github.com/kbukum/framegraph/dag")
	}
	return &TracingObserver{tracer: tracer, graph: g}
}

func (o *TracingObserver) CycleStarted(ctx context.Context, cycle uint64) {
	attrs := []attribute.KeyValue{attribute.Int64(observability.AttrCycle, int64(cycle))}
	if o.graph != nil {
		attrs = append(attrs,
			attribute.String(observability.AttrGraphID, o.graph.ID().String()),
			attribute.String(observability.AttrGraphName, o.graph.Name()),
		)
	}
	o.cycleCtx, o.cycleSpan = o.tracer.Start(ctx, observability.SpanCycle, trace.WithAttributes(attrs...))
}

func (o *TracingObserver) NodeStarted(_ context.Context, id NodeID, name string) {
	if o.cycleSpan == nil {
		return
	}
	_, o.nodeSpan = o.tracer.Start(o.cycleCtx, observability.SpanNode, trace.WithAttributes(
		attribute.String(observability.AttrNodeName, name),
		attribute.String(observability.AttrNodeID, id.String()),
	))
}

func (o *TracingObserver) NodeFinished(_ context.Context, r NodeResult) {
	if o.nodeSpan != nil && r.Stepped {
		o.nodeSpan.SetAttributes(attribute.String(observability.AttrStatus, r.Status.String()))
		if r.Status == StatusFailure {
			o.nodeSpan.SetStatus(codes.Error, "step failed")
		}
		if r.Panicked {
			o.nodeSpan.AddEvent("panic recovered")
		}
		o.nodeSpan.End()
		o.nodeSpan = nil
		return
	}
	if o.cycleSpan != nil && (r.Status == StatusSkipped || r.Tripped) {
		o.cycleSpan.AddEvent("node not stepped", trace.WithAttributes(
			attribute.String(observability.AttrNodeName, r.Name),
			attribute.String(observability.AttrStatus, r.Status.String()),
			attribute.Bool("tripped", r.Tripped),
		))
	}
}

func (o *TracingObserver) CycleFinished(_ context.Context, r *Result) {
	if o.cycleSpan == nil {
		return
	}
	o.cycleSpan.SetAttributes(attribute.Bool("framegraph.success", r.Success))
	if !r.Success {
		o.cycleSpan.SetStatus(codes.Error, "no output node succeeded")
	}
	o.cycleSpan.End()
	o.cycleSpan = nil
	o.cycleCtx = nil
}

// --- metrics ---

// MetricsObserver records node and cycle metrics.
type MetricsObserver struct {
	metrics *observability.Metrics
	graph   string
}

// NewMetricsObserver creates a MetricsObserver labelling cycles with graph.
func NewMetricsObserver(m *observability.Metrics, graph string) *MetricsObserver {
	return &MetricsObserver{metrics: m, graph: graph}
}

func (o *MetricsObserver) CycleStarted(context.Context, uint64)        {}
func (o *MetricsObserver) NodeStarted(context.Context, NodeID, string) {}

func (o *MetricsObserver) NodeFinished(ctx context.Context, r NodeResult) {
	o.metrics.RecordNodeStep(ctx, r.Name, r.Status.String(), r.Duration, r.Stepped)
	if r.Panicked {
		o.metrics.RecordError(ctx, "step_panic", r.Name)
	}
	if r.Tripped {
		o.metrics.RecordError(ctx, "failure_memory", r.Name)
	}
}

func (o *MetricsObserver) CycleFinished(ctx context.Context, r *Result) {
	o.metrics.RecordCycle(ctx, o.graph, r.Success, r.Duration)
}
