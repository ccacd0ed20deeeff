package dag

import (
	apperrors "github.com/kbukum/framegraph/errors"
)

// EdgeKind classifies an edge by how the scheduler treats it.
type EdgeKind string

const (
	// EdgeRequired orders, propagates failure, and transfers data.
	EdgeRequired EdgeKind = "required"
	// EdgeOptional orders and transfers data; upstream failure does not skip the sink.
	EdgeOptional EdgeKind = "optional"
	// EdgeDependency orders and propagates failure without moving data.
	EdgeDependency EdgeKind = "dependency"
	// EdgeData transfers data and contributes no ordering.
	EdgeData EdgeKind = "data"
)

type edge struct {
	source, sink *node
	// transfer moves the source's current output into the sink; nil for
	// dependency-only edges.
	transfer   func()
	dependency bool
	optional   bool
	sourcePort string
	sinkPort   string
}

func (e *edge) kind() EdgeKind {
	switch {
	case !e.dependency:
		return EdgeData
	case e.transfer == nil && !e.optional:
		return EdgeDependency
	case e.optional:
		return EdgeOptional
	default:
		return EdgeRequired
	}
}

// required reports whether a failed or skipped source skips the sink.
func (e *edge) required() bool {
	return e.dependency && !e.optional
}

// EdgeInfo is a read-only view of an edge.
type EdgeInfo struct {
	Source     NodeID   `json:"source"`
	Sink       NodeID   `json:"sink"`
	SourceName string   `json:"source_name"`
	SinkName   string   `json:"sink_name"`
	SourcePort string   `json:"source_port,omitempty"`
	SinkPort   string   `json:"sink_port,omitempty"`
	Kind       EdgeKind `json:"kind"`
}

func (e *edge) info() EdgeInfo {
	return EdgeInfo{
		Source:     e.source.id,
		Sink:       e.sink.id,
		SourceName: e.source.name,
		SinkName:   e.sink.name,
		SourcePort: e.sourcePort,
		SinkPort:   e.sinkPort,
		Kind:       e.kind(),
	}
}

// ConnectOption adjusts how a connection is scheduled.
type ConnectOption func(*connectOptions)

type connectOptions struct {
	optional     bool
	noDependency bool
}

// Optional makes upstream failure leave the sink runnable; the transfer is
// skipped and the sink keeps its previous input.
func Optional() ConnectOption {
	return func(o *connectOptions) { o.optional = true }
}

// WithoutDependency makes the edge data-only. The caller must already have
// ordered the source before the sink through other edges.
func WithoutDependency() ConnectOption {
	return func(o *connectOptions) { o.noDependency = true }
}

func applyConnectOptions(opts []ConnectOption) connectOptions {
	var o connectOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Connect wires out on src to in on dst. The port types must match, which
// the compiler checks.
func Connect[T any](g *Graph, src NodeID, out Output[T], dst NodeID, in Input[T], opts ...ConnectOption) error {
	return g.ConnectPorts(src, out, dst, in, opts...)
}

// ConnectOptional is Connect with Optional.
func ConnectOptional[T any](g *Graph, src NodeID, out Output[T], dst NodeID, in Input[T], opts ...ConnectOption) error {
	return g.ConnectPorts(src, out, dst, in, append(opts, Optional())...)
}

// ConnectWithoutDependency is Connect with WithoutDependency.
func ConnectWithoutDependency[T any](g *Graph, src NodeID, out Output[T], dst NodeID, in Input[T], opts ...ConnectOption) error {
	return g.ConnectPorts(src, out, dst, in, append(opts, WithoutDependency())...)
}

// ConnectPorts wires two type-erased ports. The source type must be
// assignable to the sink type, otherwise TYPE_MISMATCH is returned.
func (g *Graph) ConnectPorts(src NodeID, out OutputPort, dst NodeID, in InputPort, opts ...ConnectOption) error {
	source, err := g.node(src)
	if err != nil {
		return err
	}
	sink, err := g.node(dst)
	if err != nil {
		return err
	}
	if out == nil || !portValid(out) {
		return apperrors.InvalidInput("output", "output port of "+source.name+" has no read accessor")
	}
	if in == nil || !portValid(in) {
		return apperrors.InvalidInput("input", "input port of "+sink.name+" has no write accessor")
	}

	if !out.ValueType().AssignableTo(in.ValueType()) {
		return apperrors.TypeMismatch(
			source.name+"."+out.PortName(), out.ValueType().String(),
			sink.name+"."+in.PortName(), in.ValueType().String(),
		)
	}

	o := applyConnectOptions(opts)
	g.addEdge(&edge{
		source:     source,
		sink:       sink,
		transfer:   func() { in.writeValue(out.readValue()) },
		dependency: !o.noDependency,
		optional:   o.optional,
		sourcePort: out.PortName(),
		sinkPort:   in.PortName(),
	})
	return nil
}

// ConnectByName wires ports looked up by name on units implementing
// PortProvider.
func (g *Graph) ConnectByName(src NodeID, outName string, dst NodeID, inName string, opts ...ConnectOption) error {
	source, err := g.node(src)
	if err != nil {
		return err
	}
	sink, err := g.node(dst)
	if err != nil {
		return err
	}

	sp, ok := source.unit.(PortProvider)
	if !ok {
		return apperrors.UnknownPort(source.name, outName, "output")
	}
	out, ok := FindOutput(sp, outName)
	if !ok {
		return apperrors.UnknownPort(source.name, outName, "output")
	}

	dp, ok := sink.unit.(PortProvider)
	if !ok {
		return apperrors.UnknownPort(sink.name, inName, "input")
	}
	in, ok := FindInput(dp, inName)
	if !ok {
		return apperrors.UnknownPort(sink.name, inName, "input")
	}

	return g.ConnectPorts(src, out, dst, in, opts...)
}

// AddExecutionDependency orders dst after src without moving data. Unless
// Optional is given, a failed or skipped src skips dst.
func (g *Graph) AddExecutionDependency(src, dst NodeID, opts ...ConnectOption) error {
	source, err := g.node(src)
	if err != nil {
		return err
	}
	sink, err := g.node(dst)
	if err != nil {
		return err
	}
	o := applyConnectOptions(opts)
	if o.noDependency {
		return apperrors.InvalidInput("options", "an execution dependency cannot be data-only")
	}
	g.addEdge(&edge{
		source:     source,
		sink:       sink,
		dependency: true,
		optional:   o.optional,
	})
	return nil
}

func (g *Graph) addEdge(e *edge) {
	g.edges = append(g.edges, e)
	e.source.outgoing = append(e.source.outgoing, e)
	e.sink.incoming = append(e.sink.incoming, e)
	g.invalidateOrder()
}
