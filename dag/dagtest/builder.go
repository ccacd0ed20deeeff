package dagtest

import (
	"fmt"

	"github.com/kbukum/framegraph/dag"
)

// GraphBuilder wires mock units by name. The first error is kept and
// returned by Build so chains stay readable.
type GraphBuilder struct {
	graph *dag.Graph
	ids   map[string]dag.NodeID
	units map[string]*MockUnit
	err   error
}

// NewGraphBuilder starts a graph with the given options.
func NewGraphBuilder(opts ...dag.Option) *GraphBuilder {
	return &GraphBuilder{
		graph: dag.New(opts...),
		ids:   make(map[string]dag.NodeID),
		units: make(map[string]*MockUnit),
	}
}

// Add registers u as a runnable node.
func (b *GraphBuilder) Add(u *MockUnit) *GraphBuilder {
	b.ids[u.Name()] = b.graph.Add(u)
	b.units[u.Name()] = u
	return b
}

// AddWithoutExecute registers u as a non-runnable node.
func (b *GraphBuilder) AddWithoutExecute(u *MockUnit) *GraphBuilder {
	b.ids[u.Name()] = b.graph.AddWithoutExecute(u)
	b.units[u.Name()] = u
	return b
}

// Nodes registers a succeeding mock unit per name.
func (b *GraphBuilder) Nodes(names ...string) *GraphBuilder {
	for _, name := range names {
		b.Add(NewMockUnit(name))
	}
	return b
}

// Connect wires from.out to to.in.
func (b *GraphBuilder) Connect(from, to string, opts ...dag.ConnectOption) *GraphBuilder {
	if b.err != nil {
		return b
	}
	src, dst, ok := b.pair(from, to)
	if !ok {
		return b
	}
	b.err = dag.Connect(b.graph, b.ids[from], src.Out(), b.ids[to], dst.In(), opts...)
	return b
}

// Depend orders to after from without moving data.
func (b *GraphBuilder) Depend(from, to string, opts ...dag.ConnectOption) *GraphBuilder {
	if b.err != nil {
		return b
	}
	if _, _, ok := b.pair(from, to); !ok {
		return b
	}
	b.err = b.graph.AddExecutionDependency(b.ids[from], b.ids[to], opts...)
	return b
}

// Output overrides the output designation of name.
func (b *GraphBuilder) Output(name string, output bool) *GraphBuilder {
	if b.err != nil {
		return b
	}
	id, ok := b.ids[name]
	if !ok {
		b.err = fmt.Errorf("dagtest: unknown node %q", name)
		return b
	}
	b.err = b.graph.SetOutputNode(id, output)
	return b
}

func (b *GraphBuilder) pair(from, to string) (*MockUnit, *MockUnit, bool) {
	src, ok := b.units[from]
	if !ok {
		b.err = fmt.Errorf("dagtest: unknown node %q", from)
		return nil, nil, false
	}
	dst, ok := b.units[to]
	if !ok {
		b.err = fmt.Errorf("dagtest: unknown node %q", to)
		return nil, nil, false
	}
	return src, dst, true
}

// Graph returns the graph under construction.
func (b *GraphBuilder) Graph() *dag.Graph { return b.graph }

// Build returns the graph and the first wiring error.
func (b *GraphBuilder) Build() (*dag.Graph, error) {
	return b.graph, b.err
}

// ID returns the node id registered for name.
func (b *GraphBuilder) ID(name string) dag.NodeID { return b.ids[name] }

// Unit returns the mock registered for name.
func (b *GraphBuilder) Unit(name string) *MockUnit { return b.units[name] }
