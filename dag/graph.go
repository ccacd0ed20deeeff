package dag

import (
	"sync/atomic"

	"github.com/google/uuid"

	apperrors "github.com/kbukum/framegraph/errors"
	"github.com/kbukum/framegraph/logger"
	"github.com/kbukum/framegraph/resilience"
)

// Graph owns nodes and edges and drives execution cycles.
type Graph struct {
	id   uuid.UUID
	key  uint32
	name string
	log  *logger.Logger

	nodes  []*node // insertion order; index i holds NodeID index i+1
	byName map[string]NodeID
	edges  []*edge // creation order

	order      []*node
	orderValid bool
	orderErr   error

	observers     []Observer
	dataEdgeCheck bool
	failureMemory resilience.BreakerConfig
	maxCycles     int

	cycle              uint64
	dataEdgeViolations uint64
	cancelled          atomic.Bool
}

// Option configures a Graph.
type Option func(*Graph)

// WithLogger sets the graph's logger.
func WithLogger(l *logger.Logger) Option {
	return func(g *Graph) {
		if l != nil {
			g.log = l
		}
	}
}

// WithName names the graph in logs and descriptions.
func WithName(name string) Option {
	return func(g *Graph) { g.name = name }
}

// WithObserver registers observers notified during execution.
func WithObserver(obs ...Observer) Option {
	return func(g *Graph) { g.observers = append(g.observers, obs...) }
}

// WithDataEdgeCheck warns when a data-only edge's source has not run before
// its sink in a cycle.
func WithDataEdgeCheck(enabled bool) Option {
	return func(g *Graph) { g.dataEdgeCheck = enabled }
}

// WithFailureMemory gives every runnable node a breaker. A node whose
// breaker is open fails without stepping until its cooldown elapses or the
// node is reset.
func WithFailureMemory(cfg resilience.BreakerConfig) Option {
	return func(g *Graph) { g.failureMemory = cfg }
}

// WithMaxCycles bounds Run. Zero means unbounded.
func WithMaxCycles(n int) Option {
	return func(g *Graph) {
		if n > 0 {
			g.maxCycles = n
		}
	}
}

// New creates an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{
		id:     uuid.New(),
		key:    graphKeys.Add(1),
		name:   "framegraph",
		byName: make(map[string]NodeID),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.log == nil {
		g.log = logger.WithComponent("dag")
	}
	g.log = g.log.WithFields(logger.Fields(logger.FieldGraph, g.name))
	return g
}

// ID returns the graph's instance id.
func (g *Graph) ID() uuid.UUID { return g.id }

// Name returns the graph's name.
func (g *Graph) Name() string { return g.name }

// Cycle returns the number of cycles executed since creation or the last Reset.
func (g *Graph) Cycle() uint64 { return g.cycle }

// DataEdgeViolations counts data-only edges seen with an unfinished source.
func (g *Graph) DataEdgeViolations() uint64 { return g.dataEdgeViolations }

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// AddObserver registers observers after construction, for observers that
// need the graph itself.
func (g *Graph) AddObserver(obs ...Observer) {
	g.observers = append(g.observers, obs...)
}

// Add registers a unit that is stepped every cycle.
func (g *Graph) Add(unit Unit) NodeID {
	return g.add(unit, true)
}

// AddWithoutExecute registers a unit that takes part in wiring and
// configuration but is never stepped.
func (g *Graph) AddWithoutExecute(unit Unit) NodeID {
	return g.add(unit, false)
}

func (g *Graph) add(unit Unit, runnable bool) NodeID {
	if unit == nil {
		panic("dag: Add called with a nil unit")
	}
	id := NodeID{graph: g.key, index: uint32(len(g.nodes) + 1)}
	n := &node{
		id:       id,
		name:     unit.Name(),
		unit:     unit,
		runnable: runnable,
	}
	if runnable && g.failureMemory.Enabled() {
		n.breaker = resilience.NewBreaker(n.name, g.failureMemory)
	}
	g.nodes = append(g.nodes, n)
	if _, taken := g.byName[n.name]; !taken {
		g.byName[n.name] = id
	}
	g.invalidateOrder()

	if g.log.DebugEnabled() {
		g.log.Debug("node added", logger.Fields(
			logger.FieldNode, n.name,
			logger.FieldNodeID, id.String(),
			"runnable", runnable,
		))
	}
	return id
}

func (g *Graph) node(id NodeID) (*node, error) {
	if id.graph != g.key || id.index == 0 || int(id.index) > len(g.nodes) {
		return nil, apperrors.UnknownNode(id.String())
	}
	return g.nodes[id.index-1], nil
}

// Lookup returns the first node registered under name.
func (g *Graph) Lookup(name string) (NodeID, bool) {
	id, ok := g.byName[name]
	return id, ok
}

// Unit returns the unit behind id.
func (g *Graph) Unit(id NodeID) (Unit, error) {
	n, err := g.node(id)
	if err != nil {
		return nil, err
	}
	return n.unit, nil
}

// Node returns a view of one node.
func (g *Graph) Node(id NodeID) (NodeInfo, error) {
	n, err := g.node(id)
	if err != nil {
		return NodeInfo{}, err
	}
	return n.info(), nil
}

// Nodes returns views of all nodes in insertion order.
func (g *Graph) Nodes() []NodeInfo {
	out := make([]NodeInfo, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = n.info()
	}
	return out
}

// Edges returns views of all edges in creation order.
func (g *Graph) Edges() []EdgeInfo {
	out := make([]EdgeInfo, len(g.edges))
	for i, e := range g.edges {
		out[i] = e.info()
	}
	return out
}

// Status returns a node's status for the current cycle.
func (g *Graph) Status(id NodeID) (Status, error) {
	n, err := g.node(id)
	if err != nil {
		return StatusNotRun, err
	}
	return n.status, nil
}

// SetOutputNode overrides whether id counts toward the cycle result.
func (g *Graph) SetOutputNode(id NodeID, output bool) error {
	n, err := g.node(id)
	if err != nil {
		return err
	}
	n.outputOverride = &output
	return nil
}

// ClearOutputOverride restores the default output heuristic for id.
func (g *Graph) ClearOutputOverride(id NodeID) error {
	n, err := g.node(id)
	if err != nil {
		return err
	}
	n.outputOverride = nil
	return nil
}

// IsOutputNode reports whether id counts toward the cycle result.
func (g *Graph) IsOutputNode(id NodeID) (bool, error) {
	n, err := g.node(id)
	if err != nil {
		return false, err
	}
	return n.isOutput(), nil
}

// OutputNodes returns the output nodes in insertion order.
func (g *Graph) OutputNodes() []NodeID {
	var out []NodeID
	for _, n := range g.nodes {
		if n.isOutput() {
			out = append(out, n.id)
		}
	}
	return out
}

// Initialize builds the execution order and initializes every unit in that
// order, runnable or not.
func (g *Graph) Initialize() error {
	order, err := g.executionOrder()
	if err != nil {
		return err
	}
	for _, n := range order {
		if !n.unit.Initialize() {
			g.log.Error("node initialization failed", logger.Fields(logger.FieldNode, n.name))
			return apperrors.InitializationFailed(n.name, "initialize")
		}
	}
	g.log.Debug("graph initialized", logger.Fields("nodes", len(g.nodes), "edges", len(g.edges)))
	return nil
}
