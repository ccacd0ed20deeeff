package dag

import (
	"io"
	"time"
)

// Snapshot is an immutable copy of a graph's diagnostics. It shares nothing
// with the graph and may be handed to other goroutines.
type Snapshot struct {
	GraphID     string       `json:"graph_id"`
	Name        string       `json:"name"`
	Cycle       uint64       `json:"cycle"`
	Taken       time.Time    `json:"taken"`
	Order       []NodeID     `json:"order,omitempty"`
	Nodes       []NodeInfo   `json:"nodes"`
	Edges       []EdgeInfo   `json:"edges"`
	Timings     []NodeTiming `json:"timings"`
	Description string       `json:"-"`
	Violations  uint64       `json:"data_edge_violations"`
}

// Snapshot copies the graph's current diagnostics. Order is empty when the
// graph cannot be ordered.
func (g *Graph) Snapshot() Snapshot {
	s := Snapshot{
		GraphID:     g.id.String(),
		Name:        g.name,
		Cycle:       g.cycle,
		Taken:       time.Now().UTC(),
		Nodes:       g.Nodes(),
		Edges:       g.Edges(),
		Timings:     g.Timings(),
		Description: g.GraphDescription(),
		Violations:  g.dataEdgeViolations,
	}
	if order, err := g.ExecutionOrder(); err == nil {
		s.Order = order
	}
	return s
}

// NodeTiming maps node names to cumulative milliseconds, like
// Graph.CollectNodeTiming.
func (s Snapshot) NodeTiming() map[string]float64 {
	return timingMap(s.Timings)
}

// WriteTimingMeasurements writes the snapshot's timing in Dart form.
func (s Snapshot) WriteTimingMeasurements(w io.Writer) error {
	return writeDartMeasurements(w, s.Timings)
}
