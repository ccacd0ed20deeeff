package dag

import (
	"errors"

	apperrors "github.com/kbukum/framegraph/errors"
	"github.com/kbukum/framegraph/logger"
)

// Reset returns every node to its post-initialization state: status NotRun,
// failure memory cleared, per-cycle timing cleared, and unit Reset hooks
// invoked. Cumulative timing is kept. The cycle counter restarts at zero.
func (g *Graph) Reset() error {
	var errs []error
	for _, n := range g.nodes {
		if err := g.resetNode(n); err != nil {
			errs = append(errs, err)
		}
	}
	g.cycle = 0
	g.dataEdgeViolations = 0
	g.cancelled.Store(false)
	g.log.Debug("graph reset", logger.Fields("nodes", len(g.nodes)))
	return errors.Join(errs...)
}

// ResetNode resets only id.
func (g *Graph) ResetNode(id NodeID) error {
	n, err := g.node(id)
	if err != nil {
		return err
	}
	return g.resetNode(n)
}

// ResetDownstream resets id and every node reachable from it through
// execution-dependency edges, in insertion order.
func (g *Graph) ResetDownstream(id NodeID) error {
	start, err := g.node(id)
	if err != nil {
		return err
	}
	affected := g.downstream(start)

	var errs []error
	for _, n := range g.nodes {
		if !affected[n] {
			continue
		}
		if err := g.resetNode(n); err != nil {
			errs = append(errs, err)
		}
	}
	g.log.Debug("downstream reset", logger.Fields(logger.FieldNode, start.name, "nodes", len(affected)))
	return errors.Join(errs...)
}

func (g *Graph) resetNode(n *node) error {
	n.status = StatusNotRun
	n.elapsed = 0
	n.steps = 0
	if n.breaker != nil {
		n.breaker.Reset()
	}
	if r, ok := n.unit.(Resetter); ok && !r.Reset() {
		g.log.Error("node reset failed", logger.Fields(logger.FieldNode, n.name))
		return apperrors.InitializationFailed(n.name, "reset")
	}
	return nil
}
