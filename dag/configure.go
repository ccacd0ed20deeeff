package dag

import (
	apperrors "github.com/kbukum/framegraph/errors"
	"github.com/kbukum/framegraph/logger"
)

// ConfigureAll passes each node its block from params, keyed by node name,
// in insertion order. Nodes without a block receive empty Options. Blocks
// naming no node are logged and ignored.
func (g *Graph) ConfigureAll(params Params) error {
	for _, n := range g.nodes {
		if err := g.configure(n, params); err != nil {
			return err
		}
	}
	for name := range params {
		if _, ok := g.byName[name]; !ok {
			g.log.Warn("parameters for unknown node ignored", logger.Fields(logger.FieldNode, name))
		}
	}
	return nil
}

// ConfigureDownstream configures id and every node reachable from it through
// execution-dependency edges, in execution order.
func (g *Graph) ConfigureDownstream(id NodeID, params Params) error {
	start, err := g.node(id)
	if err != nil {
		return err
	}
	order, err := g.executionOrder()
	if err != nil {
		return err
	}
	affected := g.downstream(start)
	for _, n := range order {
		if !affected[n] {
			continue
		}
		if err := g.configure(n, params); err != nil {
			return err
		}
	}
	return nil
}

func (g *Graph) configure(n *node, params Params) error {
	opts := params[n.name]
	if opts == nil {
		opts = Options{}
	}
	if err := n.unit.Configure(opts); err != nil {
		g.log.Error("node configuration failed", logger.ErrorFields("configure", err, logger.FieldNode, n.name))
		return apperrors.ConfigFailed(n.name, err)
	}
	return nil
}
