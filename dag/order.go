package dag

import (
	apperrors "github.com/kbukum/framegraph/errors"
	"github.com/kbukum/framegraph/logger"
)

type color uint8

const (
	white color = iota // unvisited
	gray               // on the current DFS path
	black              // fully explored
)

func (g *Graph) invalidateOrder() {
	g.orderValid = false
	g.order = nil
	g.orderErr = nil
}

// Build computes the execution order, reporting CYCLIC_DEPENDENCY if the
// execution-dependency edges contain a cycle.
func (g *Graph) Build() error {
	_, err := g.executionOrder()
	return err
}

// ExecutionOrder returns node ids in the order Execute steps them.
func (g *Graph) ExecutionOrder() ([]NodeID, error) {
	order, err := g.executionOrder()
	if err != nil {
		return nil, err
	}
	ids := make([]NodeID, len(order))
	for i, n := range order {
		ids[i] = n.id
	}
	return ids, nil
}

func (g *Graph) executionOrder() ([]*node, error) {
	if g.orderValid {
		return g.order, g.orderErr
	}
	g.order, g.orderErr = g.topologicalOrder()
	g.orderValid = true
	if g.orderErr != nil {
		g.order = nil
		g.log.Error("execution order rejected", logger.ErrorFields("build", g.orderErr))
	}
	return g.order, g.orderErr
}

// topologicalOrder runs a three-color DFS that appends each node after all
// sources of its incoming dependency edges. Roots are taken in insertion
// order and dependencies in edge creation order, so the result depends only
// on the sequence of Add and Connect calls.
func (g *Graph) topologicalOrder() ([]*node, error) {
	colors := make([]color, len(g.nodes))
	order := make([]*node, 0, len(g.nodes))

	var visit func(n *node) error
	visit = func(n *node) error {
		colors[n.id.index-1] = gray
		for _, e := range n.incoming {
			if !e.dependency {
				continue
			}
			dep := e.source
			switch colors[dep.id.index-1] {
			case gray:
				return apperrors.CyclicDependency(nodeLabel(dep), nodeLabel(n))
			case white:
				if err := visit(dep); err != nil {
					return err
				}
			}
		}
		colors[n.id.index-1] = black
		order = append(order, n)
		return nil
	}

	for _, n := range g.nodes {
		if colors[n.id.index-1] != white {
			continue
		}
		if err := visit(n); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// downstream returns the set of nodes reachable from start through
// execution-dependency edges, start included.
func (g *Graph) downstream(start *node) map[*node]bool {
	seen := map[*node]bool{start: true}
	stack := []*node{start}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range n.outgoing {
			if !e.dependency || seen[e.sink] {
				continue
			}
			seen[e.sink] = true
			stack = append(stack, e.sink)
		}
	}
	return seen
}

func nodeLabel(n *node) string {
	return n.name + " (" + n.id.String() + ")"
}
