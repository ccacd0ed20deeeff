package dag

import (
	"context"
	"fmt"
	"time"

	"github.com/kbukum/framegraph/logger"
)

// Execute runs one cycle. Every node ends the cycle as Success, Failure, or
// Skipped; node failures never surface as errors. The error return is
// reserved for structural problems (a cyclic graph) and for ctx being done
// before the cycle starts. A started cycle always runs to completion.
func (g *Graph) Execute(ctx context.Context) (*Result, error) {
	order, err := g.executionOrder()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.cycle++
	start := time.Now()
	for _, n := range g.nodes {
		n.status = StatusNotRun
		n.elapsed = 0
	}
	for _, obs := range g.observers {
		obs.CycleStarted(ctx, g.cycle)
	}

	res := &Result{
		Cycle:       g.cycle,
		NodeResults: make([]NodeResult, 0, len(order)),
	}
	for _, n := range order {
		nr := g.stepNode(ctx, n)
		res.NodeResults = append(res.NodeResults, nr)
		for _, obs := range g.observers {
			obs.NodeFinished(ctx, nr)
		}
	}

	for i := range res.NodeResults {
		n := g.nodes[res.NodeResults[i].ID.index-1]
		if n.isOutput() {
			res.NodeResults[i].Output = true
			if n.status == StatusSuccess {
				res.Success = true
			}
		}
	}
	res.Duration = time.Since(start)

	for _, obs := range g.observers {
		obs.CycleFinished(ctx, res)
	}
	return res, nil
}

func (g *Graph) stepNode(ctx context.Context, n *node) NodeResult {
	nr := NodeResult{ID: n.id, Name: n.name}

	if !n.runnable {
		n.status = StatusSuccess
		nr.Status = n.status
		return nr
	}

	for _, e := range n.incoming {
		if e.required() && (e.source.status == StatusFailure || e.source.status == StatusSkipped) {
			n.status = StatusSkipped
			nr.Status = n.status
			if g.log.DebugEnabled() {
				g.log.Debug("node skipped", logger.Fields(
					logger.FieldNode, n.name,
					logger.FieldCycle, g.cycle,
					"upstream", e.source.name,
				))
			}
			return nr
		}
	}

	for _, e := range n.incoming {
		if e.transfer == nil {
			continue
		}
		if !e.dependency && !e.source.status.Done() {
			g.dataEdgeViolation(e)
			continue
		}
		if e.source.status == StatusSuccess {
			e.transfer()
		}
	}

	if n.breaker != nil && !n.breaker.Allow() {
		n.status = StatusFailure
		nr.Status = n.status
		nr.Tripped = true
		if g.log.DebugEnabled() {
			g.log.Debug("node short-circuited by failure memory", logger.Fields(
				logger.FieldNode, n.name,
				logger.FieldCycle, g.cycle,
			))
		}
		return nr
	}

	for _, obs := range g.observers {
		obs.NodeStarted(ctx, n.id, n.name)
	}

	start := time.Now()
	ok, recovered := invokeStep(n.unit)
	n.recordStep(time.Since(start))

	nr.Stepped = true
	nr.Duration = n.elapsed
	if recovered != nil {
		nr.Panicked = true
		g.log.Error("node step panicked", logger.Fields(
			logger.FieldNode, n.name,
			logger.FieldCycle, g.cycle,
			logger.FieldError, fmt.Sprint(recovered),
		))
	}
	if n.breaker != nil {
		n.breaker.Record(ok)
	}

	if ok {
		n.status = StatusSuccess
	} else {
		n.status = StatusFailure
		if g.log.DebugEnabled() {
			g.log.Debug("node failed", logger.Fields(
				logger.FieldNode, n.name,
				logger.FieldCycle, g.cycle,
			))
		}
	}
	nr.Status = n.status
	return nr
}

// invokeStep runs Step, converting a panic into a failed step.
func invokeStep(u Unit) (ok bool, recovered any) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			recovered = r
		}
	}()
	return u.Step(), nil
}

func (g *Graph) dataEdgeViolation(e *edge) {
	if !g.dataEdgeCheck {
		return
	}
	g.dataEdgeViolations++
	g.log.Warn("data-only edge read before its source ran", logger.Fields(
		"source", e.source.name,
		"sink", e.sink.name,
		"source_port", e.sourcePort,
		"sink_port", e.sinkPort,
		logger.FieldCycle, g.cycle,
	))
}

// Run executes cycles until one fails, ctx is done, Cancel is called, or the
// WithMaxCycles limit is reached. It reports whether any cycle succeeded.
// Structural errors and ctx errors are returned alongside that result.
func (g *Graph) Run(ctx context.Context) (bool, error) {
	g.cancelled.Store(false)

	succeeded := false
	runID := newRunID()
	log := g.log.WithFields(logger.Fields(logger.FieldRun, runID))
	log.Info("run started")

	for cycles := 0; g.maxCycles == 0 || cycles < g.maxCycles; cycles++ {
		if g.cancelled.Load() {
			log.Info("run cancelled", logger.Fields("cycles", cycles))
			return succeeded, nil
		}
		res, err := g.Execute(ctx)
		if err != nil {
			log.Warn("run stopped", logger.ErrorFields("execute", err, "cycles", cycles))
			return succeeded, err
		}
		if !res.Success {
			log.Info("run finished", logger.Fields("cycles", cycles+1, "succeeded", succeeded))
			return succeeded, nil
		}
		succeeded = true
	}
	log.Info("run reached cycle limit", logger.Fields("cycles", g.maxCycles))
	return succeeded, nil
}

// Cancel asks a Run in progress to stop after its current cycle. It is safe
// to call from any goroutine and always succeeds. Execute is unaffected.
func (g *Graph) Cancel() bool {
	g.cancelled.Store(true)
	return true
}
