package dag_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/kbukum/framegraph/dag"
	"github.com/kbukum/framegraph/dag/dagtest"
)

func TestReset_Idempotent(t *testing.T) {
	b := dagtest.NewGraphBuilder().Nodes("a", "b", "c").Connect("a", "b").Connect("b", "c")
	g := mustBuild(t, b)
	for range 3 {
		mustExecute(t, g)
	}

	if err := g.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	once := g.Nodes()
	if err := g.Reset(); err != nil {
		t.Fatalf("second Reset: %v", err)
	}
	twice := g.Nodes()

	if diff := cmp.Diff(once, twice, cmpopts.IgnoreUnexported(dag.NodeID{})); diff != "" {
		t.Errorf("second reset changed state (-once +twice):\n%s", diff)
	}
	for _, info := range twice {
		if info.Status != dag.StatusNotRun {
			t.Errorf("%s status = %s, want not_run", info.Name, info.Status)
		}
		if info.Steps != 0 || info.Elapsed != 0 {
			t.Errorf("%s per-cycle counters not cleared: %+v", info.Name, info)
		}
		if info.CumulativeSteps != 3 {
			t.Errorf("%s cumulative steps = %d, want 3", info.Name, info.CumulativeSteps)
		}
	}
	if g.Cycle() != 0 {
		t.Errorf("Cycle() = %d, want 0", g.Cycle())
	}
	if b.Unit("a").Resets() != 2 {
		t.Errorf("unit resets = %d, want 2", b.Unit("a").Resets())
	}

	res := mustExecute(t, g)
	if res.Cycle != 1 || !res.Success {
		t.Errorf("first cycle after reset = %+v", res)
	}
}

func TestReset_RestartsScriptedUnits(t *testing.T) {
	b := dagtest.NewGraphBuilder().Add(dagtest.NewMockUnit("a").FailAfter(1))
	g := mustBuild(t, b)

	ok, err := g.Run(t.Context())
	if err != nil || !ok {
		t.Fatalf("Run = %v, %v", ok, err)
	}
	if err := g.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	ok, err = g.Run(t.Context())
	if err != nil || !ok {
		t.Fatalf("Run after Reset = %v, %v", ok, err)
	}
	if b.Unit("a").Steps() != 4 {
		t.Errorf("steps = %d, want 4", b.Unit("a").Steps())
	}
}

func TestResetDownstream(t *testing.T) {
	b := dagtest.NewGraphBuilder().Nodes("a", "b", "c", "side").
		Connect("a", "b").Connect("b", "c").Connect("a", "side")
	g := mustBuild(t, b)
	mustExecute(t, g)

	if err := g.ResetDownstream(b.ID("b")); err != nil {
		t.Fatalf("ResetDownstream: %v", err)
	}
	want := map[string]dag.Status{
		"a": dag.StatusSuccess, "b": dag.StatusNotRun,
		"c": dag.StatusNotRun, "side": dag.StatusSuccess,
	}
	if diff := cmp.Diff(want, statuses(t, b, "a", "b", "c", "side")); diff != "" {
		t.Errorf("statuses (-want +got):\n%s", diff)
	}
	resets := map[string]int{}
	for _, name := range []string{"a", "b", "c", "side"} {
		resets[name] = b.Unit(name).Resets()
	}
	if diff := cmp.Diff(map[string]int{"a": 0, "b": 1, "c": 1, "side": 0}, resets); diff != "" {
		t.Errorf("unit resets (-want +got):\n%s", diff)
	}
	if g.Cycle() != 1 {
		t.Errorf("Cycle() = %d, want 1", g.Cycle())
	}
}

func TestResetNode(t *testing.T) {
	b := dagtest.NewGraphBuilder().Nodes("a", "b").Connect("a", "b")
	g := mustBuild(t, b)
	mustExecute(t, g)

	if err := g.ResetNode(b.ID("a")); err != nil {
		t.Fatalf("ResetNode: %v", err)
	}
	if s, _ := g.Status(b.ID("a")); s != dag.StatusNotRun {
		t.Errorf("a status = %s, want not_run", s)
	}
	if s, _ := g.Status(b.ID("b")); s != dag.StatusSuccess {
		t.Errorf("b status = %s, want success", s)
	}

	other := dag.New()
	foreign := other.Add(dagtest.NewMockUnit("x"))
	if err := g.ResetNode(foreign); !errors.Is(err, dag.ErrUnknownNode) {
		t.Errorf("ResetNode(foreign) = %v, want UNKNOWN_NODE", err)
	}
}

func TestReset_ReportsFailedHooks(t *testing.T) {
	b := dagtest.NewGraphBuilder().
		Add(dagtest.NewMockUnit("bad").WithResetResult(false)).
		Nodes("good")
	g := mustBuild(t, b)
	mustExecute(t, g)

	err := g.Reset()
	if !errors.Is(err, dag.ErrInitialization) {
		t.Fatalf("Reset error = %v, want INITIALIZATION_FAILED", err)
	}
	if b.Unit("good").Resets() != 1 {
		t.Error("a failed hook must not stop the other nodes from resetting")
	}
	if s, _ := g.Status(b.ID("bad")); s != dag.StatusNotRun {
		t.Errorf("bad status = %s, want not_run", s)
	}
}
