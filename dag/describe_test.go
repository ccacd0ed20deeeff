package dag_test

import (
	"bytes"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/kbukum/framegraph/dag"
	"github.com/kbukum/framegraph/dag/dagtest"
)

var cmpSorted = cmpopts.SortSlices(func(a, b string) bool { return a < b })

func describedGraph(t *testing.T) *dag.Graph {
	t.Helper()
	b := dagtest.NewGraphBuilder(dag.WithName("demo")).
		AddWithoutExecute(dagtest.NewMockUnit("src")).
		Nodes("det", "out", "log").
		Connect("src", "det").
		Connect("det", "out", dag.Optional()).
		Depend("det", "log").
		Connect("out", "log", dag.WithoutDependency())
	return mustBuild(t, b)
}

func TestWriteGraphDescription(t *testing.T) {
	g := describedGraph(t)

	want := `digraph "demo" {
  n1 [label="src", style=dashed];
  n2 [label="det"];
  n3 [label="out", peripheries=2];
  n4 [label="log", peripheries=2];
  n1 -> n2 [label="out -> in"];
  n2 -> n3 [label="out -> in", style=dashed];
  n2 -> n4 [style=bold];
  n3 -> n4 [label="out -> in", style=dotted];
}
`
	var buf bytes.Buffer
	if err := g.WriteGraphDescription(&buf); err != nil {
		t.Fatalf("WriteGraphDescription: %v", err)
	}
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("description (-want +got):\n%s", diff)
	}
	if g.GraphDescription() != buf.String() {
		t.Error("GraphDescription differs from WriteGraphDescription")
	}
}

func TestWriteGraphDescription_QuotesNames(t *testing.T) {
	b := dagtest.NewGraphBuilder(dag.WithName(`my "graph"`)).Nodes(`a\b`, "multi\nline")
	got := mustBuild(t, b).GraphDescription()

	for _, want := range []string{
		`digraph "my \"graph\"" {`,
		`n1 [label="a\\b", peripheries=2];`,
		`n2 [label="multi\nline", peripheries=2];`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("description missing %q:\n%s", want, got)
		}
	}
}

func TestWriteGraphDescription_EmptyGraph(t *testing.T) {
	got := dag.New(dag.WithName("empty")).GraphDescription()
	if got != "digraph \"empty\" {\n}\n" {
		t.Errorf("description = %q", got)
	}
}

func TestWriteTimingMeasurements(t *testing.T) {
	t.Run("unexecuted graph reports zero", func(t *testing.T) {
		g := mustBuild(t, dagtest.NewGraphBuilder().Nodes("detector", "a<b"))
		var buf bytes.Buffer
		if err := g.WriteTimingMeasurements(&buf); err != nil {
			t.Fatalf("WriteTimingMeasurements: %v", err)
		}
		want := `<DartMeasurement name="detector" type="numeric/double">0.000</DartMeasurement>
<DartMeasurement name="a&lt;b" type="numeric/double">0.000</DartMeasurement>
`
		if diff := cmp.Diff(want, buf.String()); diff != "" {
			t.Errorf("measurements (-want +got):\n%s", diff)
		}
	})

	t.Run("one line per node in insertion order", func(t *testing.T) {
		b := dagtest.NewGraphBuilder().Nodes("z", "y").Depend("y", "z")
		g := mustBuild(t, b)
		mustExecute(t, g)

		var buf bytes.Buffer
		if err := g.WriteTimingMeasurements(&buf); err != nil {
			t.Fatalf("WriteTimingMeasurements: %v", err)
		}
		line := regexp.MustCompile(`^<DartMeasurement name="([^"]+)" type="numeric/double">\d+\.\d{3}</DartMeasurement>$`)
		lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
		var names []string
		for _, l := range lines {
			m := line.FindStringSubmatch(l)
			if m == nil {
				t.Fatalf("malformed measurement %q", l)
			}
			names = append(names, m[1])
		}
		if diff := cmp.Diff([]string{"z", "y"}, names); diff != "" {
			t.Errorf("names (-want +got):\n%s", diff)
		}
	})
}

func TestCollectNodeTiming(t *testing.T) {
	slow := dagtest.NewMockUnit("slow").WithStep(func(int) bool {
		time.Sleep(time.Millisecond)
		return true
	})
	b := dagtest.NewGraphBuilder().
		Add(slow).
		Nodes("dup").
		Add(dagtest.NewMockUnit("dup"))
	g := mustBuild(t, b)
	mustExecute(t, g)
	mustExecute(t, g)

	timing := g.CollectNodeTiming()
	keys := make([]string, 0, len(timing))
	for k := range timing {
		keys = append(keys, k)
	}
	if diff := cmp.Diff([]string{"dup", "dup#n3", "slow"}, keys, cmpSorted); diff != "" {
		t.Errorf("keys (-want +got):\n%s", diff)
	}
	if timing["slow"] < 2 {
		t.Errorf("slow cumulative = %.3fms, want at least 2ms", timing["slow"])
	}

	if err := g.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	after := g.CollectNodeTiming()
	if after["slow"] != timing["slow"] {
		t.Errorf("Reset changed cumulative timing: %.3f -> %.3f", timing["slow"], after["slow"])
	}
	info, _ := g.Node(b.ID("slow"))
	if info.Elapsed != 0 {
		t.Errorf("Reset kept elapsed %v", info.Elapsed)
	}
}

func TestSnapshot(t *testing.T) {
	b := dagtest.NewGraphBuilder(dag.WithName("snap"), dag.WithDataEdgeCheck(true)).
		Nodes("sink", "source").
		Connect("source", "sink", dag.WithoutDependency())
	g := mustBuild(t, b)
	mustExecute(t, g)

	s := g.Snapshot()
	if s.Name != "snap" || s.GraphID != g.ID().String() || s.Cycle != 1 {
		t.Errorf("snapshot header = %q %q %d", s.Name, s.GraphID, s.Cycle)
	}
	if s.Violations != 1 {
		t.Errorf("Violations = %d, want 1", s.Violations)
	}
	if s.Description != g.GraphDescription() {
		t.Error("snapshot description differs from the graph's")
	}
	if len(s.Order) != 2 || s.Order[0] != b.ID("sink") {
		t.Errorf("Order = %v", s.Order)
	}
	if diff := cmp.Diff(g.CollectNodeTiming(), s.NodeTiming()); diff != "" {
		t.Errorf("timing (-graph +snapshot):\n%s", diff)
	}

	var fromGraph, fromSnapshot bytes.Buffer
	_ = g.WriteTimingMeasurements(&fromGraph)
	_ = s.WriteTimingMeasurements(&fromSnapshot)
	if fromGraph.String() != fromSnapshot.String() {
		t.Error("snapshot measurements differ from the graph's")
	}

	// The snapshot is detached from later cycles.
	mustExecute(t, g)
	if s.Cycle != 1 || s.Nodes[0].Status != dag.StatusSuccess {
		t.Error("snapshot changed after another cycle")
	}
}

func TestSnapshot_CyclicGraphHasNoOrder(t *testing.T) {
	g := mustBuild(t, dagtest.NewGraphBuilder().Nodes("a", "b").Depend("a", "b").Depend("b", "a"))
	s := g.Snapshot()
	if s.Order != nil {
		t.Errorf("Order = %v, want nil", s.Order)
	}
	if len(s.Nodes) != 2 || len(s.Edges) != 2 {
		t.Errorf("snapshot has %d nodes and %d edges", len(s.Nodes), len(s.Edges))
	}
}
