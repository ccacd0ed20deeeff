package dag

import (
	"bufio"
	"io"
	"strings"
)

// WriteGraphDescription writes the graph in Graphviz DOT form: one line per
// node in insertion order, then one line per edge in creation order.
// Non-runnable nodes are dashed and output nodes drawn with a double border.
// Optional edges are dashed, data-only edges dotted, and dependency-only
// edges bold.
func (g *Graph) WriteGraphDescription(w io.Writer) error {
	bw := bufio.NewWriter(w)

	bw.WriteString("digraph ")
	bw.WriteString(dotQuote(g.name))
	bw.WriteString(" {\n")

	for _, n := range g.nodes {
		bw.WriteString("  ")
		bw.WriteString(n.id.String())
		bw.WriteString(" [label=")
		bw.WriteString(dotQuote(n.name))
		if !n.runnable {
			bw.WriteString(", style=dashed")
		}
		if n.isOutput() {
			bw.WriteString(", peripheries=2")
		}
		bw.WriteString("];\n")
	}

	for _, e := range g.edges {
		bw.WriteString("  ")
		bw.WriteString(e.source.id.String())
		bw.WriteString(" -> ")
		bw.WriteString(e.sink.id.String())

		var attrs []string
		if e.sourcePort != "" || e.sinkPort != "" {
			attrs = append(attrs, "label="+dotQuote(e.sourcePort+" -> "+e.sinkPort))
		}
		switch e.kind() {
		case EdgeOptional:
			attrs = append(attrs, "style=dashed")
		case EdgeData:
			attrs = append(attrs, "style=dotted")
		case EdgeDependency:
			attrs = append(attrs, "style=bold")
		}
		if len(attrs) > 0 {
			bw.WriteString(" [")
			bw.WriteString(strings.Join(attrs, ", "))
			bw.WriteString("]")
		}
		bw.WriteString(";\n")
	}

	bw.WriteString("}\n")
	return bw.Flush()
}

// GraphDescription returns WriteGraphDescription's output as a string.
func (g *Graph) GraphDescription() string {
	var sb strings.Builder
	_ = g.WriteGraphDescription(&sb)
	return sb.String()
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func dotQuote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}
