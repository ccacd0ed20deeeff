package dag

import (
	"bufio"
	"encoding/xml"
	"io"
	"strconv"
	"time"
)

// NodeTiming is one node's timing counters.
type NodeTiming struct {
	ID              NodeID        `json:"id"`
	Name            string        `json:"name"`
	Elapsed         time.Duration `json:"elapsed_ns"`
	Cumulative      time.Duration `json:"cumulative_ns"`
	Steps           uint64        `json:"steps"`
	CumulativeSteps uint64        `json:"cumulative_steps"`
}

// ElapsedMs is the most recent cycle's step time in milliseconds.
func (t NodeTiming) ElapsedMs() float64 { return durationMs(t.Elapsed) }

// CumulativeMs is the total step time in milliseconds.
func (t NodeTiming) CumulativeMs() float64 { return durationMs(t.Cumulative) }

// Timings returns every node's counters in insertion order.
func (g *Graph) Timings() []NodeTiming {
	out := make([]NodeTiming, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = NodeTiming{
			ID:              n.id,
			Name:            n.name,
			Elapsed:         n.elapsed,
			Cumulative:      n.cumulative,
			Steps:           n.steps,
			CumulativeSteps: n.cumulativeSteps,
		}
	}
	return out
}

// CollectNodeTiming maps node names to cumulative step time in
// milliseconds. When names repeat, later nodes are keyed "name#<id>".
func (g *Graph) CollectNodeTiming() map[string]float64 {
	return timingMap(g.Timings())
}

// WriteTimingMeasurements writes one Dart measurement per node, in insertion
// order, for dashboard ingestion:
//
//	<DartMeasurement name="detector" type="numeric/double">12.345</DartMeasurement>
func (g *Graph) WriteTimingMeasurements(w io.Writer) error {
	return writeDartMeasurements(w, g.Timings())
}

func timingMap(timings []NodeTiming) map[string]float64 {
	out := make(map[string]float64, len(timings))
	for _, t := range timings {
		key := t.Name
		if _, taken := out[key]; taken {
			key = t.Name + "#" + t.ID.String()
		}
		out[key] = t.CumulativeMs()
	}
	return out
}

func writeDartMeasurements(w io.Writer, timings []NodeTiming) error {
	bw := bufio.NewWriter(w)
	for _, t := range timings {
		bw.WriteString(`<DartMeasurement name="`)
		if err := xml.EscapeText(bw, []byte(t.Name)); err != nil {
			return err
		}
		bw.WriteString(`" type="numeric/double">`)
		bw.WriteString(strconv.FormatFloat(t.CumulativeMs(), 'f', 3, 64))
		bw.WriteString("</DartMeasurement>\n")
	}
	return bw.Flush()
}

func durationMs(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / float64(time.Millisecond)
}
