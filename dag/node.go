package dag

import (
	"fmt"
	"time"

	"github.com/kbukum/framegraph/resilience"
)

// Status is a node's outcome for the current cycle.
type Status uint8

const (
	// StatusNotRun means the node has not been reached this cycle.
	StatusNotRun Status = iota
	// StatusSuccess means the node stepped successfully, or is not runnable.
	StatusSuccess
	// StatusFailure means the node's step reported failure.
	StatusFailure
	// StatusSkipped means a required upstream dependency failed or was skipped.
	StatusSkipped
)

var statusNames = [...]string{"not_run", "success", "failure", "skipped"}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("status(%d)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	for i, name := range statusNames {
		if name == string(text) {
			*s = Status(i)
			return nil
		}
	}
	return fmt.Errorf("dag: unknown status %q", text)
}

// Done reports whether the node completed this cycle.
func (s Status) Done() bool { return s != StatusNotRun }

type node struct {
	id       NodeID
	name     string
	unit     Unit
	runnable bool

	outgoing []*edge
	incoming []*edge

	outputOverride *bool

	status Status

	elapsed         time.Duration // this cycle
	cumulative      time.Duration // since the node was added
	steps           uint64        // since the last reset
	cumulativeSteps uint64

	breaker *resilience.Breaker
}

// isOutput applies the override, falling back to "runnable with no outgoing
// required dependency edge".
func (n *node) isOutput() bool {
	if n.outputOverride != nil {
		return *n.outputOverride
	}
	if !n.runnable {
		return false
	}
	for _, e := range n.outgoing {
		if e.required() {
			return false
		}
	}
	return true
}

func (n *node) recordStep(d time.Duration) {
	n.elapsed = d
	n.cumulative += d
	n.steps++
	n.cumulativeSteps++
}

// NodeInfo is a read-only view of a node.
type NodeInfo struct {
	ID              NodeID        `json:"id"`
	Name            string        `json:"name"`
	Runnable        bool          `json:"runnable"`
	Output          bool          `json:"output"`
	OutputOverride  *bool         `json:"output_override,omitempty"`
	Status          Status        `json:"status"`
	Elapsed         time.Duration `json:"elapsed_ns"`
	Cumulative      time.Duration `json:"cumulative_ns"`
	Steps           uint64        `json:"steps"`
	CumulativeSteps uint64        `json:"cumulative_steps"`
	Breaker         string        `json:"breaker,omitempty"`
}

func (n *node) info() NodeInfo {
	info := NodeInfo{
		ID:              n.id,
		Name:            n.name,
		Runnable:        n.runnable,
		Output:          n.isOutput(),
		Status:          n.status,
		Elapsed:         n.elapsed,
		Cumulative:      n.cumulative,
		Steps:           n.steps,
		CumulativeSteps: n.cumulativeSteps,
	}
	if n.outputOverride != nil {
		v := *n.outputOverride
		info.OutputOverride = &v
	}
	if n.breaker != nil {
		info.Breaker = n.breaker.State().String()
	}
	return info
}
