package dag

import "time"

// Result is the outcome of one Execute call.
type Result struct {
	// Cycle is the 1-based cycle number since creation or the last Reset.
	Cycle uint64 `json:"cycle"`
	// Success is true when at least one output node succeeded.
	Success bool `json:"success"`
	// NodeResults holds one entry per node in execution order.
	NodeResults []NodeResult  `json:"nodes"`
	Duration    time.Duration `json:"duration_ns"`
}

// NodeResult is one node's outcome within a cycle.
type NodeResult struct {
	ID       NodeID        `json:"id"`
	Name     string        `json:"name"`
	Status   Status        `json:"status"`
	Duration time.Duration `json:"duration_ns"`
	// Stepped is true when the unit's Step was invoked.
	Stepped bool `json:"stepped"`
	// Tripped is true when an open breaker failed the node without stepping.
	Tripped bool `json:"tripped,omitempty"`
	// Panicked is true when Step panicked and was recovered.
	Panicked bool `json:"panicked,omitempty"`
	// Output is true when the node counted toward the cycle result.
	Output bool `json:"output,omitempty"`
}

// Status returns the status recorded for id in this cycle.
func (r *Result) Status(id NodeID) (Status, bool) {
	for _, nr := range r.NodeResults {
		if nr.ID == id {
			return nr.Status, true
		}
	}
	return StatusNotRun, false
}

// Counts tallies node statuses.
func (r *Result) Counts() map[Status]int {
	counts := make(map[Status]int, 4)
	for _, nr := range r.NodeResults {
		counts[nr.Status]++
	}
	return counts
}
