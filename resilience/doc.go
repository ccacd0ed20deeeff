// Package resilience provides the failure memory the scheduler keeps per node.
//
// A Breaker counts consecutive failed cycles of one node. After MaxFailures
// consecutive failures it opens, and the scheduler reports the node as failed
// without stepping it for CooldownCycles cycles. It then lets one probe cycle
// through (half-open): success closes the breaker, failure reopens it.
//
// Time is measured in cycles rather than wall-clock time, so behaviour is
// reproducible frame for frame regardless of how fast frames arrive.
package resilience
