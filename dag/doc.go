// Package dag is framegraph's dataflow execution engine.
//
// Independently written processing units are registered as nodes of a Graph
// and wired through typed ports. The graph computes a deterministic
// topological order over its execution-dependency edges, then drives one
// cycle per Execute call: each node's incoming values are transferred, its
// Step runs, and failures are propagated to nodes holding a required
// dependency on it, which are marked Skipped rather than stepped.
//
// Four edge flavors exist:
//
//	Connect                   ordering, failure propagation, data
//	ConnectOptional           ordering, data; upstream failure does not skip
//	AddExecutionDependency    ordering and failure propagation, no data
//	ConnectWithoutDependency  data only; ordering must come from elsewhere
//
// A cycle succeeds when at least one output node succeeded. By default an
// output node is a runnable node with no outgoing required dependency edge;
// SetOutputNode overrides that per node.
//
// The engine is single-threaded. A Graph must not be used from more than one
// goroutine at a time, with the exception of Cancel. Observers and Snapshot
// are the way to publish state to other goroutines.
//
// Graphs can be built in code or from YAML pipeline definitions resolved
// against a Registry of unit factories (see ResolvePipeline).
package dag
