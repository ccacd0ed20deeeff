// Package diagserver exposes a running graph's diagnostics over HTTP.
//
// Handlers read from a Store that a dag.Observer refreshes after every
// cycle, so requests never touch state owned by the graph. The server runs
// gin behind an h2c handler and is managed as a component.Component.
package diagserver
