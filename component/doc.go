// Package component defines lifecycle-managed infrastructure for framegraph
// processes.
//
// Anything that must be started before a graph runs and stopped after it
// finishes (telemetry providers, the diagnostics server) implements
// Component and is registered with a Registry. The registry starts
// components in registration order, stops them in reverse, and aggregates
// their health for the diagnostics endpoint.
package component
