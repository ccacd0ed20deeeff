package component

import "context"

// Component is infrastructure with a start/stop lifecycle, such as the
// telemetry exporters or the diagnostics server.
type Component interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Health(ctx context.Context) Health
}

// Description is what a component reports about itself in the startup
// summary. An empty Name falls back to Component.Name.
type Description struct {
	Name    string
	Type    string // "server", "telemetry", ...
	Details string // one line, e.g. "127.0.0.1:9090"
	Port    int
}

// Describable components appear in the startup summary with their details.
type Describable interface {
	Describe() Description
}

// Route is one HTTP route served by a component.
type Route struct {
	Method  string
	Path    string
	Handler string
}

// RouteProvider components list their HTTP routes in the startup summary.
type RouteProvider interface {
	Routes() []Route
}
