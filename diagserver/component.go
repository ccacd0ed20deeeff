package diagserver

import (
	"context"
	"sort"
	"strings"

	"github.com/kbukum/framegraph/component"
)

const componentName = "diagnostics-server"

var (
	_ component.Component     = (*Component)(nil)
	_ component.Describable   = (*Component)(nil)
	_ component.RouteProvider = (*Component)(nil)
)

// Component wraps Server for a component.Registry.
type Component struct {
	server *Server
}

// NewComponent returns a component.Component backed by s.
func NewComponent(s *Server) *Component {
	return &Component{server: s}
}

// Name returns the component name used for registration.
func (c *Component) Name() string { return componentName }

// Start starts the underlying server.
func (c *Component) Start(ctx context.Context) error { return c.server.Start(ctx) }

// Stop shuts the underlying server down.
func (c *Component) Stop(ctx context.Context) error { return c.server.Stop(ctx) }

// Health is healthy while the server is serving.
func (c *Component) Health(context.Context) component.Health {
	if c.server.Running() {
		return component.Health{Name: componentName, Status: component.StatusHealthy}
	}
	return component.Health{
		Name:    componentName,
		Status:  component.StatusUnhealthy,
		Message: "diagnostics server not running",
	}
}

// Describe reports the listen address for the startup summary.
func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "Diagnostics Server",
		Type:    "server",
		Details: c.server.Addr(),
		Port:    c.server.cfg.Port,
	}
}

// Routes lists the registered routes sorted by path.
func (c *Component) Routes() []component.Route {
	infos := c.server.engine.Routes()
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Path != infos[j].Path {
			return infos[i].Path < infos[j].Path
		}
		return infos[i].Method < infos[j].Method
	})

	routes := make([]component.Route, 0, len(infos))
	for _, r := range infos {
		routes = append(routes, component.Route{
			Method:  r.Method,
			Path:    r.Path,
			Handler: handlerName(r.Handler),
		})
	}
	return routes
}

// handlerName trims gin's qualified handler name to the method name, so
// "github.com/x/diagserver.(*Server).handleGraph-fm" becomes "handleGraph".
func handlerName(full string) string {
	name := strings.TrimSuffix(full, "-fm")
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name
}
