package bootstrap

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kbukum/framegraph/component"
)

// Summary collects what a process started and prints it once startup ends.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	notes           []string
}

// NewSummary creates a summary for the named service.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{serviceName: serviceName, version: version}
}

// SetStartupDuration records how long startup took.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// Note adds a free-form line, e.g. the pipeline being run.
func (s *Summary) Note(format string, args ...any) {
	s.notes = append(s.notes, fmt.Sprintf(format, args...))
}

// Write prints the summary with live health and routes from registry.
func (s *Summary) Write(ctx context.Context, w io.Writer, registry *component.Registry) {
	var b strings.Builder

	version := s.version
	if version == "" {
		version = "dev"
	}
	fmt.Fprintf(&b, "\n%s %s started in %.2fs\n", s.serviceName, version, s.startupDuration.Seconds())
	for _, n := range s.notes {
		fmt.Fprintf(&b, "   %s\n", n)
	}

	var comps []component.Component
	if registry != nil {
		comps = registry.All()
	}
	if len(comps) == 0 {
		b.WriteString("   └── No components registered\n")
	} else {
		b.WriteString("\nComponents\n")
		for i, c := range comps {
			h := c.Health(ctx)
			line := fmt.Sprintf("%s %s", healthIcon(h.Status), c.Name())
			if d, ok := c.(component.Describable); ok {
				desc := d.Describe()
				line += fmt.Sprintf(" [%s] %s", desc.Type, desc.Details)
			}
			if h.Message != "" {
				line += " (" + h.Message + ")"
			}
			fmt.Fprintf(&b, "   %s %s\n", treePrefix(i, len(comps)), line)
		}
	}

	var routes []component.Route
	for _, c := range comps {
		if rp, ok := c.(component.RouteProvider); ok {
			routes = append(routes, rp.Routes()...)
		}
	}
	if len(routes) > 0 {
		fmt.Fprintf(&b, "\nRoutes (%d)\n", len(routes))
		for i, r := range routes {
			fmt.Fprintf(&b, "   %s %-7s %s → %s\n", treePrefix(i, len(routes)), r.Method, r.Path, r.Handler)
		}
	}

	b.WriteString("\n")
	_, _ = io.WriteString(w, b.String())
}

func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func healthIcon(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✅"
	case component.StatusDegraded:
		return "⚠️"
	default:
		return "❌"
	}
}
