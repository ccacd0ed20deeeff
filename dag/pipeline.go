package dag

import (
	"fmt"
	"regexp"
	"strings"

	apperrors "github.com/kbukum/framegraph/errors"
	"github.com/kbukum/framegraph/validation"
)

// Pipeline is a composable, YAML-defined graph definition.
type Pipeline struct {
	// Name is the pipeline identifier.
	Name string `yaml:"name" validate:"required"`
	// Includes lists sub-pipelines whose nodes and edges are merged in first.
	Includes []string `yaml:"includes,omitempty"`
	// Nodes defines the pipeline's nodes.
	Nodes []NodeDef `yaml:"nodes" validate:"dive"`
	// Connections wire ports, "node.port" on each side.
	Connections []ConnectionDef `yaml:"connections,omitempty" validate:"dive"`
	// Dependencies order nodes without moving data.
	Dependencies []DependencyDef `yaml:"dependencies,omitempty" validate:"dive"`
}

// NodeDef defines a node within a pipeline.
type NodeDef struct {
	// Name is the node's unique name within the pipeline.
	Name string `yaml:"name" validate:"required"`
	// Component is the registry lookup key.
	Component string `yaml:"component" validate:"required"`
	// Execute false registers the node without stepping it. Defaults to true.
	Execute *bool `yaml:"execute,omitempty"`
	// Output overrides the output-node heuristic when set.
	Output *bool `yaml:"output,omitempty"`
	// Options are passed to the unit's Configure.
	Options Options `yaml:"options,omitempty"`
}

// Runnable reports whether the node is stepped.
func (d NodeDef) Runnable() bool {
	return d.Execute == nil || *d.Execute
}

// ConnectionDef wires an output port to an input port.
type ConnectionDef struct {
	From string `yaml:"from" validate:"required"`
	To   string `yaml:"to" validate:"required"`
	// Optional keeps the sink runnable when the source fails.
	Optional bool `yaml:"optional,omitempty"`
	// Dependency false makes the connection data-only. Defaults to true.
	Dependency *bool `yaml:"dependency,omitempty"`
}

// ConnectOptions translates the definition's flags.
func (d ConnectionDef) ConnectOptions() []ConnectOption {
	var opts []ConnectOption
	if d.Optional {
		opts = append(opts, Optional())
	}
	if d.Dependency != nil && !*d.Dependency {
		opts = append(opts, WithoutDependency())
	}
	return opts
}

// DependencyDef orders To after From.
type DependencyDef struct {
	From     string `yaml:"from" validate:"required"`
	To       string `yaml:"to" validate:"required"`
	Optional bool   `yaml:"optional,omitempty"`
}

var endpointPattern = regexp.MustCompile(`^[^.\s]+\.[^.\s]+$`)

// SplitEndpoint splits "node.port".
func SplitEndpoint(endpoint string) (node, port string, ok bool) {
	if !endpointPattern.MatchString(endpoint) {
		return "", "", false
	}
	node, port, _ = strings.Cut(endpoint, ".")
	return node, port, true
}

// Validate checks the definition's shape and that every edge names a
// declared node. Includes must already be merged for references into them
// to resolve.
func (p *Pipeline) Validate() error {
	if err := validation.ValidateStruct(p); err != nil {
		return apperrors.InvalidPipeline(p.Name, "definition is malformed").WithCause(err)
	}

	v := validation.New()
	declared := make(map[string]bool, len(p.Nodes))
	for i, n := range p.Nodes {
		v.Unique("nodes", fmt.Sprintf("nodes[%d].name", i), n.Name)
		declared[n.Name] = true
	}
	for i, c := range p.Connections {
		for _, end := range [...]struct{ side, endpoint string }{{"from", c.From}, {"to", c.To}} {
			field := fmt.Sprintf("connections[%d].%s", i, end.side)
			endpoint := end.endpoint
			v.Pattern(field, endpoint, endpointPattern)
			if name, _, ok := SplitEndpoint(endpoint); ok && !declared[name] {
				v.AddError(field, fmt.Sprintf("references undeclared node %q", name))
			}
		}
	}
	for i, d := range p.Dependencies {
		v.Custom(declared[d.From], fmt.Sprintf("dependencies[%d].from", i),
			fmt.Sprintf("references undeclared node %q", d.From))
		v.Custom(declared[d.To], fmt.Sprintf("dependencies[%d].to", i),
			fmt.Sprintf("references undeclared node %q", d.To))
	}
	if err := v.Err(); err != nil {
		return apperrors.InvalidPipeline(p.Name, "definition is inconsistent").WithCause(err)
	}
	return nil
}

// Params collects node options keyed by node name.
func (p *Pipeline) Params() Params {
	params := make(Params, len(p.Nodes))
	for _, n := range p.Nodes {
		if n.Options != nil {
			params[n.Name] = n.Options
		}
	}
	return params
}
