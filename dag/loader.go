package dag

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	apperrors "github.com/kbukum/framegraph/errors"
)

// PipelineLoader loads pipeline definitions by name.
type PipelineLoader interface {
	Load(name string) (*Pipeline, error)
}

// FilePipelineLoader loads pipelines from YAML files on disk.
type FilePipelineLoader struct {
	dirs []string
}

// NewFilePipelineLoader creates a loader that searches the given directories
// for pipeline YAML files.
func NewFilePipelineLoader(dirs ...string) *FilePipelineLoader {
	return &FilePipelineLoader{dirs: dirs}
}

// Load looks for {name}.yaml or {name}.yml directly in each directory, then
// in its subdirectories.
func (l *FilePipelineLoader) Load(name string) (*Pipeline, error) {
	for _, dir := range l.dirs {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, name+ext)
			if fileExists(path) {
				return LoadPipelineFile(path)
			}
		}
	}

	for _, dir := range l.dirs {
		var found string
		_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil || found != "" {
				return fs.SkipDir
			}
			if d.IsDir() {
				return nil
			}
			base := filepath.Base(path)
			if base == name+".yaml" || base == name+".yml" {
				found = path
				return fs.SkipAll
			}
			return nil
		})
		if found != "" {
			return LoadPipelineFile(found)
		}
	}
	return nil, apperrors.InvalidPipeline(name, fmt.Sprintf("not found in %v", l.dirs))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// ParsePipeline decodes a YAML pipeline definition. Unknown keys are rejected.
func ParsePipeline(data []byte) (*Pipeline, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var p Pipeline
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, apperrors.InvalidPipeline("", "empty definition")
		}
		return nil, apperrors.InvalidPipeline(p.Name, "cannot parse definition").WithCause(err)
	}
	return &p, nil
}

// LoadPipelineFile reads and parses one pipeline file.
func LoadPipelineFile(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dag: reading pipeline: %w", err)
	}
	p, err := ParsePipeline(data)
	if err != nil {
		return nil, fmt.Errorf("dag: parsing %s: %w", path, err)
	}
	return p, nil
}

// LoadPipeline loads a pipeline from the first path that can be read.
func LoadPipeline(name string, paths ...string) (*Pipeline, error) {
	var errs []error
	for _, path := range paths {
		p, err := LoadPipelineFile(path)
		if err == nil {
			return p, nil
		}
		errs = append(errs, err)
	}
	return nil, apperrors.InvalidPipeline(name, "not found in provided paths").WithCause(errors.Join(errs...))
}

// MergeIncludes flattens p's includes, recursively, into one definition.
// Included nodes come first; when several includes declare the same node
// name the first wins, and p's own nodes of that name are dropped. An
// include reached twice through different branches is merged once. A
// loader is needed only when p has includes.
func MergeIncludes(p *Pipeline, loader PipelineLoader) (*Pipeline, error) {
	stack := make(map[string]bool)    // current recursion path
	resolved := make(map[string]bool) // already merged
	return mergeIncludes(p, loader, stack, resolved)
}

func mergeIncludes(p *Pipeline, loader PipelineLoader, stack, resolved map[string]bool) (*Pipeline, error) {
	if stack[p.Name] {
		return nil, apperrors.InvalidPipeline(p.Name, "circular include")
	}
	stack[p.Name] = true
	defer delete(stack, p.Name)

	out := &Pipeline{Name: p.Name}
	included := make(map[string]bool)

	for _, name := range p.Includes {
		if resolved[name] {
			continue
		}
		if loader == nil {
			return nil, apperrors.InvalidPipeline(p.Name, fmt.Sprintf("include %q needs a pipeline loader", name))
		}
		sub, err := loader.Load(name)
		if err != nil {
			return nil, fmt.Errorf("dag: loading include %q: %w", name, err)
		}
		merged, err := mergeIncludes(sub, loader, stack, resolved)
		if err != nil {
			return nil, err
		}
		for _, n := range merged.Nodes {
			if included[n.Name] {
				continue
			}
			included[n.Name] = true
			out.Nodes = append(out.Nodes, n)
		}
		out.Connections = append(out.Connections, merged.Connections...)
		out.Dependencies = append(out.Dependencies, merged.Dependencies...)
	}

	for _, n := range p.Nodes {
		if included[n.Name] {
			continue
		}
		out.Nodes = append(out.Nodes, n)
	}
	out.Connections = append(out.Connections, p.Connections...)
	out.Dependencies = append(out.Dependencies, p.Dependencies...)

	resolved[p.Name] = true
	return out, nil
}

// ResolvePipeline turns a definition into a configured, ordered Graph. It
// merges includes, validates the result, creates units from the registry,
// wires connections and dependencies, applies node options, and builds the
// execution order. opts are applied to the new Graph after WithName.
func ResolvePipeline(p *Pipeline, registry *Registry, loader PipelineLoader, opts ...Option) (*Graph, error) {
	merged, err := MergeIncludes(p, loader)
	if err != nil {
		return nil, err
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	g := New(append([]Option{WithName(merged.Name)}, opts...)...)
	ids := make(map[string]NodeID, len(merged.Nodes))

	for _, def := range merged.Nodes {
		unit, err := registry.Create(def.Component, def.Name)
		if err != nil {
			return nil, err
		}
		if unit.Name() != def.Name {
			return nil, apperrors.InvalidPipeline(merged.Name,
				fmt.Sprintf("component %q named node %q as %q", def.Component, def.Name, unit.Name()))
		}
		var id NodeID
		if def.Runnable() {
			id = g.Add(unit)
		} else {
			id = g.AddWithoutExecute(unit)
		}
		if def.Output != nil {
			if err := g.SetOutputNode(id, *def.Output); err != nil {
				return nil, err
			}
		}
		ids[def.Name] = id
	}

	for _, c := range merged.Connections {
		srcNode, srcPort, _ := SplitEndpoint(c.From)
		dstNode, dstPort, _ := SplitEndpoint(c.To)
		if err := g.ConnectByName(ids[srcNode], srcPort, ids[dstNode], dstPort, c.ConnectOptions()...); err != nil {
			return nil, fmt.Errorf("dag: connecting %s to %s: %w", c.From, c.To, err)
		}
	}

	for _, d := range merged.Dependencies {
		var depOpts []ConnectOption
		if d.Optional {
			depOpts = append(depOpts, Optional())
		}
		if err := g.AddExecutionDependency(ids[d.From], ids[d.To], depOpts...); err != nil {
			return nil, fmt.Errorf("dag: ordering %s before %s: %w", d.From, d.To, err)
		}
	}

	if err := g.ConfigureAll(merged.Params()); err != nil {
		return nil, err
	}
	if err := g.Build(); err != nil {
		return nil, err
	}
	return g, nil
}
