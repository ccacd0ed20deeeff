package dag

import (
	"fmt"
	"sort"
	"sync"

	apperrors "github.com/kbukum/framegraph/errors"
)

// Factory creates a unit for a pipeline node. name is the node's name in
// the pipeline definition.
type Factory func(name string) (Unit, error)

// Registry maps component names to unit factories for pipeline resolution.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under component. Names must be unique.
func (r *Registry) Register(component string, f Factory) error {
	if component == "" || f == nil {
		return apperrors.InvalidInput("component", "component name and factory are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[component]; exists {
		return fmt.Errorf("dag: component %q already registered", component)
	}
	r.factories[component] = f
	return nil
}

// MustRegister is Register that panics on error, for package init wiring.
func (r *Registry) MustRegister(component string, f Factory) {
	if err := r.Register(component, f); err != nil {
		panic(err)
	}
}

// Get retrieves a factory by component name.
func (r *Registry) Get(component string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[component]
	return f, ok
}

// Create builds a unit named name from component.
func (r *Registry) Create(component, name string) (Unit, error) {
	f, ok := r.Get(component)
	if !ok {
		return nil, apperrors.ComponentNotFound(component)
	}
	u, err := f(name)
	if err != nil {
		return nil, fmt.Errorf("dag: creating %q from %q: %w", name, component, err)
	}
	if u == nil {
		return nil, apperrors.Internal(fmt.Errorf("factory %q returned a nil unit", component))
	}
	return u, nil
}

// List returns sorted names of all registered components.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
