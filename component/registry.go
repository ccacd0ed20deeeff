package component

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/kbukum/framegraph/logger"
)

// StopTimeout bounds each component's Stop call.
const StopTimeout = 10 * time.Second

// Registry starts components in registration order and stops the started
// ones in reverse.
type Registry struct {
	mu         sync.RWMutex
	components []Component
	running    []Component // start order; a prefix of components
	log        *logger.Logger
}

func NewRegistry() *Registry {
	return &Registry{log: logger.WithComponent("component")}
}

// Register appends c. Names must be unique.
func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if slices.ContainsFunc(r.components, func(o Component) bool { return o.Name() == name }) {
		return fmt.Errorf("component %s already registered", name)
	}
	r.components = append(r.components, c)
	r.log.Debug("component registered", logger.Fields(logger.FieldComponent, name))
	return nil
}

// StartAll starts every component not yet running. It stops at the first
// failure and leaves the earlier ones running for StopAll.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pending := r.components[len(r.running):]
	r.log.Info("starting components", logger.Fields("count", len(pending)))
	for _, c := range pending {
		if err := c.Start(ctx); err != nil {
			r.log.Error("component start failed", logger.ErrorFields("start", err, logger.FieldComponent, c.Name()))
			return fmt.Errorf("start %s: %w", c.Name(), err)
		}
		r.running = append(r.running, c)
		r.log.Info("component started", describeFields(c))
	}
	return nil
}

// StopAll stops running components newest first. Each Stop gets its own
// StopTimeout and every error is returned.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for _, c := range slices.Backward(r.running) {
		if err := stopOne(ctx, c); err != nil {
			r.log.Error("component stop failed", logger.ErrorFields("stop", err, logger.FieldComponent, c.Name()))
			errs = append(errs, fmt.Errorf("stop %s: %w", c.Name(), err))
			continue
		}
		r.log.Debug("component stopped", logger.Fields(logger.FieldComponent, c.Name()))
	}
	r.running = nil
	return errors.Join(errs...)
}

func stopOne(ctx context.Context, c Component) error {
	ctx, cancel := context.WithTimeout(ctx, StopTimeout)
	defer cancel()
	return c.Stop(ctx)
}

// HealthAll checks every registered component, running or not.
func (r *Registry) HealthAll(ctx context.Context) []Health {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Health, len(r.components))
	for i, c := range r.components {
		out[i] = c.Health(ctx)
	}
	return out
}

// All returns the registered components in registration order.
func (r *Registry) All() []Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.components)
}

func describeFields(c Component) map[string]interface{} {
	fields := logger.Fields(logger.FieldComponent, c.Name())
	if d, ok := c.(Describable); ok {
		desc := d.Describe()
		fields["type"] = desc.Type
		fields["details"] = desc.Details
	}
	return fields
}
