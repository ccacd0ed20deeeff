package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kbukum/framegraph/component"
	"github.com/kbukum/framegraph/logger"
)

const defaultGracefulTimeout = 15 * time.Second

// App ties a validated config to a component registry and the hooks that
// run around a task.
type App[C Config] struct {
	Name       string
	Version    string
	Cfg        C
	Components *component.Registry
	Logger     *logger.Logger
	Summary    *Summary

	gracefulTimeout time.Duration
	summaryOut      io.Writer
	configurers     []func(ctx context.Context, app *App[C]) error
	hooks           map[stage][]Hook
}

// NewApp applies defaults to cfg and validates it. Unless WithLogger is
// given, the global logger is initialized from cfg's logging section.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	base := cfg.GetServiceConfig()
	if s.logger == nil {
		logger.Init(base.Logging)
		s.logger = logger.GetGlobalLogger()
	}

	app := &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		Components:      component.NewRegistry(),
		Logger:          s.logger,
		Summary:         NewSummary(base.Name, base.Version),
		gracefulTimeout: defaultGracefulTimeout,
		summaryOut:      os.Stderr,
		hooks:           make(map[stage][]Hook),
	}
	if s.gracefulTimeout > 0 {
		app.gracefulTimeout = s.gracefulTimeout
	}
	if s.summary != nil {
		app.summaryOut = s.summary
	}
	return app, nil
}

func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// OnConfigure registers setup that needs started components. It runs
// after the start hooks.
func (a *App[C]) OnConfigure(fn func(ctx context.Context, app *App[C]) error) {
	a.configurers = append(a.configurers, fn)
}

// ReadyCheck fails when any component is not healthy, listing each as
// name=status(message).
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	var bad []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status == component.StatusHealthy {
			continue
		}
		s := h.Name + "=" + string(h.Status)
		if h.Message != "" {
			s += "(" + h.Message + ")"
		}
		bad = append(bad, s)
	}
	if len(bad) > 0 {
		return fmt.Errorf("unhealthy components: %s", strings.Join(bad, ", "))
	}
	return nil
}

// Shutdown runs stop hooks and stops all components.
func (a *App[C]) Shutdown(context.Context) error {
	return a.stop()
}
