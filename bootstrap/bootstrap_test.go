package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/kbukum/framegraph/component"
	"github.com/kbukum/framegraph/config"
	"github.com/kbukum/framegraph/logger"
)

type testConfig struct {
	config.ServiceConfig
}

type mockComponent struct {
	name     string
	startErr error
	stopErr  error
	health   component.Health
	started  bool
	stopped  bool
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(context.Context) error {
	m.started = true
	return m.startErr
}
func (m *mockComponent) Stop(context.Context) error {
	m.stopped = true
	return m.stopErr
}
func (m *mockComponent) Health(context.Context) component.Health { return m.health }

type describedComponent struct {
	mockComponent
	desc   component.Description
	routes []component.Route
}

func (m *describedComponent) Describe() component.Description { return m.desc }
func (m *describedComponent) Routes() []component.Route       { return m.routes }

func healthy(name string) *mockComponent {
	return &mockComponent{name: name, health: component.Health{Name: name, Status: component.StatusHealthy}}
}

func newTestApp(t *testing.T, opts ...Option) *App[*testConfig] {
	t.Helper()
	cfg := &testConfig{ServiceConfig: config.ServiceConfig{Name: "test", Version: "1.0"}}
	opts = append([]Option{WithLogger(logger.NewNop()), WithSummaryOutput(nil)}, opts...)
	app, err := NewApp(cfg, opts...)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	return app
}

func TestNewApp(t *testing.T) {
	cfg := &testConfig{ServiceConfig: config.ServiceConfig{Name: "svc", Version: "2.0"}}
	app, err := NewApp(cfg)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	if app.Name != "svc" || app.Version != "2.0" {
		t.Errorf("name=%q version=%q", app.Name, app.Version)
	}
	if app.Logger == nil || app.Components == nil || app.Summary == nil {
		t.Error("expected logger, registry and summary")
	}
	if cfg.Environment != config.EnvDevelopment {
		t.Errorf("defaults not applied: environment=%q", cfg.Environment)
	}
	if app.gracefulTimeout != defaultGracefulTimeout {
		t.Errorf("graceful timeout = %v", app.gracefulTimeout)
	}
}

func TestNewAppValidation(t *testing.T) {
	cfg := &testConfig{ServiceConfig: config.ServiceConfig{Name: "svc", Environment: "moon"}}
	if _, err := NewApp(cfg, WithLogger(logger.NewNop())); err == nil {
		t.Error("expected validation error")
	}
}

func TestWithGracefulTimeout(t *testing.T) {
	app := newTestApp(t, WithGracefulTimeout(3*time.Second))
	if app.gracefulTimeout != 3*time.Second {
		t.Errorf("graceful timeout = %v", app.gracefulTimeout)
	}
}

func TestRunTaskLifecycle(t *testing.T) {
	app := newTestApp(t)
	comp := healthy("db")
	if err := app.RegisterComponent(comp); err != nil {
		t.Fatalf("register: %v", err)
	}

	var order []string
	record := func(s string) Hook {
		return func(context.Context) error {
			order = append(order, s)
			return nil
		}
	}
	app.OnStart(record("start"))
	app.OnConfigure(func(_ context.Context, a *App[*testConfig]) error {
		if a.Cfg.Name != "test" {
			t.Errorf("configure saw %q", a.Cfg.Name)
		}
		order = append(order, "configure")
		return nil
	})
	app.OnReady(record("ready"))
	app.OnStop(record("stop"))

	err := app.RunTask(t.Context(), func(context.Context) error {
		if !comp.started {
			t.Error("component not started before task")
		}
		order = append(order, "task")
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask: %v", err)
	}

	want := []string{"start", "configure", "ready", "task", "stop"}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if !comp.stopped {
		t.Error("component not stopped after task")
	}
}

func TestRunTaskErrors(t *testing.T) {
	taskErr := errors.New("task failed")
	stopErr := errors.New("stop failed")

	t.Run("task error wins", func(t *testing.T) {
		app := newTestApp(t)
		c := healthy("c")
		c.stopErr = stopErr
		_ = app.RegisterComponent(c)
		err := app.RunTask(t.Context(), func(context.Context) error { return taskErr })
		if !errors.Is(err, taskErr) {
			t.Errorf("err = %v, want task error", err)
		}
	})

	t.Run("stop error surfaces", func(t *testing.T) {
		app := newTestApp(t)
		c := healthy("c")
		c.stopErr = stopErr
		_ = app.RegisterComponent(c)
		err := app.RunTask(t.Context(), func(context.Context) error { return nil })
		if !errors.Is(err, stopErr) {
			t.Errorf("err = %v, want stop error", err)
		}
	})

	t.Run("start failure stops started components", func(t *testing.T) {
		app := newTestApp(t)
		first := healthy("first")
		broken := healthy("broken")
		broken.startErr = errors.New("no port")
		_ = app.RegisterComponent(first)
		_ = app.RegisterComponent(broken)

		ran := false
		err := app.RunTask(t.Context(), func(context.Context) error {
			ran = true
			return nil
		})
		if err == nil || ran {
			t.Fatalf("err=%v ran=%v", err, ran)
		}
		if !first.stopped {
			t.Error("started component left running")
		}
	})

	t.Run("hook failure skips task", func(t *testing.T) {
		app := newTestApp(t)
		app.OnReady(func(context.Context) error { return errors.New("not ready") })
		ran := false
		err := app.RunTask(t.Context(), func(context.Context) error {
			ran = true
			return nil
		})
		if err == nil || !strings.Contains(err.Error(), "onReady") || ran {
			t.Errorf("err=%v ran=%v", err, ran)
		}
	})
}

func TestRunTaskCancellation(t *testing.T) {
	app := newTestApp(t)
	ctx, cancel := context.WithCancel(t.Context())
	err := app.RunTask(ctx, func(taskCtx context.Context) error {
		cancel()
		<-taskCtx.Done()
		return taskCtx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestReadyCheck(t *testing.T) {
	tests := []struct {
		name    string
		status  component.HealthStatus
		wantErr bool
	}{
		{"healthy", component.StatusHealthy, false},
		{"degraded", component.StatusDegraded, true},
		{"unhealthy", component.StatusUnhealthy, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)
			_ = app.RegisterComponent(&mockComponent{
				name:   "c",
				health: component.Health{Name: "c", Status: tt.status, Message: "msg"},
			})
			err := app.ReadyCheck(t.Context())
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	if err := newTestApp(t).ReadyCheck(t.Context()); err != nil {
		t.Errorf("empty registry: %v", err)
	}
}

func TestSummaryWrite(t *testing.T) {
	reg := component.NewRegistry()
	_ = reg.Register(&describedComponent{
		mockComponent: *healthy("diagnostics"),
		desc:          component.Description{Type: "server", Details: "127.0.0.1:9090"},
		routes: []component.Route{
			{Method: "GET", Path: "/graph", Handler: "handleGraph"},
			{Method: "GET", Path: "/status", Handler: "handleStatus"},
		},
	})
	_ = reg.Register(&mockComponent{
		name:   "telemetry",
		health: component.Health{Status: component.StatusUnhealthy, Message: "providers not running"},
	})

	s := NewSummary("framegraph", "")
	s.SetStartupDuration(1500 * time.Millisecond)
	s.Note("pipeline %s", "motion")

	var buf bytes.Buffer
	s.Write(t.Context(), &buf, reg)
	out := buf.String()

	for _, want := range []string{
		"framegraph dev started in 1.50s",
		"   pipeline motion",
		"├── ✅ diagnostics [server] 127.0.0.1:9090",
		"└── ❌ telemetry (providers not running)",
		"Routes (2)",
		"├── GET     /graph → handleGraph",
		"└── GET     /status → handleStatus",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	NewSummary("x", "1").Write(t.Context(), &buf, nil)
	if !strings.Contains(buf.String(), "No components registered") {
		t.Errorf("unexpected summary:\n%s", buf.String())
	}
}
