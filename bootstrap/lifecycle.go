package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/framegraph/logger"
	"github.com/kbukum/framegraph/version"
)

// Hook is a lifecycle callback.
type Hook func(ctx context.Context) error

type stage string

const (
	stageStart stage = "onStart"
	stageReady stage = "onReady"
	stageStop  stage = "onStop"
)

// OnStart hooks run once every component has started.
func (a *App[C]) OnStart(hooks ...Hook) { a.hooks[stageStart] = append(a.hooks[stageStart], hooks...) }

// OnReady hooks run after the ready check, right before the task.
func (a *App[C]) OnReady(hooks ...Hook) { a.hooks[stageReady] = append(a.hooks[stageReady], hooks...) }

// OnStop hooks run before components stop.
func (a *App[C]) OnStop(hooks ...Hook) { a.hooks[stageStop] = append(a.hooks[stageStop], hooks...) }

func (a *App[C]) runStage(ctx context.Context, s stage) error {
	for i, h := range a.hooks[s] {
		if err := h(ctx); err != nil {
			return fmt.Errorf("%s hook %d: %w", s, i, err)
		}
	}
	return nil
}

// RunTask starts the app, runs task and stops the app once task returns.
// SIGINT and SIGTERM cancel the task's context. Whatever started before a
// startup failure is still stopped. A task error takes precedence over a
// stop error.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		return errors.Join(err, a.stop())
	}

	taskCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	context.AfterFunc(taskCtx, func() {
		if ctx.Err() == nil {
			a.Logger.Info("Received signal, canceling task")
		}
	})

	err := task(taskCtx)
	if stopErr := a.stop(); err == nil {
		err = stopErr
	}
	return err
}

func (a *App[C]) startup(ctx context.Context) error {
	began := time.Now()
	fields := version.Get().Fields()
	fields["name"] = a.Name
	if a.Version != "" {
		fields["version"] = a.Version
	}
	a.Logger.Info("Starting application", fields)

	steps := []struct {
		name string
		run  func(context.Context) error
	}{
		{"start components", a.Components.StartAll},
		{"onStart hooks", func(ctx context.Context) error { return a.runStage(ctx, stageStart) }},
		{"configure", a.configure},
		{"ready check", a.warnUnready},
		{"onReady hooks", func(ctx context.Context) error { return a.runStage(ctx, stageReady) }},
	}
	for _, step := range steps {
		if err := step.run(ctx); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}

	a.Summary.SetStartupDuration(time.Since(began))
	a.Summary.Write(ctx, a.summaryOut, a.Components)
	return nil
}

func (a *App[C]) configure(ctx context.Context) error {
	for _, fn := range a.configurers {
		if err := fn(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// warnUnready logs an unhealthy registry but never fails startup.
func (a *App[C]) warnUnready(ctx context.Context) error {
	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("Ready check reported issues", logger.ErrorFields("ready_check", err))
	}
	return nil
}

// stop runs stop hooks and then stops components, both bounded by the
// graceful timeout.
func (a *App[C]) stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	hookErr := a.runStage(ctx, stageStop)
	if hookErr != nil {
		a.Logger.Error("Stop hook failed", logger.ErrorFields("stop_hooks", hookErr))
	}
	compErr := a.Components.StopAll(ctx)
	if compErr != nil {
		a.Logger.Error("Shutdown completed with errors", logger.ErrorFields("stop_components", compErr))
	}
	a.Logger.Debug("Application shutdown complete")
	return errors.Join(hookErr, compErr)
}
