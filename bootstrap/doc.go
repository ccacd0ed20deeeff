// Package bootstrap runs a framegraph process through a uniform lifecycle:
// start components, run hooks, execute a finite task, then shut down.
//
//	app, err := bootstrap.NewApp(cfg)
//	app.RegisterComponent(telemetry)
//	err = app.RunTask(ctx, func(ctx context.Context) error {
//	    return runPipeline(ctx)
//	})
//
// SIGINT and SIGTERM cancel the task's context. Components are stopped in
// reverse registration order once the task returns, including after a
// failed startup.
package bootstrap
