package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/kbukum/framegraph/bootstrap"
	"github.com/kbukum/framegraph/config"
	"github.com/kbukum/framegraph/dag"
	"github.com/kbukum/framegraph/diagserver"
	"github.com/kbukum/framegraph/logger"
	"github.com/kbukum/framegraph/observability"
	"github.com/kbukum/framegraph/units"
)

// runOptions override config values when set.
type runOptions struct {
	pipelineFile    string
	graphFile       string
	timingFile      string
	maxCycles       int
	serve           bool
	printDetections bool
}

func newRunCommand(g *globalOptions) *cobra.Command {
	var o runOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a pipeline until a cycle fails",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(g)
			if err != nil {
				return err
			}
			o.apply(cmd.Flags(), cfg)

			app, err := bootstrap.NewApp(cfg, bootstrap.WithSummaryOutput(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			var out io.Writer
			if o.printDetections {
				out = cmd.OutOrStdout()
			}
			return runPipeline(cmd.Context(), app, o.serve, out)
		},
	}
	bindRunFlags(cmd.Flags(), &o)
	return cmd
}

func bindRunFlags(flags *pflag.FlagSet, o *runOptions) {
	flags.StringVarP(&o.pipelineFile, "pipeline", "p", "", "pipeline definition file (overrides pipeline.file)")
	flags.StringVar(&o.graphFile, "graph", "", "write the DOT graph description to this file")
	flags.StringVar(&o.timingFile, "timing", "", "write Dart timing measurements to this file on exit")
	flags.IntVar(&o.maxCycles, "max-cycles", 0, "stop after this many cycles (0: until a cycle fails)")
	flags.BoolVar(&o.serve, "serve", false, "serve diagnostics over HTTP and keep serving after the run")
	flags.BoolVar(&o.printDetections, "print-detections", false, "write detection lines to stdout instead of the log")
}

// apply copies explicitly set flags into cfg.
func (o *runOptions) apply(flags *pflag.FlagSet, cfg *config.Config) {
	if flags.Changed("pipeline") {
		cfg.Pipeline.File = o.pipelineFile
	}
	if flags.Changed("graph") {
		cfg.Diagnostics.GraphFile = o.graphFile
	}
	if flags.Changed("timing") {
		cfg.Diagnostics.TimingFile = o.timingFile
	}
	if flags.Changed("max-cycles") {
		cfg.Engine.MaxCycles = o.maxCycles
	}
	if o.serve {
		cfg.Diagnostics.Server.Enabled = true
	}
}

// pipelineRun is one resolved invocation of the run command.
type pipelineRun struct {
	cfg    *config.Config
	def    *dag.Pipeline
	loader dag.PipelineLoader
	units  *dag.Registry
	store  *diagserver.Store
	log    *logger.Logger
	wait   bool
}

// runPipeline registers the configured components on app and executes the
// pipeline as the app's task.
func runPipeline(ctx context.Context, app *bootstrap.App[*config.Config], wait bool, detections io.Writer) error {
	cfg := app.Cfg
	def, loader, err := loadPipeline(cfg.Pipeline)
	if err != nil {
		return err
	}
	var unitOpts []units.RegisterOption
	if detections != nil {
		unitOpts = append(unitOpts, units.WithOutput(detections))
	}
	reg, err := newUnitRegistry(unitOpts...)
	if err != nil {
		return err
	}

	r := &pipelineRun{
		cfg:    cfg,
		def:    def,
		loader: loader,
		units:  reg,
		log:    app.Logger.WithComponent("runner"),
		wait:   wait,
	}
	if cfg.Telemetry.Enabled {
		if err := app.RegisterComponent(observability.NewComponent(cfg.Name, cfg.Version, cfg.Environment, cfg.Telemetry)); err != nil {
			return err
		}
	}
	if cfg.Diagnostics.Server.Enabled {
		r.store = diagserver.NewStore()
		srv := diagserver.New(cfg.Diagnostics.Server, r.store, app.Components.HealthAll, r.log)
		if err := app.RegisterComponent(diagserver.NewComponent(srv)); err != nil {
			return err
		}
	}
	app.Summary.Note("pipeline %s (%s)", def.Name, cfg.Pipeline.File)

	return app.RunTask(ctx, r.execute)
}

// execute builds the graph, runs it to completion and writes diagnostics.
// With wait set and the diagnostics server enabled it keeps serving until
// ctx is done.
func (r *pipelineRun) execute(ctx context.Context) (err error) {
	metrics, err := observability.NewMetrics(observability.Meter("github.com/kbukum/framegraph"))
	if err != nil {
		return err
	}
	graph, err := dag.ResolvePipeline(r.def, r.units, r.loader,
		dag.WithLogger(logger.WithComponent("dag")),
		dag.WithDataEdgeCheck(r.cfg.Engine.DataEdgeCheck),
		dag.WithFailureMemory(r.cfg.Engine.FailureMemory),
		dag.WithMaxCycles(r.cfg.Engine.MaxCycles),
		dag.WithObserver(dag.NewLoggingObserver(r.log), dag.NewMetricsObserver(metrics, r.def.Name)),
	)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, closeUnits(graph)) }()

	graph.AddObserver(dag.NewTracingObserver(nil, graph))
	if r.store != nil {
		graph.AddObserver(r.store.Observer(graph))
		r.store.Publish(graph.Snapshot(), nil)
	}

	if file := r.cfg.Diagnostics.GraphFile; file != "" {
		if err := writeFile(file, graph.WriteGraphDescription); err != nil {
			return err
		}
	}
	if err := graph.Initialize(); err != nil {
		return err
	}

	stopWatch := context.AfterFunc(ctx, func() { graph.Cancel() })
	defer stopWatch()

	start := time.Now()
	succeeded, runErr := graph.Run(ctx)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}

	fields := logger.DurationFields("run", time.Since(start))
	fields[logger.FieldPipeline] = r.def.Name
	fields[logger.FieldCycle] = graph.Cycle()
	fields["succeeded"] = succeeded
	if v := graph.DataEdgeViolations(); v > 0 {
		fields["data_edge_violations"] = v
	}
	r.log.Info("Pipeline finished", fields)

	if file := r.cfg.Diagnostics.TimingFile; file != "" {
		if err := writeFile(file, graph.WriteTimingMeasurements); err != nil {
			return err
		}
	}

	if r.wait && r.store != nil && ctx.Err() == nil {
		r.log.Info("Serving diagnostics until interrupted")
		<-ctx.Done()
	}
	return nil
}

// writeFile creates path and fills it with write.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// closeUnits closes every unit holding resources.
func closeUnits(g *dag.Graph) error {
	var errs []error
	for _, n := range g.Nodes() {
		u, err := g.Unit(n.ID)
		if err != nil {
			continue
		}
		if c, ok := u.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("closing %s: %w", n.Name, err))
			}
		}
	}
	return errors.Join(errs...)
}
