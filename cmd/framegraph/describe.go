package main

import (
	"github.com/spf13/cobra"

	"github.com/kbukum/framegraph/dag"
	"github.com/kbukum/framegraph/logger"
)

func newDescribeCommand(g *globalOptions) *cobra.Command {
	var pipelineFile string
	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Print a pipeline's graph in Graphviz DOT form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(g)
			if err != nil {
				return err
			}
			if pipelineFile != "" {
				cfg.Pipeline.File = pipelineFile
			}

			def, loader, err := loadPipeline(cfg.Pipeline)
			if err != nil {
				return err
			}
			reg, err := newUnitRegistry()
			if err != nil {
				return err
			}
			graph, err := dag.ResolvePipeline(def, reg, loader, dag.WithLogger(logger.NewNop()))
			if err != nil {
				return err
			}
			return graph.WriteGraphDescription(cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&pipelineFile, "pipeline", "p", "", "pipeline definition file")
	return cmd
}
