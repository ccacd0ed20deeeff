package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const serviceName = "framegraph"

// globalOptions are shared by every subcommand.
type globalOptions struct {
	configFile string
	envFile    string
}

func newRootCommand() *cobra.Command {
	var g globalOptions

	root := &cobra.Command{
		Use:   serviceName,
		Short: "Run dataflow pipelines of frame processing units",
		Long: `framegraph builds a dependency graph of processing units from a YAML
pipeline definition and executes it cycle by cycle until a cycle fails.

Configuration is read from config.yml, .env and FRAMEGRAPH_* environment
variables. Flags override both.`,
		SilenceUsage: true,
	}
	bindGlobalFlags(root.PersistentFlags(), &g)

	root.AddCommand(
		newRunCommand(&g),
		newDescribeCommand(&g),
		newVersionCommand(),
	)
	return root
}

func bindGlobalFlags(flags *pflag.FlagSet, g *globalOptions) {
	flags.StringVar(&g.configFile, "config", "", "path to the config file (default: discovered config.yml)")
	flags.StringVar(&g.envFile, "env-file", "", "path to a .env file (default: discovered .env)")
}
