package main

import (
	"fmt"
	"path/filepath"

	"github.com/kbukum/framegraph/config"
	"github.com/kbukum/framegraph/dag"
	apperrors "github.com/kbukum/framegraph/errors"
	"github.com/kbukum/framegraph/units"
)

// loadConfig reads, defaults and validates the process configuration.
func loadConfig(g *globalOptions) (*config.Config, error) {
	var opts []config.LoaderOption
	if g.configFile != "" {
		opts = append(opts, config.WithConfigFile(g.configFile))
	}
	if g.envFile != "" {
		opts = append(opts, config.WithEnvFile(g.envFile))
	}

	cfg := &config.Config{}
	if err := config.Load(serviceName, cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadPipeline reads the pipeline file. Includes resolve against the file's
// own directory first, then the configured search directories.
func loadPipeline(pc config.PipelineConfig) (*dag.Pipeline, dag.PipelineLoader, error) {
	if pc.File == "" {
		return nil, nil, apperrors.InvalidInput("pipeline", "no pipeline file given; use --pipeline or pipeline.file")
	}
	def, err := dag.LoadPipelineFile(pc.File)
	if err != nil {
		return nil, nil, err
	}
	dirs := append([]string{filepath.Dir(pc.File)}, pc.SearchDirs...)
	return def, dag.NewFilePipelineLoader(dirs...), nil
}

// newUnitRegistry returns a registry holding every built-in unit.
func newUnitRegistry(opts ...units.RegisterOption) (*dag.Registry, error) {
	reg := dag.NewRegistry()
	if err := units.Register(reg, opts...); err != nil {
		return nil, fmt.Errorf("registering units: %w", err)
	}
	return reg, nil
}
