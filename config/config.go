package config

import (
	"fmt"
	"time"

	"github.com/kbukum/framegraph/observability"
	"github.com/kbukum/framegraph/resilience"
	"github.com/kbukum/framegraph/validation"
)

// Config is the full framegraph process configuration.
type Config struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Engine      EngineConfig         `yaml:"engine" mapstructure:"engine"`
	Telemetry   observability.Config `yaml:"telemetry" mapstructure:"telemetry"`
	Diagnostics DiagnosticsConfig    `yaml:"diagnostics" mapstructure:"diagnostics"`
	Pipeline    PipelineConfig       `yaml:"pipeline" mapstructure:"pipeline"`
}

// EngineConfig tunes the execution engine.
type EngineConfig struct {
	// DataEdgeCheck verifies in debug mode that data-only edges never feed a
	// node scheduled before its source.
	DataEdgeCheck bool `yaml:"data_edge_check" mapstructure:"data_edge_check"`
	// FailureMemory configures per-node failure breakers. Zero disables them.
	FailureMemory resilience.BreakerConfig `yaml:"failure_memory" mapstructure:"failure_memory"`
	// MaxCycles bounds Run. Zero means until a cycle fails or Run is cancelled.
	MaxCycles int `yaml:"max_cycles" mapstructure:"max_cycles" validate:"gte=0"`
}

// DiagnosticsConfig controls graph and timing output.
type DiagnosticsConfig struct {
	// GraphFile receives the DOT graph description after Build, if set.
	GraphFile string `yaml:"graph_file" mapstructure:"graph_file"`
	// TimingFile receives Dart timing measurements on exit, if set.
	TimingFile string       `yaml:"timing_file" mapstructure:"timing_file"`
	Server     ServerConfig `yaml:"server" mapstructure:"server"`
}

// ServerConfig configures the diagnostics HTTP server.
type ServerConfig struct {
	Enabled         bool          `yaml:"enabled" mapstructure:"enabled"`
	Host            string        `yaml:"host" mapstructure:"host"`
	Port            int           `yaml:"port" mapstructure:"port" validate:"gte=0,lte=65535"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// PipelineConfig locates the pipeline definition.
type PipelineConfig struct {
	// File is the pipeline YAML file.
	File string `yaml:"file" mapstructure:"file"`
	// SearchDirs are extra directories searched for included pipelines.
	SearchDirs []string `yaml:"search_dirs" mapstructure:"search_dirs"`
}

// ApplyDefaults fills unset values.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "framegraph"
	}
	c.ServiceConfig.ApplyDefaults()
	c.Telemetry.ApplyDefaults()
	if c.Diagnostics.Server.Host == "" {
		c.Diagnostics.Server.Host = "127.0.0.1"
	}
	if c.Diagnostics.Server.Port == 0 {
		c.Diagnostics.Server.Port = 9090
	}
	if c.Diagnostics.Server.ShutdownTimeout == 0 {
		c.Diagnostics.Server.ShutdownTimeout = 5 * time.Second
	}
}

// Validate checks the whole configuration.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}
