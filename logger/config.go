package logger

import (
	"fmt"
	"slices"
	"strings"
)

// Output formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

var outputs = []string{"stdout", "stderr"}

// Config contains logging configuration.
type Config struct {
	Level     string `yaml:"level" mapstructure:"level"`
	Format    string `yaml:"format" mapstructure:"format"`
	Output    string `yaml:"output" mapstructure:"output"`
	NoColor   bool   `yaml:"no_color" mapstructure:"no_color"`
	Timestamp bool   `yaml:"timestamp" mapstructure:"timestamp"`
	Caller    bool   `yaml:"caller" mapstructure:"caller"`
}

// ApplyDefaults fills empty values. Timestamps are always on.
func (c *Config) ApplyDefaults() {
	c.Level = cmpOr(c.Level, "info")
	c.Format = cmpOr(c.Format, FormatConsole)
	c.Output = cmpOr(c.Output, "stderr")
	c.Timestamp = true
}

// Validate rejects unknown levels, formats and outputs. An empty output
// means stderr.
func (c *Config) Validate() error {
	if _, ok := levels[strings.ToLower(c.Level)]; !ok {
		return fmt.Errorf("logging.level %q is not one of trace, debug, info, warn, error, disabled", c.Level)
	}
	if c.Format != FormatJSON && c.Format != FormatConsole {
		return fmt.Errorf("logging.format %q is not one of %s, %s", c.Format, FormatJSON, FormatConsole)
	}
	if c.Output != "" && !slices.Contains(outputs, c.Output) {
		return fmt.Errorf("logging.output %q is not one of %v", c.Output, outputs)
	}
	return nil
}

func cmpOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
