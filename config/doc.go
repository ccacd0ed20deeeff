// Package config loads framegraph configuration.
//
// Values come from, in increasing precedence: built-in defaults, a YAML
// config file, a .env file, and FRAMEGRAPH_-prefixed environment variables
// whose underscores map to nested keys:
//
//	FRAMEGRAPH_ENGINE_MAX_CYCLES=100   -> engine.max_cycles
//	FRAMEGRAPH_LOGGING_LEVEL=debug     -> logging.level
//
// Usage:
//
//	var cfg config.Config
//	if err := config.Load("framegraph", &cfg, config.WithConfigFile(path)); err != nil {
//		return err
//	}
package config
