package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "github.com/kbukum/framegraph/errors"
	"github.com/kbukum/framegraph/logger"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FRAMEGRAPH"

// FileSystem abstracts file lookups so resolution can be tested.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem implements FileSystem on the host filesystem.
type RealFileSystem struct{}

func (RealFileSystem) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// Resolver finds config and env files for a service.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles contains the resolved config and env file paths.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles returns explicit paths when given, otherwise the first
// candidate that exists.
func (r *Resolver) ResolveFiles(serviceName string, opts LoaderConfig) ResolvedFiles {
	resolved := ResolvedFiles{
		ConfigFile: opts.ConfigFile,
		EnvFile:    opts.EnvFile,
	}
	if resolved.ConfigFile == "" {
		resolved.ConfigFile = r.first(configCandidates(serviceName))
	}
	if resolved.EnvFile == "" {
		resolved.EnvFile = r.first(envCandidates(serviceName))
	}
	return resolved
}

func (r *Resolver) first(paths []string) string {
	for _, p := range paths {
		if r.FileSystem.Exists(p) {
			return p
		}
	}
	return ""
}

func configCandidates(serviceName string) []string {
	paths := []string{
		fmt.Sprintf("%s.yml", serviceName),
		fmt.Sprintf("%s.yaml", serviceName),
		filepath.Join("config", serviceName+".yml"),
		filepath.Join("config", "config.yml"),
		filepath.Join("cmd", serviceName, "config.yml"),
		"config.yml",
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, "."+serviceName, "config.yml"))
	}
	return paths
}

func envCandidates(serviceName string) []string {
	return []string{
		".env." + serviceName,
		filepath.Join("config", ".env."+serviceName),
		".env",
	}
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string // explicit config file; must exist when set
	EnvFile    string // explicit .env file
	Defaults   map[string]any
}

// LoaderOption is a functional option for Load.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithDefaults registers extra default keys. Environment overrides only
// apply to keys viper knows about, so every key an operator may override
// needs a default or a config file entry.
func WithDefaults(defaults map[string]any) LoaderOption {
	return func(lc *LoaderConfig) {
		if lc.Defaults == nil {
			lc.Defaults = make(map[string]any, len(defaults))
		}
		for k, v := range defaults {
			lc.Defaults[k] = v
		}
	}
}

// Load reads configuration for serviceName into cfg. A missing explicit
// config file is an error; a missing discovered one is not.
func Load(serviceName string, cfg any, opts ...LoaderOption) error {
	lc := LoaderConfig{Defaults: Defaults()}
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = RealFileSystem{}
	}

	if lc.ConfigFile != "" && !lc.FileSystem.Exists(lc.ConfigFile) {
		return apperrors.New(apperrors.ErrCodeConfig, "config file not found").
			WithDetail("path", lc.ConfigFile)
	}

	resolver := &Resolver{FileSystem: lc.FileSystem}
	files := resolver.ResolveFiles(serviceName, lc)
	return load(cfg, files, lc)
}

func load(cfg any, files ResolvedFiles, lc LoaderConfig) error {
	log := logger.WithComponent("config")
	v := viper.New()

	for k, val := range lc.Defaults {
		v.SetDefault(k, val)
	}

	if files.ConfigFile != "" {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return apperrors.New(apperrors.ErrCodeConfig, "failed to read config file").
				WithDetail("path", files.ConfigFile).
				WithCause(err)
		}
		log.Debug("config file loaded", logger.Fields("path", files.ConfigFile))
	}

	// .env values land in the process environment, below real variables.
	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			log.Warn("failed to load env file", logger.ErrorFields("load_env", err, "path", files.EnvFile))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.Unmarshal(cfg); err != nil {
		return apperrors.New(apperrors.ErrCodeConfig, "failed to decode configuration").WithCause(err)
	}
	return nil
}

// Defaults returns the default value for every known key.
func Defaults() map[string]any {
	return map[string]any{
		"name":        "framegraph",
		"environment": EnvDevelopment,
		"version":     "",
		"debug":       false,

		"logging.level":     "info",
		"logging.format":    "console",
		"logging.output":    "stderr",
		"logging.no_color":  false,
		"logging.timestamp": true,
		"logging.caller":    false,

		"engine.data_edge_check":                false,
		"engine.failure_memory.max_failures":    0,
		"engine.failure_memory.cooldown_cycles": 0,
		"engine.max_cycles":                     0,

		"telemetry.enabled":     false,
		"telemetry.endpoint":    "localhost:4318",
		"telemetry.insecure":    true,
		"telemetry.sample_rate": 1.0,
		"telemetry.interval":    "15s",

		"diagnostics.graph_file":              "",
		"diagnostics.timing_file":             "",
		"diagnostics.server.enabled":          false,
		"diagnostics.server.host":             "127.0.0.1",
		"diagnostics.server.port":             9090,
		"diagnostics.server.shutdown_timeout": "5s",

		"pipeline.file":        "",
		"pipeline.search_dirs": []string{},
	}
}
