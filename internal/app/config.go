package app

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
	"github.com/specialistvlad/reactbake/internal/meshdelete"
	"github.com/specialistvlad/reactbake/internal/solver"
)

// EnvPrefix prefixes every environment variable the application reads.
const EnvPrefix = "REACTBAKE_"

// Config holds all the necessary configuration for an App instance to run.
// It is layered, lowest priority first: DefaultConfig, the TOML file named by
// ConfigFile, REACTBAKE_* environment variables, then command-line flags.
type Config struct {
	ScenePath  string `toml:"scene" env:"SCENE"` // hcl file or directory
	ConfigFile string `toml:"-" env:"CONFIG"`

	LogFormat       string `toml:"log_format" env:"LOG_FORMAT"`
	LogLevel        string `toml:"log_level" env:"LOG_LEVEL"`
	OutputFormat    string `toml:"output_format" env:"OUTPUT_FORMAT"`
	MaxRelaxation   int    `toml:"max_relaxation" env:"MAX_RELAXATION"`
	Workers         int    `toml:"workers" env:"WORKERS"`
	Watch           bool   `toml:"watch" env:"WATCH"`
	HealthcheckPort int    `toml:"healthcheck_port" env:"HEALTHCHECK_PORT"`
}

// DefaultConfig returns the lowest configuration layer.
func DefaultConfig() Config {
	return Config{
		LogFormat:     "text",
		LogLevel:      "info",
		OutputFormat:  "yaml",
		MaxRelaxation: solver.DefaultMaxIterations,
		Workers:       meshdelete.DefaultWorkers,
	}
}

// LoadFile overlays the TOML file at path onto cfg. Keys missing from the
// file leave cfg untouched.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays REACTBAKE_* variables from environ onto cfg. Unset
// variables leave cfg untouched.
func ApplyEnv(cfg *Config, environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix, Environment: environ}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}
	return nil
}

// NewConfig validates cfg and returns it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ScenePath == "" {
		return nil, errors.New("ScenePath is a required configuration field and cannot be empty")
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}
	switch cfg.OutputFormat {
	case "yaml", "json":
	default:
		return nil, fmt.Errorf("invalid output format %q: must be 'yaml' or 'json'", cfg.OutputFormat)
	}
	if cfg.MaxRelaxation < 1 {
		return nil, fmt.Errorf("max relaxation must be at least 1, got %d", cfg.MaxRelaxation)
	}
	if cfg.Workers < 1 {
		return nil, fmt.Errorf("workers must be at least 1, got %d", cfg.Workers)
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("invalid healthcheck port %d", cfg.HealthcheckPort)
	}
	return &cfg, nil
}
