package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/specialistvlad/reactbake/internal/app"
	"github.com/spf13/pflag"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments on top of the config file and the
// REACTBAKE_* variables in environ. It returns a populated Config, a boolean
// indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer, environ []string) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	defaults := app.DefaultConfig()

	flagSet := pflag.NewFlagSet("reactbake", pflag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.SortFlags = false

	flagSet.Usage = func() {
		fmt.Fprint(output, `
reactbake - Compiles reactive avatar property rules into animator layers.

Usage:
  reactbake [options] [SCENE_PATH]

Arguments:
  SCENE_PATH
    Path to a single .hcl file or a directory containing .hcl files.

Options:
`)
		flagSet.PrintDefaults()
		fmt.Fprintf(output, "\nEvery option can also be set with a %s<NAME> environment variable\nor in the TOML file named by --config.\n", app.EnvPrefix)
	}

	sceneFlag := flagSet.StringP("scene", "s", "", "Path to the scene file or directory.")
	configFlag := flagSet.StringP("config", "c", "", "Path to a TOML configuration file.")
	outputFlag := flagSet.StringP("output", "o", defaults.OutputFormat, "Report format. Options: 'yaml' or 'json'.")
	logFormatFlag := flagSet.String("log-format", defaults.LogFormat, "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", defaults.LogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	relaxFlag := flagSet.Int("max-relaxation", defaults.MaxRelaxation, "Upper bound on initial-state relaxation passes.")
	workersFlag := flagSet.Int("workers", defaults.Workers, "Number of concurrent workers for mesh cloning.")
	watchFlag := flagSet.BoolP("watch", "w", false, "Recompile whenever a scene file changes.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server in watch mode. 0 is disabled.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	envMap := env.ToMap(environ)
	cfg := defaults

	configPath := *configFlag
	if configPath == "" {
		configPath = envMap[app.EnvPrefix+"CONFIG"]
	}
	if configPath != "" {
		if err := app.LoadFile(configPath, &cfg); err != nil {
			return nil, false, &ExitError{Code: 2, Message: err.Error()}
		}
		cfg.ConfigFile = configPath
	}
	if err := app.ApplyEnv(&cfg, envMap); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	// Flags win over every other layer, but only when actually given.
	switch {
	case flagSet.Changed("scene"):
		cfg.ScenePath = *sceneFlag
	case flagSet.NArg() > 0:
		cfg.ScenePath = flagSet.Arg(0)
	}
	if flagSet.Changed("output") {
		cfg.OutputFormat = strings.ToLower(*outputFlag)
	}
	if flagSet.Changed("log-format") {
		cfg.LogFormat = strings.ToLower(*logFormatFlag)
	}
	if flagSet.Changed("log-level") {
		cfg.LogLevel = strings.ToLower(*logLevelFlag)
	}
	if flagSet.Changed("max-relaxation") {
		cfg.MaxRelaxation = *relaxFlag
	}
	if flagSet.Changed("workers") {
		cfg.Workers = *workersFlag
	}
	if flagSet.Changed("watch") {
		cfg.Watch = *watchFlag
	}
	if flagSet.Changed("healthcheck-port") {
		cfg.HealthcheckPort = *healthPortFlag
	}
	slog.Debug("Scene path determined.", "path", cfg.ScenePath)

	if cfg.ScenePath == "" {
		slog.Debug("No scene path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
