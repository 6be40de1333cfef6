package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/specialistvlad/reactbake/internal/app"
	"github.com/specialistvlad/reactbake/internal/cli"
	"github.com/specialistvlad/reactbake/internal/config"
	"github.com/specialistvlad/reactbake/internal/hcl"
)

// newLoader builds the scene loader handed to the app.
var newLoader = func() config.Loader { return hcl.NewLoader() }

// main is the entrypoint for the reactbake application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Stderr, os.Args[1:], os.Environ()); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error
// handling. The report goes to outW and logs to logW.
func run(outW, logW io.Writer, args, environ []string) (err error) {
	appConfig, shouldExit, err := cli.Parse(args, outW, environ)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reactbakeApp := app.NewApp(ctx, outW, logW, appConfig, newLoader())
	return reactbakeApp.Run(ctx)
}
