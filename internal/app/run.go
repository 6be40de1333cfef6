package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/reactbake/internal/ctxlog"
)

// Run compiles the scene once and writes the report. In watch mode it then
// keeps recompiling on file changes until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if !a.config.Watch {
		report, err := a.Compile(ctx)
		if err != nil {
			return err
		}
		return a.writeReport(report)
	}

	a.healthCheckServer()
	defer a.closeHealthCheckServer()

	// A broken scene on startup is reported and watched like any later edit.
	if report, err := a.Compile(ctx); err != nil {
		a.logger.Error("Initial compilation failed; waiting for changes.", "error", err)
	} else if err := a.writeReport(report); err != nil {
		return err
	}

	if err := a.watch(ctx); err != nil {
		return fmt.Errorf("watch mode failed: %w", err)
	}
	a.logger.Debug("App.Run method finished.")
	return nil
}

func (a *App) writeReport(r *Report) error {
	if err := r.Write(a.outW, a.config.OutputFormat); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
