package app

import (
	"context"
	"fmt"
	"time"

	"github.com/specialistvlad/reactbake/internal/animledger"
	"github.com/specialistvlad/reactbake/internal/ctxlog"
	"github.com/specialistvlad/reactbake/internal/scene"
)

// Compile loads the scene files, builds the scene and compiles it. The scene
// is rebuilt from disk on every call.
func (a *App) Compile(ctx context.Context) (*Report, error) {
	logger := ctxlog.FromContext(ctx)
	start := time.Now()

	report, err := a.compile(ctx)
	a.metrics.observe(report, err, time.Since(start))
	if err != nil {
		return nil, err
	}
	a.setLast(report)

	for _, w := range report.Warnings {
		logger.Warn("Compilation warning.", "warning", w)
	}
	return report, nil
}

func (a *App) compile(ctx context.Context) (*Report, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading scene...", "scene_path", a.config.ScenePath)

	model, err := a.loader.Load(ctx, a.config.ScenePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load scene: %w", err)
	}

	s, err := scene.Build(ctx, model)
	if err != nil {
		return nil, fmt.Errorf("failed to build scene: %w", err)
	}
	logger.Info("Scene loaded successfully.", "avatar", s.Name, "nodes", len(s.Nodes()))

	ledger, err := animledger.FromModel(ctx, model)
	if err != nil {
		return nil, fmt.Errorf("failed to load animation ledger: %w", err)
	}

	res, err := a.compiler.Compile(ctx, s, ledger)
	if err != nil {
		return nil, fmt.Errorf("compilation failed: %w", err)
	}
	return NewReport(s.Name, res), nil
}
