package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/specialistvlad/reactbake/internal/compiler"
	"github.com/specialistvlad/reactbake/internal/config"
	"github.com/specialistvlad/reactbake/internal/ctxlog"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	ctx      context.Context
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	loader   config.Loader
	compiler *compiler.Compiler
	metrics  *metrics

	httpServer *http.Server

	mu   sync.Mutex
	last *Report
}

// NewApp is the constructor for the main application. The compiled report is
// written to outW and logs to logW; the two may be the same writer.
func NewApp(ctx context.Context, outW, logW io.Writer, cfg *Config, loader config.Loader) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Logger configured successfully.")

	return &App{
		ctx:      ctx,
		outW:     outW,
		logger:   logger,
		config:   cfg,
		loader:   loader,
		compiler: compiler.New(compiler.Options{MaxRelaxation: cfg.MaxRelaxation, Workers: cfg.Workers}),
		metrics:  newMetrics(),
	}
}

// Last returns the most recent successful report, or nil.
func (a *App) Last() *Report {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last
}

func (a *App) setLast(r *Report) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.last = r
}
