package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/specialistvlad/gridgraph/internal/config"
	"github.com/specialistvlad/gridgraph/internal/ctxlog"
	"github.com/specialistvlad/gridgraph/internal/policy"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
	model  *config.Model

	hierarchy *policy.Hierarchy
	updater   *taskUpdater
	tasks     map[string]*Task

	cycles     atomic.Int64
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger and computation
// graph.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, cfg.ConfigPath)
	if err != nil {
		// A failure to load config is a fatal startup error.
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Configuration loaded and translated into unified model.")

	a := &App{
		outW:   outW,
		logger: logger,
		config: cfg,
		model:  model,
	}
	if err := a.build(ctx); err != nil {
		panic(fmt.Errorf("failed to build computation graph: %w", err))
	}
	return a
}

// Updater returns the updater that owns the computation graph.
func (a *App) Updater() *taskUpdater { return a.updater }

// Task returns the task of the named computation, or nil.
func (a *App) Task(name string) *Task { return a.tasks[name] }

// Cycles returns the number of completed update cycles.
func (a *App) Cycles() int64 { return a.cycles.Load() }
