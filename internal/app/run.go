package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/gridgraph/internal/ctxlog"
	"github.com/specialistvlad/gridgraph/internal/failure"
)

// Run drives the computation graph through the configured number of update
// cycles. Each cycle starts the root computations and returns once every
// triggered computation has finished.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	a.startHealthcheckServer(ctx)
	defer a.closeHealthcheckServer(ctx)

	if len(a.tasks) == 0 {
		a.logger.Warn("No computations found in graph, execution not required.")
		return nil
	}

	a.logger.Info("🚀 Starting computation cycles...", "cycles", a.config.Cycles)
	for i := 1; i <= a.config.Cycles; i++ {
		if err := ctx.Err(); err != nil {
			return failure.Interrupted("app.Run", err)
		}
		if err := a.updater.RunCycle(ctx); err != nil {
			return fmt.Errorf("cycle %d failed: %w", i, err)
		}
		a.cycles.Add(1)
		a.logger.Info("Cycle finished.", "cycle", i)
	}
	a.logger.Info("🏁 Execution finished.")

	a.logger.Debug("App.Run method finished.")
	return nil
}
