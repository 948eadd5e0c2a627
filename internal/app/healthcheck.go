package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/specialistvlad/gridgraph/internal/ctxlog"
)

// healthHandler reports liveness and the number of completed cycles.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK\ncycles: %d\n", a.Cycles())
}

// startHealthcheckServer initializes and runs the health check HTTP server.
func (a *App) startHealthcheckServer(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	if a.config.HealthcheckPort <= 0 {
		logger.Debug("Health check server not started: disabled.")
		return
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)
	addr := fmt.Sprintf(":%d", a.config.HealthcheckPort)
	srv := &http.Server{Addr: addr, Handler: mux}
	a.httpServer = srv

	go func() {
		logger.Info("🩺 Health check server starting", "address", fmt.Sprintf("http://localhost%s/health", addr))
		// ListenAndServe returns ErrServerClosed on graceful shutdown.
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Health check server failed unexpectedly.", "error", err)
		}
	}()
}

func (a *App) closeHealthcheckServer(ctx context.Context) {
	if a.httpServer == nil {
		return
	}
	logger := ctxlog.FromContext(ctx)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	logger.Debug("Shutting down health check server.")
	if err := a.httpServer.Shutdown(ctx); err != nil {
		logger.Error("Health check server shutdown failed.", "error", err)
	}
	a.httpServer = nil
}
