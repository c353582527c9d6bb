package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"
)

const shutdownTimeout = 10 * time.Second

// newHTTPServer builds the http.Server for router using the configured port and timeouts.
func (app *application) newHTTPServer(router http.Handler) *http.Server {
	sc := app.config.Server
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", sc.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(sc.ReadTimeoutSeconds) * time.Second,
		ReadHeaderTimeout: time.Duration(sc.ReadTimeoutSeconds) * time.Second,
		WriteTimeout:      time.Duration(sc.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:       2 * time.Duration(sc.WriteTimeoutSeconds) * time.Second,
	}
}

// startHTTPServer serves until SIGINT/SIGTERM or ctx is cancelled, then
// drains in-flight requests and releases application resources.
func (app *application) startHTTPServer(ctx context.Context, router http.Handler) error {
	server := app.newHTTPServer(router)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		app.logger.Info("Starting server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case err := <-serveErr:
		if err != nil {
			app.logger.Error("Server failed", "error", err)
			runErr = fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
		app.logger.Info("Shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("Server shutdown failed", "error", err)
		if runErr == nil {
			runErr = fmt.Errorf("server shutdown failed: %w", err)
		}
	}

	app.cleanup()

	app.logger.Info("Server shutdown completed")
	return runErr
}
