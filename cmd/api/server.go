// cmd/api/server.go
// HTTP server lifecycle: listen, then drain in-flight requests once the
// process is asked to stop.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// shutdownGrace bounds how long in-flight requests may run after a stop signal.
const shutdownGrace = 20 * time.Second

// newServer returns the configured http.Server without starting it.
func (app *applicationDependencies) newServer() *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", app.config.port),
		Handler:           app.routes(),
		IdleTimeout:       time.Minute,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		ErrorLog:          slog.NewLogLogger(app.logger.Handler(), slog.LevelError),
	}
}

// serve blocks until SIGINT or SIGTERM, then shuts the server down gracefully.
func (app *applicationDependencies) serve() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.run(ctx, app.newServer())
}

// run serves on srv until ctx is cancelled or the listener fails.
func (app *applicationDependencies) run(ctx context.Context, srv *http.Server) error {
	listenErr := make(chan error, 1)
	go func() {
		app.logger.Info("starting server",
			slog.String("address", srv.Addr),
			slog.String("environment", app.config.environment),
			slog.String("version", appVersion),
		)
		listenErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-listenErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	app.logger.Info("shutting down server", slog.String("address", srv.Addr))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: graceful shutdown failed: %w", err)
	}
	// ListenAndServe returns ErrServerClosed once Shutdown has been called.
	if err := <-listenErr; !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	app.logger.Info("server stopped", slog.String("address", srv.Addr))
	return nil
}
