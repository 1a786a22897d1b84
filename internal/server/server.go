package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Serve listens on Config.Addr and serves until ctx is cancelled, then shuts
// down gracefully.
func (app *Application) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", app.Config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", app.Config.Addr, err)
	}
	return app.ServeListener(ctx, ln)
}

// ServeListener serves on ln until ctx is cancelled.
func (app *Application) ServeListener(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      app.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: app.Config.RequestTimeout + 10*time.Second,
	}
	shutdownErr := make(chan error, 1)

	go func() {
		<-ctx.Done()
		app.Logger.Info("shutting down server", "reason", context.Cause(ctx))

		timeout := app.Config.ShutdownTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		shutdownErr <- srv.Shutdown(shutdownCtx)
	}()

	app.Logger.Info("starting server", "addr", ln.Addr().String())
	app.Logger.Info("available endpoints",
		"health", "GET /",
		"poem", "POST /api/generate-poem",
		"analyze", "POST /api/palette/analyze",
		"chime", "POST /api/chime",
		"snapshots", "GET|PUT|DELETE /api/snapshots/{key}")

	err := srv.Serve(ln)
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	if err := <-shutdownErr; err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	app.Logger.Info("stopped server", "addr", ln.Addr().String())
	return nil
}
