package app

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const defaultShutdownTimeout = 10 * time.Second

// Start serves HTTP on the configured address. The returned channel closes
// once a termination signal arrives; the caller then runs Stop.
func (a *App) Start() <-chan struct{} {
	sigCtx, stop := signal.NotifyContext(a.ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	done := make(chan struct{})

	go func() {
		slog.Info("http server listening", "address", a.httpServer.Addr)
		a.ready.Store(true)

		err := a.httpServer.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return
		}
		slog.Error("failed to listen and serve http server", "error", err)
		os.Exit(1)
	}()

	go func() {
		defer stop()
		<-sigCtx.Done()

		a.ready.Store(false)
		slog.Info("termination signal received, shutting down")
		close(done)
	}()

	return done
}

// Serve runs the HTTP server on l. Tests use it with an ephemeral port.
func (a *App) Serve(l net.Listener) <-chan error {
	errChan := make(chan error, 1)
	a.ready.Store(true)

	go func() {
		defer close(errChan)
		errChan <- a.httpServer.Serve(l)
	}()

	return errChan
}

// ShutdownTimeout is how long main lets Stop run, from
// app.server.shutdown_timeout_seconds.
func (a *App) ShutdownTimeout() time.Duration {
	if d := a.config.GetSecond("app.server.shutdown_timeout_seconds"); d > 0 {
		return d
	}
	return defaultShutdownTimeout
}

// Stop drains HTTP traffic, waits for background tasks such as event
// publishing, then releases resources in registration order.
func (a *App) Stop(ctx context.Context) {
	a.ready.Store(false)
	a.cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to shutdown http server", "error", err)
	}

	stats := a.goroutine.Stats()
	slog.InfoContext(ctx, "waiting for background tasks", "running", stats.Running, "dropped", stats.Dropped)
	if err := a.goroutine.Wait(); err != nil {
		slog.ErrorContext(ctx, "background tasks finished with errors", "error", err)
	}

	for _, c := range a.closers {
		if err := c.fn(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resource", "name", c.name, "error", err)
		}
	}
	slog.InfoContext(ctx, "application stopped")
}
