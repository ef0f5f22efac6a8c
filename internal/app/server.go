package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vk/curriculum/internal/api"
	"github.com/vk/curriculum/internal/ctxlog"
	"github.com/vk/curriculum/internal/notify"
)

// serve runs the HTTP API until ctx is cancelled, then shuts down gracefully.
func (a *App) serve(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Configuring HTTP server.")

	if a.config.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	opts := []api.Option{api.WithLimits(a.config.Limits)}
	if a.saver != nil {
		opts = append(opts, api.WithSaver(a.saver))
	} else {
		logger.Warn("No data directory configured; edits will not be saved.")
	}
	if a.config.NotifyURL != "" {
		n, err := notify.Dial(ctx, notify.Options{URL: a.config.NotifyURL})
		if err != nil {
			logger.Warn("Notification hub unavailable; edits will not be announced.", "error", err)
		} else {
			defer n.Close()
			opts = append(opts, api.WithNotifier(n))
		}
	}
	srv := api.New(ctx, a.store, a.model, opts...)

	addr := fmt.Sprintf(":%d", a.config.HTTPPort)
	a.httpServer = &http.Server{
		Addr:              addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", "address", fmt.Sprintf("http://localhost%s", addr))
		// ListenAndServe returns ErrServerClosed on graceful shutdown.
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	return a.closeServer()
}

func (a *App) closeServer() error {
	logger := a.logger
	logger.Debug("Closing HTTP server...")

	if a.httpServer == nil {
		logger.Debug("HTTP server was not running.")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("Shutting down HTTP server...")
	if err := a.httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
		return err
	}

	logger.Debug("HTTP server shut down gracefully.")
	return nil
}
