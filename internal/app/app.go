package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/vk/curriculum/internal/catalog"
	"github.com/vk/curriculum/internal/config"
	"github.com/vk/curriculum/internal/ctxlog"
	"github.com/vk/curriculum/internal/inmemorycatalog"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
	saver  config.Saver
	model  *config.Model
	store  catalog.Store

	httpServer *http.Server
}

// NewApp is the constructor for the main application. Results are written to
// outW and logs to logW. The catalog is loaded and validated up front: a
// document that cannot be parsed, or that references unknown courses, is a
// startup error.
func NewApp(outW, logW io.Writer, appConfig *Config, loader config.Loader, saver config.Saver) (*App, error) {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	// Load all configuration into the format-agnostic model first.
	model, err := loader.Load(ctx, appConfig.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	logger.Debug("Catalog loaded and translated into unified model.")

	store := inmemorycatalog.New()
	if err := catalog.Populate(ctx, store, model); err != nil {
		return nil, fmt.Errorf("failed to populate catalog: %w", err)
	}
	logger.Info("Catalog ready.",
		"courses", len(store.AllCourseCodes(ctx)),
		"with_prerequisites", len(store.Prerequisites(ctx)),
		"placements", len(store.Placements(ctx)),
	)

	return &App{
		outW:   outW,
		logger: logger,
		config: appConfig,
		saver:  saver,
		model:  model,
		store:  store,
	}, nil
}

// Store returns the application's catalog store. This is primarily for testing.
func (a *App) Store() catalog.Store {
	return a.store
}
