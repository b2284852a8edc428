package main

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"backcountry-crews/internal/cache"
	"backcountry-crews/internal/config"
	"backcountry-crews/internal/flags"
	"backcountry-crews/internal/forecast"
	"backcountry-crews/internal/observability"
	"backcountry-crews/internal/providers/nac"
	"backcountry-crews/internal/store"
	"backcountry-crews/internal/warning"
)

// App encapsulates application dependencies
type App struct {
	router          *gin.Engine
	logger          *slog.Logger
	cfg             *config.Config
	store           *store.Store
	warningService  warning.Service
	forecastService forecast.Service
	flagService     flags.Service
}

// NewApp creates a new application with injected dependencies
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	// Set Gin mode from configuration
	gin.SetMode(cfg.Server.GinMode)

	// Create Gin router
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())

	db, err := store.Open(cfg.App.StorePath, logger)
	if err != nil {
		return nil, err
	}

	metrics := observability.NewMetrics()
	appCache := cache.NewTTLCache()
	nacClient := nac.NewClient(logger)

	app := &App{
		router: router,
		logger: logger,
		cfg:    cfg,
		store:  db,
		warningService: warning.NewService(
			nacClient, cfg.App.CenterId, appCache, cfg.App.WarningCacheTTL, logger, metrics,
		),
		forecastService: forecast.NewService(db, logger, metrics),
		flagService:     flags.NewService(db, appCache, logger),
	}

	// Register routes
	app.registerRoutes()

	return app, nil
}

// Run starts the HTTP server
func (app *App) Run(addr string) error {
	return app.router.Run(addr)
}

// Close releases the backing store.
func (app *App) Close() {
	if err := app.store.Close(); err != nil {
		app.logger.Error("failed to close store", "error", err)
	}
}
