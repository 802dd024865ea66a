// Package app composes the application's main dependencies.
//
// It owns the lifecycle of:
//   - configuration
//   - logger + optional New Relic service wrapper
//   - the database connection provider
//   - repositories and services built on top of it
//
// Nothing here dials the database. Connections are opened per operation
// by the repositories, so building an App is cheap and never fails on an
// unreachable server.
package app

import (
	"fmt"

	"github.com/deppfellow/projects/internal/config"
	"github.com/deppfellow/projects/internal/database"
	"github.com/deppfellow/projects/internal/repository"
	"github.com/deppfellow/projects/internal/service"
	"github.com/rs/zerolog"

	loggerPkg "github.com/deppfellow/projects/internal/logger"
)

// App is the application container that holds shared resources.
type App struct {
	Config *config.Config

	// Logger is the application's main structured logger.
	Logger *zerolog.Logger

	// LoggerService may hold a New Relic application; it is never nil.
	LoggerService *loggerPkg.LoggerService

	DB           *database.Provider
	Repositories *repository.Repositories
	Services     *service.Services
}

// New wires repositories and services around a connection provider.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) *App {
	db := database.New(cfg, logger, loggerService)
	repos := repository.NewRepositories(db)

	return &App{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
		DB:            db,
		Repositories:  repos,
		Services:      service.NewServices(repos),
	}
}

// Bootstrap loads configuration from the environment and builds the App
// with its loggers.
func Bootstrap() (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	loggerService, err := loggerPkg.NewLoggerService(cfg.Observability)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger service: %w", err)
	}

	logger := loggerPkg.NewLoggerWithService(cfg.Observability, loggerService)

	return New(cfg, &logger, loggerService), nil
}

// Shutdown flushes telemetry. There is no pool to close.
func (a *App) Shutdown() {
	a.Logger.Debug().Msg("shutting down")
	a.LoggerService.Shutdown()
}
