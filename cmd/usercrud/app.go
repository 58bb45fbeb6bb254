package main

import (
	"context"
	"fmt"

	"github.com/deppfellow/usercrud/internal/config"
	"github.com/deppfellow/usercrud/internal/logger"
	"github.com/deppfellow/usercrud/internal/repository"
	"github.com/deppfellow/usercrud/internal/server"
	"github.com/deppfellow/usercrud/internal/service"
)

// app is everything both commands need.
type app struct {
	server        *server.Server
	services      *service.Services
	loggerService *logger.LoggerService
}

func bootstrap() (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	loggerService := logger.NewLoggerService(&cfg.Observability)
	log := logger.NewLoggerWithService(&cfg.Observability, loggerService)

	srv, err := server.New(cfg, &log, loggerService)
	if err != nil {
		loggerService.Shutdown()
		return nil, fmt.Errorf("failed to initialize server: %w", err)
	}

	repos := repository.NewRepositories(srv.DB)

	return &app{
		server:        srv,
		services:      service.NewServices(srv, repos),
		loggerService: loggerService,
	}, nil
}

// close releases the database and flushes New Relic.
func (a *app) close(ctx context.Context) error {
	defer a.loggerService.Shutdown()
	return a.server.Shutdown(ctx)
}
