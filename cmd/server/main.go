package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/app"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/config"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/logging"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/server"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/telemetry"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		logger.Error("failed to set up tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("flushing traces failed", "error", err)
		}
	}()

	application, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialise application", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := application.Close(context.Background()); err != nil {
			logger.Warn("closing application failed", "error", err)
		}
	}()

	if cfg.SeedOnStart || cfg.ReadOnly {
		if err := application.SeedIfEmpty(ctx); err != nil {
			logger.Error("failed to seed demo data", "error", err)
		}
	}

	router := server.NewRouter(logger, server.RouterDependencies{
		Health: server.BackendHealthService{
			Backend:  application.Backend,
			Graph:    application.Graph,
			ReadOnly: cfg.ReadOnly,
		},
		API:              server.NewAPIHandlers(logger, application.Services, application.Ledger),
		AllowedOrigins:   cfg.HTTP.Origins(),
		AllowCredentials: true,
		ReadOnly:         cfg.ReadOnly,
	})

	srv := server.New(logger, cfg.HTTP, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("server stopped unexpectedly", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
