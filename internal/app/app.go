// Package app assembles the storage, graph, ledger and service layers from
// configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/config"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/graph"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/ledger"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/repository"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/risk"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/seed"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/service"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/store"
)

// App holds the wired application components.
type App struct {
	Backend  store.Backend
	Graph    graph.Client
	Repo     *repository.Repository
	Ledger   *ledger.Service
	Services *service.Services

	cfg    config.Config
	logger *slog.Logger
}

// Build connects to storage and the optional graph and constructs the
// services. The bundled ledger events become the reset seed.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	backend, err := store.Connect(ctx, logger.With("component", "store"), store.Options{
		Mongo: store.MongoOptions{
			URI:            cfg.Mongo.URI,
			Database:       cfg.Mongo.Database,
			ConnectTimeout: cfg.Mongo.ConnectTimeout,
		},
		FallbackToMemory: cfg.Mongo.FallbackToMemory,
	})
	if err != nil {
		return nil, fmt.Errorf("connect storage: %w", err)
	}

	graphClient, err := dialGraph(ctx, logger, cfg.Graph)
	if err != nil {
		_ = backend.Close(ctx)
		return nil, err
	}

	bundled, err := seed.Bundled()
	if err != nil {
		logger.Warn("bundled dataset unreadable, ledger reset will not reseed", "error", err)
	}

	repo := repository.New(backend)
	ledgerSvc := ledger.NewService(repo.Ledger, logger, ledger.Options{
		GenesisBlock:   cfg.Ledger.GenesisBlock,
		EventsPerBlock: cfg.Ledger.EventsPerBlock,
	})
	ledgerSvc.WithSeed(bundled.Events)

	services := service.New(service.Dependencies{
		Repo:      repo,
		Ledger:    ledgerSvc,
		Graph:     graph.NewLinks(graphClient, logger),
		Evaluator: risk.NewEvaluator(repo.Users, risk.DefaultRules(cfg.Risk.VelocityWindow, cfg.Risk.VelocityMaxAccounts), logger),
		Auth: service.AuthOptions{
			Secret:     []byte(cfg.Auth.JWTSecret),
			TokenTTL:   cfg.Auth.TokenTTL,
			BcryptCost: cfg.Auth.BcryptCost,
		},
		Logger: logger,
	})

	return &App{
		Backend:  backend,
		Graph:    graphClient,
		Repo:     repo,
		Ledger:   ledgerSvc,
		Services: services,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// Seed loads ds through a BulkLoader. Records that already exist are skipped.
func (a *App) Seed(ctx context.Context, ds seed.Dataset, workers int) (service.LoadSummary, error) {
	loader := service.NewBulkLoader(a.Repo, a.Ledger, workers, a.cfg.Auth.BcryptCost, a.logger)
	return loader.Load(ctx, ds)
}

// SeedIfEmpty loads the bundled dataset when the users collection is empty.
func (a *App) SeedIfEmpty(ctx context.Context) error {
	count, err := a.Repo.Users.Count(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		a.logger.Info("store already populated, skipping seed", "users", count)
		return nil
	}

	ds, err := seed.Bundled()
	if err != nil {
		return err
	}
	if _, err := a.Seed(ctx, ds, 0); err != nil {
		return fmt.Errorf("seed bundled dataset: %w", err)
	}
	return nil
}

// Close releases the graph driver and the storage connection.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Graph != nil {
		if err := a.Graph.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close graph: %w", err))
		}
	}
	if err := a.Backend.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("close storage: %w", err))
	}
	return errors.Join(errs...)
}

func dialGraph(ctx context.Context, logger *slog.Logger, cfg config.GraphConfig) (graph.Client, error) {
	opts := graph.Options{
		URI:            cfg.URI,
		Database:       cfg.Database,
		Username:       cfg.Username,
		Password:       cfg.Password,
		MaxConnections: cfg.MaxConnections,
	}
	if !opts.Enabled() {
		logger.Info("identity graph disabled")
		return nil, nil
	}

	client, err := graph.Dial(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect identity graph: %w", err)
	}
	logger.Info("connected to identity graph", "uri", cfg.URI)
	return client, nil
}
