package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/app"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/config"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/graph"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/logging"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/repository"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/seed"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/store"
)

func main() {
	var (
		datasetDir = flag.String("dataset-dir", "", "Directory containing users.json, properties.json, offers.json and ledger.json (bundled demo data when empty)")
		workers    = flag.Int("workers", 4, "Number of concurrent workers per collection")
		project    = flag.Bool("project-graph", true, "Merge loaded users into the identity graph when GRAPH_URI is set")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging).With("component", "seed")

	ds, err := loadDataset(*datasetDir)
	if err != nil {
		logger.Error("failed to load dataset", "error", err, "dir", *datasetDir)
		os.Exit(1)
	}
	if ds.Empty() {
		logger.Error("dataset empty", "dir", *datasetDir)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

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
	if application.Backend.Kind() == store.KindMemory {
		logger.Warn("loading into in-memory storage, data is discarded on exit")
	}

	start := time.Now()
	logger.Info("loading dataset",
		"users", len(ds.Users),
		"properties", len(ds.Properties),
		"offers", len(ds.Offers),
		"events", len(ds.Events),
		"workers", *workers,
	)
	summary, err := application.Seed(ctx, ds, *workers)
	if err != nil {
		logger.Error("dataset load failed", "error", err)
		os.Exit(1)
	}

	if *project && application.Graph != nil {
		if err := projectUsers(ctx, application, graph.NewLinks(application.Graph, logger)); err != nil {
			logger.Error("graph projection failed", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("load complete",
		"duration", time.Since(start).String(),
		"users", summary.Users,
		"properties", summary.Properties,
		"offers", summary.Offers,
		"events", summary.Events,
		"skipped", summary.Skipped,
	)
}

func loadDataset(dir string) (seed.Dataset, error) {
	if dir == "" {
		return seed.Bundled()
	}
	if _, err := os.Stat(dir); err != nil {
		return seed.Dataset{}, fmt.Errorf("stat %s: %w", dir, err)
	}
	return seed.LoadDir(dir)
}

func projectUsers(ctx context.Context, application *app.App, links *graph.Links) error {
	users, err := application.Repo.Users.List(ctx, repository.UserQuery{})
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	for _, user := range users {
		if err := links.RecordUser(ctx, user); err != nil {
			return err
		}
	}
	return nil
}
