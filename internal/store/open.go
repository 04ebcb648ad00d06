package store

import (
	"context"
	"log/slog"
)

// Options selects and configures the storage backend.
type Options struct {
	Mongo            MongoOptions
	FallbackToMemory bool
}

// Connect returns a MongoDB backend when one is configured and reachable.
// Without a URI, or when the connection fails and fallback is enabled, it
// returns an in-memory backend exposing the same collections.
func Connect(ctx context.Context, logger *slog.Logger, opts Options) (Backend, error) {
	if opts.Mongo.URI == "" {
		logger.Warn("no mongodb uri configured, using in-memory storage")
		return NewMemoryBackend(), nil
	}

	backend, err := NewMongoBackend(ctx, opts.Mongo)
	if err == nil {
		logger.Info("connected to mongodb", "database", opts.Mongo.Database)
		return backend, nil
	}
	if !opts.FallbackToMemory {
		return nil, err
	}

	logger.Warn("mongodb unavailable, falling back to in-memory storage", "error", err)
	return NewMemoryBackend(), nil
}
