package store

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no document matches a single-document operation.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when an insert reuses an existing _id.
	ErrDuplicate = errors.New("duplicate document id")
	// ErrMissingURI indicates the MongoDB connection string is not provided.
	ErrMissingURI = errors.New("mongodb URI is required")
)

// Kind names the storage engine behind a Backend.
type Kind string

const (
	KindMongo  Kind = "mongodb"
	KindMemory Kind = "memory"
)

// Filter matches documents by equality on top-level or dotted field paths.
type Filter map[string]any

// SortField orders results by one field.
type SortField struct {
	Field      string
	Descending bool
}

// FindOptions controls ordering and paging of Find results.
type FindOptions struct {
	Sort  []SortField
	Skip  int64
	Limit int64
}

// Collection is the storage contract shared by every backend.
type Collection[T any] interface {
	Find(ctx context.Context, filter Filter, opts FindOptions) ([]T, error)
	FindOne(ctx context.Context, filter Filter) (T, error)
	Insert(ctx context.Context, doc T) error
	Replace(ctx context.Context, filter Filter, doc T) error
	Delete(ctx context.Context, filter Filter) (int64, error)
	Count(ctx context.Context, filter Filter) (int64, error)
}

// Backend is a connected storage engine that hands out collections.
type Backend interface {
	Kind() Kind
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Open returns the named collection of b decoded as T.
func Open[T any](b Backend, name string) Collection[T] {
	switch backend := b.(type) {
	case *MongoBackend:
		return &mongoCollection[T]{coll: backend.db.Collection(name)}
	case *MemoryBackend:
		return &memoryCollection[T]{backend: backend, name: name}
	default:
		panic(fmt.Sprintf("store: unsupported backend %T", b))
	}
}

// ByID is the filter selecting a document by its _id.
func ByID(id string) Filter {
	return Filter{"_id": id}
}
