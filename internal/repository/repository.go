package repository

import (
	"context"
	"fmt"

	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/domain"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/store"
)

// Collection names shared by the MongoDB and in-memory backends.
const (
	UsersCollection      = "users"
	PropertiesCollection = "properties"
	OffersCollection     = "offers"
	LedgerCollection     = "ledger_events"
	RiskFlagsCollection  = "risk_flags"
)

// Repository bundles the typed collections of the application.
type Repository struct {
	Users      *Users
	Properties *Properties
	Offers     *Offers
	Ledger     *LedgerEvents
	RiskFlags  *RiskFlags
}

// New instantiates a Repository backed by the supplied storage backend.
func New(backend store.Backend) *Repository {
	return &Repository{
		Users:      &Users{crud[domain.User]{coll: store.Open[domain.User](backend, UsersCollection), name: "user"}},
		Properties: &Properties{crud[domain.Property]{coll: store.Open[domain.Property](backend, PropertiesCollection), name: "property"}},
		Offers:     &Offers{crud[domain.Offer]{coll: store.Open[domain.Offer](backend, OffersCollection), name: "offer"}},
		Ledger:     &LedgerEvents{coll: store.Open[domain.LedgerEvent](backend, LedgerCollection)},
		RiskFlags:  &RiskFlags{crud[domain.RiskFlag]{coll: store.Open[domain.RiskFlag](backend, RiskFlagsCollection), name: "risk flag"}},
	}
}

// crud implements the id-keyed operations every entity collection exposes.
type crud[T any] struct {
	coll store.Collection[T]
	name string
}

// Get returns the entity with the given id or store.ErrNotFound.
func (c crud[T]) Get(ctx context.Context, id string) (T, error) {
	v, err := c.coll.FindOne(ctx, store.ByID(id))
	if err != nil {
		return v, fmt.Errorf("get %s %s: %w", c.name, id, err)
	}
	return v, nil
}

// Create inserts a new entity.
func (c crud[T]) Create(ctx context.Context, v T) error {
	if err := c.coll.Insert(ctx, v); err != nil {
		return fmt.Errorf("create %s: %w", c.name, err)
	}
	return nil
}

// Update replaces the stored entity with the given id. Last write wins.
func (c crud[T]) Update(ctx context.Context, id string, v T) error {
	if err := c.coll.Replace(ctx, store.ByID(id), v); err != nil {
		return fmt.Errorf("update %s %s: %w", c.name, id, err)
	}
	return nil
}

// Delete removes the entity with the given id or returns store.ErrNotFound.
func (c crud[T]) Delete(ctx context.Context, id string) error {
	n, err := c.coll.Delete(ctx, store.ByID(id))
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", c.name, id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete %s %s: %w", c.name, id, store.ErrNotFound)
	}
	return nil
}

// Count returns the number of stored entities.
func (c crud[T]) Count(ctx context.Context) (int64, error) {
	return c.coll.Count(ctx, nil)
}

var newestFirst = []store.SortField{{Field: "createdAt", Descending: true}}

func withOptional(filter store.Filter, key, value string) store.Filter {
	if value != "" {
		filter[key] = value
	}
	return filter
}
