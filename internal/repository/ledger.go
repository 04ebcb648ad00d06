package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/domain"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/store"
)

// LedgerQuery filters ledger listings.
type LedgerQuery struct {
	Type    string
	ActorID string
	Limit   int64
}

// LedgerEvents is the append-only event collection. It exposes no update.
type LedgerEvents struct {
	coll store.Collection[domain.LedgerEvent]
}

// Insert appends an event.
func (r *LedgerEvents) Insert(ctx context.Context, event domain.LedgerEvent) error {
	if err := r.coll.Insert(ctx, event); err != nil {
		return fmt.Errorf("append ledger event: %w", err)
	}
	return nil
}

// List returns events matching q, most recent first.
func (r *LedgerEvents) List(ctx context.Context, q LedgerQuery) ([]domain.LedgerEvent, error) {
	filter := store.Filter{}
	withOptional(filter, "type", q.Type)
	withOptional(filter, "actorId", q.ActorID)
	return r.coll.Find(ctx, filter, store.FindOptions{
		Sort: []store.SortField{
			{Field: "timestamp", Descending: true},
			{Field: "sequence", Descending: true},
		},
		Limit: q.Limit,
	})
}

// InSequence returns every event in append order.
func (r *LedgerEvents) InSequence(ctx context.Context) ([]domain.LedgerEvent, error) {
	return r.coll.Find(ctx, nil, store.FindOptions{
		Sort: []store.SortField{{Field: "sequence"}},
	})
}

// Get returns the event with the given id.
func (r *LedgerEvents) Get(ctx context.Context, id string) (domain.LedgerEvent, error) {
	event, err := r.coll.FindOne(ctx, store.ByID(id))
	if err != nil {
		return event, fmt.Errorf("get ledger event %s: %w", id, err)
	}
	return event, nil
}

// Latest returns the most recently appended event. ok is false on an empty ledger.
func (r *LedgerEvents) Latest(ctx context.Context) (event domain.LedgerEvent, ok bool, err error) {
	events, err := r.coll.Find(ctx, nil, store.FindOptions{
		Sort:  []store.SortField{{Field: "sequence", Descending: true}},
		Limit: 1,
	})
	if err != nil {
		return domain.LedgerEvent{}, false, err
	}
	if len(events) == 0 {
		return domain.LedgerEvent{}, false, nil
	}
	return events[0], true, nil
}

// Count returns the number of stored events.
func (r *LedgerEvents) Count(ctx context.Context) (int64, error) {
	return r.coll.Count(ctx, nil)
}

// DeleteAll removes every event and returns how many were removed.
func (r *LedgerEvents) DeleteAll(ctx context.Context) (int64, error) {
	n, err := r.coll.Delete(ctx, nil)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return 0, fmt.Errorf("reset ledger: %w", err)
	}
	return n, nil
}
