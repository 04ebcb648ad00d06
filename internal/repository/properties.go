package repository

import (
	"context"

	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/domain"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/store"
)

// PropertyQuery filters property listings.
type PropertyQuery struct {
	SellerID string
	Status   domain.PropertyStatus
	City     string
}

// Properties persists domain.Property documents.
type Properties struct {
	crud[domain.Property]
}

// List returns properties matching q, newest first.
func (r *Properties) List(ctx context.Context, q PropertyQuery) ([]domain.Property, error) {
	filter := store.Filter{}
	withOptional(filter, "sellerId", q.SellerID)
	withOptional(filter, "status", string(q.Status))
	withOptional(filter, "city", q.City)
	return r.coll.Find(ctx, filter, store.FindOptions{Sort: newestFirst})
}
