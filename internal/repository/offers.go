package repository

import (
	"context"

	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/domain"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/store"
)

// OfferQuery filters offer listings.
type OfferQuery struct {
	PropertyID string
	BuyerID    string
	Status     domain.OfferStatus
}

// Offers persists domain.Offer documents.
type Offers struct {
	crud[domain.Offer]
}

// List returns offers matching q, newest first.
func (r *Offers) List(ctx context.Context, q OfferQuery) ([]domain.Offer, error) {
	filter := store.Filter{}
	withOptional(filter, "propertyId", q.PropertyID)
	withOptional(filter, "buyerId", q.BuyerID)
	withOptional(filter, "status", string(q.Status))
	return r.coll.Find(ctx, filter, store.FindOptions{Sort: newestFirst})
}
