package repository

import (
	"context"

	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/domain"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/store"
)

// RiskFlagQuery filters risk flag listings. A nil Active matches both states.
type RiskFlagQuery struct {
	UserID string
	Active *bool
}

// RiskFlags persists domain.RiskFlag documents.
type RiskFlags struct {
	crud[domain.RiskFlag]
}

// List returns flags matching q, newest first.
func (r *RiskFlags) List(ctx context.Context, q RiskFlagQuery) ([]domain.RiskFlag, error) {
	filter := withOptional(store.Filter{}, "userId", q.UserID)
	if q.Active != nil {
		filter["isActive"] = *q.Active
	}
	return r.coll.Find(ctx, filter, store.FindOptions{Sort: newestFirst})
}
