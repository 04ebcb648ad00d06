package repository

import (
	"context"

	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/domain"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/store"
)

// UserQuery filters user listings.
type UserQuery struct {
	Role domain.Role
}

// Users persists domain.User documents.
type Users struct {
	crud[domain.User]
}

// List returns users matching q, newest first.
func (r *Users) List(ctx context.Context, q UserQuery) ([]domain.User, error) {
	filter := withOptional(store.Filter{}, "role", string(q.Role))
	return r.coll.Find(ctx, filter, store.FindOptions{Sort: newestFirst})
}

// FindByEmail returns users registered with the normalised email.
func (r *Users) FindByEmail(ctx context.Context, email string) ([]domain.User, error) {
	return r.coll.Find(ctx, store.Filter{"email": email}, store.FindOptions{})
}

// FindByPhone returns users registered with the normalised phone.
func (r *Users) FindByPhone(ctx context.Context, phone string) ([]domain.User, error) {
	return r.coll.Find(ctx, store.Filter{"phone": phone}, store.FindOptions{})
}

// FindByDigitalID returns users holding the digital ID.
func (r *Users) FindByDigitalID(ctx context.Context, digitalID string) ([]domain.User, error) {
	return r.coll.Find(ctx, store.Filter{"digitalId.id": digitalID}, store.FindOptions{})
}

// FindBySource returns users registered from the given source.
func (r *Users) FindBySource(ctx context.Context, source string) ([]domain.User, error) {
	return r.coll.Find(ctx, store.Filter{"registrationSource": source}, store.FindOptions{Sort: newestFirst})
}
