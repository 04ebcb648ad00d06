package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/domain"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/store"
)

func TestUsers_FindByIdentityFields(t *testing.T) {
	repo := New(store.NewMemoryBackend())
	ctx := context.Background()
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	users := []domain.User{
		{ID: "u1", Name: "Sarah", Email: "sarah@example.com", Phone: "+966500000001", Role: domain.RoleBuyer, CreatedAt: now},
		{ID: "u2", Name: "Ahmed", Email: "ahmed@example.com", Phone: "+966500000002", Role: domain.RoleSeller, CreatedAt: now.Add(time.Minute),
			DigitalID: &domain.DigitalID{ID: "did:1", Method: domain.MethodNafath}},
	}
	for _, u := range users {
		if err := repo.Users.Create(ctx, u); err != nil {
			t.Fatalf("create %s: %v", u.ID, err)
		}
	}

	byEmail, err := repo.Users.FindByEmail(ctx, "sarah@example.com")
	if err != nil || len(byEmail) != 1 || byEmail[0].ID != "u1" {
		t.Fatalf("expected u1 by email, got %+v (%v)", byEmail, err)
	}
	byDID, err := repo.Users.FindByDigitalID(ctx, "did:1")
	if err != nil || len(byDID) != 1 || byDID[0].ID != "u2" {
		t.Fatalf("expected u2 by digital id, got %+v (%v)", byDID, err)
	}
	sellers, err := repo.Users.List(ctx, UserQuery{Role: domain.RoleSeller})
	if err != nil || len(sellers) != 1 {
		t.Fatalf("expected 1 seller, got %+v (%v)", sellers, err)
	}
	all, err := repo.Users.List(ctx, UserQuery{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 || all[0].ID != "u2" {
		t.Fatalf("expected newest user first, got %+v", all)
	}
}

func TestCrud_DeleteMissingReturnsNotFound(t *testing.T) {
	repo := New(store.NewMemoryBackend())
	err := repo.Offers.Delete(context.Background(), "nope")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRiskFlags_ListByActiveState(t *testing.T) {
	repo := New(store.NewMemoryBackend())
	ctx := context.Background()
	flags := []domain.RiskFlag{
		{ID: "f1", UserID: "u1", Type: domain.FlagImpersonation, IsActive: true},
		{ID: "f2", UserID: "u1", Type: domain.FlagSuspiciousActivity, IsActive: false},
		{ID: "f3", UserID: "u2", Type: domain.FlagImpersonation, IsActive: true},
	}
	for _, f := range flags {
		if err := repo.RiskFlags.Create(ctx, f); err != nil {
			t.Fatalf("create %s: %v", f.ID, err)
		}
	}

	active := true
	got, err := repo.RiskFlags.List(ctx, RiskFlagQuery{UserID: "u1", Active: &active})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].ID != "f1" {
		t.Fatalf("expected only f1, got %+v", got)
	}
}

func TestLedgerEvents_OrderingAndLatest(t *testing.T) {
	repo := New(store.NewMemoryBackend())
	ctx := context.Background()

	if _, ok, err := repo.Ledger.Latest(ctx); err != nil || ok {
		t.Fatalf("expected empty ledger, got ok=%v err=%v", ok, err)
	}

	base := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	for i, typ := range []string{"offer_made", "offer_made", "identity_verified"} {
		err := repo.Ledger.Insert(ctx, domain.LedgerEvent{
			ID:        string(rune('a' + i)),
			Type:      typ,
			Timestamp: base,
			Sequence:  int64(i),
		})
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	recent, err := repo.Ledger.List(ctx, LedgerQuery{Type: "offer_made", Limit: 1})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recent) != 1 || recent[0].ID != "b" {
		t.Fatalf("expected tie broken by sequence to return b, got %+v", recent)
	}

	latest, ok, err := repo.Ledger.Latest(ctx)
	if err != nil || !ok || latest.ID != "c" {
		t.Fatalf("expected latest c, got %+v ok=%v err=%v", latest, ok, err)
	}

	n, err := repo.Ledger.DeleteAll(ctx)
	if err != nil || n != 3 {
		t.Fatalf("expected 3 deleted, got %d (%v)", n, err)
	}
}
