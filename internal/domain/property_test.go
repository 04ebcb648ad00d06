package domain

import (
	"errors"
	"testing"
	"time"
)

func TestTransferOwnershipKeepsOneOpenHop(t *testing.T) {
	start := time.Date(2021, 6, 15, 0, 0, 0, 0, time.UTC)
	p := Property{
		ID:       "p1",
		SellerID: "u2",
		Status:   PropertyAvailable,
		OwnershipHistory: []OwnershipHop{
			{OwnerID: "u2", OwnerName: "Ahmed", FromDate: start, TransferType: TransferInitial},
		},
	}

	at := start.AddDate(3, 0, 0)
	if err := p.TransferOwnership(OwnershipHop{OwnerID: "u1", OwnerName: "Sarah", TransferType: TransferSale}, at); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	if got := OpenHops(p.OwnershipHistory); got != 1 {
		t.Fatalf("expected 1 open hop, got %d", got)
	}
	if p.OwnershipHistory[0].ToDate == nil || !p.OwnershipHistory[0].ToDate.Equal(at) {
		t.Fatalf("expected previous hop closed at %s, got %+v", at, p.OwnershipHistory[0])
	}
	if idx := p.CurrentOwner(); idx != 1 || p.OwnershipHistory[idx].OwnerID != "u1" {
		t.Fatalf("expected u1 as current owner, got index %d", idx)
	}
	if p.SellerID != "u1" || p.Status != PropertySold {
		t.Fatalf("unexpected property state %+v", p)
	}
}

func TestTransferOwnershipWithoutOpenHop(t *testing.T) {
	closed := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	p := Property{OwnershipHistory: []OwnershipHop{{OwnerID: "u2", ToDate: &closed}}}

	err := p.TransferOwnership(OwnershipHop{OwnerID: "u1"}, time.Now())
	if !errors.Is(err, ErrNoCurrentOwner) {
		t.Fatalf("expected ErrNoCurrentOwner, got %v", err)
	}
	if len(p.OwnershipHistory) != 1 {
		t.Fatal("history must not change on failure")
	}
}

func TestTransferOwnershipBeforeAcquisition(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	p := Property{OwnershipHistory: []OwnershipHop{{OwnerID: "u2", FromDate: start, TransferType: TransferInitial}}}

	err := p.TransferOwnership(OwnershipHop{OwnerID: "u1"}, start.Add(-time.Hour))
	if !errors.Is(err, ErrTransferBeforeAcquisition) {
		t.Fatalf("expected ErrTransferBeforeAcquisition, got %v", err)
	}
	if len(p.OwnershipHistory) != 1 || p.OwnershipHistory[0].ToDate != nil {
		t.Fatalf("history must not change on failure, got %+v", p.OwnershipHistory)
	}
}

func TestValidationErrorOrNil(t *testing.T) {
	var verr ValidationError
	if verr.OrNil() != nil {
		t.Fatal("expected nil for empty validation error")
	}
	verr.Add("email", "email is required")
	verr.Add("role", "role must be one of buyer, seller, broker")
	err := verr.OrNil()
	if err == nil {
		t.Fatal("expected error")
	}
	want := "validation failed: email: email is required; role: role must be one of buyer, seller, broker"
	if err.Error() != want {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
