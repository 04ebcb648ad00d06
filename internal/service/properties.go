package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/domain"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/repository"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/store"
)

// PropertyService manages listings and ownership transfers.
type PropertyService struct {
	clock
	properties *repository.Properties
	users      *repository.Users
	ledger     LedgerRecorder
	logger     *slog.Logger
}

// NewPropertyService constructs a PropertyService.
func NewPropertyService(properties *repository.Properties, users *repository.Users, ledger LedgerRecorder, logger *slog.Logger) *PropertyService {
	return &PropertyService{
		clock:      defaultClock(),
		properties: properties,
		users:      users,
		ledger:     ledger,
		logger:     logger.With("component", "properties"),
	}
}

// List returns properties matching q, newest first.
func (s *PropertyService) List(ctx context.Context, q repository.PropertyQuery) ([]domain.Property, error) {
	return s.properties.List(ctx, q)
}

// Get returns one property.
func (s *PropertyService) Get(ctx context.Context, id string) (domain.Property, error) {
	return s.properties.Get(ctx, id)
}

// Create lists a new property. Without an ownership history the seller becomes
// the initial owner.
func (s *PropertyService) Create(ctx context.Context, in PropertyInput) (domain.Property, error) {
	now := s.now()
	p := domain.Property{
		ID:               in.ID,
		Title:            strings.TrimSpace(in.Title),
		Description:      in.Description,
		Price:            in.Price,
		Currency:         in.Currency,
		PropertyType:     in.PropertyType,
		Status:           in.Status,
		City:             strings.TrimSpace(in.City),
		District:         in.District,
		Address:          in.Address,
		Bedrooms:         in.Bedrooms,
		Bathrooms:        in.Bathrooms,
		AreaSqm:          in.AreaSqm,
		Features:         in.Features,
		SellerID:         in.SellerID,
		OwnershipHistory: in.OwnershipHistory,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if p.ID == "" {
		p.ID = s.newID()
	}
	if p.Currency == "" {
		p.Currency = defaultCurrency
	}
	if p.Status == "" {
		p.Status = domain.PropertyAvailable
	}
	if len(p.OwnershipHistory) == 0 && p.SellerID != "" {
		p.OwnershipHistory = []domain.OwnershipHop{{
			OwnerID:      p.SellerID,
			OwnerName:    s.ownerName(ctx, p.SellerID),
			FromDate:     now,
			TransferType: domain.TransferInitial,
			Verified:     true,
		}}
	}
	if err := validateProperty(p); err != nil {
		return domain.Property{}, err
	}

	if err := s.properties.Create(ctx, p); err != nil {
		return domain.Property{}, err
	}
	record(ctx, s.ledger, s.logger, domain.EventPropertyListed, p.SellerID, s.ownerName(ctx, p.SellerID), map[string]any{
		"propertyId": p.ID,
		"title":      p.Title,
		"price":      p.Price,
		"currency":   p.Currency,
		"city":       p.City,
	})
	return p, nil
}

// Update loads the property, applies fn and stores the result. The id and
// creation time cannot be changed through fn.
func (s *PropertyService) Update(ctx context.Context, id string, fn func(*domain.Property) error) (domain.Property, error) {
	existing, err := s.properties.Get(ctx, id)
	if err != nil {
		return domain.Property{}, err
	}
	updated := existing
	updated.OwnershipHistory = append([]domain.OwnershipHop(nil), existing.OwnershipHistory...)
	if err := fn(&updated); err != nil {
		return domain.Property{}, err
	}

	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = s.now()
	if err := validateProperty(updated); err != nil {
		return domain.Property{}, err
	}
	if err := s.properties.Update(ctx, id, updated); err != nil {
		return domain.Property{}, err
	}
	return updated, nil
}

// Delete removes the property.
func (s *PropertyService) Delete(ctx context.Context, id string) error {
	return s.properties.Delete(ctx, id)
}

// Transfer closes the current ownership hop, opens one for the new owner and
// stores the hash of the recorded ownership_transferred event on it. The event
// is recorded only once the new history is stored.
func (s *PropertyService) Transfer(ctx context.Context, id string, in TransferInput) (domain.Property, error) {
	verr := &domain.ValidationError{}
	if strings.TrimSpace(in.NewOwnerID) == "" {
		verr.Add("newOwnerId", "newOwnerId is required")
	}
	if strings.TrimSpace(in.NewOwnerName) == "" {
		verr.Add("newOwnerName", "newOwnerName is required")
	}
	if in.TransferType == "" {
		in.TransferType = domain.TransferSale
	}
	if !in.TransferType.Valid() || in.TransferType == domain.TransferInitial {
		verr.Add("transferType", "transferType must be one of sale, inheritance, gift")
	}
	if err := verr.OrNil(); err != nil {
		return domain.Property{}, err
	}

	p, err := s.properties.Get(ctx, id)
	if err != nil {
		return domain.Property{}, err
	}
	current := p.CurrentOwner()
	if current < 0 {
		verr.Add("ownershipHistory", domain.ErrNoCurrentOwner.Error())
		return domain.Property{}, verr
	}
	previous := p.OwnershipHistory[current]
	if previous.OwnerID == in.NewOwnerID {
		verr.Add("newOwnerId", "newOwnerId already owns the property")
		return domain.Property{}, verr
	}

	if s.ledger == nil {
		return domain.Property{}, errors.New("ledger is not configured")
	}

	original := p
	original.OwnershipHistory = append([]domain.OwnershipHop(nil), p.OwnershipHistory...)
	if err := p.TransferOwnership(domain.OwnershipHop{
		OwnerID:      in.NewOwnerID,
		OwnerName:    in.NewOwnerName,
		TransferType: in.TransferType,
		Verified:     true,
	}, s.now()); err != nil {
		verr.Add("ownershipHistory", err.Error())
		return domain.Property{}, verr
	}
	if err := validateProperty(p); err != nil {
		return domain.Property{}, err
	}
	if err := s.properties.Update(ctx, id, p); err != nil {
		return domain.Property{}, err
	}

	event, err := s.ledger.Record(ctx, domain.EventOwnershipTransferred, in.NewOwnerID, in.NewOwnerName, map[string]any{
		"propertyId":   p.ID,
		"fromOwnerId":  previous.OwnerID,
		"toOwnerId":    in.NewOwnerID,
		"transferType": string(in.TransferType),
		"price":        p.Price,
	})
	if err != nil {
		if rerr := s.properties.Update(ctx, id, original); rerr != nil {
			s.logger.Error("failed to roll back ownership transfer", "propertyId", p.ID, "error", rerr)
		}
		return domain.Property{}, err
	}

	p.OwnershipHistory[len(p.OwnershipHistory)-1].TransactionHash = event.Hash
	if err := s.properties.Update(ctx, id, p); err != nil {
		return domain.Property{}, fmt.Errorf("store transaction hash: %w", err)
	}
	s.logger.Info("ownership transferred", "propertyId", p.ID, "from", previous.OwnerID, "to", in.NewOwnerID)
	return p, nil
}

func (s *PropertyService) ownerName(ctx context.Context, userID string) string {
	if s.users == nil || userID == "" {
		return userID
	}
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("failed to resolve owner name", "userId", userID, "error", err)
		}
		return userID
	}
	return u.Name
}
