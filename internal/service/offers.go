package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/domain"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/repository"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/store"
)

// OfferService manages offers on properties.
type OfferService struct {
	clock
	offers     *repository.Offers
	properties *repository.Properties
	ledger     LedgerRecorder
	logger     *slog.Logger
}

// NewOfferService constructs an OfferService.
func NewOfferService(offers *repository.Offers, properties *repository.Properties, ledger LedgerRecorder, logger *slog.Logger) *OfferService {
	return &OfferService{
		clock:      defaultClock(),
		offers:     offers,
		properties: properties,
		ledger:     ledger,
		logger:     logger.With("component", "offers"),
	}
}

// List returns offers matching q, newest first.
func (s *OfferService) List(ctx context.Context, q repository.OfferQuery) ([]domain.Offer, error) {
	return s.offers.List(ctx, q)
}

// Get returns one offer.
func (s *OfferService) Get(ctx context.Context, id string) (domain.Offer, error) {
	return s.offers.Get(ctx, id)
}

// Create stores a pending offer on an existing property.
func (s *OfferService) Create(ctx context.Context, in OfferInput) (domain.Offer, error) {
	now := s.now()
	o := domain.Offer{
		ID:         in.ID,
		PropertyID: in.PropertyID,
		BuyerID:    in.BuyerID,
		BuyerName:  in.BuyerName,
		Amount:     in.Amount,
		Currency:   in.Currency,
		Status:     in.Status,
		Message:    in.Message,
		ExpiresAt:  in.ExpiresAt,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if o.ID == "" {
		o.ID = s.newID()
	}
	if o.Currency == "" {
		o.Currency = defaultCurrency
	}
	if o.Status == "" {
		o.Status = domain.OfferPending
	}
	if err := validateOffer(o); err != nil {
		return domain.Offer{}, err
	}
	if err := s.ensureProperty(ctx, o.PropertyID); err != nil {
		return domain.Offer{}, err
	}

	if err := s.offers.Create(ctx, o); err != nil {
		return domain.Offer{}, err
	}
	record(ctx, s.ledger, s.logger, domain.EventOfferMade, o.BuyerID, o.BuyerName, map[string]any{
		"offerId":    o.ID,
		"propertyId": o.PropertyID,
		"amount":     o.Amount,
		"currency":   o.Currency,
	})
	return o, nil
}

// Update loads the offer, applies fn and stores the result. Any status may
// replace any other; a status change is recorded on the ledger.
func (s *OfferService) Update(ctx context.Context, id string, fn func(*domain.Offer) error) (domain.Offer, error) {
	existing, err := s.offers.Get(ctx, id)
	if err != nil {
		return domain.Offer{}, err
	}
	updated := existing
	if err := fn(&updated); err != nil {
		return domain.Offer{}, err
	}

	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = s.now()
	if err := validateOffer(updated); err != nil {
		return domain.Offer{}, err
	}
	if err := s.offers.Update(ctx, id, updated); err != nil {
		return domain.Offer{}, err
	}

	if updated.Status != existing.Status {
		record(ctx, s.ledger, s.logger, domain.EventOfferStatusChanged, updated.BuyerID, updated.BuyerName, map[string]any{
			"offerId":    updated.ID,
			"propertyId": updated.PropertyID,
			"from":       string(existing.Status),
			"to":         string(updated.Status),
		})
	}
	return updated, nil
}

// Delete removes the offer.
func (s *OfferService) Delete(ctx context.Context, id string) error {
	return s.offers.Delete(ctx, id)
}

func (s *OfferService) ensureProperty(ctx context.Context, propertyID string) error {
	if s.properties == nil {
		return nil
	}
	_, err := s.properties.Get(ctx, propertyID)
	if errors.Is(err, store.ErrNotFound) {
		verr := &domain.ValidationError{}
		verr.Add("propertyId", "property "+propertyID+" does not exist")
		return verr
	}
	return err
}
