package service

import (
	"net/mail"
	"strings"

	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/domain"
)

func validateUser(u domain.User) error {
	verr := &domain.ValidationError{}
	if strings.TrimSpace(u.Name) == "" {
		verr.Add("name", "name is required")
	}
	switch {
	case u.Email == "":
		verr.Add("email", "email is required")
	default:
		if _, err := mail.ParseAddress(u.Email); err != nil {
			verr.Add("email", "email is not a valid address")
		}
	}
	if !u.Role.Valid() {
		verr.Add("role", "role must be one of buyer, seller, broker")
	}
	if u.DigitalID != nil && u.DigitalID.Method != "" && !u.DigitalID.Method.Valid() {
		verr.Add("digitalId.method", "method must be one of nafath, absher, national_id, passport")
	}
	if u.DigitalID != nil && (u.DigitalID.RiskScore < 0 || u.DigitalID.RiskScore > 1) {
		verr.Add("digitalId.riskScore", "riskScore must be between 0 and 1")
	}
	return verr.OrNil()
}

func validateProperty(p domain.Property) error {
	verr := &domain.ValidationError{}
	if strings.TrimSpace(p.Title) == "" {
		verr.Add("title", "title is required")
	}
	if strings.TrimSpace(p.City) == "" {
		verr.Add("city", "city is required")
	}
	if strings.TrimSpace(p.SellerID) == "" {
		verr.Add("sellerId", "sellerId is required")
	}
	if p.Price <= 0 {
		verr.Add("price", "price must be greater than zero")
	}
	if p.Bedrooms < 0 || p.Bathrooms < 0 || p.AreaSqm < 0 {
		verr.Add("size", "bedrooms, bathrooms and areaSqm must not be negative")
	}
	if !p.Status.Valid() {
		verr.Add("status", "status must be one of available, under_offer, sold")
	}
	validateHistory(p.OwnershipHistory, verr)
	return verr.OrNil()
}

func validateHistory(history []domain.OwnershipHop, verr *domain.ValidationError) {
	if domain.OpenHops(history) > 1 {
		verr.Add("ownershipHistory", "at most one ownership entry may be without toDate")
	}
	for _, hop := range history {
		if strings.TrimSpace(hop.OwnerID) == "" {
			verr.Add("ownershipHistory.ownerId", "ownerId is required on every entry")
			break
		}
	}
	for _, hop := range history {
		if !hop.TransferType.Valid() {
			verr.Add("ownershipHistory.transferType", "transferType must be one of initial, sale, inheritance, gift")
			break
		}
	}
	for _, hop := range history {
		if hop.ToDate != nil && hop.ToDate.Before(hop.FromDate) {
			verr.Add("ownershipHistory.toDate", "toDate must not be before fromDate")
			break
		}
	}
}

func validateOffer(o domain.Offer) error {
	verr := &domain.ValidationError{}
	if strings.TrimSpace(o.PropertyID) == "" {
		verr.Add("propertyId", "propertyId is required")
	}
	if strings.TrimSpace(o.BuyerID) == "" {
		verr.Add("buyerId", "buyerId is required")
	}
	if strings.TrimSpace(o.BuyerName) == "" {
		verr.Add("buyerName", "buyerName is required")
	}
	if o.Amount <= 0 {
		verr.Add("amount", "amount must be greater than zero")
	}
	if !o.Status.Valid() {
		verr.Add("status", "status must be one of pending, locked, accepted, rejected, withdrawn, expired")
	}
	return verr.OrNil()
}

func requireField(field, value string) error {
	if strings.TrimSpace(value) != "" {
		return nil
	}
	verr := &domain.ValidationError{}
	verr.Add(field, field+" is required")
	return verr
}
