package service

import (
	"time"

	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/domain"
)

// RegisterUserInput is the inbound payload of a user registration.
type RegisterUserInput struct {
	ID       string      `json:"id,omitempty"`
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Phone    string      `json:"phone,omitempty"`
	Role     domain.Role `json:"role"`
	Password string      `json:"password,omitempty"`
}

// VerifyIdentityInput selects the simulated verification provider.
type VerifyIdentityInput struct {
	Method domain.VerificationMethod `json:"method"`
}

// PropertyInput is the inbound payload of a property listing.
type PropertyInput struct {
	ID               string                `json:"id,omitempty"`
	Title            string                `json:"title"`
	Description      string                `json:"description,omitempty"`
	Price            float64               `json:"price"`
	Currency         string                `json:"currency,omitempty"`
	PropertyType     string                `json:"propertyType,omitempty"`
	Status           domain.PropertyStatus `json:"status,omitempty"`
	City             string                `json:"city"`
	District         string                `json:"district,omitempty"`
	Address          string                `json:"address,omitempty"`
	Bedrooms         int                   `json:"bedrooms,omitempty"`
	Bathrooms        int                   `json:"bathrooms,omitempty"`
	AreaSqm          float64               `json:"areaSqm,omitempty"`
	Features         []string              `json:"features,omitempty"`
	SellerID         string                `json:"sellerId"`
	OwnershipHistory []domain.OwnershipHop `json:"ownershipHistory,omitempty"`
}

// TransferInput moves a property to a new owner.
type TransferInput struct {
	NewOwnerID   string              `json:"newOwnerId"`
	NewOwnerName string              `json:"newOwnerName"`
	TransferType domain.TransferType `json:"transferType,omitempty"`
}

// OfferInput is the inbound payload of an offer.
type OfferInput struct {
	ID         string             `json:"id,omitempty"`
	PropertyID string             `json:"propertyId"`
	BuyerID    string             `json:"buyerId"`
	BuyerName  string             `json:"buyerName"`
	Amount     float64            `json:"amount"`
	Currency   string             `json:"currency,omitempty"`
	Status     domain.OfferStatus `json:"status,omitempty"`
	Message    string             `json:"message,omitempty"`
	ExpiresAt  *time.Time         `json:"expiresAt,omitempty"`
}

// ResolveFlagInput names who closed a risk flag.
type ResolveFlagInput struct {
	ResolvedBy string `json:"resolvedBy"`
}

// LoginInput carries demo credentials.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      domain.User `json:"user"`
}

const defaultCurrency = "SAR"
