package domain

import "time"

// OfferStatus is the lifecycle state of an offer. Transitions are not
// enforced: any status may replace any other.
type OfferStatus string

const (
	OfferPending   OfferStatus = "pending"
	OfferLocked    OfferStatus = "locked"
	OfferAccepted  OfferStatus = "accepted"
	OfferRejected  OfferStatus = "rejected"
	OfferWithdrawn OfferStatus = "withdrawn"
	OfferExpired   OfferStatus = "expired"
)

// Valid reports whether s is a known offer status.
func (s OfferStatus) Valid() bool {
	switch s {
	case OfferPending, OfferLocked, OfferAccepted, OfferRejected, OfferWithdrawn, OfferExpired:
		return true
	}
	return false
}

// Offer is a buyer's bid on a property.
type Offer struct {
	ID         string      `json:"id" bson:"_id"`
	PropertyID string      `json:"propertyId" bson:"propertyId"`
	BuyerID    string      `json:"buyerId" bson:"buyerId"`
	BuyerName  string      `json:"buyerName" bson:"buyerName"`
	Amount     float64     `json:"amount" bson:"amount"`
	Currency   string      `json:"currency" bson:"currency"`
	Status     OfferStatus `json:"status" bson:"status"`
	Message    string      `json:"message,omitempty" bson:"message,omitempty"`
	ExpiresAt  *time.Time  `json:"expiresAt,omitempty" bson:"expiresAt,omitempty"`
	CreatedAt  time.Time   `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt" bson:"updatedAt"`
}
