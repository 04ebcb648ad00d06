package domain

import (
	"errors"
	"time"
)

// PropertyStatus tracks where a listing is in its sale lifecycle.
type PropertyStatus string

const (
	PropertyAvailable  PropertyStatus = "available"
	PropertyUnderOffer PropertyStatus = "under_offer"
	PropertySold       PropertyStatus = "sold"
)

// Valid reports whether s is a known property status.
func (s PropertyStatus) Valid() bool {
	switch s {
	case PropertyAvailable, PropertyUnderOffer, PropertySold:
		return true
	}
	return false
}

// TransferType describes how ownership moved between two hops.
type TransferType string

const (
	TransferInitial     TransferType = "initial"
	TransferSale        TransferType = "sale"
	TransferInheritance TransferType = "inheritance"
	TransferGift        TransferType = "gift"
)

// Valid reports whether t is a known transfer type.
func (t TransferType) Valid() bool {
	switch t {
	case TransferInitial, TransferSale, TransferInheritance, TransferGift:
		return true
	}
	return false
}

// OwnershipHop is one entry of a property's ownership history. The hop without
// ToDate is the current owner.
type OwnershipHop struct {
	OwnerID         string       `json:"ownerId" bson:"ownerId"`
	OwnerName       string       `json:"ownerName" bson:"ownerName"`
	FromDate        time.Time    `json:"fromDate" bson:"fromDate"`
	ToDate          *time.Time   `json:"toDate,omitempty" bson:"toDate,omitempty"`
	TransferType    TransferType `json:"transferType" bson:"transferType"`
	Verified        bool         `json:"verified" bson:"verified"`
	TransactionHash string       `json:"transactionHash,omitempty" bson:"transactionHash,omitempty"`
}

// Property is a real-estate listing.
type Property struct {
	ID               string         `json:"id" bson:"_id"`
	Title            string         `json:"title" bson:"title"`
	Description      string         `json:"description,omitempty" bson:"description"`
	Price            float64        `json:"price" bson:"price"`
	Currency         string         `json:"currency" bson:"currency"`
	PropertyType     string         `json:"propertyType" bson:"propertyType"`
	Status           PropertyStatus `json:"status" bson:"status"`
	City             string         `json:"city" bson:"city"`
	District         string         `json:"district,omitempty" bson:"district"`
	Address          string         `json:"address,omitempty" bson:"address"`
	Bedrooms         int            `json:"bedrooms" bson:"bedrooms"`
	Bathrooms        int            `json:"bathrooms" bson:"bathrooms"`
	AreaSqm          float64        `json:"areaSqm" bson:"areaSqm"`
	Features         []string       `json:"features,omitempty" bson:"features,omitempty"`
	SellerID         string         `json:"sellerId" bson:"sellerId"`
	OwnershipHistory []OwnershipHop `json:"ownershipHistory" bson:"ownershipHistory"`
	CreatedAt        time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt" bson:"updatedAt"`
}

// ErrNoCurrentOwner is returned when a transfer is attempted on a property whose
// history has no open hop.
var ErrNoCurrentOwner = errors.New("property has no current owner")

// ErrTransferBeforeAcquisition is returned when a transfer would close the
// current hop before it started.
var ErrTransferBeforeAcquisition = errors.New("transfer date is before the current owner acquired the property")

// CurrentOwner returns the index of the open ownership hop, or -1.
func (p Property) CurrentOwner() int {
	for i, hop := range p.OwnershipHistory {
		if hop.ToDate == nil {
			return i
		}
	}
	return -1
}

// OpenHops counts ownership hops that have no ToDate.
func OpenHops(history []OwnershipHop) int {
	open := 0
	for _, hop := range history {
		if hop.ToDate == nil {
			open++
		}
	}
	return open
}

// TransferOwnership closes the current hop at the given instant and appends an
// open hop for the new owner. The history keeps at most one open hop.
func (p *Property) TransferOwnership(next OwnershipHop, at time.Time) error {
	idx := p.CurrentOwner()
	if idx < 0 {
		return ErrNoCurrentOwner
	}
	if at.Before(p.OwnershipHistory[idx].FromDate) {
		return ErrTransferBeforeAcquisition
	}
	closed := at
	p.OwnershipHistory[idx].ToDate = &closed
	next.FromDate = at
	next.ToDate = nil
	p.OwnershipHistory = append(p.OwnershipHistory, next)
	p.SellerID = next.OwnerID
	p.Status = PropertySold
	p.UpdatedAt = at
	return nil
}
