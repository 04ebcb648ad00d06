package domain

import "time"

// Event types recorded by the backend itself. Clients may append any other
// non-empty type.
const (
	EventUserRegistered       = "user_registered"
	EventIdentityVerified     = "identity_verified"
	EventPropertyListed       = "property_listed"
	EventOfferMade            = "offer_made"
	EventOfferStatusChanged   = "offer_status_changed"
	EventOwnershipTransferred = "ownership_transferred"
	EventRiskFlagged          = "risk_flagged"
	EventUserLogin            = "user_login"
)

// LedgerEvent is an immutable record of a simulated transaction or
// verification action.
type LedgerEvent struct {
	ID               string         `json:"id" bson:"_id"`
	Type             string         `json:"type" bson:"type"`
	Timestamp        time.Time      `json:"timestamp" bson:"timestamp"`
	Hash             string         `json:"hash" bson:"hash"`
	ActorID          string         `json:"actorId" bson:"actorId"`
	ActorName        string         `json:"actorName" bson:"actorName"`
	Details          map[string]any `json:"details" bson:"details"`
	Signature        string         `json:"signature" bson:"signature"`
	BlockNumber      int64          `json:"blockNumber" bson:"blockNumber"`
	TransactionIndex int64          `json:"transactionIndex" bson:"transactionIndex"`
	Sequence         int64          `json:"sequence" bson:"sequence"`
	PreviousHash     string         `json:"previousHash" bson:"previousHash"`
	ChainHash        string         `json:"chainHash" bson:"chainHash"`
}
