package domain

import "time"

// FlagType classifies what a risk flag indicates.
type FlagType string

const (
	FlagImpersonation      FlagType = "impersonation"
	FlagDuplicateIdentity  FlagType = "duplicate_identity"
	FlagSuspiciousActivity FlagType = "suspicious_activity"
)

// Severity ranks a risk flag.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// RiskFlag is the output of one heuristic rule against one user.
type RiskFlag struct {
	ID          string         `json:"id" bson:"_id"`
	UserID      string         `json:"userId" bson:"userId"`
	Type        FlagType       `json:"type" bson:"type"`
	Severity    Severity       `json:"severity" bson:"severity"`
	Description string         `json:"description" bson:"description"`
	Confidence  float64        `json:"confidence" bson:"confidence"`
	Metadata    map[string]any `json:"metadata,omitempty" bson:"metadata,omitempty"`
	IsActive    bool           `json:"isActive" bson:"isActive"`
	CreatedAt   time.Time      `json:"createdAt" bson:"createdAt"`
	ResolvedAt  *time.Time     `json:"resolvedAt,omitempty" bson:"resolvedAt,omitempty"`
	ResolvedBy  string         `json:"resolvedBy,omitempty" bson:"resolvedBy,omitempty"`
}
