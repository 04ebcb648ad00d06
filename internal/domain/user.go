package domain

import "time"

// Role is the part a user plays in a transaction.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleBroker Role = "broker"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleBroker:
		return true
	}
	return false
}

// VerificationMethod names the simulated identity provider used for a DigitalID.
type VerificationMethod string

const (
	MethodNafath     VerificationMethod = "nafath"
	MethodAbsher     VerificationMethod = "absher"
	MethodNationalID VerificationMethod = "national_id"
	MethodPassport   VerificationMethod = "passport"
)

// Valid reports whether m is a supported verification method.
func (m VerificationMethod) Valid() bool {
	switch m {
	case MethodNafath, MethodAbsher, MethodNationalID, MethodPassport:
		return true
	}
	return false
}

// DigitalID is the simulated identity-verification record attached to a user.
type DigitalID struct {
	ID         string             `json:"id" bson:"id"`
	Method     VerificationMethod `json:"method" bson:"method"`
	RiskScore  float64            `json:"riskScore" bson:"riskScore"`
	ProofTag   string             `json:"proofTag" bson:"proofTag"`
	IsVerified bool               `json:"isVerified" bson:"isVerified"`
	VerifiedAt time.Time          `json:"verifiedAt" bson:"verifiedAt"`
	ExpiresAt  time.Time          `json:"expiresAt" bson:"expiresAt"`
}

// Expired reports whether the digital ID is past its expiry at the given instant.
func (d DigitalID) Expired(at time.Time) bool {
	return !d.ExpiresAt.IsZero() && at.After(d.ExpiresAt)
}

// User is a registered participant.
type User struct {
	ID                 string     `json:"id" bson:"_id"`
	Name               string     `json:"name" bson:"name"`
	Email              string     `json:"email" bson:"email"`
	Phone              string     `json:"phone,omitempty" bson:"phone"`
	Role               Role       `json:"role" bson:"role"`
	PasswordHash       string     `json:"-" bson:"passwordHash,omitempty"`
	DigitalID          *DigitalID `json:"digitalId,omitempty" bson:"digitalId,omitempty"`
	IsVerified         bool       `json:"isVerified" bson:"isVerified"`
	RegistrationSource string     `json:"registrationSource,omitempty" bson:"registrationSource,omitempty"`
	CreatedAt          time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt" bson:"updatedAt"`
	LastLoginAt        *time.Time `json:"lastLoginAt,omitempty" bson:"lastLoginAt,omitempty"`
}
