package identity

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/domain"
)

// DigitalIDValidity is how long an issued digital ID stays valid.
const DigitalIDValidity = 365 * 24 * time.Hour

// baseRisk is the starting risk score per verification method. Government
// backed methods start lower than document uploads.
var baseRisk = map[domain.VerificationMethod]float64{
	domain.MethodNafath:     0.05,
	domain.MethodAbsher:     0.08,
	domain.MethodNationalID: 0.15,
	domain.MethodPassport:   0.25,
}

// Issuer produces simulated zero-knowledge-proof digital IDs. No proof is
// generated or checked; the proof tag only has the shape of one.
type Issuer struct {
	nowFn func() time.Time
	newID func() string
}

// NewIssuer constructs an Issuer using the wall clock and random UUIDs.
func NewIssuer() *Issuer {
	return &Issuer{
		nowFn: time.Now,
		newID: func() string { return uuid.NewString() },
	}
}

// WithClock overrides the time provider (used primarily in tests).
func (i *Issuer) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		i.nowFn = nowFn
	}
}

// Issue returns a verified digital ID for user using method.
func (i *Issuer) Issue(user domain.User, method domain.VerificationMethod) (domain.DigitalID, error) {
	if !method.Valid() {
		return domain.DigitalID{}, fmt.Errorf("unsupported verification method %q", method)
	}
	now := i.nowFn().UTC()
	id := "did:wasatah:" + i.newID()
	seed := HashValue(user.ID + "|" + string(method) + "|" + NormalizeEmail(user.Email))

	return domain.DigitalID{
		ID:         id,
		Method:     method,
		RiskScore:  riskScore(method, seed),
		ProofTag:   "zkp_" + HashValue(seed+"|"+id)[:32],
		IsVerified: true,
		VerifiedAt: now,
		ExpiresAt:  now.Add(DigitalIDValidity),
	}, nil
}

// riskScore adds up to 0.1 of deterministic jitter derived from seed to the
// method's base score.
func riskScore(method domain.VerificationMethod, seed string) float64 {
	var jitter float64
	if len(seed) >= 16 {
		var buf [8]byte
		copy(buf[:], seed[:8])
		jitter = float64(binary.BigEndian.Uint64(buf[:])%1000) / 10000
	}
	score := baseRisk[method] + jitter
	if score > 1 {
		score = 1
	}
	return float64(int(score*1000)) / 1000
}
