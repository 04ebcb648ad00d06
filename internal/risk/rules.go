package risk

import (
	"context"
	"fmt"
	"time"

	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/domain"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/identity"
)

// UserLookup resolves stored users by identity attribute.
type UserLookup interface {
	FindByEmail(ctx context.Context, email string) ([]domain.User, error)
	FindByPhone(ctx context.Context, phone string) ([]domain.User, error)
	FindByDigitalID(ctx context.Context, digitalID string) ([]domain.User, error)
	FindBySource(ctx context.Context, source string) ([]domain.User, error)
}

// EvaluationContext carries request scoped inputs of an evaluation.
type EvaluationContext struct {
	// Source identifies where the registration came from (client id or IP).
	// It is used only when the candidate carries no RegistrationSource.
	Source string
	Now    time.Time
}

// Finding is what a rule reports when it fires.
type Finding struct {
	Type        domain.FlagType
	Severity    domain.Severity
	Description string
	Confidence  float64
	Metadata    map[string]any
}

// Rule is one independent impersonation heuristic.
type Rule interface {
	Name() string
	Evaluate(ctx context.Context, users UserLookup, candidate domain.User, ec EvaluationContext) (*Finding, error)
}

// DefaultRules returns the four built-in rules.
func DefaultRules(velocityWindow time.Duration, velocityMax int) []Rule {
	return []Rule{
		DuplicateEmailRule{},
		DuplicatePhoneRule{},
		DuplicateDigitalIDRule{},
		VelocityRule{Window: velocityWindow, MaxAccounts: velocityMax},
	}
}

// DuplicateEmailRule fires when another user shares the candidate's email.
type DuplicateEmailRule struct{}

func (DuplicateEmailRule) Name() string { return "duplicate_email" }

func (DuplicateEmailRule) Evaluate(ctx context.Context, users UserLookup, candidate domain.User, _ EvaluationContext) (*Finding, error) {
	email := identity.NormalizeEmail(candidate.Email)
	if email == "" {
		return nil, nil
	}
	found, err := users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	others := otherUserIDs(found, candidate.ID, nil)
	if len(others) == 0 {
		return nil, nil
	}
	return &Finding{
		Type:        domain.FlagImpersonation,
		Severity:    domain.SeverityHigh,
		Description: "email address is already registered to another account",
		Confidence:  0.90,
		Metadata:    map[string]any{"rule": "duplicate_email", "matchedUserIds": others},
	}, nil
}

// DuplicatePhoneRule fires when another user shares the candidate's phone.
type DuplicatePhoneRule struct{}

func (DuplicatePhoneRule) Name() string { return "duplicate_phone" }

func (DuplicatePhoneRule) Evaluate(ctx context.Context, users UserLookup, candidate domain.User, _ EvaluationContext) (*Finding, error) {
	phone := identity.NormalizePhone(candidate.Phone)
	if phone == "" {
		return nil, nil
	}
	found, err := users.FindByPhone(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("lookup phone: %w", err)
	}
	others := otherUserIDs(found, candidate.ID, nil)
	if len(others) == 0 {
		return nil, nil
	}
	return &Finding{
		Type:        domain.FlagImpersonation,
		Severity:    domain.SeverityMedium,
		Description: "phone number is already registered to another account",
		Confidence:  0.75,
		Metadata:    map[string]any{"rule": "duplicate_phone", "matchedUserIds": others},
	}, nil
}

// DuplicateDigitalIDRule fires when a user with a different role holds the
// candidate's digital ID.
type DuplicateDigitalIDRule struct{}

func (DuplicateDigitalIDRule) Name() string { return "duplicate_digital_id" }

func (DuplicateDigitalIDRule) Evaluate(ctx context.Context, users UserLookup, candidate domain.User, _ EvaluationContext) (*Finding, error) {
	if candidate.DigitalID == nil || candidate.DigitalID.ID == "" {
		return nil, nil
	}
	found, err := users.FindByDigitalID(ctx, candidate.DigitalID.ID)
	if err != nil {
		return nil, fmt.Errorf("lookup digital id: %w", err)
	}
	others := otherUserIDs(found, candidate.ID, func(u domain.User) bool {
		return u.Role != candidate.Role
	})
	if len(others) == 0 {
		return nil, nil
	}
	return &Finding{
		Type:        domain.FlagDuplicateIdentity,
		Severity:    domain.SeverityCritical,
		Description: "digital ID is held by an account with a different role",
		Confidence:  0.95,
		Metadata: map[string]any{
			"rule":           "duplicate_digital_id",
			"digitalId":      candidate.DigitalID.ID,
			"matchedUserIds": others,
		},
	}, nil
}

// VelocityRule fires when more than MaxAccounts accounts were created from the
// candidate's registration source inside the rolling Window. The candidate
// counts only when it was created inside the window itself.
type VelocityRule struct {
	Window      time.Duration
	MaxAccounts int
}

func (VelocityRule) Name() string { return "creation_velocity" }

func (r VelocityRule) Evaluate(ctx context.Context, users UserLookup, candidate domain.User, ec EvaluationContext) (*Finding, error) {
	source := candidate.RegistrationSource
	if source == "" {
		source = ec.Source
	}
	if source == "" || r.Window <= 0 || r.MaxAccounts <= 0 {
		return nil, nil
	}
	found, err := users.FindBySource(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("lookup source: %w", err)
	}
	since := ec.Now.Add(-r.Window)
	recent := otherUserIDs(found, candidate.ID, func(u domain.User) bool {
		return !u.CreatedAt.Before(since) && !u.CreatedAt.After(ec.Now)
	})
	total := len(recent)
	if !candidate.CreatedAt.Before(since) && !candidate.CreatedAt.After(ec.Now) {
		total++
	}
	if total <= r.MaxAccounts {
		return nil, nil
	}
	return &Finding{
		Type:        domain.FlagSuspiciousActivity,
		Severity:    domain.SeverityMedium,
		Description: fmt.Sprintf("%d accounts created from the same source within %s", total, r.Window),
		Confidence:  0.60,
		Metadata: map[string]any{
			"rule":     "creation_velocity",
			"source":   source,
			"accounts": total,
			"window":   r.Window.String(),
		},
	}, nil
}

func otherUserIDs(users []domain.User, candidateID string, keep func(domain.User) bool) []string {
	var ids []string
	for _, u := range users {
		if u.ID == candidateID {
			continue
		}
		if keep != nil && !keep(u) {
			continue
		}
		ids = append(ids, u.ID)
	}
	return ids
}
