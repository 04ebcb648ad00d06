package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/domain"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/graph"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/identity"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/repository"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/risk"
)

// UserService registers, verifies and maintains users.
type UserService struct {
	clock
	users      *repository.Users
	ledger     LedgerRecorder
	graph      GraphProjector
	risk       *RiskService
	issuer     *identity.Issuer
	bcryptCost int
	logger     *slog.Logger
}

// NewUserService constructs a UserService. projector and riskSvc may be nil.
func NewUserService(users *repository.Users, ledger LedgerRecorder, projector GraphProjector, riskSvc *RiskService, issuer *identity.Issuer, bcryptCost int, logger *slog.Logger) *UserService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{
		clock:      defaultClock(),
		users:      users,
		ledger:     ledger,
		graph:      projector,
		risk:       riskSvc,
		issuer:     issuer,
		bcryptCost: bcryptCost,
		logger:     logger.With("component", "users"),
	}
}

// List returns users, newest first.
func (s *UserService) List(ctx context.Context, q repository.UserQuery) ([]domain.User, error) {
	return s.users.List(ctx, q)
}

// Get returns one user.
func (s *UserService) Get(ctx context.Context, id string) (domain.User, error) {
	return s.users.Get(ctx, id)
}

// Register creates a user registered from source, records the registration
// and runs the impersonation rules against it.
func (s *UserService) Register(ctx context.Context, in RegisterUserInput, source string) (domain.User, error) {
	now := s.now()
	user := domain.User{
		ID:                 in.ID,
		Name:               identity.SanitizeString(in.Name),
		Email:              identity.NormalizeEmail(in.Email),
		Phone:              identity.NormalizePhone(in.Phone),
		Role:               in.Role,
		RegistrationSource: source,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if user.ID == "" {
		user.ID = s.newID()
	}
	if err := validateUser(user); err != nil {
		return domain.User{}, err
	}
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
		if err != nil {
			return domain.User{}, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, err
	}
	s.logger.Info("user registered", "userId", user.ID, "role", user.Role)

	record(ctx, s.ledger, s.logger, domain.EventUserRegistered, user.ID, user.Name, map[string]any{
		"role":  string(user.Role),
		"email": identity.HashValue(user.Email),
	})
	s.project(ctx, user)

	if s.risk != nil {
		if _, err := s.risk.Evaluate(ctx, user, risk.EvaluationContext{Source: source, Now: now}); err != nil {
			s.logger.Warn("registration risk evaluation failed", "userId", user.ID, "error", err)
		}
	}
	return user, nil
}

// Update loads the user, applies fn and stores the result. The id, creation
// time and password hash cannot be changed through fn.
func (s *UserService) Update(ctx context.Context, id string, fn func(*domain.User) error) (domain.User, error) {
	existing, err := s.users.Get(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	updated := existing
	if err := fn(&updated); err != nil {
		return domain.User{}, err
	}

	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	updated.PasswordHash = existing.PasswordHash
	updated.Name = identity.SanitizeString(updated.Name)
	updated.Email = identity.NormalizeEmail(updated.Email)
	updated.Phone = identity.NormalizePhone(updated.Phone)
	updated.UpdatedAt = s.now()
	if err := validateUser(updated); err != nil {
		return domain.User{}, err
	}

	if err := s.users.Update(ctx, id, updated); err != nil {
		return domain.User{}, err
	}
	s.project(ctx, updated)
	return updated, nil
}

// Delete removes the user.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	if s.graph != nil {
		if err := s.graph.RemoveUser(ctx, id); err != nil {
			s.logger.Warn("failed to remove user from graph", "userId", id, "error", err)
		}
	}
	return nil
}

// VerifyIdentity issues a simulated digital ID to the user and marks it
// verified.
func (s *UserService) VerifyIdentity(ctx context.Context, id string, in VerifyIdentityInput) (domain.User, error) {
	if !in.Method.Valid() {
		verr := &domain.ValidationError{}
		verr.Add("method", "method must be one of nafath, absher, national_id, passport")
		return domain.User{}, verr
	}
	user, err := s.users.Get(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	digitalID, err := s.issuer.Issue(user, in.Method)
	if err != nil {
		return domain.User{}, err
	}
	user.DigitalID = &digitalID
	user.IsVerified = true
	user.UpdatedAt = s.now()
	if err := s.users.Update(ctx, id, user); err != nil {
		return domain.User{}, err
	}

	record(ctx, s.ledger, s.logger, domain.EventIdentityVerified, user.ID, user.Name, map[string]any{
		"method":    string(digitalID.Method),
		"digitalId": digitalID.ID,
		"riskScore": digitalID.RiskScore,
		"proofTag":  digitalID.ProofTag,
	})
	s.project(ctx, user)
	return user, nil
}

// Evaluate runs the impersonation rules against a stored user. Velocity is
// judged against the user's own registration source.
func (s *UserService) Evaluate(ctx context.Context, id string) ([]domain.RiskFlag, error) {
	if s.risk == nil {
		return nil, errors.New("risk evaluation is not configured")
	}
	user, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.risk.Evaluate(ctx, user, risk.EvaluationContext{Now: s.now()})
}

// Links returns identity attributes the user shares with other users.
func (s *UserService) Links(ctx context.Context, id string) (domain.UserLinks, error) {
	if _, err := s.users.Get(ctx, id); err != nil {
		return domain.UserLinks{}, err
	}
	if s.graph == nil {
		return domain.UserLinks{}, graph.ErrUnavailable
	}
	return s.graph.SharedAttributes(ctx, id)
}

func (s *UserService) project(ctx context.Context, user domain.User) {
	if s.graph == nil {
		return
	}
	if err := s.graph.RecordUser(ctx, user); err != nil {
		s.logger.Warn("failed to project user into graph", "userId", user.ID, "error", err)
	}
}
