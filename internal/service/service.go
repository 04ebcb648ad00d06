package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/domain"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/identity"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/repository"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/risk"
)

// LedgerRecorder appends backend generated events to the ledger.
type LedgerRecorder interface {
	Record(ctx context.Context, eventType, actorID, actorName string, details map[string]any) (domain.LedgerEvent, error)
}

// GraphProjector mirrors users into the identity link graph.
type GraphProjector interface {
	RecordUser(ctx context.Context, user domain.User) error
	RemoveUser(ctx context.Context, userID string) error
	SharedAttributes(ctx context.Context, userID string) (domain.UserLinks, error)
}

// Dependencies wires the application services.
type Dependencies struct {
	Repo      *repository.Repository
	Ledger    LedgerRecorder
	Graph     GraphProjector
	Evaluator *risk.Evaluator
	Issuer    *identity.Issuer
	Auth      AuthOptions
	Logger    *slog.Logger
}

// Services groups the application services used by the HTTP layer.
type Services struct {
	Users      *UserService
	Properties *PropertyService
	Offers     *OfferService
	RiskFlags  *RiskService
	Auth       *AuthService
}

// New constructs every service over deps.
func New(deps Dependencies) *Services {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	issuer := deps.Issuer
	if issuer == nil {
		issuer = identity.NewIssuer()
	}

	riskSvc := NewRiskService(deps.Repo.RiskFlags, deps.Evaluator, deps.Ledger, logger)
	return &Services{
		Users:      NewUserService(deps.Repo.Users, deps.Ledger, deps.Graph, riskSvc, issuer, deps.Auth.BcryptCost, logger),
		Properties: NewPropertyService(deps.Repo.Properties, deps.Repo.Users, deps.Ledger, logger),
		Offers:     NewOfferService(deps.Repo.Offers, deps.Repo.Properties, deps.Ledger, logger),
		RiskFlags:  riskSvc,
		Auth:       NewAuthService(deps.Repo.Users, deps.Ledger, deps.Auth, logger),
	}
}

// clock carries the time and id providers shared by the services.
type clock struct {
	nowFn func() time.Time
	newID func() string
}

func defaultClock() clock {
	return clock{
		nowFn: time.Now,
		newID: func() string { return uuid.NewString() },
	}
}

// now returns the current instant truncated to the millisecond precision of
// stored documents.
func (c clock) now() time.Time {
	return c.nowFn().UTC().Truncate(time.Millisecond)
}

// WithClock overrides the time provider (used primarily in tests).
func (c *clock) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		c.nowFn = nowFn
	}
}

// record appends a ledger event. Failures are logged, not returned.
func record(ctx context.Context, ledger LedgerRecorder, logger *slog.Logger, eventType, actorID, actorName string, details map[string]any) {
	if ledger == nil {
		return
	}
	if _, err := ledger.Record(ctx, eventType, actorID, actorName, details); err != nil {
		logger.Error("failed to record ledger event", "type", eventType, "actorId", actorID, "error", err)
	}
}
