package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/domain"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/graph"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/ledger"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/repository"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/risk"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/store"
)

type fixture struct {
	svc    *Services
	repo   *repository.Repository
	ledger *ledger.Service
	graph  *graph.MemoryClient
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := repository.New(store.NewMemoryBackend())
	ledgerSvc := ledger.NewService(repo.Ledger, logger, ledger.Options{})
	client := graph.NewMemoryClient()

	svc := New(Dependencies{
		Repo:      repo,
		Ledger:    ledgerSvc,
		Graph:     graph.NewLinks(client, logger),
		Evaluator: risk.NewEvaluator(repo.Users, risk.DefaultRules(time.Hour, 3), logger),
		Auth:      AuthOptions{Secret: []byte("test-secret"), TokenTTL: time.Hour, BcryptCost: bcrypt.MinCost},
		Logger:    logger,
	})
	return fixture{svc: svc, repo: repo, ledger: ledgerSvc, graph: client}
}

func eventTypes(t *testing.T, f fixture) []string {
	t.Helper()
	events, err := f.repo.Ledger.InSequence(context.Background())
	if err != nil {
		t.Fatalf("list ledger: %v", err)
	}
	types := make([]string, 0, len(events))
	for _, ev := range events {
		types = append(types, ev.Type)
	}
	return types
}

func TestUserService_RegisterNormalisesAndRecords(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.svc.Users.Register(ctx, RegisterUserInput{
		Name:     "  Sarah   Al-Qahtani ",
		Email:    " Sarah@Example.COM",
		Phone:    "00966 50 123 4567",
		Role:     domain.RoleBuyer,
		Password: "secret",
	}, "10.0.0.1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ID == "" || user.Name != "Sarah Al-Qahtani" || user.Email != "sarah@example.com" || user.Phone != "+966501234567" {
		t.Fatalf("unexpected user %+v", user)
	}
	if user.PasswordHash == "" || user.PasswordHash == "secret" {
		t.Fatalf("expected password to be hashed")
	}
	if user.RegistrationSource != "10.0.0.1" {
		t.Fatalf("expected registration source, got %q", user.RegistrationSource)
	}

	if got := eventTypes(t, f); len(got) != 1 || got[0] != domain.EventUserRegistered {
		t.Fatalf("expected one user_registered event, got %v", got)
	}
	if calls := f.graph.Calls(); len(calls) != 1 || calls[0].Mode != graph.ModeWrite {
		t.Fatalf("expected user to be projected into the graph, got %+v", calls)
	}
}

func TestUserService_RegisterDuplicateEmailRaisesFlag(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Users.Register(ctx, RegisterUserInput{Name: "Sarah", Email: "sarah@example.com", Role: domain.RoleBuyer}, ""); err != nil {
		t.Fatalf("register first: %v", err)
	}
	second, err := f.svc.Users.Register(ctx, RegisterUserInput{Name: "Sara", Email: "SARAH@example.com", Role: domain.RoleBuyer}, "")
	if err != nil {
		t.Fatalf("register second: %v", err)
	}

	flags, err := f.svc.RiskFlags.List(ctx, repository.RiskFlagQuery{UserID: second.ID})
	if err != nil {
		t.Fatalf("list flags: %v", err)
	}
	if len(flags) != 1 || flags[0].Type != domain.FlagImpersonation || flags[0].Severity != domain.SeverityHigh {
		t.Fatalf("expected one high impersonation flag, got %+v", flags)
	}

	got := eventTypes(t, f)
	want := []string{domain.EventUserRegistered, domain.EventUserRegistered, domain.EventRiskFlagged}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("expected events %v, got %v", want, got)
	}
}

func TestUserService_RegisterValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Users.Register(context.Background(), RegisterUserInput{Email: "not-an-email", Role: "landlord"}, "")
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields := map[string]bool{}
	for _, fe := range verr.Fields {
		fields[fe.Field] = true
	}
	for _, want := range []string{"name", "email", "role"} {
		if !fields[want] {
			t.Fatalf("expected %s to be reported, got %+v", want, verr.Fields)
		}
	}
}

func TestUserService_VerifyIdentity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.svc.Users.Register(ctx, RegisterUserInput{Name: "Ahmed", Email: "ahmed@example.com", Role: domain.RoleSeller}, "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := f.svc.Users.VerifyIdentity(ctx, user.ID, VerifyIdentityInput{Method: "fax"}); err == nil {
		t.Fatalf("expected unknown method to be rejected")
	}

	verified, err := f.svc.Users.VerifyIdentity(ctx, user.ID, VerifyIdentityInput{Method: domain.MethodNafath})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !verified.IsVerified || verified.DigitalID == nil || !strings.HasPrefix(verified.DigitalID.ProofTag, "zkp_") {
		t.Fatalf("unexpected verified user %+v", verified)
	}
	stored, _ := f.svc.Users.Get(ctx, user.ID)
	if stored.DigitalID == nil || stored.DigitalID.ID != verified.DigitalID.ID {
		t.Fatalf("digital id not persisted: %+v", stored)
	}
	got := eventTypes(t, f)
	if got[len(got)-1] != domain.EventIdentityVerified {
		t.Fatalf("expected identity_verified event last, got %v", got)
	}
}

func TestUserService_UpdateKeepsImmutableFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.svc.Users.Register(ctx, RegisterUserInput{Name: "Fatimah", Email: "fatimah@example.com", Role: domain.RoleBroker, Password: "pw"}, "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	updated, err := f.svc.Users.Update(ctx, user.ID, func(u *domain.User) error {
		u.ID = "hijacked"
		u.Name = "Fatimah Z."
		u.PasswordHash = ""
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != user.ID || updated.PasswordHash != user.PasswordHash || !updated.CreatedAt.Equal(user.CreatedAt) {
		t.Fatalf("immutable fields changed: %+v", updated)
	}
	if updated.Name != "Fatimah Z." {
		t.Fatalf("expected name update, got %q", updated.Name)
	}

	if err := f.svc.Users.Delete(ctx, user.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.svc.Users.Get(ctx, user.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestPropertyService_CreateAndTransfer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	seller, err := f.svc.Users.Register(ctx, RegisterUserInput{ID: "u2", Name: "Ahmed", Email: "ahmed@example.com", Role: domain.RoleSeller}, "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	p, err := f.svc.Properties.Create(ctx, PropertyInput{Title: "Villa", City: "Riyadh", Price: 2500000, SellerID: seller.ID})
	if err != nil {
		t.Fatalf("create property: %v", err)
	}
	if p.Status != domain.PropertyAvailable || p.Currency != "SAR" {
		t.Fatalf("expected defaults, got %+v", p)
	}
	if len(p.OwnershipHistory) != 1 || p.OwnershipHistory[0].OwnerName != "Ahmed" || p.OwnershipHistory[0].TransferType != domain.TransferInitial {
		t.Fatalf("expected seller as initial owner, got %+v", p.OwnershipHistory)
	}

	transferred, err := f.svc.Properties.Transfer(ctx, p.ID, TransferInput{NewOwnerID: "u1", NewOwnerName: "Sarah"})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if domain.OpenHops(transferred.OwnershipHistory) != 1 || len(transferred.OwnershipHistory) != 2 {
		t.Fatalf("expected two hops with one open, got %+v", transferred.OwnershipHistory)
	}
	last := transferred.OwnershipHistory[1]
	if last.OwnerID != "u1" || last.TransferType != domain.TransferSale || transferred.Status != domain.PropertySold {
		t.Fatalf("unexpected transfer result %+v", transferred)
	}

	events, _ := f.ledger.List(ctx, repository.LedgerQuery{Type: domain.EventOwnershipTransferred})
	if len(events) != 1 || events[0].Hash != last.TransactionHash {
		t.Fatalf("expected hop to carry the transfer event hash, got %+v", events)
	}

	if _, err := f.svc.Properties.Transfer(ctx, p.ID, TransferInput{NewOwnerID: "u1", NewOwnerName: "Sarah"}); err == nil {
		t.Fatalf("expected transfer to current owner to be rejected")
	}
}

func TestPropertyService_RejectsSecondOpenHop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	from := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := f.svc.Properties.Create(ctx, PropertyInput{
		Title: "Flat", City: "Jeddah", Price: 900000, SellerID: "u2",
		OwnershipHistory: []domain.OwnershipHop{
			{OwnerID: "a", FromDate: from, TransferType: domain.TransferInitial},
			{OwnerID: "u2", FromDate: from.AddDate(1, 0, 0), TransferType: domain.TransferSale},
		},
	})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Fields[0].Field != "ownershipHistory" {
		t.Fatalf("expected ownershipHistory validation error, got %v", err)
	}

	p, err := f.svc.Properties.Create(ctx, PropertyInput{Title: "Flat", City: "Jeddah", Price: 900000, SellerID: "u2"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = f.svc.Properties.Update(ctx, p.ID, func(p *domain.Property) error {
		p.OwnershipHistory = append(p.OwnershipHistory, domain.OwnershipHop{OwnerID: "x", FromDate: from, TransferType: domain.TransferGift})
		return nil
	})
	if !errors.As(err, &verr) {
		t.Fatalf("expected update to be rejected, got %v", err)
	}
	stored, _ := f.svc.Properties.Get(ctx, p.ID)
	if len(stored.OwnershipHistory) != 1 {
		t.Fatalf("rejected update must not be stored, got %+v", stored.OwnershipHistory)
	}
}

type failingRecorder struct{}

func (failingRecorder) Record(context.Context, string, string, string, map[string]any) (domain.LedgerEvent, error) {
	return domain.LedgerEvent{}, errors.New("ledger down")
}

func TestPropertyService_TransferRollsBackWhenLedgerFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	p, err := f.svc.Properties.Create(ctx, PropertyInput{Title: "Villa", City: "Riyadh", Price: 2500000, SellerID: "u2"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	properties := NewPropertyService(f.repo.Properties, f.repo.Users, failingRecorder{}, logger)
	if _, err := properties.Transfer(ctx, p.ID, TransferInput{NewOwnerID: "u1", NewOwnerName: "Sarah"}); err == nil {
		t.Fatal("expected transfer to fail when the ledger is down")
	}

	stored, err := f.svc.Properties.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(stored.OwnershipHistory) != 1 || stored.OwnershipHistory[0].ToDate != nil || stored.Status != domain.PropertyAvailable {
		t.Fatalf("expected untouched property, got %+v", stored)
	}
}

func TestPropertyService_TransferBeforeAcquisitionRecordsNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acquired := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	p, err := f.svc.Properties.Create(ctx, PropertyInput{
		Title: "Flat", City: "Jeddah", Price: 900000, SellerID: "u2",
		OwnershipHistory: []domain.OwnershipHop{{OwnerID: "u2", FromDate: acquired, TransferType: domain.TransferInitial}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	f.svc.Properties.WithClock(func() time.Time { return acquired.AddDate(0, -1, 0) })
	_, err = f.svc.Properties.Transfer(ctx, p.ID, TransferInput{NewOwnerID: "u1", NewOwnerName: "Sarah"})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	events, _ := f.ledger.List(ctx, repository.LedgerQuery{Type: domain.EventOwnershipTransferred})
	if len(events) != 0 {
		t.Fatalf("expected no transfer event, got %+v", events)
	}
}

func TestOfferService_AnyStatusTransition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.Properties.Create(ctx, PropertyInput{Title: "Villa", City: "Riyadh", Price: 1, SellerID: "u2"})
	if err != nil {
		t.Fatalf("create property: %v", err)
	}
	offer, err := f.svc.Offers.Create(ctx, OfferInput{PropertyID: p.ID, BuyerID: "u1", BuyerName: "Sarah", Amount: 2400000})
	if err != nil {
		t.Fatalf("create offer: %v", err)
	}
	if offer.Status != domain.OfferPending {
		t.Fatalf("expected pending offer, got %s", offer.Status)
	}

	for _, next := range []domain.OfferStatus{domain.OfferAccepted, domain.OfferPending, domain.OfferExpired} {
		updated, err := f.svc.Offers.Update(ctx, offer.ID, func(o *domain.Offer) error {
			o.Status = next
			return nil
		})
		if err != nil {
			t.Fatalf("update to %s: %v", next, err)
		}
		if updated.Status != next {
			t.Fatalf("expected %s, got %s", next, updated.Status)
		}
	}

	changes, _ := f.ledger.List(ctx, repository.LedgerQuery{Type: domain.EventOfferStatusChanged})
	if len(changes) != 3 {
		t.Fatalf("expected 3 status change events, got %d", len(changes))
	}
}

func TestOfferService_CreateRequiresExistingProperty(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Offers.Create(context.Background(), OfferInput{PropertyID: "missing", BuyerID: "u1", BuyerName: "Sarah", Amount: 10})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Fields[0].Field != "propertyId" {
		t.Fatalf("expected propertyId validation error, got %v", err)
	}
}

func TestRiskService_Resolve(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	flag := domain.RiskFlag{ID: "f1", UserID: "u1", Type: domain.FlagImpersonation, Severity: domain.SeverityHigh, IsActive: true}
	if err := f.repo.RiskFlags.Create(ctx, flag); err != nil {
		t.Fatalf("create flag: %v", err)
	}

	if _, err := f.svc.RiskFlags.Resolve(ctx, "f1", ResolveFlagInput{}); err == nil {
		t.Fatalf("expected resolvedBy to be required")
	}
	resolved, err := f.svc.RiskFlags.Resolve(ctx, "f1", ResolveFlagInput{ResolvedBy: "u3"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.IsActive || resolved.ResolvedAt == nil || resolved.ResolvedBy != "u3" {
		t.Fatalf("unexpected resolved flag %+v", resolved)
	}

	active := true
	open, _ := f.svc.RiskFlags.List(ctx, repository.RiskFlagQuery{Active: &active})
	if len(open) != 0 {
		t.Fatalf("expected no active flags, got %+v", open)
	}
}

func TestAuthService_LoginAndAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.svc.Users.Register(ctx, RegisterUserInput{Name: "Sarah", Email: "sarah@example.com", Role: domain.RoleBuyer, Password: "demo1234"}, "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := f.svc.Auth.Login(ctx, LoginInput{Email: "sarah@example.com", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}

	result, err := f.svc.Auth.Login(ctx, LoginInput{Email: "SARAH@example.com", Password: "demo1234"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.Token == "" || result.User.ID != user.ID || result.User.LastLoginAt == nil {
		t.Fatalf("unexpected login result %+v", result)
	}

	me, err := f.svc.Auth.Authenticate(ctx, result.Token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if me.ID != user.ID {
		t.Fatalf("expected %s, got %s", user.ID, me.ID)
	}

	if _, err := f.svc.Auth.Authenticate(ctx, result.Token+"x"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}

	f.svc.Auth.WithClock(func() time.Time { return time.Now().Add(2 * time.Hour) })
	if _, err := f.svc.Auth.Authenticate(ctx, result.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token to be rejected, got %v", err)
	}
}
