package risk

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/domain"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/repository"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubLookup struct {
	byEmail  map[string][]domain.User
	byPhone  map[string][]domain.User
	byDID    map[string][]domain.User
	bySource map[string][]domain.User
	phoneErr error
}

func (s stubLookup) FindByEmail(_ context.Context, email string) ([]domain.User, error) {
	return s.byEmail[email], nil
}

func (s stubLookup) FindByPhone(_ context.Context, phone string) ([]domain.User, error) {
	if s.phoneErr != nil {
		return nil, s.phoneErr
	}
	return s.byPhone[phone], nil
}

func (s stubLookup) FindByDigitalID(_ context.Context, id string) ([]domain.User, error) {
	return s.byDID[id], nil
}

func (s stubLookup) FindBySource(_ context.Context, source string) ([]domain.User, error) {
	return s.bySource[source], nil
}

func TestEvaluator_DuplicateEmailProducesSingleHighFlag(t *testing.T) {
	repo := repository.New(store.NewMemoryBackend())
	ctx := context.Background()
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	first := domain.User{ID: "u1", Name: "Sarah", Email: "sarah@example.com", Role: domain.RoleBuyer, CreatedAt: now}
	second := domain.User{ID: "u9", Name: "Sara", Email: "sarah@example.com", Role: domain.RoleBuyer, CreatedAt: now}
	for _, u := range []domain.User{first, second} {
		if err := repo.Users.Create(ctx, u); err != nil {
			t.Fatalf("create %s: %v", u.ID, err)
		}
	}

	evaluator := NewEvaluator(repo.Users, DefaultRules(time.Hour, 3), discardLogger())
	flags, err := evaluator.Evaluate(ctx, second, EvaluationContext{Now: now})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(flags) != 1 {
		t.Fatalf("expected exactly one flag, got %+v", flags)
	}
	if flags[0].Type != domain.FlagImpersonation || flags[0].Severity != domain.SeverityHigh {
		t.Fatalf("unexpected flag %+v", flags[0])
	}
	if flags[0].UserID != "u9" || !flags[0].IsActive || flags[0].ID == "" {
		t.Fatalf("flag not attributed to candidate: %+v", flags[0])
	}
}

func TestEvaluator_RuleTable(t *testing.T) {
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	did := &domain.DigitalID{ID: "did:wasatah:1"}

	tests := []struct {
		name      string
		lookup    stubLookup
		candidate domain.User
		ec        EvaluationContext
		want      []domain.FlagType
	}{
		{
			name:      "no matches",
			lookup:    stubLookup{},
			candidate: domain.User{ID: "c", Email: "new@example.com", Phone: "+966500000009"},
			want:      nil,
		},
		{
			name: "empty fields never match",
			lookup: stubLookup{
				byEmail: map[string][]domain.User{"": {{ID: "x"}}},
				byPhone: map[string][]domain.User{"": {{ID: "x"}}},
			},
			candidate: domain.User{ID: "c"},
			want:      nil,
		},
		{
			name: "duplicate phone",
			lookup: stubLookup{
				byPhone: map[string][]domain.User{"+966500000001": {{ID: "u1"}}},
			},
			candidate: domain.User{ID: "c", Phone: "00966 50 000 0001"},
			want:      []domain.FlagType{domain.FlagImpersonation},
		},
		{
			name: "digital id with same role is ignored",
			lookup: stubLookup{
				byDID: map[string][]domain.User{did.ID: {{ID: "u1", Role: domain.RoleBuyer}}},
			},
			candidate: domain.User{ID: "c", Role: domain.RoleBuyer, DigitalID: did},
			want:      nil,
		},
		{
			name: "digital id with different role",
			lookup: stubLookup{
				byDID: map[string][]domain.User{did.ID: {{ID: "u2", Role: domain.RoleSeller}}},
			},
			candidate: domain.User{ID: "c", Role: domain.RoleBuyer, DigitalID: did},
			want:      []domain.FlagType{domain.FlagDuplicateIdentity},
		},
		{
			name: "velocity over limit",
			lookup: stubLookup{
				bySource: map[string][]domain.User{"10.0.0.1": {
					{ID: "a", CreatedAt: now.Add(-10 * time.Minute)},
					{ID: "b", CreatedAt: now.Add(-20 * time.Minute)},
					{ID: "c2", CreatedAt: now.Add(-30 * time.Minute)},
				}},
			},
			candidate: domain.User{ID: "c", CreatedAt: now},
			ec:        EvaluationContext{Source: "10.0.0.1", Now: now},
			want:      []domain.FlagType{domain.FlagSuspiciousActivity},
		},
		{
			name: "velocity uses the candidate's own registration source",
			lookup: stubLookup{
				bySource: map[string][]domain.User{
					"192.0.2.1": {
						{ID: "a", CreatedAt: now.Add(-10 * time.Minute)},
						{ID: "b", CreatedAt: now.Add(-20 * time.Minute)},
						{ID: "d", CreatedAt: now.Add(-30 * time.Minute)},
					},
					"10.0.0.1": {{ID: "c", RegistrationSource: "10.0.0.1", CreatedAt: now.Add(-5 * time.Minute)}},
				},
			},
			candidate: domain.User{ID: "c", RegistrationSource: "10.0.0.1", CreatedAt: now.Add(-5 * time.Minute)},
			ec:        EvaluationContext{Source: "192.0.2.1", Now: now},
			want:      nil,
		},
		{
			name: "velocity does not count a candidate created before the window",
			lookup: stubLookup{
				bySource: map[string][]domain.User{"10.0.0.1": {
					{ID: "a", CreatedAt: now.Add(-10 * time.Minute)},
					{ID: "b", CreatedAt: now.Add(-20 * time.Minute)},
					{ID: "d", CreatedAt: now.Add(-30 * time.Minute)},
				}},
			},
			candidate: domain.User{ID: "c", RegistrationSource: "10.0.0.1", CreatedAt: now.Add(-72 * time.Hour)},
			ec:        EvaluationContext{Now: now},
			want:      nil,
		},
		{
			name: "velocity ignores accounts outside window",
			lookup: stubLookup{
				bySource: map[string][]domain.User{"10.0.0.1": {
					{ID: "a", CreatedAt: now.Add(-10 * time.Minute)},
					{ID: "b", CreatedAt: now.Add(-2 * time.Hour)},
					{ID: "c2", CreatedAt: now.Add(-3 * time.Hour)},
				}},
			},
			candidate: domain.User{ID: "c"},
			ec:        EvaluationContext{Source: "10.0.0.1", Now: now},
			want:      nil,
		},
		{
			name: "all rules fire together",
			lookup: stubLookup{
				byEmail:  map[string][]domain.User{"dup@example.com": {{ID: "u1"}}},
				byPhone:  map[string][]domain.User{"+966500000001": {{ID: "u1"}}},
				byDID:    map[string][]domain.User{did.ID: {{ID: "u1", Role: domain.RoleSeller}}},
				bySource: map[string][]domain.User{"cli": {{ID: "a", CreatedAt: now}, {ID: "b", CreatedAt: now}, {ID: "d", CreatedAt: now}}},
			},
			candidate: domain.User{ID: "c", Email: " DUP@example.com", Phone: "+966500000001", Role: domain.RoleBuyer, DigitalID: did, CreatedAt: now},
			ec:        EvaluationContext{Source: "cli", Now: now},
			want: []domain.FlagType{
				domain.FlagImpersonation,
				domain.FlagImpersonation,
				domain.FlagDuplicateIdentity,
				domain.FlagSuspiciousActivity,
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.ec.Now.IsZero() {
				tc.ec.Now = now
			}
			evaluator := NewEvaluator(tc.lookup, DefaultRules(time.Hour, 3), discardLogger())
			flags, err := evaluator.Evaluate(context.Background(), tc.candidate, tc.ec)
			if err != nil {
				t.Fatalf("evaluate: %v", err)
			}
			if len(flags) != len(tc.want) {
				t.Fatalf("expected %d flags, got %+v", len(tc.want), flags)
			}
			for i, flag := range flags {
				if flag.Type != tc.want[i] {
					t.Fatalf("flag %d: expected %s, got %s", i, tc.want[i], flag.Type)
				}
			}
		})
	}
}

func TestEvaluator_LookupErrorDoesNotStopOtherRules(t *testing.T) {
	lookupErr := errors.New("phone index unavailable")
	lookup := stubLookup{
		byEmail:  map[string][]domain.User{"sarah@example.com": {{ID: "u1"}}},
		phoneErr: lookupErr,
	}
	evaluator := NewEvaluator(lookup, DefaultRules(time.Hour, 3), discardLogger())

	flags, err := evaluator.Evaluate(context.Background(), domain.User{
		ID:    "c",
		Email: "sarah@example.com",
		Phone: "+966500000001",
	}, EvaluationContext{})
	if !errors.Is(err, lookupErr) {
		t.Fatalf("expected joined lookup error, got %v", err)
	}
	if len(flags) != 1 || flags[0].Severity != domain.SeverityHigh {
		t.Fatalf("expected email flag despite phone failure, got %+v", flags)
	}
}
