package identity

import (
	"testing"
	"time"

	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/domain"
)

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		" +966 (50) 123-4567 ": "+966501234567",
		"00966501234567":       "+966501234567",
		"":                     "",
		"n/a":                  "",
	}
	for in, want := range cases {
		if got := NormalizePhone(in); got != want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Sarah@Example.COM "); got != "sarah@example.com" {
		t.Fatalf("unexpected normalized email %q", got)
	}
}

func TestAttributesSkipEmptyFields(t *testing.T) {
	attrs := Attributes(domain.User{ID: "u1", Email: "a@b.c"})
	if len(attrs) != 1 {
		t.Fatalf("expected 1 attribute, got %d", len(attrs))
	}
	if attrs[0].Type != AttributeEmail || attrs[0].Value != HashValue("a@b.c") {
		t.Fatalf("unexpected attribute %+v", attrs[0])
	}
}

func TestIssuerIssue(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	issuer := NewIssuer()
	issuer.WithClock(func() time.Time { return now })

	user := domain.User{ID: "u1", Email: "sarah@example.com"}
	first, err := issuer.Issue(user, domain.MethodNafath)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !first.IsVerified {
		t.Fatal("expected verified digital id")
	}
	if first.ExpiresAt.Sub(first.VerifiedAt) != DigitalIDValidity {
		t.Fatalf("unexpected validity window %s", first.ExpiresAt.Sub(first.VerifiedAt))
	}
	if first.RiskScore < 0.05 || first.RiskScore > 0.15 {
		t.Fatalf("risk score %v outside nafath range", first.RiskScore)
	}
	if len(first.ProofTag) != len("zkp_")+32 {
		t.Fatalf("unexpected proof tag %q", first.ProofTag)
	}

	second, err := issuer.Issue(user, domain.MethodNafath)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if second.RiskScore != first.RiskScore {
		t.Fatalf("expected deterministic risk score, got %v and %v", first.RiskScore, second.RiskScore)
	}
	if second.ID == first.ID {
		t.Fatal("expected distinct digital id per issuance")
	}
}

func TestIssuerRejectsUnknownMethod(t *testing.T) {
	if _, err := NewIssuer().Issue(domain.User{ID: "u1"}, "fax"); err == nil {
		t.Fatal("expected error for unknown method")
	}
}
