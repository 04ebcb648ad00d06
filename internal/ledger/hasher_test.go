package ledger

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestHashEvent_IsDeterministic(t *testing.T) {
	ts := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	details := map[string]any{"propertyId": "p1", "amount": 2500000}

	first, err := HashEvent("offer_made", "u1", "Sarah", details, ts)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	second, err := HashEvent("offer_made", "u1", "Sarah", map[string]any{"amount": 2500000, "propertyId": "p1"}, ts.In(time.FixedZone("AST", 3*3600)))
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical hashes, got %s and %s", first, second)
	}

	const want = "0xe18844c6d8aeac05e73143e3e141ddec8227fc85182044d6a4ab78a61bb59750"
	if first != want {
		t.Fatalf("expected %s, got %s", want, first)
	}
}

func TestHashEvent_ChangesWithContent(t *testing.T) {
	ts := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	base, _ := HashEvent("offer_made", "u1", "Sarah", map[string]any{"amount": 1}, ts)
	other, _ := HashEvent("offer_made", "u1", "Sarah", map[string]any{"amount": 2}, ts)
	later, _ := HashEvent("offer_made", "u1", "Sarah", map[string]any{"amount": 1}, ts.Add(time.Millisecond))

	if base == other || base == later {
		t.Fatalf("expected distinct hashes, got %s %s %s", base, other, later)
	}
	if !strings.HasPrefix(base, "0x") || len(base) != 66 {
		t.Fatalf("unexpected hash format %q", base)
	}
}

func TestRandomSigner_Format(t *testing.T) {
	signer := RandomSigner{Reader: bytes.NewReader(bytes.Repeat([]byte{0xab}, 65))}
	sig, err := signer.Sign("0x00")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if sig != "0x"+strings.Repeat("ab", 65) {
		t.Fatalf("unexpected signature %q", sig)
	}

	short := RandomSigner{Reader: bytes.NewReader([]byte{1, 2, 3})}
	if _, err := short.Sign("0x00"); err == nil {
		t.Fatalf("expected error from short reader")
	}
}

func TestChainHash_DependsOnPredecessor(t *testing.T) {
	h := "0x" + strings.Repeat("1", 64)
	if ChainHash(GenesisHash, h) == ChainHash("0x"+strings.Repeat("2", 64), h) {
		t.Fatalf("expected chain hash to change with predecessor")
	}
}
