package ledger

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

const hashPrefix = "0x"

// GenesisHash is the previous hash of the first event in the ledger.
var GenesisHash = hashPrefix + strings.Repeat("0", 64)

// HashEvent returns the hex SHA-256 digest of the canonical JSON encoding of
// {type, actorId, actorName, details, timestamp}. Map keys are encoded in
// sorted order, so equal inputs always produce the same hash. The hash does not
// depend on any other event.
func HashEvent(eventType, actorID, actorName string, details map[string]any, timestamp time.Time) (string, error) {
	payload := map[string]any{
		"type":      eventType,
		"actorId":   actorID,
		"actorName": actorName,
		"details":   details,
		"timestamp": timestamp.UTC().Format(time.RFC3339Nano),
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode event payload: %w", err)
	}
	return digest(encoded), nil
}

// ChainHash links an event hash to the chain hash of the event before it.
func ChainHash(previous, hash string) string {
	return digest([]byte(previous + hash))
}

func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hashPrefix + hex.EncodeToString(sum[:])
}

// Signer stamps an event hash with a signature.
type Signer interface {
	Sign(hash string) (string, error)
}

// RandomSigner returns random 65-byte tokens shaped like recoverable ECDSA
// signatures. They cannot be verified.
type RandomSigner struct {
	Reader io.Reader
}

func (s RandomSigner) Sign(string) (string, error) {
	reader := s.Reader
	if reader == nil {
		reader = rand.Reader
	}
	buf := make([]byte, 65)
	if _, err := io.ReadFull(reader, buf); err != nil {
		return "", fmt.Errorf("generate signature: %w", err)
	}
	return hashPrefix + hex.EncodeToString(buf), nil
}
