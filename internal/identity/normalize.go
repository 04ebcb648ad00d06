package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	nonDigitRegex   = regexp.MustCompile(`\D+`)
)

// NormalizeEmail lowercases and trims the provided email.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// NormalizePhone removes non-digit characters to produce a canonical
// E.164-style representation.
func NormalizePhone(phone string) string {
	phone = nonDigitRegex.ReplaceAllString(strings.TrimSpace(phone), "")
	if phone == "" {
		return ""
	}
	phone = strings.TrimPrefix(phone, "00")
	return "+" + phone
}

// SanitizeString collapses whitespace and trims the result.
func SanitizeString(value string) string {
	value = whitespaceRegex.ReplaceAllString(value, " ")
	return strings.TrimSpace(value)
}

// HashValue returns a deterministic SHA-256 hex digest of value.
func HashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
