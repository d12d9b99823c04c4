package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashString creates a SHA-256 hash of the input string
func HashString(input string) string {
	h := sha256.New()
	h.Write([]byte(input))
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint is a short, case-insensitive hash used to refer to contact
// details in logs without writing them out
func Fingerprint(contact string) string {
	return HashString(strings.ToLower(strings.TrimSpace(contact)))[:12]
}
