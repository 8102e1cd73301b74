package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateSessionKey returns a hex-encoded random string using the specified
// number of random bytes. Session keys use 32 bytes (64 hex characters).
func GenerateSessionKey(byteLength int) (string, error) {
	if byteLength <= 0 {
		return "", fmt.Errorf("length must be positive")
	}

	buf := make([]byte, byteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session key: %w", err)
	}

	return hex.EncodeToString(buf), nil
}
