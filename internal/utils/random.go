package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateSalt returns a fresh hex-encoded salt for password hashing.
// 32 random bytes give a 64-character hex string.
func GenerateSalt() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return hex.EncodeToString(bytes), nil
}
