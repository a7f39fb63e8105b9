package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// GeneratePassword returns a random URL-safe password built from n random bytes.
func GeneratePassword(n int) (string, error) {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
