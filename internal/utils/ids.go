package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateFriendlyID returns a short human-readable id like "APP-042917".
// Uniqueness is enforced by the database index; callers retry on conflict.
func GenerateFriendlyID(prefix string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}
	return fmt.Sprintf("%s-%06d", prefix, n.Int64()), nil
}
