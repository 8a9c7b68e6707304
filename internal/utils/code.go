package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// RandomCode returns a cryptographically random 6-digit code in 100000-999999.
func RandomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("random code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
