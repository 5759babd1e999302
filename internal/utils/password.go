package utils

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns the bcrypt hash of plain.  Costs outside bcrypt's
// accepted range are clamped.
func HashPassword(plain string, cost int) (string, error) {
	cost = max(bcrypt.MinCost, min(cost, bcrypt.MaxCost))
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// VerifyPassword compares a bcrypt hash with a plain password.  An empty
// hash never matches, so accounts created by the identity provider cannot
// log in with a password.
func VerifyPassword(hash, plain string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
