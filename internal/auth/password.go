package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/identity-service/pkg/errorutil"
)

// DefaultBcryptCost matches common interactive-login settings.
const DefaultBcryptCost = 12

// HashPassword hashes a plaintext password with the configured cost.
// bcrypt salts per call, so equal inputs yield distinct hashes. A
// failure here is an infrastructure fault, not bad input.
func HashPassword(password string, cost int) (string, error) {
	if cost <= 0 {
		cost = DefaultBcryptCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", errorutil.NewDatabase("password hashing failed", err)
	}
	return string(hashed), nil
}

// ComparePassword verifies a plaintext password against its hash.
func ComparePassword(hashed, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}
