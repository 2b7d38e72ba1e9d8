package auth

import (
	"context"
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/identity-service/internal/domain"
	"github.com/spec-kit/identity-service/pkg/errorutil"
)

// TokenTTL is the fixed session lifetime. Deliberately not a
// configuration knob; every token lives exactly this long.
const TokenTTL = 24 * time.Hour

// ErrInvalidToken is the single outcome for every validation failure:
// malformed, expired, bad signature, unknown user, inactive or deleted
// user, stored token mismatch. Callers learn nothing about the cause.
var ErrInvalidToken = errors.New("invalid token")

// UserSource resolves the user a token refers to. Implementations must
// exclude soft-deleted users.
type UserSource interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// Claims is the signed token payload.
type Claims struct {
	UserID string `json:"sub"`
	jwt.RegisteredClaims
}

// TokenManager issues and validates session tokens. Validation
// cross-checks the stored token on the user record, so logout and
// password change invalidate a token immediately even though it has
// not expired.
type TokenManager struct {
	secret []byte
	users  UserSource
}

// NewTokenManager builds a manager signing with the given secret.
func NewTokenManager(secret string, users UserSource) *TokenManager {
	return &TokenManager{secret: []byte(secret), users: users}
}

// Issue signs a token for the user, valid for TokenTTL from now.
func (tm *TokenManager) Issue(userID string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(TokenTTL)
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, errorutil.NewDatabase("token signing failed", err)
	}
	return signed, expiresAt, nil
}

// Validate checks signature and expiry first, without touching
// storage; only a token that passes is cross-checked against the
// stored token on the referenced user. The user must be active, not
// deleted, and hold exactly this token.
func (tm *TokenManager) Validate(ctx context.Context, tokenStr string) (*Claims, error) {
	claims, err := tm.parse(tokenStr)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := tm.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !user.Active || user.Deleted || user.Token != tokenStr {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (tm *TokenManager) parse(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
