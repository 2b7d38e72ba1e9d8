package auth

import (
	"context"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/spec-kit/identity-service/internal/domain"
)

const testSecret = "test-signing-secret"

type fakeUserSource struct {
	users map[string]*domain.User
}

func (f *fakeUserSource) FindByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok || user.Deleted {
		return nil, mongo.ErrNoDocuments
	}
	return user, nil
}

func newTestUser() *domain.User {
	return &domain.User{
		ID:          bson.NewObjectID(),
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Email:       "ada@example.com",
		Application: domain.ApplicationStoreManagement,
		Active:      true,
	}
}

func TestIssueAndValidate(t *testing.T) {
	user := newTestUser()
	source := &fakeUserSource{users: map[string]*domain.User{user.ID.Hex(): user}}
	tm := NewTokenManager(testSecret, source)

	token, expiresAt, err := tm.Issue(user.ID.Hex())
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(TokenTTL), expiresAt, time.Minute)

	// the stored token must match exactly for validation to pass
	user.Token = token

	claims, err := tm.Validate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
}

func TestValidateCollapsesAllFailures(t *testing.T) {
	user := newTestUser()
	source := &fakeUserSource{users: map[string]*domain.User{user.ID.Hex(): user}}
	tm := NewTokenManager(testSecret, source)

	token, _, err := tm.Issue(user.ID.Hex())
	require.NoError(t, err)
	user.Token = token

	otherManager := NewTokenManager("some-other-secret", source)
	foreignToken, _, err := otherManager.Issue(user.ID.Hex())
	require.NoError(t, err)

	unknownID := bson.NewObjectID().Hex()
	unknownToken, _, err := tm.Issue(unknownID)
	require.NoError(t, err)

	expiredToken := signExpired(t, user.ID.Hex())

	tests := []struct {
		name   string
		token  string
		mutate func()
	}{
		{name: "malformed token", token: "not.a.token"},
		{name: "wrong signature", token: foreignToken},
		{name: "expired token", token: expiredToken},
		{name: "unknown user", token: unknownToken},
		{name: "stored token mismatch", token: token, mutate: func() { user.Token = "different" }},
		{name: "logged out", token: token, mutate: func() { user.Token = "" }},
		{name: "inactive user", token: token, mutate: func() { user.Token = token; user.Active = false }},
		{name: "deleted user", token: token, mutate: func() { user.Active = true; user.Deleted = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.mutate != nil {
				tt.mutate()
			}
			claims, err := tm.Validate(context.Background(), tt.token)
			assert.Nil(t, claims)
			// every cause yields the same opaque outcome
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestValidateSkipsStorageOnBadToken(t *testing.T) {
	tm := NewTokenManager(testSecret, nil)

	// a nil source would panic if a garbage token reached the lookup
	_, err := tm.Validate(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func signExpired(t *testing.T, userID string) string {
	t.Helper()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-48 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-24 * time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}
