package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/identity-service/internal/domain"
	"github.com/spec-kit/identity-service/internal/observability"
	"github.com/spec-kit/identity-service/pkg/errorutil"
)

const principalKey = "auth_principal"

// Principal is the authenticated user attached to the request.
type Principal struct {
	User *domain.User
}

// Middleware validates bearer tokens and loads the principal. Token
// validation already cross-checks the stored token, so a logged-out or
// password-changed session is rejected here even before expiry.
type Middleware struct {
	tokens  *TokenManager
	users   UserSource
	metrics *observability.Metrics
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens *TokenManager, users UserSource, metrics *observability.Metrics) *Middleware {
	return &Middleware{tokens: tokens, users: users, metrics: metrics}
}

// Handle enforces authentication for protected routes. Every failure
// mode yields the same response.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		m.metrics.RecordAuthFailure()
		return errorutil.NewAuth("Invalid credentials")
	}

	claims, err := m.tokens.Validate(c.UserContext(), parts[1])
	if err != nil {
		m.metrics.RecordAuthFailure()
		return errorutil.NewAuth("Invalid credentials")
	}

	user, err := m.users.FindByID(c.UserContext(), claims.UserID)
	if err != nil {
		m.metrics.RecordAuthFailure()
		return errorutil.NewAuth("Invalid credentials")
	}

	c.Locals(principalKey, &Principal{User: user})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
