package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/careline/complaint-portal/internal/domain"
	"github.com/careline/complaint-portal/internal/identity"
	apperrors "github.com/careline/complaint-portal/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Middleware validates bearer tokens and resolves the request Principal.
// Resolution happens before any policy or data access; an unresolvable
// caller is rejected here with 401 semantics.
type Middleware struct {
	tokens   *TokenManager
	resolver *identity.Resolver
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens *TokenManager, resolver *identity.Resolver) *Middleware {
	return &Middleware{tokens: tokens, resolver: resolver}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthenticated("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthenticated("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthenticated("invalid token")
	}

	principal, err := m.resolver.Resolve(c.Context(), claims.AccountID)
	if err != nil {
		return err
	}

	c.Locals(principalKey, principal)
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated principal.
func PrincipalFromContext(c *fiber.Ctx) (*domain.Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*domain.Principal)
	return principal, ok
}
