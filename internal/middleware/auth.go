package middleware

import (
	"context"
	"strings"

	"churchflow-backend/internal/domain"
	"churchflow-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const identityLocal = "identity"

// Authenticator resolves a token to the caller's identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Identity, error)
}

// RequireAuth reads the session cookie, falling back to an Authorization Bearer header,
// and stores the resolved identity for handlers.
func RequireAuth(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := tokenFromRequest(c)
		if token == "" {
			return response.Unauthorized(c, "Unauthorized")
		}
		id, err := auth.Authenticate(c.UserContext(), token)
		if err != nil {
			return response.FromError(c, err)
		}
		c.Locals(identityLocal, id)
		return c.Next()
	}
}

func tokenFromRequest(c *fiber.Ctx) string {
	if tok := strings.TrimSpace(c.Cookies(TokenCookieName)); tok != "" {
		return tok
	}
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// SetIdentity stores id for downstream handlers.
func SetIdentity(c *fiber.Ctx, id *domain.Identity) {
	c.Locals(identityLocal, id)
}

// GetIdentity returns the authenticated caller, or nil outside RequireAuth.
func GetIdentity(c *fiber.Ctx) *domain.Identity {
	id, _ := c.Locals(identityLocal).(*domain.Identity)
	return id
}
