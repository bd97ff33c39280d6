package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/complaint-portal/pkg/util/errorutil"
)

const sessionKey = "auth_session"

// Session carries the caller's bearer credential for one request. It is
// verified by the service that receives it, never cached process-wide.
type Session struct {
	Token string
}

// RequireBearer extracts the bearer token into a request-scoped Session.
func RequireBearer() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return apperrors.NewUnauthorized("missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return apperrors.NewUnauthorized("invalid authorization header")
		}

		c.Locals(sessionKey, Session{Token: strings.TrimSpace(parts[1])})
		return c.Next()
	}
}

// SessionFromContext retrieves the session set by RequireBearer.
func SessionFromContext(c *fiber.Ctx) (Session, bool) {
	session, ok := c.Locals(sessionKey).(Session)
	return session, ok
}
