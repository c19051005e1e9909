package middleware

import (
	"strings"

	"resorthub/internal/apperror"
	"resorthub/internal/models"

	"github.com/gofiber/fiber/v2"
)

const PrincipalLocalKey = "principal"

// RequireAuth resolves the bearer token to a principal and stores it in locals.
func (m *Middleware) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		log := m.log.TraceFromContext(c.UserContext()).Function("RequireAuth")

		token, ok := BearerToken(c)
		if !ok {
			return Fail(c, apperror.ErrInvalidCredentials.WithMessage("Authorization header required"))
		}

		principal, err := m.sessions.Resolve(c.UserContext(), token)
		if err != nil {
			log.Debug("session rejected", "error", err.Error())
			return Fail(c, err)
		}

		c.Locals(PrincipalLocalKey, principal)
		return c.Next()
	}
}

// RequireRole admits only the given principal kinds. It must run after RequireAuth.
func (m *Middleware) RequireRole(kinds ...models.PrincipalKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := GetPrincipal(c)
		if !ok {
			return Fail(c, apperror.ErrInvalidCredentials.WithMessage("Authentication required"))
		}

		for _, kind := range kinds {
			if principal.Kind == kind {
				return c.Next()
			}
		}

		m.log.TraceFromContext(c.UserContext()).
			Function("RequireRole").
			Info("role rejected", "principal", principal.String())
		return Fail(c, apperror.ErrNotAuthorized)
	}
}

func GetPrincipal(c *fiber.Ctx) (models.Principal, bool) {
	principal, ok := c.Locals(PrincipalLocalKey).(models.Principal)
	return principal, ok
}

func BearerToken(c *fiber.Ctx) (string, bool) {
	parts := strings.Fields(c.Get(fiber.HeaderAuthorization))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

// Fail writes err as {"error", "code"} with the status its kind maps to.
func Fail(c *fiber.Ctx, err error) error {
	message, code := apperror.Body(err)
	return c.Status(apperror.Status(err)).JSON(fiber.Map{
		"error": message,
		"code":  code,
	})
}
