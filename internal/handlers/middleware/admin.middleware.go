package middleware

import (
	"resorthub/internal/models"

	"github.com/gofiber/fiber/v2"
)

func (m *Middleware) RequireAdmin() fiber.Handler {
	return m.RequireRole(models.PrincipalAdmin)
}
