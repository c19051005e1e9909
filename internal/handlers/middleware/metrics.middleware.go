package middleware

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// Metrics counts requests by method, matched route pattern and status.
func (m *Middleware) Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		status := c.Response().StatusCode()
		if fiberErr, ok := err.(*fiber.Error); ok {
			status = fiberErr.Code
		}

		route := c.Route().Path
		if route == "" {
			route = "unmatched"
		}
		m.metrics.HTTPRequest(c.Method(), route, strconv.Itoa(status))
		return err
	}
}
