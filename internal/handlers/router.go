package handlers

import (
	"resorthub/internal/app"
	"resorthub/internal/apperror"
	"resorthub/internal/handlers/middleware"
	"resorthub/internal/logger"
	"resorthub/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/google/uuid"
)

type Handler struct {
	middleware middleware.Middleware
	log        logger.Logger
	router     fiber.Router
}

func newHandler(app app.App, router fiber.Router, file string) Handler {
	return Handler{
		middleware: app.Middleware,
		log:        logger.New("handlers").File(file),
		router:     router,
	}
}

func Router(router fiber.Router, app *app.App) (err error) {
	router.Use(app.Middleware.TraceID())
	router.Use(app.Middleware.Metrics())

	WebSocketHandler(router, app.Websocket)
	router.Get("/metrics", adaptor.HTTPHandler(app.Services.Metrics.Handler()))

	api := router.Group("/api")
	HealthHandler(api, app.Config)
	NewAuthHandler(*app, api).Register()
	NewReservationHandler(*app, api).Register()
	NewConversationHandler(*app, api).Register()
	NewNotificationHandler(*app, api).Register()
	NewListingHandler(*app, api).Register()
	NewAdminHandler(*app, api).Register()

	return nil
}

// principal reads the caller stored by RequireAuth.
func principal(c *fiber.Ctx) models.Principal {
	p, _ := middleware.GetPrincipal(c)
	return p
}

// paramUUID parses a path id. A malformed id cannot name a row, so it is NotFound.
func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperror.ErrNotFound
	}
	return id, nil
}

func fail(c *fiber.Ctx, err error) error {
	return middleware.Fail(c, err)
}

func bind(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperror.ErrInvalidInput.WithMessage("Invalid request body")
	}
	return nil
}
