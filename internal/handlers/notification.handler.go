package handlers

import (
	"resorthub/internal/app"
	"resorthub/internal/models"

	notificationController "resorthub/internal/controllers/notifications"

	"github.com/gofiber/fiber/v2"
)

type NotificationHandler struct {
	Handler
	controller notificationController.NotificationControllerInterface
}

func NewNotificationHandler(app app.App, router fiber.Router) *NotificationHandler {
	return &NotificationHandler{
		Handler:    newHandler(app, router, "notification_handler"),
		controller: app.Controllers.Notification,
	}
}

func (h *NotificationHandler) Register() {
	notifications := h.router.Group("/notifications", h.middleware.RequireAuth())
	notifications.Get("/", h.list)
	notifications.Get("/unread-count", h.unreadCount)
	notifications.Post("/read-all", h.middleware.RequireRole(models.PrincipalAdmin), h.markAllRead)
	notifications.Post("/:id/read", h.markRead)
}

func (h *NotificationHandler) list(c *fiber.Ctx) error {
	notifications, err := h.controller.List(c.UserContext(), principal(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"notifications": notifications})
}

func (h *NotificationHandler) unreadCount(c *fiber.Ctx) error {
	count, err := h.controller.UnreadCount(c.UserContext(), principal(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"count": count})
}

func (h *NotificationHandler) markRead(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	if err := h.controller.MarkRead(c.UserContext(), principal(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *NotificationHandler) markAllRead(c *fiber.Ctx) error {
	rows, err := h.controller.MarkAllRead(c.UserContext(), principal(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "updated": rows})
}
