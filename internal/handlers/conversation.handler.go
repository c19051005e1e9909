package handlers

import (
	"resorthub/internal/app"
	"resorthub/internal/apperror"
	"resorthub/internal/models"
	"resorthub/internal/repositories"

	messagingController "resorthub/internal/controllers/messaging"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ConversationHandler struct {
	Handler
	controller messagingController.MessagingControllerInterface
}

func NewConversationHandler(app app.App, router fiber.Router) *ConversationHandler {
	return &ConversationHandler{
		Handler:    newHandler(app, router, "conversation_handler"),
		controller: app.Controllers.Messaging,
	}
}

func (h *ConversationHandler) Register() {
	conversations := h.router.Group("/conversations", h.middleware.RequireAuth())
	conversations.Post("/", h.getOrCreate)
	conversations.Get("/recent", h.recent)
	conversations.Get("/:id/messages", h.listMessages(repositories.DirectThread))
	conversations.Post("/:id/messages", h.postMessage(repositories.DirectThread))

	support := h.router.Group("/admin-conversations", h.middleware.RequireAuth())
	support.Post("/", h.getOrCreateAdmin)
	support.Get("/:id/messages", h.listMessages(repositories.AdminThread))
	support.Post("/:id/messages", h.postMessage(repositories.AdminThread))
}

type conversationRequest struct {
	CounterpartID string `json:"counterpartId"`
}

type adminConversationRequest struct {
	PartyKind string `json:"partyKind"`
	PartyID   string `json:"partyId"`
}

type postMessageRequest struct {
	Text string `json:"text"`
}

func (h *ConversationHandler) getOrCreate(c *fiber.Ctx) error {
	var req conversationRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	if req.CounterpartID == "" {
		return fail(c, apperror.ErrMissingField.WithMessage("counterpartId is required"))
	}
	counterpartID, err := uuid.Parse(req.CounterpartID)
	if err != nil {
		return fail(c, apperror.ErrNotFound)
	}

	conversation, err := h.controller.GetOrCreateConversation(c.UserContext(), principal(c), counterpartID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(conversation)
}

// getOrCreateAdmin opens the support thread. Customers and owners send an
// empty body; the admin names the party.
func (h *ConversationHandler) getOrCreateAdmin(c *fiber.Ctx) error {
	var req adminConversationRequest
	if len(c.Body()) > 0 {
		if err := bind(c, &req); err != nil {
			return fail(c, err)
		}
	}

	var party *models.Principal
	if req.PartyID != "" {
		partyID, err := uuid.Parse(req.PartyID)
		if err != nil {
			return fail(c, apperror.ErrNotFound)
		}
		kind := models.PrincipalKind(req.PartyKind)
		if kind != models.PrincipalCustomer && kind != models.PrincipalOwner {
			return fail(c, apperror.ErrInvalidInput.WithMessage("partyKind must be customer or owner"))
		}
		p := models.NewPrincipal(kind, partyID)
		party = &p
	}

	conversation, err := h.controller.GetOrCreateAdminConversation(c.UserContext(), principal(c), party)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(conversation)
}

func (h *ConversationHandler) recent(c *fiber.Ctx) error {
	summaries, err := h.controller.RecentConversations(c.UserContext(), principal(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"conversations": summaries})
}

func (h *ConversationHandler) listMessages(thread func(uuid.UUID) repositories.Thread) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramUUID(c, "id")
		if err != nil {
			return fail(c, err)
		}

		messages, err := h.controller.ListMessages(c.UserContext(), principal(c), thread(id))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"messages": messages})
	}
}

func (h *ConversationHandler) postMessage(thread func(uuid.UUID) repositories.Thread) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramUUID(c, "id")
		if err != nil {
			return fail(c, err)
		}

		var req postMessageRequest
		if err := bind(c, &req); err != nil {
			return fail(c, err)
		}

		message, err := h.controller.PostMessage(c.UserContext(), principal(c), thread(id), req.Text)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"messageId": message.ID,
			"createdAt": message.CreatedAt,
			"message":   message,
		})
	}
}
