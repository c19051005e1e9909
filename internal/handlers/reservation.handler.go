package handlers

import (
	"resorthub/internal/app"
	"resorthub/internal/apperror"
	"resorthub/internal/models"

	reservationController "resorthub/internal/controllers/reservations"

	"github.com/gofiber/fiber/v2"
)

type ReservationHandler struct {
	Handler
	controller reservationController.ReservationControllerInterface
}

func NewReservationHandler(app app.App, router fiber.Router) *ReservationHandler {
	return &ReservationHandler{
		Handler:    newHandler(app, router, "reservation_handler"),
		controller: app.Controllers.Reservation,
	}
}

func (h *ReservationHandler) Register() {
	reservations := h.router.Group("/reservations", h.middleware.RequireAuth())

	reservations.Get("/confirmed-dates", h.confirmedDates)
	reservations.Get("/pending", h.middleware.RequireRole(models.PrincipalOwner), h.pending)
	reservations.Post("/", h.middleware.RequireRole(models.PrincipalCustomer), h.create)
	reservations.Get("/", h.list)
	reservations.Get("/:id", h.detail)
	reservations.Post("/:id/action", h.act)
}

func (h *ReservationHandler) create(c *fiber.Ctx) error {
	var req reservationController.CreateReservationRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}

	created, err := h.controller.Create(c.UserContext(), principal(c), req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *ReservationHandler) list(c *fiber.Ctx) error {
	reservations, err := h.controller.List(c.UserContext(), principal(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"reservations": reservations})
}

func (h *ReservationHandler) pending(c *fiber.Ctx) error {
	reservations, err := h.controller.Pending(c.UserContext(), principal(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"reservations": reservations})
}

func (h *ReservationHandler) detail(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	detail, err := h.controller.Detail(c.UserContext(), principal(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(detail)
}

type actionRequest struct {
	Action string `json:"action"`
}

func (h *ReservationHandler) act(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req actionRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}

	view, err := h.controller.Act(c.UserContext(), principal(c), id, req.Action)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": view.Status, "reservation": view})
}

func (h *ReservationHandler) confirmedDates(c *fiber.Ctx) error {
	month := c.QueryInt("month", 0)
	year := c.QueryInt("year", 0)
	if month == 0 || year == 0 {
		return fail(c, apperror.ErrMissingField.WithMessage("month and year are required"))
	}

	dates, err := h.controller.ConfirmedDates(c.UserContext(), reservationController.ConfirmedDatesQuery{
		OwnerID:      c.Query("owner_id"),
		ResourceKind: c.Query("resource_kind"),
		ResourceID:   c.Query("resource_id"),
		Month:        month,
		Year:         year,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"dates": dates})
}
