package handlers

import (
	"resorthub/internal/app"

	adminController "resorthub/internal/controllers/admin"

	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	Handler
	controller adminController.AdminControllerInterface
}

func NewAdminHandler(app app.App, router fiber.Router) *AdminHandler {
	return &AdminHandler{
		Handler:    newHandler(app, router, "admin_handler"),
		controller: app.Controllers.Admin,
	}
}

func (h *AdminHandler) Register() {
	admin := h.router.Group("/admin", h.middleware.RequireAuth(), h.middleware.RequireAdmin())

	admin.Get("/listings/pending", h.pendingListings)
	admin.Post("/listings/:id/approve", h.approveListing)
	admin.Post("/listings/:id/disapprove", h.disapproveListing)

	admin.Get("/customers", h.customers)
	admin.Get("/owners", h.owners)
	admin.Delete("/customers/:id", h.deleteCustomer)
	admin.Delete("/owners/:id", h.deleteOwner)
}

func (h *AdminHandler) pendingListings(c *fiber.Ctx) error {
	listings, err := h.controller.PendingListings(c.UserContext(), principal(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"listings": listings})
}

func (h *AdminHandler) approveListing(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	listing, err := h.controller.ApproveListing(c.UserContext(), principal(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(listing)
}

func (h *AdminHandler) disapproveListing(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	if err := h.controller.DisapproveListing(c.UserContext(), principal(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *AdminHandler) customers(c *fiber.Ctx) error {
	customers, err := h.controller.Customers(c.UserContext(), principal(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"customers": customers})
}

func (h *AdminHandler) owners(c *fiber.Ctx) error {
	owners, err := h.controller.Owners(c.UserContext(), principal(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"owners": owners})
}

func (h *AdminHandler) deleteCustomer(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	if err := h.controller.DeleteCustomer(c.UserContext(), principal(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *AdminHandler) deleteOwner(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	if err := h.controller.DeleteOwner(c.UserContext(), principal(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
