package handlers

import (
	"resorthub/internal/app"
	"resorthub/internal/handlers/middleware"

	authController "resorthub/internal/controllers/auth"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	Handler
	controller authController.AuthControllerInterface
}

func NewAuthHandler(app app.App, router fiber.Router) *AuthHandler {
	return &AuthHandler{
		Handler:    newHandler(app, router, "auth_handler"),
		controller: app.Controllers.Auth,
	}
}

func (h *AuthHandler) Register() {
	auth := h.router.Group("/auth")

	auth.Post("/signup/customer", h.signupCustomer)
	auth.Post("/signup/owner", h.signupOwner)
	auth.Post("/login", h.login)

	protected := auth.Group("/", h.middleware.RequireAuth())
	protected.Post("/logout", h.logout)
	protected.Get("/me", h.me)
}

func (h *AuthHandler) signupCustomer(c *fiber.Ctx) error {
	var req authController.CustomerSignupRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}

	profile, err := h.controller.SignupCustomer(c.UserContext(), req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"profile": profile})
}

func (h *AuthHandler) signupOwner(c *fiber.Ctx) error {
	var req authController.OwnerSignupRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}

	profile, err := h.controller.SignupOwner(c.UserContext(), req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"profile": profile})
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var req authController.LoginRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}

	response, err := h.controller.Login(c.UserContext(), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(response)
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	token, _ := middleware.BearerToken(c)
	if err := h.controller.Logout(c.UserContext(), token); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Logout successful"})
}

func (h *AuthHandler) me(c *fiber.Ctx) error {
	profile, err := h.controller.Me(c.UserContext(), principal(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"profile": profile})
}
