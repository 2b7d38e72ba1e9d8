package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/identity-service/internal/api/dto"
	"github.com/spec-kit/identity-service/internal/auth"
	"github.com/spec-kit/identity-service/internal/service"
)

// AuthHandler exposes session endpoints.
type AuthHandler struct {
	users *service.UserService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(userService *service.UserService) *AuthHandler {
	return &AuthHandler{users: userService}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "email and password required")
	}

	user, token, expiresAt, err := h.users.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"user": user,
		"auth": dto.AuthResponse{Token: token, ExpiresAt: expiresAt},
	}})
}

// Logout handles POST /auth/logout for the authenticated user.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "not authenticated")
	}
	if err := h.users.Logout(c.UserContext(), principal.User.ID.Hex()); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ChangePassword handles POST /auth/password/change.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "not authenticated")
	}

	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	err := h.users.ChangePassword(c.UserContext(), principal.User.ID.Hex(), req.CurrentPassword, req.NewPassword)
	if err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Session handles GET /auth/session, confirming the bearer token and
// returning the user it belongs to.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "not authenticated")
	}
	return c.JSON(fiber.Map{"data": principal.User})
}
