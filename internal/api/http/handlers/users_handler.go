package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/identity-service/internal/api/dto"
	"github.com/spec-kit/identity-service/internal/domain"
	"github.com/spec-kit/identity-service/internal/service"
)

// UsersHandler exposes user management endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// Create handles POST /users.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	user, err := h.users.CreateUser(c.UserContext(), req.Input())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": user})
}

// Get handles GET /users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	user, err := h.users.GetUserByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": user})
}

// Update handles PATCH /users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	user, err := h.users.UpdateUser(c.UserContext(), c.Params("id"), req.Input())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": user})
}

// Delete handles DELETE /users/:id (soft-delete).
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	if err := h.users.DeleteUser(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// List handles GET /users. Page and limit default to 1 and 50; no
// server-side cap is enforced on limit.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	page, err := h.users.ListByApplication(c.UserContext(),
		domain.Application(c.Query("application")),
		c.QueryInt("page", 1),
		c.QueryInt("limit", 50),
		c.Query("sortField", "createdAt"),
		c.Query("sortOrder", "desc"),
	)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": page})
}
