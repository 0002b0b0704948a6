package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/greenkeep/greenkeep-backend/internal/httpx"
	"github.com/greenkeep/greenkeep-backend/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
	userService *service.UserService
}

func NewAuthHandler(authService *service.AuthService, userService *service.UserService) *AuthHandler {
	return &AuthHandler{authService: authService, userService: userService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input service.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	if input.Email == "" || input.Password == "" || input.Username == "" {
		return httpx.BadRequest(c, "missing_fields", "Email, username, and password are required")
	}

	result, err := h.authService.Register(input)
	if err != nil {
		return httpx.BadRequest(c, "registration_failed", err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input service.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	if input.Email == "" || input.Password == "" {
		return httpx.BadRequest(c, "missing_fields", "Email and password are required")
	}

	result, err := h.authService.Login(input)
	if err != nil {
		return httpx.Unauthorized(c, "invalid_credentials", err.Error())
	}

	return c.JSON(result)
}

func (h *AuthHandler) GetCurrentUser(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	user, err := h.userService.Get(userID)
	if err != nil {
		return httpx.NotFound(c, "user_not_found", "User not found")
	}
	return c.JSON(user.ToResponse())
}
