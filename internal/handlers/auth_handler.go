package handlers

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/auth"
	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/dto"
	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	resp, err := h.authService.Register(c.UserContext(), &req)
	if err != nil {
		if errors.Is(err, services.ErrUserExists) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: "User already exists", Message: "Username or email is already registered",
			})
		}
		return serverError(c, err, "register", "Registration failed", "Could not create user account")
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	resp, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: "Authentication failed", Message: "Invalid username or password",
			})
		}
		return serverError(c, err, "login", "Internal server error", "An unexpected error occurred")
	}

	return c.JSON(resp)
}

// Verify checks the bearer token inline. Every failure is a 401 with valid=false.
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	token := auth.BearerToken(c.Get(fiber.HeaderAuthorization))
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.VerifyResponse{Valid: false, Error: "No token provided"})
	}

	user, err := h.authService.Verify(c.UserContext(), token)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrSubjectNotFound):
			return c.Status(fiber.StatusUnauthorized).JSON(dto.VerifyResponse{Valid: false, Error: "User not found"})
		case errors.Is(err, auth.ErrInvalidToken):
			return c.Status(fiber.StatusUnauthorized).JSON(dto.VerifyResponse{Valid: false, Error: "Invalid token"})
		default:
			return serverError(c, err, "verify", "Internal server error", "An unexpected error occurred")
		}
	}

	return c.JSON(dto.VerifyResponse{Valid: true, User: user})
}
