package handlers

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/auth"
	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/dto"
	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/services"
	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/store"
	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) Profile(c *fiber.Ctx) error {
	id, ok := auth.IdentityFrom(c)
	if !ok {
		return unauthorized(c)
	}

	profile, err := h.userService.Profile(c.UserContext(), id.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return userNotFound(c)
		}
		return serverError(c, err, "profile", "Failed to fetch user profile", "Could not retrieve your profile information")
	}

	return c.JSON(profile)
}

func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	id, ok := auth.IdentityFrom(c)
	if !ok {
		return unauthorized(c)
	}

	var req dto.UpdateProfileRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	resp, err := h.userService.UpdateProfile(c.UserContext(), id.ID, &req)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: "Invalid input", Message: "At least one field (username or email) is required",
			})
		case errors.Is(err, store.ErrConflict):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: "Update failed", Message: "Username or email is already in use by another account",
			})
		case errors.Is(err, store.ErrNotFound):
			return userNotFound(c)
		}
		return serverError(c, err, "update_profile", "Failed to update profile", "Could not update your profile information")
	}

	return c.JSON(resp)
}

func (h *UserHandler) Stats(c *fiber.Ctx) error {
	id, ok := auth.IdentityFrom(c)
	if !ok {
		return unauthorized(c)
	}

	stats, err := h.userService.Stats(c.UserContext(), id.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return userNotFound(c)
		}
		return serverError(c, err, "stats", "Failed to fetch user statistics", "Could not retrieve your statistics")
	}

	return c.JSON(stats)
}

func userNotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
		Error: "User not found", Message: "User profile not found",
	})
}
