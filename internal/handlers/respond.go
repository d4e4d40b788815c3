package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/auth"
	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/dto"
	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/validation"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// bind parses the JSON body into dst and validates it. On failure it writes
// the 400 response and returns ok=false.
func bind(c *fiber.Ctx, dst any) (bool, error) {
	if err := c.BodyParser(dst); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "Invalid request body", Message: "Request body must be valid JSON",
		})
	}

	if err := validation.Struct(dst); err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: "Validation Error", Details: verr.Fields,
			})
		}
		return false, err
	}
	return true, nil
}

// serverError logs err and writes a 500 with a client-safe message.
func serverError(c *fiber.Ctx, err error, action, title, message string) error {
	attrs := []any{"error", err, "action", action, "path", c.Path()}
	if rid, ok := c.Locals(requestid.ConfigDefault.ContextKey).(string); ok {
		attrs = append(attrs, "request_id", rid)
	}
	if id, ok := auth.IdentityFrom(c); ok {
		attrs = append(attrs, "user_id", id.ID.String())
	}
	slog.Error(title, attrs...)

	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: title, Message: message,
	})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: "Access token required", Message: "Please provide a valid authentication token",
	})
}
