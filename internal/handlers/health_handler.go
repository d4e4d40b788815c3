package handlers

import (
	"context"
	"time"

	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/dto"
	"github.com/gofiber/fiber/v2"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db          Pinger
	environment string
}

func NewHealthHandler(db Pinger, environment string) *HealthHandler {
	return &HealthHandler{db: db, environment: environment}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	dbStatus := "ok"
	if err := h.db.PingContext(ctx); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	return c.JSON(dto.HealthResponse{
		Status:      "OK",
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Environment: h.environment,
		DB:          dbStatus,
	})
}
