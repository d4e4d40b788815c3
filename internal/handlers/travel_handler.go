package handlers

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/auth"
	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/dto"
	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/models"
	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/services"
	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/store"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type TravelHandler struct {
	travelService *services.TravelService
}

func NewTravelHandler(travelService *services.TravelService) *TravelHandler {
	return &TravelHandler{travelService: travelService}
}

func (h *TravelHandler) Generate(c *fiber.Ctx) error {
	id, ok := auth.IdentityFrom(c)
	if !ok {
		return unauthorized(c)
	}

	var req models.PlanRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	if req.Preferences == nil {
		req.Preferences = []string{}
	}

	plan, err := h.travelService.Generate(c.UserContext(), &req, id)
	if err != nil {
		return serverError(c, err, "generate", "Failed to generate travel plan",
			"An error occurred while generating your travel plan")
	}

	return c.JSON(plan)
}

func (h *TravelHandler) Save(c *fiber.Ctx) error {
	id, ok := auth.IdentityFrom(c)
	if !ok {
		return unauthorized(c)
	}

	planID, err := h.travelService.Save(c.UserContext(), id.ID, c.Body())
	if err != nil {
		if errors.Is(err, services.ErrInvalidPlan) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: "Invalid plan data", Message: "Travel plan data is required",
			})
		}
		return serverError(c, err, "save", "Failed to save travel plan", "Could not save your travel plan")
	}

	return c.JSON(dto.SavePlanResponse{
		Success: true,
		PlanID:  planID,
		Message: "Travel plan saved successfully",
	})
}

func (h *TravelHandler) History(c *fiber.Ctx) error {
	id, ok := auth.IdentityFrom(c)
	if !ok {
		return unauthorized(c)
	}

	plans, err := h.travelService.History(c.UserContext(), id.ID)
	if err != nil {
		return serverError(c, err, "history", "Failed to fetch travel history", "Could not retrieve your travel plans")
	}

	return c.JSON(plans)
}

func (h *TravelHandler) Get(c *fiber.Ctx) error {
	id, ok := auth.IdentityFrom(c)
	if !ok {
		return unauthorized(c)
	}

	// A malformed id cannot name a plan, so it is reported like a missing one.
	planID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return planNotFound(c, "The requested travel plan does not exist")
	}

	blob, err := h.travelService.Get(c.UserContext(), planID, id.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return planNotFound(c, "The requested travel plan does not exist")
		}
		return serverError(c, err, "get_plan", "Failed to fetch travel plan", "Could not retrieve the travel plan")
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(blob)
}

func (h *TravelHandler) Delete(c *fiber.Ctx) error {
	id, ok := auth.IdentityFrom(c)
	if !ok {
		return unauthorized(c)
	}

	const gone = "The travel plan does not exist or you do not have permission to delete it"
	planID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return planNotFound(c, gone)
	}

	if err := h.travelService.Delete(c.UserContext(), planID, id.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return planNotFound(c, gone)
		}
		return serverError(c, err, "delete_plan", "Failed to delete travel plan", "Could not delete the travel plan")
	}

	return c.JSON(dto.DeletePlanResponse{Success: true, Message: "Travel plan deleted successfully"})
}

func planNotFound(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
		Error: "Travel plan not found", Message: message,
	})
}
