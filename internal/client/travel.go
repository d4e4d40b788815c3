package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/dto"
	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/models"
	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/planner"
	"github.com/google/uuid"
)

// Fallback decides what Generate does when the server cannot produce a plan.
type Fallback string

const (
	FallbackFail    Fallback = "fail"
	FallbackDegrade Fallback = "degrade"
)

// Generate asks the server for a plan. Under FallbackDegrade a failed request
// (other than an authentication or validation failure) yields a local
// placeholder plan marked Degraded.
func (c *Client) Generate(ctx context.Context, req *models.PlanRequest) (*models.GeneratedPlan, error) {
	var out models.GeneratedPlan
	err := c.do(ctx, http.MethodPost, "/travel/generate", req, &out, true)
	if err == nil {
		return &out, nil
	}
	if c.fallback != FallbackDegrade || !degradable(err) {
		return nil, err
	}
	return &models.GeneratedPlan{TravelPlan: planner.PlaceholderPlan(req), Degraded: true}, nil
}

func degradable(err error) bool {
	if errors.Is(err, ErrNotAuthenticated) || errors.Is(err, context.Canceled) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	return true
}

// Save stores plan on the server and returns its id.
func (c *Client) Save(ctx context.Context, plan *models.TravelPlan) (uuid.UUID, error) {
	var resp dto.SavePlanResponse
	if err := c.do(ctx, http.MethodPost, "/travel/save", plan, &resp, true); err != nil {
		return uuid.Nil, err
	}
	return resp.PlanID, nil
}

// SaveRaw stores an already encoded plan document unchanged.
func (c *Client) SaveRaw(ctx context.Context, document []byte) (uuid.UUID, error) {
	var resp dto.SavePlanResponse
	if err := c.do(ctx, http.MethodPost, "/travel/save", document, &resp, true); err != nil {
		return uuid.Nil, err
	}
	return resp.PlanID, nil
}

func (c *Client) History(ctx context.Context) ([]models.PlanSummary, error) {
	var out []models.PlanSummary
	if err := c.do(ctx, http.MethodGet, "/travel/history", nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

// GetRaw returns the stored plan document exactly as the server holds it.
func (c *Client) GetRaw(ctx context.Context, id uuid.UUID) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/travel/"+id.String(), nil, &raw, true); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *Client) Get(ctx context.Context, id uuid.UUID) (*models.TravelPlan, error) {
	raw, err := c.GetRaw(ctx, id)
	if err != nil {
		return nil, err
	}
	var plan models.TravelPlan
	if err := json.Unmarshal(raw, &plan); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	return &plan, nil
}

func (c *Client) Delete(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/travel/"+id.String(), nil, nil, true)
}

func (c *Client) Profile(ctx context.Context) (*dto.ProfileResponse, error) {
	var out dto.ProfileResponse
	if err := c.do(ctx, http.MethodGet, "/user/profile", nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Stats(ctx context.Context) (*dto.StatsResponse, error) {
	var out dto.StatsResponse
	if err := c.do(ctx, http.MethodGet, "/user/stats", nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}
