package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/auth"
	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/models"
	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/planner"
	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/store"
	"github.com/google/uuid"
)

var ErrInvalidPlan = errors.New("travel plan data is required")

type TravelService struct {
	pipeline *planner.Pipeline
	plans    *store.Plans
}

func NewTravelService(pipeline *planner.Pipeline, plans *store.Plans) *TravelService {
	return &TravelService{pipeline: pipeline, plans: plans}
}

func (s *TravelService) Generate(ctx context.Context, req *models.PlanRequest, caller *auth.Identity) (*models.GeneratedPlan, error) {
	return s.pipeline.Generate(ctx, req, caller.ID)
}

// planHeader is the subset of a plan document copied into summary columns.
type planHeader struct {
	Destination            string          `json:"destination"`
	StartDate              string          `json:"start_date"`
	Duration               models.Number   `json:"duration"`
	Travelers              models.Number   `json:"travelers"`
	TotalBudget            models.Number   `json:"total_budget"`
	Preferences            json.RawMessage `json:"preferences"`
	AdditionalRequirements string          `json:"additional_requirements"`
}

// Save stores a plan document as given. The document must be a JSON object
// with a non-empty destination.
func (s *TravelService) Save(ctx context.Context, ownerID uuid.UUID, document []byte) (uuid.UUID, error) {
	trimmed := bytes.TrimSpace(document)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return uuid.Nil, ErrInvalidPlan
	}

	var header planHeader
	if err := json.Unmarshal(trimmed, &header); err != nil {
		return uuid.Nil, ErrInvalidPlan
	}
	if strings.TrimSpace(header.Destination) == "" {
		return uuid.Nil, ErrInvalidPlan
	}

	var prefs []string
	if len(header.Preferences) > 0 {
		// Preferences of any other shape are kept in the blob only.
		_ = json.Unmarshal(header.Preferences, &prefs)
	}

	return s.plans.Create(ctx, ownerID, store.PlanInput{
		Destination:            header.Destination,
		StartDate:              header.StartDate,
		Days:                   header.Duration.Int(),
		Travelers:              header.Travelers.Int(),
		Budget:                 float64(header.TotalBudget),
		Preferences:            prefs,
		AdditionalRequirements: header.AdditionalRequirements,
	}, trimmed)
}

func (s *TravelService) History(ctx context.Context, ownerID uuid.UUID) ([]models.PlanSummary, error) {
	return s.plans.List(ctx, ownerID)
}

func (s *TravelService) Get(ctx context.Context, planID, ownerID uuid.UUID) ([]byte, error) {
	return s.plans.Get(ctx, planID, ownerID)
}

func (s *TravelService) Delete(ctx context.Context, planID, ownerID uuid.UUID) error {
	return s.plans.Delete(ctx, planID, ownerID)
}
