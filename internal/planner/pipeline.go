// Package planner turns a plan request into an enriched travel plan: it
// prompts the text-generation service, parses the reply and attaches place
// metadata to every itinerary slot.
package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/models"
	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/places"
	"github.com/google/uuid"
)

var (
	ErrGenerationFailed  = errors.New("travel plan generation failed")
	ErrMalformedResponse = errors.New("travel plan response is not valid JSON")
)

// Policy decides what Generate does when the model call or its parsing fails.
type Policy string

const (
	// PolicyFail surfaces the error to the caller.
	PolicyFail Policy = "fail"
	// PolicyDegrade returns PlaceholderPlan marked as degraded.
	PolicyDegrade Policy = "degrade"
)

// Generator produces a completion for a system and user message.
type Generator interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type Pipeline struct {
	gen    Generator
	places places.Finder
	policy Policy
	logger *slog.Logger
}

func NewPipeline(gen Generator, finder places.Finder, policy Policy, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if policy != PolicyDegrade {
		policy = PolicyFail
	}
	return &Pipeline{gen: gen, places: finder, policy: policy, logger: logger}
}

// Generate builds the prompt, calls the model, parses the reply and enriches
// every slot with place details. userID is used for logging only.
func (p *Pipeline) Generate(ctx context.Context, req *models.PlanRequest, userID uuid.UUID) (*models.GeneratedPlan, error) {
	start := time.Now()
	log := p.logger.With("user_id", userID.String(), "action", "generate")

	plan, err := p.draft(ctx, req)
	if err != nil {
		if p.policy != PolicyDegrade {
			log.Error("travel plan generation failed", "error", err, "destination", req.Destination)
			return nil, err
		}
		log.Warn("travel plan generation failed, returning placeholder", "error", err, "destination", req.Destination)
		return &models.GeneratedPlan{TravelPlan: PlaceholderPlan(req), Degraded: true}, nil
	}

	p.enrich(ctx, plan, log)

	log.Info("travel plan generated",
		"destination", req.Destination,
		"days", len(plan.Itinerary),
		"latency_ms", float64(time.Since(start).Milliseconds()),
	)
	return &models.GeneratedPlan{TravelPlan: plan}, nil
}

func (p *Pipeline) draft(ctx context.Context, req *models.PlanRequest) (*models.TravelPlan, error) {
	reply, err := p.gen.Complete(ctx, SystemPrompt, BuildPrompt(req))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	return ParsePlan(reply)
}

// enrich looks up every slot location in day then slot order, one call at a
// time. Failures leave the slot unchanged.
func (p *Pipeline) enrich(ctx context.Context, plan *models.TravelPlan, log *slog.Logger) {
	if p.places == nil {
		return
	}

	for _, entry := range plan.Itinerary {
		if entry.Day == nil {
			continue
		}
		for i, slot := range entry.Day.Slots() {
			if slot == nil || slot.Location == "" {
				continue
			}
			if ctx.Err() != nil {
				return
			}

			details, err := p.places.Lookup(ctx, slot.Location)
			if err != nil {
				log.Warn("place lookup failed",
					"action", "enrich", "error", err,
					"day", entry.Key, "slot", models.SlotNames[i], "location", slot.Location)
				continue
			}
			if details == nil {
				log.Warn("place lookup returned no results",
					"action", "enrich",
					"day", entry.Key, "slot", models.SlotNames[i], "location", slot.Location)
				continue
			}
			slot.LocationDetails = details
		}
	}
}
