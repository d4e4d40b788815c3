package planner

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/models"
)

var fencePattern = regexp.MustCompile("(?s)```(?:json|JSON)?[ \t]*\r?\n(.*?)\r?\n?```")

// ExtractJSON returns the contents of the first fenced code block in raw, or
// raw itself (trimmed) when there is none.
func ExtractJSON(raw string) string {
	if m := fencePattern.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(raw)
}

// ParsePlan decodes a model reply into a plan. The reply may wrap the plan in
// a "travel_plan" object or be the plan itself.
func ParsePlan(raw string) (*models.TravelPlan, error) {
	body := ExtractJSON(raw)

	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	planJSON, wrapped := top["travel_plan"]
	if !wrapped {
		if _, ok := top["itinerary"]; !ok {
			if _, ok := top["destination"]; !ok {
				return nil, fmt.Errorf("%w: no travel_plan object", ErrMalformedResponse)
			}
		}
		planJSON = json.RawMessage(body)
	}

	var plan models.TravelPlan
	if err := json.Unmarshal(planJSON, &plan); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if plan.Destination == "" && plan.Itinerary == nil {
		return nil, fmt.Errorf("%w: empty travel plan", ErrMalformedResponse)
	}
	return &plan, nil
}
