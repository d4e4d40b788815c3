package planner

import (
	"strconv"
	"strings"

	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/models"
)

// SystemPrompt is the fixed system message sent with every generation request.
const SystemPrompt = "You are a helpful travel assistant."

const planSchema = `{
  "travel_plan": {
    "destination": "string",
    "start_date": "string (format: YYYY-MM-DD)",
    "duration": "string (e.g., '3 days')",
    "travelers": "number",
    "total_budget": "string (e.g., '2000 CNY')",
    "preferences": ["string"],
    "additional_requirements": "string",
    "budget_breakdown": {
      "accommodation": "string",
      "food": "string",
      "transportation": "string",
      "attractions": "string"
    },
    "itinerary": {
      "day_1": {
        "date": "string (format: YYYY-MM-DD)",
        "theme": "string",
        "morning": { "time": "string", "activity": "string", "location": "string", "cost": "string", "description": "string" },
        "lunch": { "time": "string", "activity": "string", "location": "string", "cost": "string", "description": "string" },
        "afternoon": { "time": "string", "activity": "string", "location": "string", "cost": "string", "description": "string" },
        "evening": { "time": "string", "activity": "string", "location": "string", "cost": "string", "description": "string" }
      }
    },
    "accommodation_suggestion": {
      "type": "string",
      "location": "string",
      "estimated_cost": "string",
      "recommendation": "string"
    },
    "transportation_tips": {
      "metro": "string",
      "bus": "string",
      "walking": "string"
    },
    "food_recommendations": ["string"],
    "money_saving_tips": ["string"]
  }
}`

// BuildPrompt renders req into the user message. The output depends only on req.
func BuildPrompt(req *models.PlanRequest) string {
	var b strings.Builder

	b.WriteString("You are an expert travel planning API. Your task is to generate a detailed travel plan.\n")
	b.WriteString("You MUST respond with ONLY a single, valid JSON object. Do not include any markdown formatting or any other explanatory text. ")
	b.WriteString("The JSON object must strictly adhere to the following schema:\n\n")
	b.WriteString(planSchema)
	b.WriteString("\n\nThe itinerary must contain exactly one entry per day, keyed day_1 to day_")
	b.WriteString(strconv.Itoa(req.Days))
	b.WriteString(", each with the same structure as day_1.\n\n")

	b.WriteString("Now, generate the travel plan for the following user request, strictly adhering to the JSON schema provided above:\n")
	b.WriteString("- Destination: " + req.Destination + "\n")
	b.WriteString("- Start Date: " + req.StartDate + "\n")
	b.WriteString("- Duration: " + strconv.Itoa(req.Days) + " days\n")
	b.WriteString("- Number of Travelers: " + strconv.Itoa(req.Travelers) + "\n")
	b.WriteString("- Budget: " + strconv.FormatFloat(req.BudgetValue(), 'f', -1, 64) + " CNY\n")
	b.WriteString("- Preferences: " + strings.Join(req.Preferences, ", ") + "\n")
	b.WriteString("- Additional Requirements: " + req.AdditionalRequirements + "\n")

	return b.String()
}
