package planner

import (
	"fmt"
	"math"
	"time"

	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/models"
)

// PlaceholderPlan builds a generic plan from the request alone. It is
// deterministic: dates follow StartDate and the daily budget is split
// 60/20/10/10 between accommodation, food, transportation and attractions.
func PlaceholderPlan(req *models.PlanRequest) *models.TravelPlan {
	days := req.Days
	if days < 1 {
		days = 1
	}
	budget := req.BudgetValue()
	daily := math.Floor(budget / float64(days))
	share := func(pct float64) string {
		return fmt.Sprintf("%.0f CNY", math.Floor(daily*pct/100)*float64(days))
	}

	start, err := req.Start()
	if err != nil {
		start = time.Time{}
	}

	itinerary := make(models.Itinerary, 0, days)
	for i := 0; i < days; i++ {
		date := ""
		if !start.IsZero() {
			date = start.AddDate(0, 0, i).Format("2006-01-02")
		}
		itinerary = append(itinerary, models.ItineraryDay{
			Key: models.DayKey(i + 1),
			Day: &models.Day{
				Date:  date,
				Theme: fmt.Sprintf("Day %d in %s", i+1, req.Destination),
				Morning: &models.Slot{
					Time: "09:00-12:00", Activity: "Sightseeing",
					Location:    req.Destination,
					Description: "Visit the best-known sights of " + req.Destination,
				},
				Lunch: &models.Slot{
					Time: "12:00-13:30", Activity: "Lunch",
					Description: "Try the local specialties",
				},
				Afternoon: &models.Slot{
					Time: "14:00-17:00", Activity: "Free time",
					Location:    req.Destination,
					Description: "Explore at your own pace",
				},
				Evening: &models.Slot{
					Time: "18:00-19:30", Activity: "Dinner",
					Description: "Dinner at a recommended restaurant",
				},
			},
		})
	}

	prefs := req.Preferences
	if prefs == nil {
		prefs = []string{}
	}

	return &models.TravelPlan{
		Destination:            req.Destination,
		StartDate:              req.StartDate,
		Duration:               models.Number(days),
		Travelers:              models.Number(req.Travelers),
		TotalBudget:            models.Number(budget),
		Preferences:            prefs,
		AdditionalRequirements: req.AdditionalRequirements,
		BudgetBreakdown: &models.BudgetBreakdown{
			Accommodation:  share(60),
			Food:           share(20),
			Transportation: share(10),
			Attractions:    share(10),
		},
		Itinerary:           itinerary,
		FoodRecommendations: []string{},
		MoneySavingTips:     []string{},
	}
}
