package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// SlotNames lists the fixed time-slots of an itinerary day in display order.
var SlotNames = [4]string{"morning", "lunch", "afternoon", "evening"}

// RatingUnavailable is stored when a place lookup returns no rating.
const RatingUnavailable = "N/A"

// GeneratedPlan is the envelope returned by plan generation.
type GeneratedPlan struct {
	TravelPlan *TravelPlan `json:"travel_plan"`
	// Degraded is set when the plan is a placeholder substituted under the degrade fallback policy.
	Degraded bool `json:"degraded,omitempty"`
}

// TravelPlan is the plan document produced by the model and stored as a blob.
type TravelPlan struct {
	Destination             string                   `json:"destination"`
	StartDate               string                   `json:"start_date"`
	Duration                Number                   `json:"duration"`
	Travelers               Number                   `json:"travelers"`
	TotalBudget             Number                   `json:"total_budget"`
	Preferences             []string                 `json:"preferences"`
	AdditionalRequirements  string                   `json:"additional_requirements"`
	BudgetBreakdown         *BudgetBreakdown         `json:"budget_breakdown,omitempty"`
	Itinerary               Itinerary                `json:"itinerary"`
	AccommodationSuggestion *AccommodationSuggestion `json:"accommodation_suggestion,omitempty"`
	TransportationTips      *TransportationTips      `json:"transportation_tips,omitempty"`
	FoodRecommendations     []string                 `json:"food_recommendations"`
	MoneySavingTips         []string                 `json:"money_saving_tips"`
}

type BudgetBreakdown struct {
	Accommodation  string `json:"accommodation"`
	Food           string `json:"food"`
	Transportation string `json:"transportation"`
	Attractions    string `json:"attractions"`
}

type AccommodationSuggestion struct {
	Type           string `json:"type"`
	Location       string `json:"location"`
	EstimatedCost  string `json:"estimated_cost"`
	Recommendation string `json:"recommendation"`
}

type TransportationTips struct {
	Metro   string `json:"metro"`
	Bus     string `json:"bus"`
	Walking string `json:"walking"`
}

// Day is one itinerary day with its four fixed time-slots.
type Day struct {
	Date      string `json:"date"`
	Theme     string `json:"theme"`
	Morning   *Slot  `json:"morning,omitempty"`
	Lunch     *Slot  `json:"lunch,omitempty"`
	Afternoon *Slot  `json:"afternoon,omitempty"`
	Evening   *Slot  `json:"evening,omitempty"`
}

// Slots returns the day's slots in SlotNames order. Absent slots are nil.
func (d *Day) Slots() [4]*Slot {
	return [4]*Slot{d.Morning, d.Lunch, d.Afternoon, d.Evening}
}

type Slot struct {
	Time            string           `json:"time"`
	Activity        string           `json:"activity"`
	Location        string           `json:"location"`
	Cost            string           `json:"cost"`
	Description     string           `json:"description"`
	LocationDetails *LocationDetails `json:"locationDetails,omitempty"`
}

// LocationDetails is place metadata attached to a slot by enrichment.
type LocationDetails struct {
	Name        string   `json:"name"`
	Address     string   `json:"address"`
	Coordinates string   `json:"coordinates"`
	Rating      string   `json:"rating"`
	Photos      []string `json:"photos"`
}

// ItineraryDay is a keyed itinerary entry ("day_1", "day_2", ...).
type ItineraryDay struct {
	Key string
	Day *Day
}

// Itinerary is a JSON object of days that keeps its keys in day order.
type Itinerary []ItineraryDay

// DayKey returns the itinerary key for the n-th day (1-based).
func DayKey(n int) string {
	return "day_" + strconv.Itoa(n)
}

func (it Itinerary) MarshalJSON() ([]byte, error) {
	if it == nil {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range it {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(entry.Day)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (it *Itinerary) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*it = nil
		return nil
	}

	var raw map[string]*Day
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("itinerary: %w", err)
	}
	if len(raw) == 0 {
		*it = nil
		return nil
	}

	days := make(Itinerary, 0, len(raw))
	for key, day := range raw {
		days = append(days, ItineraryDay{Key: key, Day: day})
	}
	sort.SliceStable(days, func(i, j int) bool {
		return dayOrder(days[i].Key) < dayOrder(days[j].Key) ||
			(dayOrder(days[i].Key) == dayOrder(days[j].Key) && days[i].Key < days[j].Key)
	})
	*it = days
	return nil
}

// dayOrder extracts the trailing day number of a key; keys without one sort last.
func dayOrder(key string) int {
	end := len(key)
	start := end
	for start > 0 && unicode.IsDigit(rune(key[start-1])) {
		start--
	}
	if start == end {
		return int(^uint(0) >> 1)
	}
	n, err := strconv.Atoi(key[start:end])
	if err != nil {
		return int(^uint(0) >> 1)
	}
	return n
}

// Number accepts a JSON number or a string with a leading number ("3 days",
// "9000 CNY") and always marshals as a plain number.
type Number float64

func (n Number) Int() int {
	return int(n)
}

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}

	if data[0] != '"' {
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return fmt.Errorf("number: %w", err)
		}
		*n = Number(f)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("number: %w", err)
	}
	*n = Number(leadingNumber(s))
	return nil
}

// leadingNumber parses the first decimal number in s, ignoring thousands
// separators. Strings without digits yield 0.
func leadingNumber(s string) float64 {
	s = strings.TrimSpace(s)
	start := strings.IndexFunc(s, func(r rune) bool { return unicode.IsDigit(r) })
	if start < 0 {
		return 0
	}
	end := start
	for end < len(s) && (unicode.IsDigit(rune(s[end])) || s[end] == '.' || s[end] == ',') {
		end++
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimRight(s[start:end], ".,"), ",", ""), 64)
	if err != nil {
		return 0
	}
	return f
}
