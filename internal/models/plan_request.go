package models

import "time"

// PlanRequest is a validated travel-planning request. It is never persisted directly.
type PlanRequest struct {
	Destination            string   `json:"destination" validate:"required,min=1,max=100"`
	StartDate              string   `json:"startDate" validate:"required,isodate"`
	Days                   int      `json:"days" validate:"required,min=1,max=30"`
	Travelers              int      `json:"travelers" validate:"required,min=1,max=20"`
	Budget                 *float64 `json:"budget" validate:"required,min=0"`
	Preferences            []string `json:"preferences"`
	AdditionalRequirements string   `json:"additionalRequirements" validate:"max=1000"`
}

// BudgetValue returns the budget, or zero when it was not supplied.
func (r *PlanRequest) BudgetValue() float64 {
	if r.Budget == nil {
		return 0
	}
	return *r.Budget
}

// Start parses StartDate. Callers validate the request first.
func (r *PlanRequest) Start() (time.Time, error) {
	if len(r.StartDate) >= 10 {
		if t, err := time.Parse("2006-01-02", r.StartDate[:10]); err == nil {
			return t, nil
		}
	}
	return time.Parse(time.RFC3339, r.StartDate)
}
