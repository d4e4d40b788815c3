package dto

import "github.com/google/uuid"

type SavePlanResponse struct {
	Success bool      `json:"success"`
	PlanID  uuid.UUID `json:"planId"`
	Message string    `json:"message"`
}

type DeletePlanResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
