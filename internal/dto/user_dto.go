package dto

import (
	"time"

	"github.com/google/uuid"
)

type UpdateProfileRequest struct {
	Username *string `json:"username" validate:"omitempty,alphanum,min=3,max=30"`
	Email    *string `json:"email" validate:"omitempty,email"`
}

type ProfileResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type UpdateProfileResponse struct {
	Success bool            `json:"success"`
	User    ProfileResponse `json:"user"`
	Message string          `json:"message"`
}

type StatsResponse struct {
	TotalPlans         int64     `json:"totalPlans"`
	UniqueDestinations int64     `json:"uniqueDestinations"`
	TotalDays          int64     `json:"totalDays"`
	MemberSince        time.Time `json:"memberSince"`
}
