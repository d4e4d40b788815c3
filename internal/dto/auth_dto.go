package dto

import (
	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/validation"
	"github.com/google/uuid"
)

type RegisterRequest struct {
	Username string `json:"username" validate:"required,alphanum,min=3,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required,alphanum,min=3,max=30"`
	Password string `json:"password" validate:"required,min=6"`
}

type AuthResponse struct {
	Success bool         `json:"success,omitempty"`
	Token   string       `json:"token"`
	User    UserResponse `json:"user"`
}

type UserResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

type VerifyResponse struct {
	Valid bool          `json:"valid"`
	User  *UserResponse `json:"user,omitempty"`
	Error string        `json:"error,omitempty"`
}

type ErrorResponse struct {
	Error   string                  `json:"error"`
	Message string                  `json:"message,omitempty"`
	Details []validation.FieldError `json:"details,omitempty"`
}

type HealthResponse struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	Environment string `json:"environment"`
	DB          string `json:"db"`
}
