package services

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/dto"
	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/models"
	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/store"
	"github.com/google/uuid"
)

type UserService struct {
	users *store.Users
	plans *store.Plans
}

func NewUserService(users *store.Users, plans *store.Plans) *UserService {
	return &UserService{users: users, plans: plans}
}

func (s *UserService) Profile(ctx context.Context, userID uuid.UUID) (*dto.ProfileResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toProfile(user), nil
}

// UpdateProfile changes the username and/or email. Store errors (ErrInvalidInput,
// ErrConflict, ErrNotFound) are returned unchanged.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UpdateProfileResponse, error) {
	user, err := s.users.Update(ctx, userID, store.UserUpdate{Username: req.Username, Email: req.Email})
	if err != nil {
		return nil, err
	}
	return &dto.UpdateProfileResponse{
		Success: true,
		User:    *toProfile(user),
		Message: "Profile updated successfully",
	}, nil
}

func (s *UserService) Stats(ctx context.Context, userID uuid.UUID) (*dto.StatsResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats, err := s.plans.Stats(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &dto.StatsResponse{
		TotalPlans:         stats.TotalPlans,
		UniqueDestinations: stats.UniqueDestinations,
		TotalDays:          stats.TotalDays,
		MemberSince:        user.CreatedAt,
	}, nil
}

func toProfile(u *models.User) *dto.ProfileResponse {
	return &dto.ProfileResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
