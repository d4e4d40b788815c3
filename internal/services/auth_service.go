package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/auth"
	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/dto"
	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/models"
	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/store"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserExists         = errors.New("username or email is already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

type AuthService struct {
	users     *store.Users
	authority *auth.Authority
	cost      int
}

func NewAuthService(users *store.Users, authority *auth.Authority) *AuthService {
	return &AuthService{users: users, authority: authority, cost: bcrypt.DefaultCost}
}

func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.Create(ctx, req.Username, req.Email, string(hash))
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	resp, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	resp.Success = true
	return resp, nil
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

// Verify resolves a bearer token to the user it was issued for.
func (s *AuthService) Verify(ctx context.Context, token string) (*dto.UserResponse, error) {
	identity, err := s.authority.Verify(ctx, token)
	if err != nil {
		return nil, err
	}
	return &dto.UserResponse{ID: identity.ID, Username: identity.Username, Email: identity.Email}, nil
}

func (s *AuthService) issue(user *models.User) (*dto.AuthResponse, error) {
	token, err := s.authority.Issue(user)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		Token: token,
		User:  dto.UserResponse{ID: user.ID, Username: user.Username, Email: user.Email},
	}, nil
}
