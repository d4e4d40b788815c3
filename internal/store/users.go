package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserUpdate carries the optional profile fields of an update. Nil means unchanged.
type UserUpdate struct {
	Username *string
	Email    *string
}

// Users persists user records.
type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

// Create inserts a user. It fails with ErrConflict if the username or email is taken.
func (s *Users) Create(ctx context.Context, username, email, passwordHash string) (*models.User, error) {
	db := s.db.WithContext(ctx)

	taken, err := s.taken(db, username, email, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrConflict
	}

	user := models.User{
		ID:       uuid.New(),
		Username: username,
		Email:    email,
		Password: passwordHash,
	}
	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

func (s *Users) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user by username: %w", err)
	}
	return &user, nil
}

func (s *Users) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// Update changes the username and/or email of an existing user.
func (s *Users) Update(ctx context.Context, id uuid.UUID, upd UserUpdate) (*models.User, error) {
	username, email := deref(upd.Username), deref(upd.Email)
	if username == "" && email == "" {
		return nil, ErrInvalidInput
	}

	db := s.db.WithContext(ctx)

	taken, err := s.taken(db, username, email, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrConflict
	}

	fields := map[string]interface{}{}
	if username != "" {
		fields["username"] = username
	}
	if email != "" {
		fields["email"] = email
	}

	result := db.Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	return s.FindByID(ctx, id)
}

// taken reports whether a user other than exclude already holds username or email.
// Empty values are not checked.
func (s *Users) taken(db *gorm.DB, username, email string, exclude uuid.UUID) (bool, error) {
	if username == "" && email == "" {
		return false, nil
	}

	q := db.Model(&models.User{})
	switch {
	case username != "" && email != "":
		q = q.Where("(username = ? OR email = ?)", username, email)
	case username != "":
		q = q.Where("username = ?", username)
	default:
		q = q.Where("email = ?", email)
	}
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("check user uniqueness: %w", err)
	}
	return count > 0, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
