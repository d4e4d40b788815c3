package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PlanInput holds the summary columns written alongside a plan blob.
type PlanInput struct {
	Destination            string
	StartDate              string
	Days                   int
	Travelers              int
	Budget                 float64
	Preferences            []string
	AdditionalRequirements string
}

// Plans persists travel plans. Every read and delete is scoped to the owner.
type Plans struct {
	db  *gorm.DB
	now func() time.Time
}

func NewPlans(db *gorm.DB) *Plans {
	return &Plans{db: db, now: time.Now}
}

// ownedBy limits a query to plans belonging to ownerID.
func ownedBy(ownerID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", ownerID)
	}
}

// Create writes the summary columns and the plan blob in a single insert.
func (s *Plans) Create(ctx context.Context, ownerID uuid.UUID, in PlanInput, blob []byte) (uuid.UUID, error) {
	prefs := in.Preferences
	if prefs == nil {
		prefs = []string{}
	}
	prefsJSON, err := json.Marshal(prefs)
	if err != nil {
		return uuid.Nil, fmt.Errorf("encode preferences: %w", err)
	}

	now := s.now()
	record := models.PlanRecord{
		ID:                     uuid.New(),
		UserID:                 ownerID,
		Destination:            in.Destination,
		StartDate:              in.StartDate,
		Days:                   in.Days,
		Travelers:              in.Travelers,
		Budget:                 in.Budget,
		Preferences:            datatypes.JSON(prefsJSON),
		AdditionalRequirements: in.AdditionalRequirements,
		PlanData:               datatypes.JSON(blob),
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	if err := s.db.WithContext(ctx).Omit("User").Create(&record).Error; err != nil {
		return uuid.Nil, fmt.Errorf("create plan: %w", err)
	}
	return record.ID, nil
}

// List returns the owner's plan summaries, newest first.
func (s *Plans) List(ctx context.Context, ownerID uuid.UUID) ([]models.PlanSummary, error) {
	var records []models.PlanRecord
	err := s.db.WithContext(ctx).
		Select("id", "destination", "start_date", "days", "travelers", "budget", "created_at").
		Scopes(ownedBy(ownerID)).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}

	summaries := make([]models.PlanSummary, len(records))
	for i, r := range records {
		summaries[i] = models.PlanSummary{
			ID:          r.ID,
			Destination: r.Destination,
			StartDate:   r.StartDate,
			Days:        r.Days,
			Travelers:   r.Travelers,
			Budget:      r.Budget,
			CreatedAt:   r.CreatedAt,
		}
	}
	return summaries, nil
}

// Get returns the plan blob. A plan owned by someone else is ErrNotFound.
func (s *Plans) Get(ctx context.Context, planID, ownerID uuid.UUID) ([]byte, error) {
	var record models.PlanRecord
	err := s.db.WithContext(ctx).
		Select("plan_data").
		Scopes(ownedBy(ownerID)).
		Where("id = ?", planID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get plan: %w", err)
	}
	return []byte(record.PlanData), nil
}

// Delete removes the plan. A plan owned by someone else is ErrNotFound.
func (s *Plans) Delete(ctx context.Context, planID, ownerID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Scopes(ownedBy(ownerID)).
		Where("id = ?", planID).
		Delete(&models.PlanRecord{})
	if result.Error != nil {
		return fmt.Errorf("delete plan: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats runs three independent aggregates over the owner's plans.
func (s *Plans) Stats(ctx context.Context, ownerID uuid.UUID) (*models.PlanStats, error) {
	db := s.db.WithContext(ctx)
	var stats models.PlanStats

	if err := db.Model(&models.PlanRecord{}).
		Scopes(ownedBy(ownerID)).
		Count(&stats.TotalPlans).Error; err != nil {
		return nil, fmt.Errorf("count plans: %w", err)
	}

	if err := db.Model(&models.PlanRecord{}).
		Scopes(ownedBy(ownerID)).
		Distinct("destination").
		Count(&stats.UniqueDestinations).Error; err != nil {
		return nil, fmt.Errorf("count destinations: %w", err)
	}

	if err := db.Model(&models.PlanRecord{}).
		Scopes(ownedBy(ownerID)).
		Select("COALESCE(SUM(days), 0)").
		Scan(&stats.TotalDays).Error; err != nil {
		return nil, fmt.Errorf("sum days: %w", err)
	}

	return &stats, nil
}
