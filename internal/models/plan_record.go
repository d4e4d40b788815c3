package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PlanRecord is a saved travel plan: summary columns for querying plus the
// full plan document as JSON.
type PlanRecord struct {
	ID                     uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID                 uuid.UUID      `gorm:"type:uuid;not null;index:idx_travel_plans_user_created,priority:1" json:"user_id"`
	Destination            string         `gorm:"size:100;not null" json:"destination"`
	StartDate              string         `gorm:"size:32;not null" json:"start_date"`
	Days                   int            `gorm:"not null" json:"days"`
	Travelers              int            `gorm:"not null" json:"travelers"`
	Budget                 float64        `gorm:"not null" json:"budget"`
	Preferences            datatypes.JSON `gorm:"type:jsonb" json:"preferences"`
	AdditionalRequirements string         `gorm:"type:text" json:"additional_requirements"`
	PlanData               datatypes.JSON `gorm:"type:jsonb;not null" json:"plan_data"`
	CreatedAt              time.Time      `gorm:"index:idx_travel_plans_user_created,priority:2" json:"created_at"`
	UpdatedAt              time.Time      `json:"updated_at"`
	User                   User           `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (PlanRecord) TableName() string {
	return "travel_plans"
}

func (p *PlanRecord) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// PlanSummary is the denormalized view of a saved plan used by history listings.
type PlanSummary struct {
	ID          uuid.UUID `json:"id"`
	Destination string    `json:"destination"`
	StartDate   string    `json:"startDate"`
	Days        int       `json:"days"`
	Travelers   int       `json:"travelers"`
	Budget      float64   `json:"budget"`
	CreatedAt   time.Time `json:"createdAt"`
}

// PlanStats aggregates a user's saved plans.
type PlanStats struct {
	TotalPlans         int64 `json:"totalPlans"`
	UniqueDestinations int64 `json:"uniqueDestinations"`
	TotalDays          int64 `json:"totalDays"`
}
