package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GoalPeriod string

const (
	PeriodYear   GoalPeriod = "year"
	PeriodMonth  GoalPeriod = "month"
	PeriodCustom GoalPeriod = "custom"
)

type GoalStatus string

const (
	StatusActive   GoalStatus = "active"
	StatusArchived GoalStatus = "archived"
)

type Goal struct {
	ID              uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	UserID          uuid.UUID  `json:"-" gorm:"type:uuid;index"`
	Name            string     `json:"name" gorm:"not null"`
	Unit            string     `json:"unit"`
	TargetAmount    float64    `json:"targetAmount" gorm:"not null"`
	CompletedAmount float64    `json:"completedAmount" gorm:"default:0"`
	Period          GoalPeriod `json:"period" gorm:"not null;default:'year'"`
	StartDate       *time.Time `json:"startDate,omitempty"`
	EndDate         *time.Time `json:"endDate,omitempty"`
	IncrementValue  float64    `json:"incrementValue" gorm:"default:1"`
	Status          GoalStatus `json:"status" gorm:"not null;default:'active'"`
	ArchivedAt      *time.Time `json:"archivedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func (g *Goal) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

// Archived reports whether the goal is in the archived state.
func (g *Goal) Archived() bool {
	return g.Status == StatusArchived
}

// GoalUpdate carries a sparse field set for partial goal updates.
// Nil fields are left untouched. CompletedAmount is included for
// explicit corrections only; normal progress goes through records.
type GoalUpdate struct {
	Name            *string     `json:"name"`
	Unit            *string     `json:"unit"`
	TargetAmount    *float64    `json:"targetAmount"`
	CompletedAmount *float64    `json:"completedAmount"`
	Period          *GoalPeriod `json:"period"`
	StartDate       *time.Time  `json:"startDate"`
	EndDate         *time.Time  `json:"endDate"`
	IncrementValue  *float64    `json:"incrementValue"`
}

// Apply merges the non-nil fields into g.
func (u GoalUpdate) Apply(g *Goal) {
	if u.Name != nil {
		g.Name = *u.Name
	}
	if u.Unit != nil {
		g.Unit = *u.Unit
	}
	if u.TargetAmount != nil {
		g.TargetAmount = *u.TargetAmount
	}
	if u.CompletedAmount != nil {
		g.CompletedAmount = *u.CompletedAmount
	}
	if u.Period != nil {
		g.Period = *u.Period
	}
	if u.StartDate != nil {
		g.StartDate = u.StartDate
	}
	if u.EndDate != nil {
		g.EndDate = u.EndDate
	}
	if u.IncrementValue != nil {
		g.IncrementValue = *u.IncrementValue
	}
}

type CreateGoalRequest struct {
	Name           string     `json:"name" validate:"required"`
	Unit           string     `json:"unit"`
	TargetAmount   float64    `json:"targetAmount" validate:"required,gt=0"`
	Period         GoalPeriod `json:"period"`
	StartDate      *time.Time `json:"startDate"`
	EndDate        *time.Time `json:"endDate"`
	IncrementValue float64    `json:"incrementValue"`
	Status         GoalStatus `json:"status"`
}

// GoalStats is the per-goal statistics summary.
type GoalStats struct {
	DaysSinceCreation int        `json:"daysSinceCreation"`
	DaysWithRecords   int        `json:"daysWithRecords"`
	TotalRecords      int        `json:"totalRecords"`
	LastRecordTime    *time.Time `json:"lastRecordTime"`
	CompletedAmount   float64    `json:"completedAmount"`
}
