package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DateLayout is the calendar-day format used for daily aggregation.
const DateLayout = "2006-01-02"

// Record is a single logged increment of progress toward a goal.
// Records are immutable once created and are deleted only as a
// cascade of goal hard-deletion.
type Record struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `json:"-" gorm:"type:uuid;index"`
	GoalID    uuid.UUID `json:"goalId" gorm:"type:uuid;index;not null"`
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
	Date      string    `json:"date"` // YYYY-MM-DD, derived from Timestamp
}

func (r *Record) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// NewRecord builds a record for the given goal at time now.
func NewRecord(goalID uuid.UUID, value float64, now time.Time) Record {
	return Record{
		ID:        uuid.New(),
		GoalID:    goalID,
		Value:     value,
		Timestamp: now,
		Date:      now.Format(DateLayout),
	}
}

type AddRecordRequest struct {
	Value float64 `json:"value"`
}

// RestoreGoalRequest carries a previously deleted goal snapshot plus
// its records, used by the undo-delete flow.
type RestoreGoalRequest struct {
	Goal    Goal     `json:"goal"`
	Records []Record `json:"records"`
}
