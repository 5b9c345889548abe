package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DateLayout is the calendar-date format used for every day-scoped record.
const DateLayout = "2006-01-02"

// ProgressRecord tracks one goal on one calendar day. Total and Unit are copied
// from the goal when the record is created and are not updated afterwards.
type ProgressRecord struct {
	ID          uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID   `json:"-" gorm:"type:uuid;not null;uniqueIndex:idx_progress_user_goal_date"`
	GoalID      uuid.UUID   `json:"goalId" gorm:"type:uuid;not null;uniqueIndex:idx_progress_user_goal_date"`
	Date        string      `json:"date" gorm:"not null;uniqueIndex:idx_progress_user_goal_date;index"`
	Type        WorkoutType `json:"type" gorm:"not null"`
	Completed   float64     `json:"completed" gorm:"not null;default:0"`
	Total       float64     `json:"total" gorm:"not null"`
	Unit        string      `json:"unit" gorm:"not null"`
	IsCompleted bool        `json:"isCompleted" gorm:"not null;default:false"`
	Position    int         `json:"-" gorm:"not null;default:0"`
	CreatedAt   time.Time   `json:"-"`
	UpdatedAt   time.Time   `json:"-"`
}

func (p *ProgressRecord) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type InitProgressItem struct {
	GoalID string `json:"goalId"`
}

type InitProgressRequest struct {
	WorkoutProgress []InitProgressItem `json:"workoutProgress"`
}

type UpdateProgressRequest struct {
	Completed   *float64 `json:"completed"`
	IsCompleted *bool    `json:"isCompleted"`
}

type ResetProgressRequest struct {
	Date   string `json:"date"`
	GoalID string `json:"goalId"`
}

// ProgressUpdate is what an update produced: the stored record and, when the
// record just transitioned to complete, the resulting progression and log entry.
type ProgressUpdate struct {
	Record      ProgressRecord    `json:"workoutProgress"`
	Progression *ProgressionState `json:"progression,omitempty"`
	Workout     *WorkoutLogEntry  `json:"workout,omitempty"`
	LeveledUp   bool              `json:"leveledUp"`
}
