package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WorkoutGoal is a standing daily target. Goals are replaced as a set, never edited.
type WorkoutGoal struct {
	ID        uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID   `json:"-" gorm:"type:uuid;index:idx_goal_user_type;not null"`
	Type      WorkoutType `json:"type" gorm:"index:idx_goal_user_type;not null"`
	Amount    float64     `json:"amount" gorm:"not null"`
	Unit      string      `json:"unit" gorm:"not null"`
	Position  int         `json:"-" gorm:"not null;default:0"`
	CreatedAt time.Time   `json:"-"`
	UpdatedAt time.Time   `json:"-"`
}

func (g *WorkoutGoal) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

type GoalInput struct {
	Type   string  `json:"type"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

// ReplaceGoalsRequest keeps WorkoutGoals as a pointer so a missing or null
// list can be told apart from an explicit empty one.
type ReplaceGoalsRequest struct {
	WorkoutGoals *[]GoalInput `json:"workoutGoals"`
}
