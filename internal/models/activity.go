package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ActivityType string

const (
	ActivityGoalCompleted ActivityType = "goal_completed"
	ActivityWorkoutLogged ActivityType = "workout_logged"
	ActivityLevelUp       ActivityType = "level_up"
	ActivityFriendAdded   ActivityType = "friend_added"
)

// Activity is one line of a user's feed.
type Activity struct {
	ID          uuid.UUID    `json:"id" gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID    `json:"-" gorm:"type:uuid;index;not null"`
	ActionType  ActivityType `json:"actionType" gorm:"not null"`
	Description string       `json:"description"`
	Metadata    *string      `json:"metadata"` // JSON object, e.g. {"level": 3}
	CreatedAt   time.Time    `json:"date"`
}

func (a *Activity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
