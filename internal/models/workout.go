package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxRecentWorkouts caps each user's workout log.
const MaxRecentWorkouts = 30

// MaxWorkoutMinutes bounds a single session to one day.
const MaxWorkoutMinutes = 24 * 60

// WorkoutLogEntry is immutable once written. ID increases with insertion order.
type WorkoutLogEntry struct {
	ID        uint      `json:"-" gorm:"primaryKey;autoIncrement"`
	UserID    uuid.UUID `json:"-" gorm:"type:uuid;not null;uniqueIndex:idx_workout_user_date_name"`
	Date      string    `json:"date" gorm:"not null;uniqueIndex:idx_workout_user_date_name"`
	Name      string    `json:"name" gorm:"not null;uniqueIndex:idx_workout_user_date_name"`
	Duration  int       `json:"duration" gorm:"not null"`
	XPGained  int       `json:"xpGained" gorm:"not null"`
	CreatedAt time.Time `json:"-"`
}

type RecordWorkoutRequest struct {
	Date     string `json:"date"`
	Name     string `json:"name"`
	Duration int    `json:"duration"`
	// XPGained is accepted for compatibility and ignored; it is always
	// derived from Duration.
	XPGained *int `json:"xpGained,omitempty"`
}

// DayCloseout marks that a user's streak was already evaluated for a date.
type DayCloseout struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Date      string    `gorm:"primaryKey"`
	Streak    int       `gorm:"not null"`
	CreatedAt time.Time
}
