package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Username    string         `json:"username" gorm:"uniqueIndex;not null"`
	Email       string         `json:"email" gorm:"uniqueIndex;not null"`
	Password    string         `json:"-"`
	Bio         string         `json:"bio"`
	Age         int            `json:"age"`
	Height      int            `json:"height"`
	Weight      int            `json:"weight"`
	Gender      string         `json:"gender"`
	Theme       Theme          `json:"theme" gorm:"not null;default:'solo-leveling'"`
	AvatarURL   *string        `json:"avatarUrl"`
	Progression Progression    `json:"progression" gorm:"embedded;embeddedPrefix:progression_"`
	Stats       Stats          `json:"stats" gorm:"embedded;embeddedPrefix:stats_"`
	FCMToken    string         `json:"-" gorm:"column:fcm_token"`
	LastLogin   *time.Time     `json:"lastLogin"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// Progression is the XP/level/streak state of a user. Level only ever moves up.
type Progression struct {
	Level  int `json:"level" gorm:"not null;default:1"`
	XP     int `json:"xp" gorm:"not null;default:0"`
	Streak int `json:"streak" gorm:"not null;default:0"`
}

type Stats struct {
	WorkoutsCompleted int `json:"workoutsCompleted" gorm:"not null;default:0"`
	BestStreak        int `json:"bestStreak" gorm:"not null;default:0"`
}

// ProgressionState is the flattened view returned after a completion.
type ProgressionState struct {
	Level             int `json:"level"`
	XP                int `json:"xp"`
	CurrentStreak     int `json:"currentStreak"`
	BestStreak        int `json:"bestStreak"`
	WorkoutsCompleted int `json:"workoutsCompleted"`
}

func (u *User) State() ProgressionState {
	return ProgressionState{
		Level:             u.Progression.Level,
		XP:                u.Progression.XP,
		CurrentStreak:     u.Progression.Streak,
		BestStreak:        u.Stats.BestStreak,
		WorkoutsCompleted: u.Stats.WorkoutsCompleted,
	}
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Theme == "" {
		u.Theme = DefaultTheme
	}
	if u.Progression.Level < 1 {
		u.Progression.Level = 1
	}
	return nil
}

// Auth DTOs
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateProfileRequest struct {
	Bio    *string `json:"bio"`
	Age    *int    `json:"age"`
	Height *int    `json:"height"`
	Weight *int    `json:"weight"`
	Gender *string `json:"gender"`
	Theme  *Theme  `json:"theme"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
