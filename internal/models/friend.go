package models

import (
	"time"

	"github.com/google/uuid"
)

// Friend is a one-directional snapshot of another user. Level is the friend's
// level when the friendship was created and is not kept in sync.
type Friend struct {
	UserID    uuid.UUID `json:"-" gorm:"type:uuid;primaryKey"`
	Username  string    `json:"username" gorm:"primaryKey"`
	Level     int       `json:"level"`
	CreatedAt time.Time `json:"-"`
}

type AddFriendRequest struct {
	FriendUsername string `json:"friendUsername"`
}

// UserSummary is the public projection used by search results.
type UserSummary struct {
	Username string `json:"username"`
	Level    int    `json:"level"`
	Theme    Theme  `json:"theme"`
}
