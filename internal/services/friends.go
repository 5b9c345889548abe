package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/arnold/levelup-api/internal/logging"
	"github.com/arnold/levelup-api/internal/models"
)

type FriendService struct {
	db       *gorm.DB
	activity *ActivityService
}

func NewFriendService(db *gorm.DB, activity *ActivityService) *FriendService {
	return &FriendService{db: db, activity: activity}
}

func (s *FriendService) List(ctx context.Context, userID uuid.UUID) ([]models.Friend, error) {
	friends := []models.Friend{}
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&friends).Error; err != nil {
		return nil, err
	}
	return friends, nil
}

// Add snapshots the friend's current level into the user's list.
func (s *FriendService) Add(ctx context.Context, user *models.User, friendUsername string) (*models.Friend, error) {
	friendUsername = strings.TrimSpace(friendUsername)
	if friendUsername == "" {
		return nil, validationErrorf("friendUsername is required")
	}
	if friendUsername == user.Username {
		return nil, validationErrorf("cannot add yourself as a friend")
	}

	var friend models.Friend
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var other models.User
		if err := tx.Where("username = ?", friendUsername).First(&other).Error; err != nil {
			return notFound(err, "user "+friendUsername)
		}

		var existing int64
		if err := tx.Model(&models.Friend{}).
			Where("user_id = ? AND username = ?", user.ID, other.Username).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return fmt.Errorf("already friends with %s: %w", other.Username, ErrConflict)
		}

		friend = models.Friend{
			UserID:   user.ID,
			Username: other.Username,
			Level:    other.Progression.Level,
		}
		if err := tx.Create(&friend).Error; err != nil {
			return err
		}

		if s.activity == nil {
			return nil
		}
		return s.activity.record(tx, user.ID, models.ActivityFriendAdded,
			fmt.Sprintf("Added %s as a friend", other.Username),
			map[string]interface{}{"friend": other.Username})
	})
	if err != nil {
		return nil, err
	}

	logging.WithContext(ctx).WithField("friend", friend.Username).Info("Friend added")
	return &friend, nil
}

func (s *FriendService) Remove(ctx context.Context, userID uuid.UUID, friendUsername string) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND username = ?", userID, friendUsername).
		Delete(&models.Friend{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("friend %s: %w", friendUsername, ErrNotFound)
	}
	return nil
}
