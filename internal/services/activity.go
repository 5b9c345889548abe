package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/arnold/levelup-api/internal/models"
)

type ActivityService struct {
	db *gorm.DB
}

func NewActivityService(db *gorm.DB) *ActivityService {
	return &ActivityService{db: db}
}

// record writes a feed entry using tx so it commits with the change it describes.
func (s *ActivityService) record(tx *gorm.DB, userID uuid.UUID, actionType models.ActivityType, description string, metadata map[string]interface{}) error {
	a := models.Activity{
		UserID:      userID,
		ActionType:  actionType,
		Description: description,
	}
	if metadata != nil {
		data, err := json.Marshal(metadata)
		if err == nil {
			m := string(data)
			a.Metadata = &m
		}
	}
	return tx.Create(&a).Error
}

// List returns a page of the feed, newest first, and the total entry count.
func (s *ActivityService) List(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Activity, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	db := s.db.WithContext(ctx)
	activities := []models.Activity{}
	if err := db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&activities).Error; err != nil {
		return nil, 0, err
	}

	var total int64
	if err := db.Model(&models.Activity{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	return activities, total, nil
}
