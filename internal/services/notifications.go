package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/arnold/levelup-api/internal/logging"
	"github.com/arnold/levelup-api/internal/models"
)

type NotificationService struct {
	db   *gorm.DB
	push *PushService
}

func NewNotificationService(db *gorm.DB, push *PushService) *NotificationService {
	return &NotificationService{db: db, push: push}
}

// Create stores a notification and pushes it to the user's device in the background.
func (s *NotificationService) Create(ctx context.Context, userID uuid.UUID, notifType, title, body string, metadata map[string]interface{}) error {
	notif := models.Notification{
		UserID: userID,
		Type:   notifType,
		Title:  title,
		Body:   body,
	}

	pushData := map[string]string{"type": notifType}
	if metadata != nil {
		if data, err := json.Marshal(metadata); err == nil {
			m := string(data)
			notif.Metadata = &m
		}
		for k, v := range metadata {
			pushData[k] = fmt.Sprintf("%v", v)
		}
	}

	if err := s.db.WithContext(ctx).Create(&notif).Error; err != nil {
		return err
	}

	if s.push.Enabled() {
		var user models.User
		if err := s.db.WithContext(ctx).Select("fcm_token").First(&user, "id = ?", userID).Error; err != nil {
			logging.WithContext(ctx).WithError(err).Warn("Failed to load device token")
			return nil
		}
		go s.push.Send(context.Background(), user.FCMToken, title, body, pushData)
	}
	return nil
}

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]models.Notification, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("read = ?", false)
	}
	notifications := []models.Notification{}
	if err := q.Order("created_at DESC").Limit(50).Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("notification %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	return res.RowsAffected, res.Error
}

func (s *NotificationService) RegisterDeviceToken(ctx context.Context, userID uuid.UUID, token string) error {
	if token == "" {
		return validationErrorf("token is required")
	}
	return s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("fcm_token", token).Error
}
