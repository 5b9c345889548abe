package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/arnold/levelup-api/internal/logging"
	"github.com/arnold/levelup-api/internal/metrics"
	"github.com/arnold/levelup-api/internal/models"
)

// ProgressionCalculator updates workout counters and the daily streak when a
// goal is completed. XP and level belong to the WorkoutLog.
type ProgressionCalculator struct {
	db            *gorm.DB
	clock         Clock
	metrics       *metrics.Manager
	notifications *NotificationService
}

func NewProgressionCalculator(db *gorm.DB, clock Clock, m *metrics.Manager, notifications *NotificationService) *ProgressionCalculator {
	return &ProgressionCalculator{db: db, clock: clock, metrics: m, notifications: notifications}
}

type completionResult struct {
	user          *models.User
	streakClosed  bool
	newBestStreak bool
}

// ApplyCompletion runs the completion bookkeeping in its own transaction.
func (c *ProgressionCalculator) ApplyCompletion(ctx context.Context, userID uuid.UUID) (models.ProgressionState, error) {
	var res *completionResult
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		res, err = c.applyCompletion(tx, userID)
		return err
	})
	if err != nil {
		return models.ProgressionState{}, err
	}
	c.observe(ctx, res)
	return res.user.State(), nil
}

// applyCompletion must run inside tx. The user row is locked for the rest of
// the transaction. The streak moves at most once per user per day: the first
// completion inserts the day's close-out row, later ones find it present.
func (c *ProgressionCalculator) applyCompletion(tx *gorm.DB, userID uuid.UUID) (*completionResult, error) {
	user, err := lockUser(tx, userID)
	if err != nil {
		return nil, err
	}
	res := &completionResult{user: user}

	user.Stats.WorkoutsCompleted++

	var completedYesterday int64
	if err := tx.Model(&models.ProgressRecord{}).
		Where("user_id = ? AND date = ? AND is_completed = ?", userID, yesterday(c.clock), true).
		Count(&completedYesterday).Error; err != nil {
		return nil, err
	}

	streak := 1
	if completedYesterday > 0 {
		streak = user.Progression.Streak + 1
	}

	closeout := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.DayCloseout{
		UserID: userID,
		Date:   today(c.clock),
		Streak: streak,
	})
	if closeout.Error != nil {
		return nil, closeout.Error
	}

	if closeout.RowsAffected == 1 {
		res.streakClosed = true
		user.Progression.Streak = streak
		if streak > user.Stats.BestStreak {
			user.Stats.BestStreak = streak
			res.newBestStreak = streak > 1
		}
	}

	if err := tx.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"stats_workouts_completed": user.Stats.WorkoutsCompleted,
		"progression_streak":       user.Progression.Streak,
		"stats_best_streak":        user.Stats.BestStreak,
	}).Error; err != nil {
		return nil, err
	}
	return res, nil
}

func (c *ProgressionCalculator) observe(ctx context.Context, res *completionResult) {
	if res == nil {
		return
	}
	if res.streakClosed && c.metrics != nil {
		c.metrics.CounterStreakClosed.Inc()
	}
	log := logging.WithContext(ctx).WithFields(logrus.Fields{
		"streak":      res.user.Progression.Streak,
		"best_streak": res.user.Stats.BestStreak,
		"closed_day":  res.streakClosed,
	})
	log.Debug("Completion applied")

	if !res.newBestStreak || c.notifications == nil {
		return
	}
	best := res.user.Stats.BestStreak
	err := c.notifications.Create(ctx, res.user.ID, models.NotificationBestStreak,
		"New best streak!",
		fmt.Sprintf("%d days in a row. Keep it going.", best),
		map[string]interface{}{"bestStreak": best})
	if err != nil {
		log.WithError(err).Warn("Failed to create best-streak notification")
	}
}

func lockUser(tx *gorm.DB, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&user, "id = ?", userID).Error; err != nil {
		return nil, notFound(err, "user "+userID.String())
	}
	return &user, nil
}
