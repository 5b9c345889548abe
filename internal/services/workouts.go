package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/arnold/levelup-api/internal/logging"
	"github.com/arnold/levelup-api/internal/metrics"
	"github.com/arnold/levelup-api/internal/models"
)

// WorkoutLog is the capped, newest-first record of completed sessions. Writing
// to it is the only way a user gains XP.
type WorkoutLog struct {
	db            *gorm.DB
	clock         Clock
	metrics       *metrics.Manager
	activity      *ActivityService
	notifications *NotificationService
	events        EventPublisher
}

func NewWorkoutLog(db *gorm.DB, clock Clock, m *metrics.Manager, activity *ActivityService, notifications *NotificationService, events EventPublisher) *WorkoutLog {
	return &WorkoutLog{
		db:            db,
		clock:         clock,
		metrics:       m,
		activity:      activity,
		notifications: notifications,
		events:        publisherOrNoop(events),
	}
}

type workoutResult struct {
	entry     *models.WorkoutLogEntry
	user      *models.User
	prevLevel int
	leveledUp bool
}

// RecordWorkout appends a session for date and credits its XP. A second
// session with the same date and name is rejected with ErrConflict.
func (w *WorkoutLog) RecordWorkout(ctx context.Context, userID uuid.UUID, date, name string, durationMinutes int) (*models.WorkoutLogEntry, models.ProgressionState, error) {
	date, err := NormalizeDate(w.clock, date)
	if err != nil {
		return nil, models.ProgressionState{}, err
	}

	var res *workoutResult
	err = w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		res, err = w.record(tx, userID, date, name, durationMinutes)
		return err
	})
	if err != nil {
		return nil, models.ProgressionState{}, err
	}

	w.afterCommit(ctx, userID, res)
	return res.entry, res.user.State(), nil
}

// ListRecent returns at most MaxRecentWorkouts entries, newest first.
func (w *WorkoutLog) ListRecent(ctx context.Context, userID uuid.UUID) ([]models.WorkoutLogEntry, error) {
	db := w.db.WithContext(ctx)
	if err := requireUser(db, userID); err != nil {
		return nil, err
	}

	entries := []models.WorkoutLogEntry{}
	if err := db.Where("user_id = ?", userID).
		Order("id DESC").
		Limit(models.MaxRecentWorkouts).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// record must run inside tx.
func (w *WorkoutLog) record(tx *gorm.DB, userID uuid.UUID, date, name string, durationMinutes int) (*workoutResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationErrorf("workout name is required")
	}
	if durationMinutes < 0 {
		return nil, validationErrorf("duration must not be negative")
	}
	if durationMinutes > models.MaxWorkoutMinutes {
		return nil, validationErrorf("duration must be at most %d minutes", models.MaxWorkoutMinutes)
	}

	user, err := lockUser(tx, userID)
	if err != nil {
		return nil, err
	}

	var existing int64
	if err := tx.Model(&models.WorkoutLogEntry{}).
		Where("user_id = ? AND date = ? AND name = ?", userID, date, name).
		Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, fmt.Errorf("workout %q already recorded for %s: %w", name, date, ErrConflict)
	}

	entry := &models.WorkoutLogEntry{
		UserID:   userID,
		Date:     date,
		Name:     name,
		Duration: durationMinutes,
		XPGained: models.XPForDuration(durationMinutes),
	}
	if err := tx.Create(entry).Error; err != nil {
		return nil, err
	}

	if err := trimLog(tx, userID); err != nil {
		return nil, err
	}

	res := &workoutResult{entry: entry, user: user, prevLevel: user.Progression.Level}
	res.leveledUp = user.Progression.ApplyXP(entry.XPGained)

	if err := tx.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"progression_xp":    user.Progression.XP,
		"progression_level": user.Progression.Level,
	}).Error; err != nil {
		return nil, err
	}

	if w.activity != nil {
		if err := w.activity.record(tx, userID, models.ActivityWorkoutLogged,
			fmt.Sprintf("Completed %s (+%d XP)", name, entry.XPGained),
			map[string]interface{}{"duration": durationMinutes, "xpGained": entry.XPGained}); err != nil {
			return nil, err
		}
		if res.leveledUp {
			if err := w.activity.record(tx, userID, models.ActivityLevelUp,
				fmt.Sprintf("Reached level %d", user.Progression.Level),
				map[string]interface{}{"level": user.Progression.Level}); err != nil {
				return nil, err
			}
		}
	}
	return res, nil
}

// trimLog drops everything but the newest MaxRecentWorkouts entries.
func trimLog(tx *gorm.DB, userID uuid.UUID) error {
	var ids []uint
	if err := tx.Model(&models.WorkoutLogEntry{}).
		Where("user_id = ?", userID).
		Order("id DESC").
		Pluck("id", &ids).Error; err != nil {
		return err
	}
	if len(ids) <= models.MaxRecentWorkouts {
		return nil
	}
	return tx.Delete(&models.WorkoutLogEntry{}, ids[models.MaxRecentWorkouts:]).Error
}

func (w *WorkoutLog) afterCommit(ctx context.Context, userID uuid.UUID, res *workoutResult) {
	log := logging.WithContext(ctx).WithFields(logrus.Fields{
		"workout":   res.entry.Name,
		"xp_gained": res.entry.XPGained,
		"xp":        res.user.Progression.XP,
	})
	log.Info("Workout recorded")

	if w.metrics != nil {
		w.metrics.CounterWorkouts.Inc()
		if res.entry.XPGained > 0 {
			w.metrics.CounterXPAwarded.Add(float64(res.entry.XPGained))
		}
	}
	w.events.Publish(userID, Event{Type: EventWorkoutRecorded, Data: res.entry})

	if !res.leveledUp {
		return
	}

	level := res.user.Progression.Level
	log.WithField("level", level).Info("User leveled up")
	if w.metrics != nil {
		w.metrics.CounterLevelUps.Inc()
	}
	w.events.Publish(userID, Event{Type: EventLevelUp, Data: res.user.State()})

	if w.notifications != nil {
		err := w.notifications.Create(ctx, userID, models.NotificationLevelUp,
			"Level up!",
			fmt.Sprintf("You reached level %d.", level),
			map[string]interface{}{"level": level, "previousLevel": res.prevLevel})
		if err != nil {
			log.WithError(err).Warn("Failed to create level-up notification")
		}
	}
}

func isConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
