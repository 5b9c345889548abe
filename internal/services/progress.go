package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/arnold/levelup-api/internal/logging"
	"github.com/arnold/levelup-api/internal/metrics"
	"github.com/arnold/levelup-api/internal/models"
)

// ProgressTracker owns the per-day, per-goal progress records.
type ProgressTracker struct {
	db       *gorm.DB
	clock    Clock
	calc     *ProgressionCalculator
	workouts *WorkoutLog
	activity *ActivityService
	metrics  *metrics.Manager
	events   EventPublisher
}

func NewProgressTracker(db *gorm.DB, clock Clock, calc *ProgressionCalculator, workouts *WorkoutLog, activity *ActivityService, m *metrics.Manager, events EventPublisher) *ProgressTracker {
	return &ProgressTracker{
		db:       db,
		clock:    clock,
		calc:     calc,
		workouts: workouts,
		activity: activity,
		metrics:  m,
		events:   publisherOrNoop(events),
	}
}

// Today returns the current calendar date according to the tracker's clock.
func (t *ProgressTracker) Today() string {
	return today(t.clock)
}

// TodayProgress lists today's records. It never creates any.
func (t *ProgressTracker) TodayProgress(ctx context.Context, userID uuid.UUID) ([]models.ProgressRecord, error) {
	db := t.db.WithContext(ctx)
	if err := requireUser(db, userID); err != nil {
		return nil, err
	}

	records := []models.ProgressRecord{}
	if err := db.Where("user_id = ? AND date = ?", userID, today(t.clock)).
		Order("position ASC, created_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// InitializeProgress creates today's record for each goal. It fails with
// ErrConflict if any of them already has a record today and with ErrNotFound
// if a goal is not the user's; in both cases nothing is created.
func (t *ProgressTracker) InitializeProgress(ctx context.Context, userID uuid.UUID, goalIDs []uuid.UUID) ([]models.ProgressRecord, error) {
	date := today(t.clock)
	records := make([]models.ProgressRecord, 0, len(goalIDs))

	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireUser(tx, userID); err != nil {
			return err
		}

		for _, goalID := range goalIDs {
			var goal models.WorkoutGoal
			if err := tx.Where("id = ? AND user_id = ?", goalID, userID).First(&goal).Error; err != nil {
				return notFound(err, "goal "+goalID.String())
			}

			var existing int64
			if err := tx.Model(&models.ProgressRecord{}).
				Where("user_id = ? AND goal_id = ? AND date = ?", userID, goalID, date).
				Count(&existing).Error; err != nil {
				return err
			}
			if existing > 0 {
				return fmt.Errorf("progress for goal %s on %s: %w", goalID, date, ErrConflict)
			}

			rec := models.ProgressRecord{
				UserID:   userID,
				GoalID:   goal.ID,
				Date:     date,
				Type:     goal.Type,
				Total:    goal.Amount,
				Unit:     goal.Unit,
				Position: goal.Position,
			}
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.WithContext(ctx).WithFields(logrus.Fields{
		"date":    date,
		"records": len(records),
	}).Info("Workout progress initialized")
	return records, nil
}

// UpdateProgress stores completed and isCompleted as given. When the record
// moves from incomplete to complete, the completion bookkeeping and the
// workout log entry are written in the same transaction.
func (t *ProgressTracker) UpdateProgress(ctx context.Context, userID, recordID uuid.UUID, completed float64, isCompleted bool) (*models.ProgressUpdate, error) {
	log := logging.WithContext(ctx).WithField("progress_id", recordID)

	if completed < 0 {
		return nil, validationErrorf("completed must not be negative")
	}

	out := &models.ProgressUpdate{}
	var completion *completionResult
	var workout *workoutResult

	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec models.ProgressRecord
		if err := tx.Where("id = ? AND user_id = ?", recordID, userID).First(&rec).Error; err != nil {
			return notFound(err, "progress record "+recordID.String())
		}

		wasCompleted := rec.IsCompleted
		rec.Completed = completed
		rec.IsCompleted = isCompleted
		if err := tx.Model(&rec).Updates(map[string]interface{}{
			"completed":    completed,
			"is_completed": isCompleted,
		}).Error; err != nil {
			return err
		}
		out.Record = rec

		if wasCompleted || !isCompleted {
			return nil
		}

		var err error
		if completion, err = t.calc.applyCompletion(tx, userID); err != nil {
			return err
		}

		if t.activity != nil {
			if err := t.activity.record(tx, userID, models.ActivityGoalCompleted,
				fmt.Sprintf("Completed daily goal: %s", rec.Type.DisplayName()),
				map[string]interface{}{"goalId": rec.GoalID.String(), "date": rec.Date}); err != nil {
				return err
			}
		}

		spec := rec.Type.Spec()
		workout, err = t.workouts.record(tx, userID, rec.Date, spec.DisplayName, spec.DurationMinutes)
		if isConflict(err) {
			// Same type already logged for this date (two goals of one type).
			log.WithError(err).Info("Workout already logged for the day, no XP awarded")
			workout, err = nil, nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	if completion != nil {
		if t.metrics != nil {
			t.metrics.CounterGoalsCompleted.Inc()
		}
		t.calc.observe(ctx, completion)

		state := completion.user.State()
		if workout != nil {
			t.workouts.afterCommit(ctx, userID, workout)
			state = workout.user.State()
			out.Workout = workout.entry
			out.LeveledUp = workout.leveledUp
		}
		out.Progression = &state
		log.WithField("type", out.Record.Type).Info("Goal completed")
	}

	t.events.Publish(userID, Event{Type: EventProgressUpdated, Data: out})
	return out, nil
}

// ResetProgress zeroes the user's records for date, optionally only the one
// for goalID, and returns how many records matched. XP, level, streak and the
// workout log are left untouched.
func (t *ProgressTracker) ResetProgress(ctx context.Context, userID uuid.UUID, date string, goalID *uuid.UUID) (int64, error) {
	if date == "" {
		return 0, validationErrorf("date is required")
	}
	date, err := NormalizeDate(t.clock, date)
	if err != nil {
		return 0, err
	}

	db := t.db.WithContext(ctx)
	if err := requireUser(db, userID); err != nil {
		return 0, err
	}

	q := db.Model(&models.ProgressRecord{}).Where("user_id = ? AND date = ?", userID, date)
	if goalID != nil {
		q = q.Where("goal_id = ?", *goalID)
	}
	res := q.Updates(map[string]interface{}{
		"completed":    0,
		"is_completed": false,
	})
	if res.Error != nil {
		return 0, res.Error
	}

	logging.WithContext(ctx).WithFields(logrus.Fields{
		"date":  date,
		"count": res.RowsAffected,
	}).Info("Workout progress reset")
	t.events.Publish(userID, Event{Type: EventProgressReset, Data: map[string]interface{}{"date": date, "count": res.RowsAffected}})
	return res.RowsAffected, nil
}
