package services

import (
	"context"
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/arnold/levelup-api/internal/logging"
	"github.com/arnold/levelup-api/internal/models"
)

type GoalStore struct {
	db     *gorm.DB
	events EventPublisher
}

func NewGoalStore(db *gorm.DB, events EventPublisher) *GoalStore {
	return &GoalStore{db: db, events: publisherOrNoop(events)}
}

// List returns the user's goals in creation order.
func (s *GoalStore) List(ctx context.Context, userID uuid.UUID) ([]models.WorkoutGoal, error) {
	db := s.db.WithContext(ctx)
	if err := requireUser(db, userID); err != nil {
		return nil, err
	}

	goals := []models.WorkoutGoal{}
	if err := db.Where("user_id = ?", userID).
		Order("position ASC, created_at ASC").
		Find(&goals).Error; err != nil {
		return nil, err
	}
	return goals, nil
}

// Replace discards every existing goal of the user and stores inputs in their
// place. Duplicated types are allowed. Either all of it happens or none.
func (s *GoalStore) Replace(ctx context.Context, userID uuid.UUID, inputs []models.GoalInput) ([]models.WorkoutGoal, error) {
	log := logging.WithContext(ctx)

	goals := make([]models.WorkoutGoal, 0, len(inputs))
	for i, in := range inputs {
		wt, err := models.ParseWorkoutType(in.Type)
		if err != nil {
			return nil, validationErrorf("goal %d: %v", i, err)
		}
		if in.Amount <= 0 || math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) {
			return nil, validationErrorf("goal %d: amount must be a positive number", i)
		}
		goals = append(goals, models.WorkoutGoal{
			UserID:   userID,
			Type:     wt,
			Amount:   in.Amount,
			Unit:     wt.Unit(),
			Position: i,
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireUser(tx, userID); err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.WorkoutGoal{}).Error; err != nil {
			return err
		}
		if len(goals) == 0 {
			return nil
		}
		return tx.Create(&goals).Error
	})
	if err != nil {
		return nil, err
	}

	log.WithField("goals", len(goals)).Info("Workout goals replaced")
	s.events.Publish(userID, Event{Type: EventGoalsReplaced, Data: goals})
	return goals, nil
}
