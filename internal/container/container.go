package container

import (
	"gorm.io/gorm"

	"github.com/arnold/levelup-api/internal/metrics"
	"github.com/arnold/levelup-api/internal/services"
)

type Container struct {
	Users         *services.UserService
	Goals         *services.GoalStore
	Progress      *services.ProgressTracker
	Progression   *services.ProgressionCalculator
	Workouts      *services.WorkoutLog
	Friends       *services.FriendService
	Activity      *services.ActivityService
	Notifications *services.NotificationService
	Clock         services.Clock
}

type Deps struct {
	DB      *gorm.DB
	Clock   services.Clock
	Metrics *metrics.Manager
	Push    *services.PushService
	Events  services.EventPublisher
}

func New(d Deps) *Container {
	activity := services.NewActivityService(d.DB)
	notifications := services.NewNotificationService(d.DB, d.Push)
	calc := services.NewProgressionCalculator(d.DB, d.Clock, d.Metrics, notifications)
	workouts := services.NewWorkoutLog(d.DB, d.Clock, d.Metrics, activity, notifications, d.Events)

	return &Container{
		Users:         services.NewUserService(d.DB, d.Clock),
		Goals:         services.NewGoalStore(d.DB, d.Events),
		Progress:      services.NewProgressTracker(d.DB, d.Clock, calc, workouts, activity, d.Metrics, d.Events),
		Progression:   calc,
		Workouts:      workouts,
		Friends:       services.NewFriendService(d.DB, activity),
		Activity:      activity,
		Notifications: notifications,
		Clock:         d.Clock,
	}
}
