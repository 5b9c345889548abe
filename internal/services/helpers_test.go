package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/arnold/levelup-api/internal/database"
	"github.com/arnold/levelup-api/internal/metrics"
	"github.com/arnold/levelup-api/internal/models"
)

var userCounter int64

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) Publish(_ uuid.UUID, e Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type testEnv struct {
	ctx      context.Context
	db       *gorm.DB
	clock    *FixedClock
	events   *recordingPublisher
	metrics  *metrics.Manager
	activity *ActivityService
	notifs   *NotificationService
	users    *UserService
	goals    *GoalStore
	calc     *ProgressionCalculator
	workouts *WorkoutLog
	progress *ProgressTracker
	friends  *FriendService
}

func newTestEnv(t testing.TB) *testEnv {
	t.Helper()

	db := database.NewTestDB(t)
	clock := NewFixedClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	events := &recordingPublisher{}
	m := metrics.NewTestManager()

	activity := NewActivityService(db)
	notifs := NewNotificationService(db, &PushService{})
	calc := NewProgressionCalculator(db, clock, m, notifs)
	workouts := NewWorkoutLog(db, clock, m, activity, notifs, events)

	return &testEnv{
		ctx:      context.Background(),
		db:       db,
		clock:    clock,
		events:   events,
		metrics:  m,
		activity: activity,
		notifs:   notifs,
		users:    NewUserService(db, clock),
		goals:    NewGoalStore(db, events),
		calc:     calc,
		workouts: workouts,
		progress: NewProgressTracker(db, clock, calc, workouts, activity, m, events),
		friends:  NewFriendService(db, activity),
	}
}

func (e *testEnv) newUser(t testing.TB) *models.User {
	t.Helper()
	n := atomic.AddInt64(&userCounter, 1)
	u := models.User{
		Username: fmt.Sprintf("%s%d", gofakeit.Username(), n),
		Email:    fmt.Sprintf("%d.%s", n, gofakeit.Email()),
	}
	require.NoError(t, e.db.Create(&u).Error)
	return &u
}

func (e *testEnv) reload(t testing.TB, id uuid.UUID) *models.User {
	t.Helper()
	var u models.User
	require.NoError(t, e.db.First(&u, "id = ?", id).Error)
	return &u
}

// setupDay replaces the user's goals and initializes today's records.
func (e *testEnv) setupDay(t testing.TB, userID uuid.UUID, inputs ...models.GoalInput) []models.ProgressRecord {
	t.Helper()
	goals, err := e.goals.Replace(e.ctx, userID, inputs)
	require.NoError(t, err)

	ids := make([]uuid.UUID, len(goals))
	for i, g := range goals {
		ids[i] = g.ID
	}
	records, err := e.progress.InitializeProgress(e.ctx, userID, ids)
	require.NoError(t, err)
	return records
}

func (e *testEnv) complete(t testing.TB, userID uuid.UUID, rec models.ProgressRecord) *models.ProgressUpdate {
	t.Helper()
	out, err := e.progress.UpdateProgress(e.ctx, userID, rec.ID, rec.Total, true)
	require.NoError(t, err)
	return out
}

// initToday creates today's records for the user's existing goals.
func (e *testEnv) initToday(t testing.TB, userID uuid.UUID) []models.ProgressRecord {
	t.Helper()
	goals, err := e.goals.List(e.ctx, userID)
	require.NoError(t, err)
	ids := make([]uuid.UUID, len(goals))
	for i, g := range goals {
		ids[i] = g.ID
	}
	records, err := e.progress.InitializeProgress(e.ctx, userID, ids)
	require.NoError(t, err)
	return records
}

var (
	pushups = models.GoalInput{Type: "pushups", Amount: 50}
	running = models.GoalInput{Type: "running", Amount: 5}
	yoga    = models.GoalInput{Type: "yoga", Amount: 20}
)
