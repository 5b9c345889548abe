package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/arnold/levelup-api/internal/container"
	"github.com/arnold/levelup-api/internal/database"
	"github.com/arnold/levelup-api/internal/handlers"
	"github.com/arnold/levelup-api/internal/metrics"
	"github.com/arnold/levelup-api/internal/routes"
	"github.com/arnold/levelup-api/internal/services"
)

const jwtSecret = "handlers-test-secret"

type testServer struct {
	t   *testing.T
	app *fiber.App
	hub *handlers.Hub
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	reg := prometheus.NewRegistry()
	m := metrics.NewManager("levelup", "handlers_test", reg)
	hub := handlers.NewHub()
	svc := container.New(container.Deps{
		DB:      database.NewTestDB(t),
		Clock:   services.NewFixedClock(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)),
		Metrics: m,
		Push:    &services.PushService{},
		Events:  hub,
	})

	app := fiber.New()
	routes.Setup(app, handlers.New(svc, hub, handlers.Options{
		JWTSecret: jwtSecret,
		TokenTTL:  time.Hour,
		UploadDir: t.TempDir(),
	}), jwtSecret, m, reg)
	return &testServer{t: t, app: app, hub: hub}
}

func (s *testServer) do(method, path, token string, body interface{}) (int, map[string]interface{}) {
	s.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)

	out := map[string]interface{}{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(s.t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func (s *testServer) register(username string) string {
	s.t.Helper()
	status, body := s.do("POST", "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	require.Equal(s.t, fiber.StatusCreated, status, body)
	token, _ := body["token"].(string)
	require.NotEmpty(s.t, token)
	return token
}

func list(t *testing.T, body map[string]interface{}, key string) []interface{} {
	t.Helper()
	items, ok := body[key].([]interface{})
	require.True(t, ok, "missing %q in %v", key, body)
	return items
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)
	s.register("cha_haein")

	status, _ := s.do("POST", "/api/auth/register", "", map[string]string{
		"username": "cha_haein", "email": "other@example.com", "password": "password123",
	})
	require.Equal(t, fiber.StatusConflict, status)

	status, body := s.do("POST", "/api/auth/login", "", map[string]string{
		"email": "cha_haein@example.com", "password": "password123",
	})
	require.Equal(t, fiber.StatusOK, status)
	require.NotEmpty(t, body["token"])
	user := body["user"].(map[string]interface{})
	require.Equal(t, "cha_haein", user["username"])
	require.NotContains(t, user, "password")

	status, _ = s.do("POST", "/api/auth/login", "", map[string]string{
		"email": "cha_haein@example.com", "password": "wrong-password",
	})
	require.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = s.do("GET", "/api/users/cha_haein/workout-goals", "", nil)
	require.Equal(t, fiber.StatusUnauthorized, status)
}

func TestWorkoutDayFlow(t *testing.T) {
	s := newTestServer(t)
	token := s.register("jinwoo")

	status, body := s.do("PUT", "/api/users/jinwoo/workout-goals", token, map[string]interface{}{
		"workoutGoals": []map[string]interface{}{
			{"type": "pushups", "amount": 50, "unit": "reps"},
			{"type": "running", "amount": 5},
		},
	})
	require.Equal(t, fiber.StatusOK, status, body)

	status, body = s.do("GET", "/api/users/jinwoo/workout-goals", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	goals := list(t, body, "workoutGoals")
	require.Len(t, goals, 2)

	var items []map[string]string
	for _, g := range goals {
		items = append(items, map[string]string{"goalId": g.(map[string]interface{})["id"].(string)})
	}
	status, body = s.do("POST", "/api/users/jinwoo/workout-progress", token, map[string]interface{}{"workoutProgress": items})
	require.Equal(t, fiber.StatusCreated, status, body)

	status, _ = s.do("POST", "/api/users/jinwoo/workout-progress", token, map[string]interface{}{"workoutProgress": items})
	require.Equal(t, fiber.StatusConflict, status)

	status, body = s.do("GET", "/api/users/jinwoo/workout-progress", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, "2026-03-10", body["date"])
	records := list(t, body, "workoutProgress")
	require.Len(t, records, 2)
	first := records[0].(map[string]interface{})
	require.Equal(t, "pushups", first["type"])
	require.EqualValues(t, 50, first["total"])

	status, body = s.do("PUT", "/api/users/jinwoo/workout-progress/"+first["id"].(string), token, map[string]interface{}{
		"completed": 50, "isCompleted": true,
	})
	require.Equal(t, fiber.StatusOK, status, body)
	progression := body["progression"].(map[string]interface{})
	require.EqualValues(t, 15, progression["xp"])
	require.EqualValues(t, 1, progression["currentStreak"])
	require.Equal(t, "Push-ups", body["workout"].(map[string]interface{})["name"])

	status, body = s.do("POST", "/api/users/jinwoo/workouts", token, map[string]interface{}{
		"date": "2026-03-10", "name": "Evening Lift", "duration": 100, "xpGained": 99999,
	})
	require.Equal(t, fiber.StatusCreated, status, body)
	require.EqualValues(t, 150, body["workout"].(map[string]interface{})["xpGained"])
	require.EqualValues(t, 165, body["progression"].(map[string]interface{})["xp"])
	require.EqualValues(t, 2, body["progression"].(map[string]interface{})["level"])

	status, _ = s.do("POST", "/api/users/jinwoo/workouts", token, map[string]interface{}{
		"date": "2026-03-10", "name": "Evening Lift", "duration": 10,
	})
	require.Equal(t, fiber.StatusConflict, status)

	status, body = s.do("GET", "/api/users/jinwoo/workouts", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	workouts := list(t, body, "workouts")
	require.Len(t, workouts, 2)
	require.Equal(t, "Evening Lift", workouts[0].(map[string]interface{})["name"])

	status, body = s.do("PUT", "/api/users/jinwoo/workout-progress/reset", token, map[string]interface{}{"date": "2026-03-10"})
	require.Equal(t, fiber.StatusOK, status, body)
	require.EqualValues(t, 2, body["count"])

	status, body = s.do("GET", "/api/users/jinwoo", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	require.EqualValues(t, 165, body["progression"].(map[string]interface{})["xp"], "reset keeps xp")

	status, body = s.do("GET", "/api/notifications", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	require.Len(t, list(t, body, "notifications"), 1)

	status, body = s.do("GET", "/api/users/jinwoo/activity", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	require.EqualValues(t, 4, body["total"])
}

func TestRequestErrors(t *testing.T) {
	s := newTestServer(t)
	token := s.register("jinwoo")
	s.register("jinah")

	status, _ := s.do("GET", "/api/users/jinah/workout-goals", token, nil)
	require.Equal(t, fiber.StatusForbidden, status)

	status, body := s.do("PUT", "/api/users/jinwoo/workout-goals", token, map[string]interface{}{
		"workoutGoals": []map[string]interface{}{{"type": "pushups", "amount": -1}},
	})
	require.Equal(t, fiber.StatusBadRequest, status)
	require.Contains(t, body["error"], "amount")

	status, _ = s.do("PUT", "/api/users/jinwoo/workout-progress/not-a-uuid", token, map[string]interface{}{
		"completed": 1, "isCompleted": false,
	})
	require.Equal(t, fiber.StatusBadRequest, status)

	status, _ = s.do("PUT", "/api/users/jinwoo/workout-progress/6f1c2a7e-0b7e-4a35-9a55-3f0f0c6d1e11", token, map[string]interface{}{
		"completed": 1, "isCompleted": false,
	})
	require.Equal(t, fiber.StatusNotFound, status)

	status, _ = s.do("PUT", "/api/users/jinwoo/workout-progress/6f1c2a7e-0b7e-4a35-9a55-3f0f0c6d1e11", token, map[string]interface{}{
		"completed": 1,
	})
	require.Equal(t, fiber.StatusBadRequest, status)

	status, _ = s.do("POST", "/api/users/jinwoo/workout-progress", token, map[string]interface{}{
		"workoutProgress": []map[string]string{{"goalId": "6f1c2a7e-0b7e-4a35-9a55-3f0f0c6d1e11"}},
	})
	require.Equal(t, fiber.StatusNotFound, status)

	status, _ = s.do("PUT", "/api/users/jinwoo/workout-progress/reset", token, map[string]interface{}{"date": "not-a-date"})
	require.Equal(t, fiber.StatusBadRequest, status)

	status, _ = s.do("POST", "/api/users/jinwoo/workouts", token, map[string]interface{}{
		"date": "2026-03-10", "name": "Forever", "duration": int64(4000000000000000000),
	})
	require.Equal(t, fiber.StatusBadRequest, status)

	status, body = s.do("GET", "/api/users/jinwoo/workouts", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	require.Empty(t, list(t, body, "workouts"))
}

func TestReplaceGoalsRequiresList(t *testing.T) {
	s := newTestServer(t)
	token := s.register("jinwoo")

	status, _ := s.do("PUT", "/api/users/jinwoo/workout-goals", token, map[string]interface{}{
		"workoutGoals": []map[string]interface{}{{"type": "pushups", "amount": 50}},
	})
	require.Equal(t, fiber.StatusOK, status)

	malformed := map[string]interface{}{
		"missing key": map[string]interface{}{},
		"null list":   map[string]interface{}{"workoutGoals": nil},
		"wrong key":   map[string]interface{}{"goals": "oops"},
		"not a list":  map[string]interface{}{"workoutGoals": "oops"},
	}
	for name, payload := range malformed {
		t.Run(name, func(t *testing.T) {
			status, _ := s.do("PUT", "/api/users/jinwoo/workout-goals", token, payload)
			require.Equal(t, fiber.StatusBadRequest, status)

			status, body := s.do("GET", "/api/users/jinwoo/workout-goals", token, nil)
			require.Equal(t, fiber.StatusOK, status)
			require.Len(t, list(t, body, "workoutGoals"), 1, "goals must survive a rejected replace")
		})
	}

	// an explicit empty list clears the goals
	status, body := s.do("PUT", "/api/users/jinwoo/workout-goals", token, map[string]interface{}{
		"workoutGoals": []interface{}{},
	})
	require.Equal(t, fiber.StatusOK, status)
	require.Empty(t, list(t, body, "workoutGoals"))
}

func TestFriendsAndSearch(t *testing.T) {
	s := newTestServer(t)
	token := s.register("jinwoo")
	s.register("jinah")
	s.register("yoo_jinho")

	status, body := s.do("GET", "/api/users/search?q=JIN", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	require.Len(t, list(t, body, "users"), 3)

	status, body = s.do("GET", "/api/users/search?username=jinah", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	require.Len(t, list(t, body, "users"), 1)

	status, body = s.do("POST", "/api/users/jinwoo/friends", token, map[string]string{"friendUsername": "jinah"})
	require.Equal(t, fiber.StatusCreated, status, body)
	require.EqualValues(t, 1, body["level"])

	status, _ = s.do("POST", "/api/users/jinwoo/friends", token, map[string]string{"friendUsername": "jinah"})
	require.Equal(t, fiber.StatusConflict, status)

	status, _ = s.do("POST", "/api/users/jinwoo/friends", token, map[string]string{"friendUsername": "jinwoo"})
	require.Equal(t, fiber.StatusBadRequest, status)

	status, body = s.do("GET", "/api/users/jinwoo/friends", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	require.Len(t, list(t, body, "friends"), 1)

	status, _ = s.do("DELETE", "/api/users/jinwoo/friends/jinah", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	status, _ = s.do("DELETE", "/api/users/jinwoo/friends/jinah", token, nil)
	require.Equal(t, fiber.StatusNotFound, status)

	// other users only see a public profile
	status, body = s.do("GET", "/api/users/jinah", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, "jinah", body["username"])
	require.NotContains(t, body, "email")
}

func TestProfileAndTheme(t *testing.T) {
	s := newTestServer(t)
	token := s.register("jinwoo")

	status, body := s.do("PATCH", "/api/users/jinwoo", token, map[string]interface{}{"bio": "Shadow Monarch", "age": 25})
	require.Equal(t, fiber.StatusOK, status, body)
	require.Equal(t, "Shadow Monarch", body["bio"])

	status, body = s.do("PUT", "/api/users/jinwoo/theme", token, map[string]string{"theme": "one-piece"})
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, "one-piece", body["theme"])

	status, _ = s.do("PUT", "/api/users/jinwoo/theme", token, map[string]string{"theme": "made-up"})
	require.Equal(t, fiber.StatusBadRequest, status)

	status, body = s.do("GET", "/api/catalog", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	require.Len(t, list(t, body, "workoutTypes"), 16)
	require.Len(t, list(t, body, "themes"), 9)
}

func TestNotificationsAndDeviceToken(t *testing.T) {
	s := newTestServer(t)
	token := s.register("jinwoo")

	status, _ := s.do("POST", "/api/device-token", token, map[string]string{"token": ""})
	require.Equal(t, fiber.StatusBadRequest, status)
	status, _ = s.do("POST", "/api/device-token", token, map[string]string{"token": "fcm-token"})
	require.Equal(t, fiber.StatusOK, status)

	status, _ = s.do("POST", "/api/users/jinwoo/workouts", token, map[string]interface{}{"name": "Marathon", "duration": 200})
	require.Equal(t, fiber.StatusCreated, status)

	status, body := s.do("GET", "/api/notifications?unread=true", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	notifications := list(t, body, "notifications")
	require.Len(t, notifications, 1)
	id := notifications[0].(map[string]interface{})["id"].(string)

	status, _ = s.do("PUT", "/api/notifications/"+id+"/read", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	status, _ = s.do("PUT", "/api/notifications/not-a-uuid/read", token, nil)
	require.Equal(t, fiber.StatusBadRequest, status)

	status, body = s.do("POST", "/api/notifications/read-all", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	require.EqualValues(t, 0, body["count"])
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do("GET", "/healthz", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, "ok", body["status"])

	resp, err := s.app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(raw), "levelup_handlers_test_request")
}

func TestWebSocketRequiresUpgrade(t *testing.T) {
	s := newTestServer(t)
	token := s.register("jinwoo")

	status, _ := s.do("GET", "/ws/users/jinwoo?token="+token, "", nil)
	require.Equal(t, fiber.StatusUpgradeRequired, status)
}

func TestHubPublishWithoutConnections(t *testing.T) {
	hub := handlers.NewHub()
	userID := uuid.New()

	require.Zero(t, hub.Connections(userID))
	hub.Publish(userID, services.Event{Type: services.EventLevelUp})
	require.Zero(t, hub.Connections(userID))
}

func TestUploadAvatar(t *testing.T) {
	s := newTestServer(t)
	token := s.register("jinwoo")

	upload := func(filename string) int {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		part, err := w.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte("\x89PNG not really an image"))
		require.NoError(t, err)
		require.NoError(t, w.Close())

		req := httptest.NewRequest("POST", "/api/users/jinwoo/avatar", &buf)
		req.Header.Set("Content-Type", w.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := s.app.Test(req, -1)
		require.NoError(t, err)
		return resp.StatusCode
	}

	require.Equal(t, fiber.StatusBadRequest, upload("me.gif"))
	require.Equal(t, fiber.StatusOK, upload("me.png"))

	status, body := s.do("GET", "/api/users/jinwoo", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	avatarURL, _ := body["avatarUrl"].(string)
	require.Contains(t, avatarURL, "/uploads/")

	resp, err := s.app.Test(httptest.NewRequest("GET", avatarURL, nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}
