package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arnold/levelup-api/internal/handlers"
	"github.com/arnold/levelup-api/internal/metrics"
	"github.com/arnold/levelup-api/internal/middleware"
)

func Setup(app *fiber.App, h *handlers.Handler, jwtSecret string, m *metrics.Manager, gatherer prometheus.Gatherer) {
	app.Use(middleware.RequestID(), middleware.RequestLogger(m))

	app.Get("/healthz", h.Health)
	app.Static("/uploads", h.UploadDir())
	if gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)

	api.Get("/catalog", h.Catalog)

	protected := api.Group("/", middleware.Protected(jwtSecret))

	protected.Get("/users/search", h.SearchUsers)
	protected.Get("/users/:username", h.GetUser)

	owner := middleware.RequireOwner()
	users := protected.Group("/users/:username")
	users.Patch("/", owner, h.UpdateUser)
	users.Put("/theme", owner, h.SetTheme)
	users.Post("/avatar", owner, h.UploadAvatar)

	users.Get("/workout-goals", owner, h.GetGoals)
	users.Put("/workout-goals", owner, h.ReplaceGoals)

	users.Get("/workout-progress", owner, h.GetProgress)
	users.Post("/workout-progress", owner, h.InitProgress)
	users.Put("/workout-progress/reset", owner, h.ResetProgress)
	users.Put("/workout-progress/:progressId", owner, h.UpdateProgress)

	users.Get("/workouts", owner, h.GetWorkouts)
	users.Post("/workouts", owner, h.RecordWorkout)

	users.Get("/friends", owner, h.GetFriends)
	users.Post("/friends", owner, h.AddFriend)
	users.Delete("/friends/:friendUsername", owner, h.RemoveFriend)

	users.Get("/activity", owner, h.GetActivity)

	notifications := protected.Group("/notifications")
	notifications.Get("/", h.GetNotifications)
	notifications.Put("/:id/read", h.MarkNotificationRead)
	notifications.Post("/read-all", h.MarkAllRead)

	// Device token for push notifications
	protected.Post("/device-token", h.RegisterDeviceToken)

	// WebSocket for live progress updates
	app.Use("/ws", h.WebSocketUpgrade())
	app.Get("/ws/users/:username", websocket.New(h.HandleWebSocket))
}
