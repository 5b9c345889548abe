package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	"github.com/arnold/levelup-api/internal/config"
	"github.com/arnold/levelup-api/internal/container"
	"github.com/arnold/levelup-api/internal/database"
	"github.com/arnold/levelup-api/internal/handlers"
	"github.com/arnold/levelup-api/internal/logging"
	"github.com/arnold/levelup-api/internal/metrics"
	"github.com/arnold/levelup-api/internal/routes"
	"github.com/arnold/levelup-api/internal/services"
)

func main() {
	cfg := config.Load()

	logging.Setup(logging.SetupParams{
		LogFileName:   cfg.LogFile,
		LogLevel:      cfg.LogLevel,
		LogFormatJSON: cfg.LogJSON,
	})

	db, err := database.Connect(cfg.DatabaseURL, logging.GetLevel(cfg.LogLevel))
	if err != nil {
		logrus.Fatalf("failed to connect to database: %s", err)
	}
	if err := database.Migrate(db); err != nil {
		logrus.Fatalf("failed to migrate database: %s", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	reg := metrics.SetupPrometheus()
	m := metrics.NewManager("levelup", "server", reg)

	hub := handlers.NewHub()
	svc := container.New(container.Deps{
		DB:      db,
		Clock:   services.NewClock(cfg.Location()),
		Metrics: m,
		Push:    services.NewPushService(ctx, cfg.FCMServiceAccount),
		Events:  hub,
	})

	app := fiber.New(fiber.Config{
		AppName:      "levelup-api",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})
	app.Use(recover.New())
	app.Use(cors.New())

	h := handlers.New(svc, hub, handlers.Options{
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.TokenTTL,
		UploadDir: cfg.UploadDir,
	})
	routes.Setup(app, h, cfg.JWTSecret, m, reg)

	go func() {
		<-ctx.Done()
		logrus.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logrus.Errorf("shutdown: %s", err)
		}
	}()

	logrus.WithFields(logrus.Fields{
		"port":     cfg.Port,
		"timezone": cfg.Location().String(),
	}).Info("levelup-api listening")
	if err := app.Listen(":" + cfg.Port); err != nil {
		logrus.Fatalf("server stopped: %s", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
