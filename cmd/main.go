package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mocworks/curricula-backend/internal/contentmap"
	"github.com/mocworks/curricula-backend/internal/db"
	"github.com/mocworks/curricula-backend/internal/handlers"
	"github.com/mocworks/curricula-backend/internal/logger"
	"github.com/mocworks/curricula-backend/internal/manifest"
	"github.com/mocworks/curricula-backend/internal/notify"
	"github.com/mocworks/curricula-backend/internal/observability"
	"github.com/mocworks/curricula-backend/internal/platform/sendgrid"
	"github.com/mocworks/curricula-backend/internal/repos"
	"github.com/mocworks/curricula-backend/internal/scheduler"
	"github.com/mocworks/curricula-backend/internal/server"
	"github.com/mocworks/curricula-backend/internal/services"
	"github.com/mocworks/curricula-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()

	// Tracing
	shutdownOtel := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "curricula-backend",
		Environment: os.Getenv("APP_ENV"),
		Version:     os.Getenv("APP_VERSION"),
	})
	if shutdownOtel != nil {
		defer func() { _ = shutdownOtel(ctx) }()
	}

	// Env
	log.Info("Loading environment variables from main...")
	csBaseURL := utils.GetEnv("CS_BASE_URL", "http://localhost:8090", log)
	contentMapPath := utils.GetEnv("CONTENT_MAP_PATH", "content-map.yaml", log)

	// Database
	dbService, err := db.New(log)
	if err != nil {
		log.Error("Database init failed", "error", err)
		os.Exit(1)
	}
	if err = dbService.AutoMigrateAll(); err != nil {
		log.Warn("Auto migration failed", "error", err)
	}
	theDB := dbService.DB()

	// Content map
	content, err := contentmap.Load(contentMapPath)
	if err != nil {
		log.Error("Could not load content map", "path", contentMapPath, "error", err)
		os.Exit(1)
	}

	// Repos
	log.Info("Setting up Repos from main...")
	attemptRepo := repos.NewAttemptRepo(theDB, log)
	progressRepo := repos.NewProgressRepo(theDB, log)

	// Services
	log.Info("Setting up Services from main...")
	manifestClient := manifest.NewClient(log)
	sched := scheduler.New(log, attemptRepo, progressRepo, manifestClient, scheduler.Config{
		CSBaseURL:                   strings.TrimRight(csBaseURL, "/"),
		LaunchPresentationReturnURL: utils.GetEnv("LAUNCH_PRESENTATION_RETURN_URL", "", log),
	}, nil)

	sgClient, err := sendgrid.NewFromEnv(log)
	if err != nil {
		log.Warn("Sendgrid init failed, reminder delivery disabled", "error", err)
	}
	var sender notify.Sender
	if sgClient != nil {
		sender = notify.NewSendgridSender(log, sgClient)
	}
	sweeper := notify.NewSweeper(log, content, attemptRepo, manifestClient, sched, sender)

	scheduleService := services.NewScheduleService(log, content, attemptRepo, sched)
	notificationService := services.NewNotificationService(log, attemptRepo, sweeper)

	// Handlers
	log.Info("Setting up handlers from main...")
	scheduleHandler := handlers.NewScheduleHandler(log, scheduleService)
	notificationHandler := handlers.NewNotificationHandler(log, notificationService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		ServiceName:         "curricula-backend",
		ScheduleHandler:     scheduleHandler,
		NotificationHandler: notificationHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Warn("Server failed", "error", err)
	}
}
