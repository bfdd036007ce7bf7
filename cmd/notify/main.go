package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mocworks/curricula-backend/internal/contentmap"
	"github.com/mocworks/curricula-backend/internal/db"
	"github.com/mocworks/curricula-backend/internal/logger"
	"github.com/mocworks/curricula-backend/internal/manifest"
	"github.com/mocworks/curricula-backend/internal/notify"
	"github.com/mocworks/curricula-backend/internal/platform/sendgrid"
	"github.com/mocworks/curricula-backend/internal/repos"
	"github.com/mocworks/curricula-backend/internal/scheduler"
	"github.com/mocworks/curricula-backend/internal/types"
	"github.com/mocworks/curricula-backend/internal/utils"
)

// Reminder sweep entrypoint, intended to run once a day from cron.
func main() {
	todayFlag := flag.String("today", "", "override today's date (YYYY-MM-DD), for testing")
	dryRunFlag := flag.Bool("dry-run", false, "select reminders but do not send any mail")
	flag.Parse()

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

	csBaseURL := utils.GetEnv("CS_BASE_URL", "http://localhost:8090", log)
	contentMapPath := utils.GetEnv("CONTENT_MAP_PATH", "content-map.yaml", log)

	dbService, err := db.New(log)
	if err != nil {
		log.Error("Database init failed", "error", err)
		os.Exit(1)
	}
	theDB := dbService.DB()

	content, err := contentmap.Load(contentMapPath)
	if err != nil {
		log.Error("Could not load content map", "path", contentMapPath, "error", err)
		os.Exit(1)
	}

	attemptRepo := repos.NewAttemptRepo(theDB, log)
	progressRepo := repos.NewProgressRepo(theDB, log)
	manifestClient := manifest.NewClient(log)
	sched := scheduler.New(log, attemptRepo, progressRepo, manifestClient, scheduler.Config{
		CSBaseURL:                   strings.TrimRight(csBaseURL, "/"),
		LaunchPresentationReturnURL: utils.GetEnv("LAUNCH_PRESENTATION_RETURN_URL", "", log),
	}, nil)

	var sender notify.Sender
	if !*dryRunFlag {
		sgClient, err := sendgrid.NewFromEnv(log)
		if err != nil {
			log.Error("Sendgrid init failed", "error", err)
			os.Exit(1)
		}
		sender = notify.NewSendgridSender(log, sgClient)
	}

	sweeper := notify.NewSweeper(log, content, attemptRepo, manifestClient, sched, sender)

	res, err := sweeper.Run(ctx, types.TestParams{TodayDate: *todayFlag})
	if err != nil {
		log.Error("Notification sweep failed", "error", err)
		os.Exit(1)
	}

	out, _ := json.MarshalIndent(res, "", "  ")
	fmt.Println(string(out))
	if len(res.SendErrors) > 0 {
		os.Exit(1)
	}
}
