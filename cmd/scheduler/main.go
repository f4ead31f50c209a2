package main

import (
	"log"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"viewpilot/internal/config"
	"viewpilot/pkg/tasks"
)

// CommitSHA is set at build time via ldflags
var CommitSHA = "unknown"

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file")
	}

	cfg := config.NewConfig()

	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		&asynq.SchedulerOpts{},
	)

	task, err := tasks.NewSyncAllUsersTask()
	if err != nil {
		log.Fatalf("could not create task: %v", err)
	}

	// Refresh every user's channel a few times a day
	_, err = scheduler.Register("@every 6h", task)
	if err != nil {
		log.Fatalf("could not register task: %v", err)
	}

	log.Printf("Scheduler starting (commit: %s)", CommitSHA)
	if err := scheduler.Run(); err != nil {
		log.Fatalf("could not run scheduler: %v", err)
	}
}
