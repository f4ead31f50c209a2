package main

import (
	"context"
	"log"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"golang.org/x/oauth2"

	"viewpilot/internal/config"
	"viewpilot/internal/cryptox"
	"viewpilot/internal/db"
	"viewpilot/internal/syncer"
	"viewpilot/internal/worker"
	"viewpilot/internal/youtube"
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
	if cfg.SecretKey == "" {
		log.Fatal("SECRET_KEY is not set")
	}

	db.InitDB()

	client := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer client.Close()

	cipher := cryptox.NewTokenCipher(cfg.SecretKey)
	oauthCfg := cfg.OAuth()
	engine := syncer.NewEngine(cipher, func(ctx context.Context, token *oauth2.Token) (syncer.ChannelAPI, error) {
		return youtube.NewClient(ctx, oauthCfg, token)
	})

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		asynq.Config{
			Concurrency: 2, // Full syncs are long-running and quota-hungry; keep parallelism low
			Queues: map[string]int{
				"high":    2,
				"default": 1,
			},
			// Custom retry delay function for exponential backoff
			RetryDelayFunc: func(n int, err error, task *asynq.Task) time.Duration {
				delay := 5 * time.Minute
				maxDelay := 24 * time.Hour

				// Exponential backoff: 5min, 10min, 20min, 40min, 80min, etc.
				for i := 0; i < n; i++ {
					delay *= 2
					if delay > maxDelay {
						delay = maxDelay
						break
					}
				}

				log.Printf("Task %s failed %d times, retrying in %v", task.Type(), n+1, delay)
				return delay
			},
		},
	)

	mux := asynq.NewServeMux()
	taskHandler := worker.NewTaskHandler(engine, client)

	mux.HandleFunc(tasks.TypeSyncUser, taskHandler.HandleSyncUserTask)
	mux.HandleFunc(tasks.TypeSyncAllUsers, taskHandler.HandleSyncAllUsersTask)

	log.Printf("Worker starting (commit: %s)", CommitSHA)
	if err := srv.Run(mux); err != nil {
		log.Fatalf("could not run server: %v", err)
	}
}
