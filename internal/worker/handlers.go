package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"viewpilot/internal/db"
	"viewpilot/internal/syncer"
	"viewpilot/internal/youtube"
	"viewpilot/pkg/tasks"
)

type TaskHandler struct {
	engine      *syncer.Engine
	asynqClient tasks.TaskEnqueuer
}

func NewTaskHandler(engine *syncer.Engine, client tasks.TaskEnqueuer) *TaskHandler {
	return &TaskHandler{engine: engine, asynqClient: client}
}

// HandleSyncUserTask runs a full channel sync for one user. Permanent
// failures (no channel, revoked access) are not retried.
func (h *TaskHandler) HandleSyncUserTask(ctx context.Context, t *asynq.Task) error {
	var p tasks.SyncUserTaskPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal task payload: %w", err)
	}

	log.Printf("Syncing channel for user: %s", p.UserID)

	summary, err := h.engine.SyncUser(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, youtube.ErrNoChannel) || errors.Is(err, syncer.ErrNoCredentials) || youtube.IsAuthError(err) {
			log.Printf("Skipping sync for user %s: %v", p.UserID, err)
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return fmt.Errorf("sync failed for user %s: %w", p.UserID, err)
	}

	log.Printf("Synced channel %q (%d videos) for user %s", summary.Title, summary.VideoCount, p.UserID)
	return nil
}

// HandleSyncAllUsersTask fans out one sync task per user that holds a
// refresh token.
func (h *TaskHandler) HandleSyncAllUsersTask(ctx context.Context, t *asynq.Task) error {
	log.Println("Scheduling sync for all users...")

	users, err := db.GetSyncableUsers()
	if err != nil {
		return fmt.Errorf("failed to get syncable users: %w", err)
	}

	for _, user := range users {
		task, err := tasks.NewSyncUserTask(user.ID)
		if err != nil {
			log.Printf("failed to create sync task for user %s: %v", user.ID, err)
			continue
		}

		if _, err := h.asynqClient.Enqueue(task); err != nil {
			log.Printf("failed to enqueue sync task for user %s: %v", user.ID, err)
			continue
		}
	}

	log.Printf("Scheduled sync for %d users.", len(users))
	return nil
}
