package tasks

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	TypeSyncUser     = "sync:user"
	TypeSyncAllUsers = "sync:all"
)

type SyncUserTaskPayload struct {
	UserID uuid.UUID
}

func NewSyncUserTask(userID uuid.UUID) (*asynq.Task, error) {
	payload, err := json.Marshal(SyncUserTaskPayload{UserID: userID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeSyncUser, payload), nil
}

func NewSyncAllUsersTask() (*asynq.Task, error) {
	return asynq.NewTask(TypeSyncAllUsers, nil), nil
}
