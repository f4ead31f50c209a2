package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"golang.org/x/oauth2"

	"viewpilot/internal/cryptox"
	"viewpilot/internal/syncer"
	"viewpilot/internal/test"
	"viewpilot/internal/youtube"
	"viewpilot/pkg/tasks"
)

func TestHandleSyncAllUsersTask(t *testing.T) {
	_, mock := test.NewMockDB(t)

	userA := uuid.New()
	userB := uuid.New()
	mock.ExpectQuery(`SELECT \* FROM users WHERE refresh_token IS NOT NULL`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "google_id", "email", "name"}).
			AddRow(userA, "g1", "a@example.com", "A").
			AddRow(userB, "g2", "b@example.com", "B"))

	enqueuer := &test.MockTaskEnqueuer{}
	handler := NewTaskHandler(nil, enqueuer)

	err := handler.HandleSyncAllUsersTask(context.Background(), asynq.NewTask(tasks.TypeSyncAllUsers, nil))

	assert.NoError(t, err)
	assert.Len(t, enqueuer.EnqueuedTasks, 2)

	var seen []uuid.UUID
	for _, task := range enqueuer.EnqueuedTasks {
		assert.Equal(t, tasks.TypeSyncUser, task.Type())
		var p tasks.SyncUserTaskPayload
		assert.NoError(t, json.Unmarshal(task.Payload(), &p))
		seen = append(seen, p.UserID)
	}
	assert.Equal(t, []uuid.UUID{userA, userB}, seen)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleSyncUserTask_BadPayload(t *testing.T) {
	handler := NewTaskHandler(nil, nil)

	err := handler.HandleSyncUserTask(context.Background(), asynq.NewTask(tasks.TypeSyncUser, []byte("not json")))
	assert.Error(t, err)
}

func TestHandleSyncUserTask_PermanentFailureSkipsRetry(t *testing.T) {
	_, mock := test.NewMockDB(t)

	userID := uuid.New()
	mock.ExpectQuery(`SELECT \* FROM users WHERE id = \$1`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "google_id", "email", "name", "access_token"}).
			AddRow(userID, "g1", "a@example.com", "A", nil))

	engine := syncer.NewEngine(cryptox.NewTokenCipher("test-secret"), func(ctx context.Context, token *oauth2.Token) (syncer.ChannelAPI, error) {
		t.Fatal("client must not be built")
		return nil, nil
	})
	handler := NewTaskHandler(engine, nil)

	task, err := tasks.NewSyncUserTask(userID)
	assert.NoError(t, err)

	err = handler.HandleSyncUserTask(context.Background(), task)
	assert.True(t, errors.Is(err, asynq.SkipRetry), "a user without credentials must not be retried")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleSyncUserTask_TransientFailureRetries(t *testing.T) {
	_, mock := test.NewMockDB(t)

	cipher := cryptox.NewTokenCipher("test-secret")
	userID := uuid.New()
	encrypted, _ := cipher.Encrypt("plain-access-token")
	mock.ExpectQuery(`SELECT \* FROM users WHERE id = \$1`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "google_id", "email", "name", "access_token"}).
			AddRow(userID, "g1", "a@example.com", "A", encrypted))

	apiErr := &youtube.APIError{StatusCode: 503, Err: errors.New("backend error")}
	engine := syncer.NewEngine(cipher, func(ctx context.Context, token *oauth2.Token) (syncer.ChannelAPI, error) {
		return nil, apiErr
	})
	handler := NewTaskHandler(engine, nil)

	task, err := tasks.NewSyncUserTask(userID)
	assert.NoError(t, err)

	err = handler.HandleSyncUserTask(context.Background(), task)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry), "a transient API failure must stay retryable")
}
