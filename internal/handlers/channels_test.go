package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"golang.org/x/oauth2"

	"viewpilot/internal/cryptox"
	"viewpilot/internal/models"
	"viewpilot/internal/syncer"
	"viewpilot/internal/test"
	"viewpilot/internal/youtube"
	"viewpilot/pkg/tasks"
)

func TestGetChannels(t *testing.T) {
	_, mock := test.NewMockDB(t)

	user := &models.User{ID: uuid.New()}
	synced := time.Now().UTC()

	mock.ExpectQuery(`(?s)SELECT \* FROM channels.*WHERE user_id = \$1`).
		WithArgs(user.ID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "youtube_channel_id", "title", "subscriber_count", "video_count", "view_count", "last_synced_at"}).
			AddRow(uuid.New(), user.ID, "UCabc", "My Channel", 1000, 42, 50000, synced))

	h := &Handlers{}
	req := asUser(httptest.NewRequest("GET", "/api/channels", nil), user)
	rr := httptest.NewRecorder()
	h.GetChannels(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var body []map[string]any
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Len(t, body, 1)
	assert.Equal(t, "My Channel", body[0]["title"])
	assert.Equal(t, float64(42), body[0]["video_count"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetChannels_EmptyListIsNotNull(t *testing.T) {
	_, mock := test.NewMockDB(t)

	user := &models.User{ID: uuid.New()}
	mock.ExpectQuery(`(?s)SELECT \* FROM channels.*WHERE user_id = \$1`).
		WithArgs(user.ID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	h := &Handlers{}
	req := asUser(httptest.NewRequest("GET", "/api/channels", nil), user)
	rr := httptest.NewRecorder()
	h.GetChannels(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]\n", rr.Body.String())
}

// syncEngine builds an engine whose client factory fails with the given error,
// after scripting a user row holding valid encrypted credentials.
func syncEngine(mock sqlmock.Sqlmock, userID uuid.UUID, clientErr error) *syncer.Engine {
	cipher := cryptox.NewTokenCipher("test-secret")
	encrypted, _ := cipher.Encrypt("plain-access-token")
	mock.ExpectQuery(`SELECT \* FROM users WHERE id = \$1`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "google_id", "email", "name", "access_token"}).
			AddRow(userID, "g1", "a@example.com", "A", encrypted))

	return syncer.NewEngine(cipher, func(ctx context.Context, token *oauth2.Token) (syncer.ChannelAPI, error) {
		return nil, clientErr
	})
}

func TestPostSync_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		clientErr  error
		wantStatus int
	}{
		{"no channel", youtube.ErrNoChannel, http.StatusNotFound},
		{"revoked access", &youtube.APIError{StatusCode: http.StatusUnauthorized, Err: errors.New("invalid credentials")}, http.StatusBadRequest},
		{"upstream failure", &youtube.APIError{StatusCode: http.StatusServiceUnavailable, Err: errors.New("backend error")}, http.StatusBadGateway},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, mock := test.NewMockDB(t)

			user := &models.User{ID: uuid.New()}
			h := &Handlers{engine: syncEngine(mock, user.ID, tc.clientErr)}

			req := asUser(httptest.NewRequest("POST", "/api/channels/sync", nil), user)
			rr := httptest.NewRecorder()
			h.PostSync(rr, req)

			assert.Equal(t, tc.wantStatus, rr.Code)
		})
	}
}

func TestPostSync_AsyncEnqueues(t *testing.T) {
	user := &models.User{ID: uuid.New()}
	enqueuer := &test.MockTaskEnqueuer{}

	// The engine must stay untouched: async mode only queues the run.
	h := &Handlers{asynqClient: enqueuer}

	req := asUser(httptest.NewRequest("POST", "/api/channels/sync?async=1", nil), user)
	rr := httptest.NewRecorder()
	h.PostSync(rr, req)

	assert.Equal(t, http.StatusAccepted, rr.Code)
	assert.Len(t, enqueuer.EnqueuedTasks, 1)
	assert.Equal(t, tasks.TypeSyncUser, enqueuer.EnqueuedTasks[0].Type())

	var p tasks.SyncUserTaskPayload
	assert.NoError(t, json.Unmarshal(enqueuer.EnqueuedTasks[0].Payload(), &p))
	assert.Equal(t, user.ID, p.UserID)
}

func TestPostSync_NoCredentials(t *testing.T) {
	_, mock := test.NewMockDB(t)

	user := &models.User{ID: uuid.New()}
	mock.ExpectQuery(`SELECT \* FROM users WHERE id = \$1`).
		WithArgs(user.ID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "google_id", "email", "name", "access_token"}).
			AddRow(user.ID, "g1", "a@example.com", "A", nil))

	engine := syncer.NewEngine(cryptox.NewTokenCipher("test-secret"), func(ctx context.Context, token *oauth2.Token) (syncer.ChannelAPI, error) {
		t.Fatal("client must not be built")
		return nil, nil
	})
	h := &Handlers{engine: engine}

	req := asUser(httptest.NewRequest("POST", "/api/channels/sync", nil), user)
	rr := httptest.NewRecorder()
	h.PostSync(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
