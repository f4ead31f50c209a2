package db

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"viewpilot/internal/models"
)

func TestUpsertChannel_ReturnsDurableID(t *testing.T) {
	mock := newMockDB(t)

	existingID := uuid.New()
	userID := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "user_id", "youtube_channel_id", "title", "last_synced_at"}).
		AddRow(existingID, userID, "UCabc", "My Channel", time.Now())
	mock.ExpectQuery(`(?s)INSERT INTO channels.*ON CONFLICT \(youtube_channel_id\) DO UPDATE`).WillReturnRows(rows)

	now := time.Now()
	channel, err := UpsertChannel(DB, &models.Channel{
		ID:               uuid.New(),
		UserID:           userID,
		YoutubeChannelID: "UCabc",
		Title:            "My Channel",
		LastSyncedAt:     &now,
	})

	assert.NoError(t, err)
	assert.Equal(t, existingID, channel.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetChannelForUser_ScopedToOwner(t *testing.T) {
	mock := newMockDB(t)

	channelID := uuid.New()
	ownerID := uuid.New()
	strangerID := uuid.New()

	mock.ExpectQuery(`(?s)SELECT \* FROM channels.*WHERE id = \$1 AND user_id = \$2`).
		WithArgs(channelID, strangerID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := GetChannelForUser(channelID, strangerID)
	assert.ErrorIs(t, err, ErrNotFound)

	mock.ExpectQuery(`(?s)SELECT \* FROM channels.*WHERE id = \$1 AND user_id = \$2`).
		WithArgs(channelID, ownerID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "youtube_channel_id", "title"}).
			AddRow(channelID, ownerID, "UCabc", "My Channel"))

	channel, err := GetChannelForUser(channelID, ownerID)
	assert.NoError(t, err)
	assert.Equal(t, "My Channel", channel.Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertVideoStats_AppendOnly(t *testing.T) {
	mock := newMockDB(t)

	videoID := uuid.New()
	// Two inserts for the same video must both go through; snapshots are
	// never deduplicated or updated in place.
	mock.ExpectExec(`INSERT INTO video_stats`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO video_stats`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	stats := &models.VideoStats{
		ID:        uuid.New(),
		VideoID:   videoID,
		ViewCount: 100,
		FetchedAt: time.Now(),
	}
	assert.NoError(t, InsertVideoStats(DB, stats))

	stats.ID = uuid.New()
	stats.ViewCount = 150
	assert.NoError(t, InsertVideoStats(DB, stats))

	assert.NoError(t, mock.ExpectationsWereMet())
}
