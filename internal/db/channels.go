package db

import (
	"database/sql"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"viewpilot/internal/models"
)

// UpsertChannel inserts a channel or overwrites its mutable fields, keyed by
// the YouTube channel ID. The returned row carries the durable internal ID,
// which video upserts need before any snapshot can reference them.
func UpsertChannel(q sqlx.Ext, ch *models.Channel) (*models.Channel, error) {
	query := `
		INSERT INTO channels (id, user_id, youtube_channel_id, title, description, custom_url,
			thumbnail_url, subscriber_count, video_count, view_count, published_at, last_synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (youtube_channel_id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			custom_url = EXCLUDED.custom_url,
			thumbnail_url = EXCLUDED.thumbnail_url,
			subscriber_count = EXCLUDED.subscriber_count,
			video_count = EXCLUDED.video_count,
			view_count = EXCLUDED.view_count,
			last_synced_at = EXCLUDED.last_synced_at
		RETURNING *
	`
	channel := &models.Channel{}
	err := sqlx.Get(q, channel, query,
		ch.ID, ch.UserID, ch.YoutubeChannelID, ch.Title, ch.Description, ch.CustomURL,
		ch.ThumbnailURL, ch.SubscriberCount, ch.VideoCount, ch.ViewCount, ch.PublishedAt, ch.LastSyncedAt)
	if err != nil {
		log.Printf("Error upserting channel %s: %v", ch.YoutubeChannelID, err)
		return nil, err
	}
	return channel, nil
}

// GetChannelsByUserID returns all channels owned by a user.
func GetChannelsByUserID(userID uuid.UUID) ([]models.Channel, error) {
	var channels []models.Channel
	err := DB.Select(&channels, `
		SELECT * FROM channels
		WHERE user_id = $1
		ORDER BY created_at`, userID)
	if err != nil {
		log.Printf("Error getting channels for user %s: %v", userID, err)
		return nil, err
	}
	return channels, nil
}

// GetChannelForUser returns a channel only if it belongs to the given user.
// A channel owned by someone else is reported as ErrNotFound.
func GetChannelForUser(channelID, userID uuid.UUID) (*models.Channel, error) {
	channel := &models.Channel{}
	err := DB.Get(channel, `
		SELECT * FROM channels
		WHERE id = $1 AND user_id = $2`, channelID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return channel, nil
}
