package models

import (
	"time"

	"github.com/google/uuid"
)

// Channel is one YouTube channel owned by a user. The counter columns are
// point-in-time values overwritten on every sync; history lives in video_stats.
type Channel struct {
	ID               uuid.UUID  `db:"id"`
	UserID           uuid.UUID  `db:"user_id"`
	YoutubeChannelID string     `db:"youtube_channel_id"`
	Title            string     `db:"title"`
	Description      *string    `db:"description"`
	CustomURL        *string    `db:"custom_url"`
	ThumbnailURL     *string    `db:"thumbnail_url"`
	SubscriberCount  int64      `db:"subscriber_count"`
	VideoCount       int        `db:"video_count"`
	ViewCount        int64      `db:"view_count"`
	PublishedAt      *time.Time `db:"published_at"`
	LastSyncedAt     *time.Time `db:"last_synced_at"`
	CreatedAt        time.Time  `db:"created_at"`
}
