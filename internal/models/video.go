package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Video is the current-state record for one YouTube video. Descriptive fields
// are overwritten on each sync to mirror upstream; counters live in video_stats.
type Video struct {
	ID              uuid.UUID      `db:"id"`
	ChannelID       uuid.UUID      `db:"channel_id"`
	YoutubeVideoID  string         `db:"youtube_video_id"`
	Title           string         `db:"title"`
	Description     *string        `db:"description"`
	Tags            pq.StringArray `db:"tags"`
	CategoryID      *string        `db:"category_id"`
	DurationSeconds int            `db:"duration_seconds"`
	PublishedAt     time.Time      `db:"published_at"`
	ThumbnailURL    *string        `db:"thumbnail_url"`
	DefaultLanguage *string        `db:"default_language"`
	IsShort         bool           `db:"is_short"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

// VideoWithStats is a read-layer row: a video joined with its most recent
// stats snapshot.
type VideoWithStats struct {
	Video
	ViewCount      int64     `db:"view_count"`
	LikeCount      int64     `db:"like_count"`
	CommentCount   int64     `db:"comment_count"`
	StatsFetchedAt time.Time `db:"stats_fetched_at"`
}
