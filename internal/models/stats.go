package models

import (
	"time"

	"github.com/google/uuid"
)

// VideoStats is one immutable snapshot of a video's public counters.
// Rows are append-only; every sync run adds one per video, even when the
// counts did not change. The ordered sequence of rows is the history.
type VideoStats struct {
	ID           uuid.UUID `db:"id"`
	VideoID      uuid.UUID `db:"video_id"`
	ViewCount    int64     `db:"view_count"`
	LikeCount    int64     `db:"like_count"`
	CommentCount int64     `db:"comment_count"`
	FetchedAt    time.Time `db:"fetched_at"`
}
