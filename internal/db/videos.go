package db

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"viewpilot/internal/models"
)

// Sort keys accepted by ListVideos. The snapshot-backed keys sort by each
// video's most recent stats row, not by a denormalized column.
var videoSortColumns = map[string]string{
	"views":        "s.view_count",
	"likes":        "s.like_count",
	"comments":     "s.comment_count",
	"published_at": "v.published_at",
	"duration":     "v.duration_seconds",
	"title":        "v.title",
}

// IsValidSortKey reports whether key is an accepted sort_by value.
func IsValidSortKey(key string) bool {
	_, ok := videoSortColumns[key]
	return ok
}

// UpsertVideo inserts a video or overwrites its mutable fields, keyed by the
// YouTube video ID.
func UpsertVideo(q sqlx.Ext, v *models.Video) (*models.Video, error) {
	query := `
		INSERT INTO videos (id, channel_id, youtube_video_id, title, description, tags,
			category_id, duration_seconds, published_at, thumbnail_url, default_language, is_short)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (youtube_video_id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			tags = EXCLUDED.tags,
			category_id = EXCLUDED.category_id,
			duration_seconds = EXCLUDED.duration_seconds,
			thumbnail_url = EXCLUDED.thumbnail_url,
			default_language = EXCLUDED.default_language,
			is_short = EXCLUDED.is_short,
			updated_at = NOW()
		RETURNING *
	`
	video := &models.Video{}
	err := sqlx.Get(q, video, query,
		v.ID, v.ChannelID, v.YoutubeVideoID, v.Title, v.Description, v.Tags,
		v.CategoryID, v.DurationSeconds, v.PublishedAt, v.ThumbnailURL, v.DefaultLanguage, v.IsShort)
	if err != nil {
		log.Printf("Error upserting video %s: %v", v.YoutubeVideoID, err)
		return nil, err
	}
	return video, nil
}

// ListVideos returns one page of a channel's videos joined with each video's
// latest stats snapshot. sortBy must be one of videoSortColumns; ties are
// broken by youtube_video_id ascending so ordering is deterministic.
func ListVideos(channelID uuid.UUID, sortBy, order string, limit, offset int) ([]models.VideoWithStats, error) {
	col, ok := videoSortColumns[sortBy]
	if !ok {
		return nil, fmt.Errorf("invalid sort key %q", sortBy)
	}
	if order != "asc" && order != "desc" {
		return nil, fmt.Errorf("invalid sort order %q", order)
	}

	query := fmt.Sprintf(`
		SELECT v.*, s.view_count, s.like_count, s.comment_count, s.fetched_at AS stats_fetched_at
		FROM videos v
		JOIN LATERAL (
			SELECT view_count, like_count, comment_count, fetched_at
			FROM video_stats
			WHERE video_id = v.id
			ORDER BY fetched_at DESC
			LIMIT 1
		) s ON TRUE
		WHERE v.channel_id = $1
		ORDER BY %s %s, v.youtube_video_id ASC
		LIMIT $2 OFFSET $3`, col, order)

	var videos []models.VideoWithStats
	err := DB.Select(&videos, query, channelID, limit, offset)
	if err != nil {
		log.Printf("Error listing videos for channel %s: %v", channelID, err)
		return nil, err
	}
	return videos, nil
}

// CountVideosByChannel returns the unfiltered video count for a channel,
// used as the pagination total.
func CountVideosByChannel(channelID uuid.UUID) (int, error) {
	var count int
	err := DB.Get(&count, "SELECT COUNT(*) FROM videos WHERE channel_id = $1", channelID)
	return count, err
}

// GetVideoForUser returns a video only if its owning channel belongs to the
// given user. Anything else is ErrNotFound, indistinguishable from a missing row.
func GetVideoForUser(videoID, userID uuid.UUID) (*models.Video, error) {
	video := &models.Video{}
	err := DB.Get(video, `
		SELECT v.* FROM videos v
		JOIN channels c ON c.id = v.channel_id
		WHERE v.id = $1 AND c.user_id = $2`, videoID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return video, nil
}
