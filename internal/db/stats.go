package db

import (
	"log"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"viewpilot/internal/models"
)

// InsertVideoStats appends one snapshot row. Snapshots are never updated or
// deleted; each sync run adds a new row even when the counts are unchanged.
func InsertVideoStats(q sqlx.Ext, s *models.VideoStats) error {
	_, err := q.Exec(`
		INSERT INTO video_stats (id, video_id, view_count, like_count, comment_count, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID, s.VideoID, s.ViewCount, s.LikeCount, s.CommentCount, s.FetchedAt)
	if err != nil {
		log.Printf("Error inserting stats snapshot for video %s: %v", s.VideoID, err)
	}
	return err
}

// GetStatsHistory returns every snapshot for a video, oldest first.
func GetStatsHistory(videoID uuid.UUID) ([]models.VideoStats, error) {
	var stats []models.VideoStats
	err := DB.Select(&stats, `
		SELECT * FROM video_stats
		WHERE video_id = $1
		ORDER BY fetched_at ASC`, videoID)
	if err != nil {
		log.Printf("Error getting stats history for video %s: %v", videoID, err)
		return nil, err
	}
	return stats, nil
}
