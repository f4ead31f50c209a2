package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"viewpilot/internal/db"
	"viewpilot/internal/middleware"
	"viewpilot/internal/models"
)

const (
	defaultPerPage = 50
	maxPerPage     = 200
)

// GetVideos returns a paginated, sorted list of a channel's videos, each
// merged with its latest stats snapshot.
func (h *Handlers) GetVideos(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(middleware.UserContextKey).(*models.User)
	q := r.URL.Query()

	channelID, err := uuid.Parse(q.Get("channel_id"))
	if err != nil {
		http.Error(w, "Invalid channel_id", http.StatusBadRequest)
		return
	}

	sortBy := q.Get("sort_by")
	if sortBy == "" {
		sortBy = "published_at"
	}
	if !db.IsValidSortKey(sortBy) {
		http.Error(w, "Invalid sort_by", http.StatusBadRequest)
		return
	}

	order := q.Get("order")
	if order == "" {
		order = "desc"
	}
	if order != "asc" && order != "desc" {
		http.Error(w, "Invalid order", http.StatusBadRequest)
		return
	}

	page, err := intParam(q.Get("page"), 1)
	if err != nil || page < 1 {
		http.Error(w, "Invalid page", http.StatusBadRequest)
		return
	}

	perPage, err := intParam(q.Get("per_page"), defaultPerPage)
	if err != nil || perPage < 1 || perPage > maxPerPage {
		http.Error(w, "Invalid per_page", http.StatusBadRequest)
		return
	}

	// Ownership check doubles as existence check: someone else's channel is a 404.
	if _, err := db.GetChannelForUser(channelID, user.ID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Channel not found", http.StatusNotFound)
		} else {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	videos, err := db.ListVideos(channelID, sortBy, order, perPage, (page-1)*perPage)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	total, err := db.CountVideosByChannel(channelID)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	out := make([]map[string]any, 0, len(videos))
	for _, v := range videos {
		out = append(out, map[string]any{
			"id":               v.ID,
			"youtube_video_id": v.YoutubeVideoID,
			"title":            v.Title,
			"published_at":     v.PublishedAt,
			"duration_seconds": v.DurationSeconds,
			"is_short":         v.IsShort,
			"thumbnail_url":    v.ThumbnailURL,
			"tags":             v.Tags,
			"category_id":      v.CategoryID,
			"view_count":       v.ViewCount,
			"like_count":       v.LikeCount,
			"comment_count":    v.CommentCount,
			"stats_fetched_at": v.StatsFetchedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total":    total,
		"page":     page,
		"per_page": perPage,
		"videos":   out,
	})
}

// GetVideo returns a single video with its full, oldest-first stats history.
func (h *Handlers) GetVideo(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(middleware.UserContextKey).(*models.User)

	videoID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid video id", http.StatusBadRequest)
		return
	}

	video, err := db.GetVideoForUser(videoID, user.ID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Video not found", http.StatusNotFound)
		} else {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	history, err := db.GetStatsHistory(video.ID)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	snapshots := make([]map[string]any, 0, len(history))
	for _, s := range history {
		snapshots = append(snapshots, map[string]any{
			"view_count":    s.ViewCount,
			"like_count":    s.LikeCount,
			"comment_count": s.CommentCount,
			"fetched_at":    s.FetchedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":               video.ID,
		"youtube_video_id": video.YoutubeVideoID,
		"title":            video.Title,
		"description":      video.Description,
		"published_at":     video.PublishedAt,
		"duration_seconds": video.DurationSeconds,
		"is_short":         video.IsShort,
		"thumbnail_url":    video.ThumbnailURL,
		"tags":             video.Tags,
		"category_id":      video.CategoryID,
		"default_language": video.DefaultLanguage,
		"stats_history":    snapshots,
	})
}

func intParam(raw string, defaultVal int) (int, error) {
	if raw == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(raw)
}
