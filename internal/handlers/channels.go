package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/hibiken/asynq"

	"viewpilot/internal/db"
	"viewpilot/internal/middleware"
	"viewpilot/internal/models"
	"viewpilot/internal/syncer"
	"viewpilot/internal/youtube"
	"viewpilot/pkg/tasks"
)

// GetChannels returns all YouTube channels connected to the logged-in user.
func (h *Handlers) GetChannels(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(middleware.UserContextKey).(*models.User)

	channels, err := db.GetChannelsByUserID(user.ID)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	out := make([]map[string]any, 0, len(channels))
	for _, c := range channels {
		out = append(out, map[string]any{
			"id":                 c.ID,
			"youtube_channel_id": c.YoutubeChannelID,
			"title":              c.Title,
			"thumbnail_url":      c.ThumbnailURL,
			"subscriber_count":   c.SubscriberCount,
			"video_count":        c.VideoCount,
			"view_count":         c.ViewCount,
			"last_synced_at":     c.LastSyncedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// PostSync runs a full sync for the caller's channel and returns a summary.
// Not safe in the HTTP sense: it performs real writes. With ?async=1 the run
// is handed to the background queue instead of blocking the request.
func (h *Handlers) PostSync(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(middleware.UserContextKey).(*models.User)

	if r.URL.Query().Get("async") == "1" {
		task, err := tasks.NewSyncUserTask(user.ID)
		if err == nil {
			_, err = h.asynqClient.Enqueue(task, asynq.Queue("high"))
		}
		if err != nil {
			log.Printf("Error enqueuing sync for user %s: %v", user.ID, err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]any{"ok": true, "queued": true})
		return
	}

	summary, err := h.engine.SyncUser(r.Context(), user.ID)
	if err != nil {
		switch {
		case errors.Is(err, youtube.ErrNoChannel):
			http.Error(w, "No YouTube channel found for this account", http.StatusNotFound)
		case errors.Is(err, syncer.ErrNoCredentials):
			http.Error(w, "No YouTube credentials on file, sign in again", http.StatusBadRequest)
		case youtube.IsAuthError(err):
			http.Error(w, "YouTube access expired or revoked, sign in again", http.StatusBadRequest)
		default:
			log.Printf("Sync failed for user %s: %v", user.ID, err)
			http.Error(w, "Sync failed", http.StatusBadGateway)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":          true,
		"channel_id":  summary.ChannelID,
		"title":       summary.Title,
		"video_count": summary.VideoCount,
	})
}
