// Package syncer reconciles a user's live YouTube channel state against the
// stored records: it upserts the channel and its videos and appends one stats
// snapshot per video per run.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	ytapi "google.golang.org/api/youtube/v3"

	"viewpilot/internal/cryptox"
	"viewpilot/internal/db"
	"viewpilot/internal/models"
	"viewpilot/internal/youtube"
)

// videoBatchSize is the Data API's hard limit on ids per videos.list call.
const videoBatchSize = 50

// ErrNoCredentials is returned when a user has no stored YouTube tokens.
var ErrNoCredentials = errors.New("user has no stored youtube credentials")

// ChannelSummary is the result of one sync run.
type ChannelSummary struct {
	ChannelID  uuid.UUID `json:"channel_id"`
	Title      string    `json:"title"`
	VideoCount int       `json:"video_count"`
}

// ChannelAPI is the slice of the YouTube client the engine uses.
// It's implemented by *youtube.Client, and can be mocked for testing.
type ChannelAPI interface {
	GetMyChannel(ctx context.Context) (*ytapi.Channel, error)
	ListUploadedVideoIDs(ctx context.Context, uploadsPlaylistID string) ([]string, error)
	GetVideosBatch(ctx context.Context, videoIDs []string) ([]*ytapi.Video, error)
	Token() (*oauth2.Token, error)
}

// ClientFactory builds a credential-scoped API client for one user's tokens.
type ClientFactory func(ctx context.Context, token *oauth2.Token) (ChannelAPI, error)

// Engine runs the reconciliation pipeline. Safe for concurrent use; runs for
// the same user are serialized.
type Engine struct {
	cipher    *cryptox.TokenCipher
	newClient ClientFactory

	mu        sync.Mutex
	userLocks map[uuid.UUID]*sync.Mutex

	now func() time.Time
}

func NewEngine(cipher *cryptox.TokenCipher, factory ClientFactory) *Engine {
	return &Engine{
		cipher:    cipher,
		newClient: factory,
		userLocks: make(map[uuid.UUID]*sync.Mutex),
		now:       time.Now,
	}
}

// lockUser acquires the per-user mutex, creating it on first use. Concurrent
// sync triggers for one user would race on the channel/video upserts and
// write duplicate snapshots, so the whole run holds this lock.
func (e *Engine) lockUser(id uuid.UUID) func() {
	e.mu.Lock()
	l, ok := e.userLocks[id]
	if !ok {
		l = &sync.Mutex{}
		e.userLocks[id] = l
	}
	e.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// SyncUser performs a full sync for one user's channel: channel info, the
// complete video list, and a fresh stats snapshot for every video. All writes
// happen in a single transaction committed at the end, so a failure or
// cancellation mid-run leaves no partial state.
func (e *Engine) SyncUser(ctx context.Context, userID uuid.UUID) (*ChannelSummary, error) {
	unlock := e.lockUser(userID)
	defer unlock()

	user, err := db.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	token, err := e.decryptToken(user)
	if err != nil {
		return nil, err
	}

	client, err := e.newClient(ctx, token)
	if err != nil {
		return nil, err
	}

	remote, err := client.GetMyChannel(ctx)
	if err != nil {
		return nil, err
	}
	if remote.Snippet == nil || remote.ContentDetails == nil || remote.ContentDetails.RelatedPlaylists == nil {
		return nil, fmt.Errorf("channel %s has no snippet or uploads playlist", remote.Id)
	}
	uploadsPlaylistID := remote.ContentDetails.RelatedPlaylists.Uploads

	now := e.now().UTC()

	tx, err := db.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// The in-process lock above only covers this engine. The server and the
	// worker each run their own, so a run in the other process is fenced off
	// with an advisory lock held for the length of the transaction.
	if err := db.AcquireUserSyncLock(tx, user.ID); err != nil {
		return nil, err
	}

	// The upsert's RETURNING clause resolves the channel's internal id before
	// any video row references it.
	channel, err := db.UpsertChannel(tx, channelRecord(user.ID, remote, now))
	if err != nil {
		return nil, err
	}

	videoIDs, err := client.ListUploadedVideoIDs(ctx, uploadsPlaylistID)
	if err != nil {
		return nil, err
	}

	for start := 0; start < len(videoIDs); start += videoBatchSize {
		end := start + videoBatchSize
		if end > len(videoIDs) {
			end = len(videoIDs)
		}

		items, err := client.GetVideosBatch(ctx, videoIDs[start:end])
		if err != nil {
			return nil, err
		}

		for _, item := range items {
			record, snapshot, err := videoRecord(channel.ID, item, now)
			if err != nil {
				// A malformed record must not abort the rest of the batch.
				log.Printf("Skipping malformed video record %q: %v", item.Id, err)
				continue
			}

			video, err := db.UpsertVideo(tx, record)
			if err != nil {
				return nil, err
			}

			snapshot.VideoID = video.ID
			if err := db.InsertVideoStats(tx, snapshot); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	e.persistRefreshedToken(user, token, client)

	return &ChannelSummary{
		ChannelID:  channel.ID,
		Title:      channel.Title,
		VideoCount: channel.VideoCount,
	}, nil
}

// decryptToken turns the user's stored encrypted tokens into an oauth2 token.
func (e *Engine) decryptToken(user *models.User) (*oauth2.Token, error) {
	if user.AccessToken == nil {
		return nil, ErrNoCredentials
	}

	access, err := e.cipher.Decrypt(*user.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("decrypt access token: %w", err)
	}

	token := &oauth2.Token{AccessToken: access}
	if user.RefreshToken != nil {
		refresh, err := e.cipher.Decrypt(*user.RefreshToken)
		if err != nil {
			return nil, fmt.Errorf("decrypt refresh token: %w", err)
		}
		token.RefreshToken = refresh
	}
	if user.TokenExpiresAt != nil {
		token.Expiry = *user.TokenExpiresAt
	}
	return token, nil
}

// persistRefreshedToken re-encrypts and stores the access token when the
// token source refreshed it during the run. Best effort: the sync already
// committed, a failure here only costs one extra refresh next time.
func (e *Engine) persistRefreshedToken(user *models.User, original *oauth2.Token, client ChannelAPI) {
	current, err := client.Token()
	if err != nil || current.AccessToken == original.AccessToken {
		return
	}

	encrypted, err := e.cipher.Encrypt(current.AccessToken)
	if err != nil {
		log.Printf("Error encrypting refreshed token for user %s: %v", user.ID, err)
		return
	}

	expiry := current.Expiry.UTC()
	if err := db.UpdateUserTokens(db.DB, user.ID, &encrypted, nil, &expiry); err != nil {
		log.Printf("Error persisting refreshed token for user %s: %v", user.ID, err)
	}
}

// channelRecord maps the remote channel onto our row. Missing counters
// default to 0; snippet presence was checked by the caller.
func channelRecord(userID uuid.UUID, remote *ytapi.Channel, now time.Time) *models.Channel {
	ch := &models.Channel{
		ID:               uuid.New(),
		UserID:           userID,
		YoutubeChannelID: remote.Id,
		Title:            remote.Snippet.Title,
		Description:      optional(remote.Snippet.Description),
		CustomURL:        optional(remote.Snippet.CustomUrl),
		ThumbnailURL:     youtube.BestThumbnail(remote.Snippet.Thumbnails),
		LastSyncedAt:     &now,
	}
	if remote.Statistics != nil {
		ch.SubscriberCount = int64(remote.Statistics.SubscriberCount)
		ch.VideoCount = int(remote.Statistics.VideoCount)
		ch.ViewCount = int64(remote.Statistics.ViewCount)
	}
	if published, err := time.Parse(time.RFC3339, remote.Snippet.PublishedAt); err == nil {
		ch.PublishedAt = &published
	}
	return ch
}

// videoRecord maps one remote video onto a row plus its snapshot for this
// run. Records without an id, snippet or publish date are malformed and
// reported back for skipping; missing counters default to 0.
func videoRecord(channelID uuid.UUID, item *ytapi.Video, now time.Time) (*models.Video, *models.VideoStats, error) {
	if item.Id == "" || item.Snippet == nil {
		return nil, nil, errors.New("missing id or snippet")
	}

	published, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("bad publishedAt %q: %w", item.Snippet.PublishedAt, err)
	}

	duration := 0
	if item.ContentDetails != nil {
		duration = youtube.ParseDuration(item.ContentDetails.Duration)
	}

	video := &models.Video{
		ID:              uuid.New(),
		ChannelID:       channelID,
		YoutubeVideoID:  item.Id,
		Title:           item.Snippet.Title,
		Description:     optional(item.Snippet.Description),
		Tags:            item.Snippet.Tags,
		CategoryID:      optional(item.Snippet.CategoryId),
		DurationSeconds: duration,
		PublishedAt:     published,
		ThumbnailURL:    youtube.BestThumbnail(item.Snippet.Thumbnails),
		DefaultLanguage: optional(item.Snippet.DefaultLanguage),
		IsShort:         duration < 60,
	}

	snapshot := &models.VideoStats{
		ID:        uuid.New(),
		FetchedAt: now,
	}
	if item.Statistics != nil {
		snapshot.ViewCount = int64(item.Statistics.ViewCount)
		snapshot.LikeCount = int64(item.Statistics.LikeCount)
		snapshot.CommentCount = int64(item.Statistics.CommentCount)
	}

	return video, snapshot, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
