// Package youtube wraps the three Data API v3 read operations the sync
// pipeline needs, behind a credential-scoped client.
package youtube

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"viewpilot/internal/retry"
)

const (
	// maxBatchSize is the Data API's hard limit on ids per videos.list call.
	maxBatchSize = 50
	// maxPageSize is the Data API's maximum playlistItems page size.
	maxPageSize = 50
	// maxListPages bounds the pagination loop so a misbehaving upstream that
	// keeps handing out cursors cannot spin us forever. 400 pages covers
	// 20,000 videos.
	maxListPages = 400
)

var listParts = []string{"snippet", "statistics", "contentDetails"}

// Client performs authenticated reads against the YouTube Data API. It is
// scoped to one user's credentials and holds no persistence state.
type Client struct {
	svc      *youtube.Service
	ts       oauth2.TokenSource
	retryCfg retry.Config
}

// NewClient builds a client from the user's stored OAuth tokens. The token
// source transparently refreshes an expired access token using the refresh
// token; call Token afterwards to persist any refreshed credentials.
func NewClient(ctx context.Context, cfg *oauth2.Config, token *oauth2.Token) (*Client, error) {
	ts := cfg.TokenSource(ctx, token)
	svc, err := youtube.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return &Client{svc: svc, ts: ts, retryCfg: retry.DefaultConfig()}, nil
}

// Token returns the current token from the token source, which may be a
// refreshed one.
func (c *Client) Token() (*oauth2.Token, error) {
	return c.ts.Token()
}

// GetMyChannel fetches the single channel owned by the authenticated account.
// Returns ErrNoChannel when the account has none.
func (c *Client) GetMyChannel(ctx context.Context) (*youtube.Channel, error) {
	var resp *youtube.ChannelListResponse
	err := retry.Do(ctx, c.retryCfg, IsTransient, func(ctx context.Context) error {
		var callErr error
		resp, callErr = c.svc.Channels.List(listParts).Mine(true).Context(ctx).Do()
		return wrapAPIError(callErr)
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Items) == 0 {
		return nil, ErrNoChannel
	}
	return resp.Items[0], nil
}

// ListUploadedVideoIDs pages through the uploads playlist and collects every
// video id on the channel, in playlist order.
func (c *Client) ListUploadedVideoIDs(ctx context.Context, uploadsPlaylistID string) ([]string, error) {
	var videoIDs []string
	pageToken := ""

	for page := 0; ; page++ {
		if page >= maxListPages {
			return nil, &APIError{StatusCode: 0, Err: fmt.Errorf("upload listing exceeded %d pages for playlist %s", maxListPages, uploadsPlaylistID)}
		}

		var resp *youtube.PlaylistItemListResponse
		err := retry.Do(ctx, c.retryCfg, IsTransient, func(ctx context.Context) error {
			var callErr error
			resp, callErr = c.svc.PlaylistItems.List([]string{"contentDetails"}).
				PlaylistId(uploadsPlaylistID).
				MaxResults(maxPageSize).
				PageToken(pageToken).
				Context(ctx).Do()
			return wrapAPIError(callErr)
		})
		if err != nil {
			return nil, err
		}

		for _, item := range resp.Items {
			if item.ContentDetails != nil {
				videoIDs = append(videoIDs, item.ContentDetails.VideoId)
			}
		}

		if resp.NextPageToken == "" || resp.NextPageToken == pageToken {
			// A cursor pointing back at the current page would loop forever.
			break
		}
		pageToken = resp.NextPageToken
	}

	return videoIDs, nil
}

// GetVideosBatch fetches full metadata and statistics for up to 50 videos.
// Callers are responsible for chunking larger id sets.
func (c *Client) GetVideosBatch(ctx context.Context, videoIDs []string) ([]*youtube.Video, error) {
	if len(videoIDs) == 0 {
		return nil, nil
	}
	if len(videoIDs) > maxBatchSize {
		return nil, fmt.Errorf("batch of %d exceeds the %d id limit", len(videoIDs), maxBatchSize)
	}

	var resp *youtube.VideoListResponse
	err := retry.Do(ctx, c.retryCfg, IsTransient, func(ctx context.Context) error {
		var callErr error
		resp, callErr = c.svc.Videos.List(listParts).Id(videoIDs...).Context(ctx).Do()
		return wrapAPIError(callErr)
	})
	if err != nil {
		return nil, err
	}
	return resp.Items, nil
}
