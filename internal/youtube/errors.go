package youtube

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"google.golang.org/api/googleapi"
)

// ErrNoChannel is returned when the authenticated account owns no channel.
var ErrNoChannel = errors.New("no youtube channel found for this account")

// APIError wraps a failed Data API call with the upstream HTTP status.
type APIError struct {
	StatusCode int
	Err        error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("youtube api error (status %d): %v", e.StatusCode, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// wrapAPIError normalizes google api errors into *APIError so callers can
// classify them without importing googleapi.
func wrapAPIError(err error) error {
	if err == nil {
		return nil
	}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return &APIError{StatusCode: gErr.Code, Err: err}
	}
	return err
}

// IsAuthError reports whether the error means the stored credentials are
// invalid or revoked. These abort the sync run; a retry cannot help.
func IsAuthError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
	}
	return false
}

// IsTransient reports whether an error is worth retrying: rate limits,
// upstream 5xx and network timeouts. Context cancellation and auth failures
// are permanent.
func IsTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}
