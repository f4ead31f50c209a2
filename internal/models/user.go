package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a Google account that signed in via OAuth.
// AccessToken and RefreshToken are stored encrypted (see internal/cryptox).
type User struct {
	ID             uuid.UUID  `db:"id"`
	GoogleID       string     `db:"google_id"`
	Email          string     `db:"email"`
	Name           string     `db:"name"`
	PictureURL     *string    `db:"picture_url"`
	AccessToken    *string    `db:"access_token"`
	RefreshToken   *string    `db:"refresh_token"`
	TokenExpiresAt *time.Time `db:"token_expires_at"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}
