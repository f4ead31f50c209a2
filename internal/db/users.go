package db

import (
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"viewpilot/internal/models"
)

// UpsertUser inserts a new user or updates an existing one based on the
// Google account ID. It is called on every OAuth callback, so profile fields
// and tokens always reflect the latest login.
func UpsertUser(q sqlx.Ext, u *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (id, google_id, email, name, picture_url, access_token, refresh_token, token_expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (google_id) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			picture_url = EXCLUDED.picture_url,
			access_token = EXCLUDED.access_token,
			refresh_token = COALESCE(EXCLUDED.refresh_token, users.refresh_token),
			token_expires_at = EXCLUDED.token_expires_at,
			updated_at = NOW()
		RETURNING *
	`
	user := &models.User{}
	err := sqlx.Get(q, user, query,
		u.ID, u.GoogleID, u.Email, u.Name, u.PictureURL,
		u.AccessToken, u.RefreshToken, u.TokenExpiresAt)
	if err != nil {
		log.Printf("Error upserting user: %v", err)
		return nil, err
	}
	return user, nil
}

// GetUserByID returns one user by primary key.
func GetUserByID(id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	err := DB.Get(user, "SELECT * FROM users WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateUserTokens persists re-encrypted tokens after the OAuth collaborator
// refreshed them during a sync run.
func UpdateUserTokens(q sqlx.Ext, id uuid.UUID, accessToken, refreshToken *string, expiresAt *time.Time) error {
	_, err := q.Exec(`
		UPDATE users
		SET access_token = $1, refresh_token = COALESCE($2, refresh_token), token_expires_at = $3, updated_at = NOW()
		WHERE id = $4`,
		accessToken, refreshToken, expiresAt, id)
	return err
}

// GetSyncableUsers returns all users that hold a refresh token and can
// therefore be synced in the background without an interactive login.
func GetSyncableUsers() ([]models.User, error) {
	var users []models.User
	err := DB.Select(&users, "SELECT * FROM users WHERE refresh_token IS NOT NULL ORDER BY created_at")
	if err != nil {
		log.Printf("Error getting syncable users: %v", err)
		return nil, err
	}
	return users, nil
}
