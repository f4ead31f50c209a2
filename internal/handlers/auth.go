package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"viewpilot/internal/db"
	"viewpilot/internal/middleware"
	"viewpilot/internal/models"
)

const googleUserinfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

// GoogleLogin kicks off the OAuth flow: stores a random state in the session
// and redirects the user to Google's consent page. access_type=offline plus
// prompt=consent makes Google always hand back a refresh token.
func (h *Handlers) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := randomState()
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	session, _ := h.store.Get(r, h.sessionName)
	session.Values["oauth_state"] = state
	if err := session.Save(r, w); err != nil {
		log.Printf("Error saving session: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	url := h.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"))
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// GoogleCallback finishes the OAuth flow: verifies state, exchanges the code
// for tokens, fetches the Google profile and upserts the user with encrypted
// tokens. The session then carries the user id.
func (h *Handlers) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	session, _ := h.store.Get(r, h.sessionName)
	state, ok := session.Values["oauth_state"].(string)
	if !ok || state == "" || r.URL.Query().Get("state") != state {
		http.Error(w, "Invalid oauth state", http.StatusBadRequest)
		return
	}
	delete(session.Values, "oauth_state")

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "Missing authorization code", http.StatusBadRequest)
		return
	}

	token, err := h.oauth.Exchange(r.Context(), code)
	if err != nil {
		log.Printf("Error exchanging oauth code: %v", err)
		http.Error(w, "Authentication failed", http.StatusBadGateway)
		return
	}

	info, err := h.fetchUserinfo(r.Context(), token)
	if err != nil {
		log.Printf("Error fetching userinfo: %v", err)
		http.Error(w, "Authentication failed", http.StatusBadGateway)
		return
	}

	user, err := h.upsertOAuthUser(info, token)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	session.Values["user_id"] = user.ID.String()
	if err := session.Save(r, w); err != nil {
		log.Printf("Error saving session: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, h.frontendURL, http.StatusTemporaryRedirect)
}

// Me returns the currently logged-in user's profile.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(middleware.UserContextKey).(*models.User)
	writeJSON(w, http.StatusOK, map[string]any{
		"id":          user.ID,
		"email":       user.Email,
		"name":        user.Name,
		"picture_url": user.PictureURL,
	})
}

// Logout clears the session.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.store.Get(r, h.sessionName)
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		log.Printf("Error clearing session: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type googleUserinfo struct {
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (h *Handlers) fetchUserinfo(ctx context.Context, token *oauth2.Token) (*googleUserinfo, error) {
	client := h.oauth.Client(ctx, token)
	resp, err := client.Get(googleUserinfoURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var info googleUserinfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (h *Handlers) upsertOAuthUser(info *googleUserinfo, token *oauth2.Token) (*models.User, error) {
	access, err := h.cipher.Encrypt(token.AccessToken)
	if err != nil {
		return nil, err
	}

	var refresh *string
	if token.RefreshToken != "" {
		enc, err := h.cipher.Encrypt(token.RefreshToken)
		if err != nil {
			return nil, err
		}
		refresh = &enc
	}

	var expiresAt *time.Time
	if !token.Expiry.IsZero() {
		expiry := token.Expiry.UTC()
		expiresAt = &expiry
	}

	var picture *string
	if info.Picture != "" {
		picture = &info.Picture
	}

	return db.UpsertUser(db.DB, &models.User{
		ID:             uuid.New(),
		GoogleID:       info.Sub,
		Email:          info.Email,
		Name:           info.Name,
		PictureURL:     picture,
		AccessToken:    &access,
		RefreshToken:   refresh,
		TokenExpiresAt: expiresAt,
	})
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
