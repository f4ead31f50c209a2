package middleware

import (
	"context"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"viewpilot/internal/db"
)

type contextKey string

// UserContextKey is the key for the user in the context.
const UserContextKey = contextKey("user")

// AuthMiddleware reads the session cookie and loads the logged-in user into
// the request context.
type AuthMiddleware struct {
	store       sessions.Store
	sessionName string
}

func NewAuthMiddleware(store sessions.Store, sessionName string) *AuthMiddleware {
	return &AuthMiddleware{store: store, sessionName: sessionName}
}

// Middleware is the actual middleware handler.
func (a *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := a.store.Get(r, a.sessionName)
		if err != nil {
			http.Error(w, "Not logged in", http.StatusUnauthorized)
			return
		}

		rawID, ok := session.Values["user_id"].(string)
		if !ok {
			http.Error(w, "Not logged in", http.StatusUnauthorized)
			return
		}

		userID, err := uuid.Parse(rawID)
		if err != nil {
			log.Printf("Invalid user id in session: %v", err)
			http.Error(w, "Not logged in", http.StatusUnauthorized)
			return
		}

		user, err := db.GetUserByID(userID)
		if err != nil {
			http.Error(w, "User not found", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
