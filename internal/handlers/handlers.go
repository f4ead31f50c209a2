package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/sessions"
	"golang.org/x/oauth2"

	"viewpilot/internal/cryptox"
	"viewpilot/internal/syncer"
	"viewpilot/pkg/tasks"
)

type Handlers struct {
	store       sessions.Store
	sessionName string
	oauth       *oauth2.Config
	frontendURL string
	cipher      *cryptox.TokenCipher
	engine      *syncer.Engine
	asynqClient tasks.TaskEnqueuer
}

func New(store sessions.Store, sessionName string, oauth *oauth2.Config, frontendURL string,
	cipher *cryptox.TokenCipher, engine *syncer.Engine, asynqClient tasks.TaskEnqueuer) *Handlers {
	return &Handlers{
		store:       store,
		sessionName: sessionName,
		oauth:       oauth,
		frontendURL: frontendURL,
		cipher:      cipher,
		engine:      engine,
		asynqClient: asynqClient,
	}
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
