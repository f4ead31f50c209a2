package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"viewpilot/internal/config"
	"viewpilot/internal/cryptox"
	"viewpilot/internal/db"
	"viewpilot/internal/handlers"
	"viewpilot/internal/middleware"
	"viewpilot/internal/syncer"
	"viewpilot/internal/youtube"
)

// CommitSHA is set at build time via ldflags
var CommitSHA = "unknown"

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file")
	}

	cfg := config.NewConfig()
	if cfg.SecretKey == "" {
		log.Fatal("SECRET_KEY is not set")
	}

	db.InitDB()

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer asynqClient.Close()

	store := sessions.NewCookieStore([]byte(cfg.SecretKey))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int((30 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	cipher := cryptox.NewTokenCipher(cfg.SecretKey)
	oauthCfg := cfg.OAuth()
	engine := syncer.NewEngine(cipher, func(ctx context.Context, token *oauth2.Token) (syncer.ChannelAPI, error) {
		return youtube.NewClient(ctx, oauthCfg, token)
	})

	h := handlers.New(store, cfg.SessionName, oauthCfg, cfg.FrontendURL, cipher, engine, asynqClient)
	authMw := middleware.NewAuthMiddleware(store, cfg.SessionName)
	// Syncs hit the YouTube API hard; two per minute per user is plenty.
	syncLimiter := middleware.NewRateLimiterMiddleware(rate.Every(30*time.Second), 2)

	r := mux.NewRouter()
	r.HandleFunc("/health", h.Health).Methods("GET")
	r.HandleFunc("/auth/google", h.GoogleLogin).Methods("GET")
	r.HandleFunc("/auth/google/callback", h.GoogleCallback).Methods("GET")
	r.Handle("/auth/me", authMw.Middleware(http.HandlerFunc(h.Me))).Methods("GET")
	r.Handle("/auth/logout", authMw.Middleware(http.HandlerFunc(h.Logout))).Methods("POST")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(authMw.Middleware)
	api.Handle("/channels/sync", syncLimiter.Middleware(http.HandlerFunc(h.PostSync))).Methods("POST")
	api.HandleFunc("/channels", h.GetChannels).Methods("GET")
	api.HandleFunc("/videos", h.GetVideos).Methods("GET")
	api.HandleFunc("/videos/{id}", h.GetVideo).Methods("GET")

	log.Printf("Starting server on :%s (commit: %s)", cfg.Port, CommitSHA)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal(err)
	}
}
