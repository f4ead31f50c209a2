package config

import (
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Config holds all runtime settings, read from the environment once at startup.
type Config struct {
	Port               string
	DatabaseURL        string
	RedisAddr          string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string
	SecretKey          string
	FrontendURL        string
	SessionName        string
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func NewConfig() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		RedisAddr:          getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURI:  getEnv("GOOGLE_REDIRECT_URI", "http://localhost:8080/auth/google/callback"),
		SecretKey:          getEnv("SECRET_KEY", ""),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:3000"),
		SessionName:        getEnv("SESSION_NAME", "viewpilot_session"),
	}
}

// OAuth builds the Google OAuth2 config for the authorization-code flow.
// Scopes are read-only: profile info plus YouTube channel/video access.
func (c *Config) OAuth() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.GoogleClientID,
		ClientSecret: c.GoogleClientSecret,
		RedirectURL:  c.GoogleRedirectURI,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
			"https://www.googleapis.com/auth/youtube.readonly",
		},
		Endpoint: google.Endpoint,
	}
}
