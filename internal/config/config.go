package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Gemini AI
	GeminiAPIKey string

	// Pexels image search
	PexelsAPIKey string

	// Google OAuth
	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string

	// Sessions
	SessionSecret string

	// Database (Supabase Postgres)
	DatabaseURL string

	// Redis
	RedisURL string

	// Frontend
	FrontendURL    string
	AllowedOrigins []string

	// Free-tier chat quota for anonymous sessions
	FreeMessageLimit int
}

// Load reads configuration from the environment. Provider keys are
// deliberately optional: a missing key degrades the corresponding route
// to a 500 response instead of preventing startup.
func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	frontendURL := getEnvOrDefault("FRONTEND_URL", "http://localhost:5173")

	cfg := &Config{
		Port:               getEnvOrDefault("PORT", "3001"),
		Env:                getEnvOrDefault("ENV", "development"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		PexelsAPIKey:       os.Getenv("PEXELS_API_KEY"),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleCallbackURL:  getEnvOrDefault("GOOGLE_CALLBACK_URL", "http://localhost:3001/auth/google/callback"),
		SessionSecret:      getEnvOrDefault("SESSION_SECRET", "supersecret"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisURL:           os.Getenv("REDIS_URL"),
		FrontendURL:        frontendURL,
		AllowedOrigins:     splitOrigins(getEnvOrDefault("ALLOWED_ORIGINS", frontendURL)),
		FreeMessageLimit:   getEnvAsIntOrDefault("FREE_MESSAGE_LIMIT", 3),
	}

	return cfg
}

// GoogleConfigured reports whether the OAuth routes can work at all.
func (c *Config) GoogleConfigured() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
