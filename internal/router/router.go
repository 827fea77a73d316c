package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"worldwise-backend/internal/handlers"
	"worldwise-backend/internal/middleware"
)

func New(
	sessionLoader *middleware.SessionLoader,
	chatHandler *handlers.ChatHandler,
	imagesHandler *handlers.ImagesHandler,
	authHandler *handlers.AuthHandler,
	allowedOrigins []string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// OAuth rate limiter (10 req/min per IP)
	authLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// ──── Chat & Images ────
	r.Group(func(r chi.Router) {
		r.Use(sessionLoader.Ensure)
		r.Post("/chat", chatHandler.Chat)
	})
	r.Get("/images", imagesHandler.Search)

	// ──── Auth & Session ────
	r.Group(func(r chi.Router) {
		r.Use(sessionLoader.Load)
		r.Group(func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Get("/auth/google", authHandler.GoogleLogin)
			r.Get("/auth/google/callback", authHandler.GoogleCallback)
		})
		r.Get("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	return r
}
