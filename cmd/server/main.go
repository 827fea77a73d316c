package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"worldwise-backend/internal/config"
	"worldwise-backend/internal/database"
	"worldwise-backend/internal/handlers"
	"worldwise-backend/internal/middleware"
	"worldwise-backend/internal/repository"
	"worldwise-backend/internal/router"
	"worldwise-backend/internal/services"
	"worldwise-backend/internal/worker"
)

func main() {
	log.Println("🚀 Starting WorldWise AI backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Connect Postgres (optional) ────
	var exchangeRepo *repository.ExchangeRepo
	var profileRepo *repository.ProfileRepo
	if cfg.DatabaseURL != "" {
		pool, err := database.NewPostgresPool(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("✗ PostgreSQL connection failed: %v", err)
		}
		defer pool.Close()
		exchangeRepo = repository.NewExchangeRepo(pool)
		profileRepo = repository.NewProfileRepo(pool)
		log.Println("✓ PostgreSQL connected")
	} else {
		log.Println("- DATABASE_URL not set, exchange logging disabled")
	}

	// ──── Step 3: Connect Redis (optional, memory fallback) ────
	var sessionStore services.SessionStore
	var counterStore services.CounterStore
	var exchangeQueue services.ExchangeQueue
	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Fatalf("✗ Redis connection failed: %v", err)
		}
		defer redisClient.Close()
		sessionStore = services.NewRedisSessionStore(redisClient)
		counterStore = services.NewRedisCounterStore(redisClient)
		exchangeQueue = services.NewRedisExchangeQueue(redisClient)
		log.Println("✓ Redis connected")
	} else {
		sessionStore = services.NewMemorySessionStore()
		counterStore = services.NewMemoryCounterStore()
		exchangeQueue = services.NewMemoryExchangeQueue(256)
		log.Println("- REDIS_URL not set, using in-memory sessions and quota")
	}

	// ──── Step 4: Initialize Gemini Client (optional) ────
	var textGenerator services.TextGenerator
	if cfg.GeminiAPIKey != "" {
		geminiService, err := services.NewGeminiService(cfg.GeminiAPIKey, 5)
		if err != nil {
			log.Fatalf("✗ Gemini client initialization failed: %v", err)
		}
		defer geminiService.Close()
		textGenerator = geminiService
		log.Println("✓ Gemini Flash client initialized")
	} else {
		log.Println("- GEMINI_API_KEY not set, /chat will answer 500")
	}

	// ──── Initialize Services ────
	pexelsService := services.NewPexelsService(cfg.PexelsAPIKey)
	chatService := services.NewChatService(textGenerator, pexelsService, exchangeQueue)
	sessionService := services.NewSessionService(sessionStore, cfg.SessionSecret)
	quotaService := services.NewQuotaService(counterStore, cfg.FreeMessageLimit)

	var googleAuth *services.GoogleAuthService
	if cfg.GoogleConfigured() {
		googleAuth = services.NewGoogleAuthService(
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			cfg.GoogleCallbackURL,
			cfg.SessionSecret,
		)
		log.Println("✓ Google OAuth configured")
	} else {
		log.Println("- Google OAuth not configured, /auth/google will answer 500")
	}

	// ──── Initialize Handlers ────
	sessionLoader := middleware.NewSessionLoader(sessionService, cfg.Env == "production")
	chatHandler := handlers.NewChatHandler(chatService, quotaService)
	imagesHandler := handlers.NewImagesHandler(pexelsService)

	// Interface fields stay untyped-nil when a dependency is disabled.
	var googleOpt handlers.GoogleAuth
	if googleAuth != nil {
		googleOpt = googleAuth
	}
	var profilesOpt handlers.ProfileUpserter
	if profileRepo != nil {
		profilesOpt = profileRepo
	}
	authHandler := handlers.NewAuthHandler(googleOpt, sessionService, sessionLoader, profilesOpt, cfg.FrontendURL)

	// ──── Step 5: Start Exchange-Log Worker Pool ────
	var workerPool *worker.Pool
	if exchangeRepo != nil {
		workerPool = worker.NewPool(exchangeQueue, exchangeRepo, 2)
		workerPool.Start()
		log.Println("✓ Exchange-log worker pool started (2 goroutines)")
	}

	// ──── Step 6: Start HTTP Server ────
	r := router.New(sessionLoader, chatHandler, imagesHandler, authHandler, cfg.AllowedOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		if workerPool != nil {
			workerPool.Stop()
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ WorldWise AI backend listening on http://localhost:%s", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
