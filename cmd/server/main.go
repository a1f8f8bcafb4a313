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

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"zen-backend/internal/config"
	"zen-backend/internal/database"
	"zen-backend/internal/handlers"
	"zen-backend/internal/logging"
	"zen-backend/internal/middleware"
	"zen-backend/internal/repository"
	"zen-backend/internal/router"
	"zen-backend/internal/services"
	"zen-backend/internal/websocket"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("✗ Logger initialization failed: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting Zen backend", zap.String("env", cfg.Env), zap.String("port", cfg.Port))

	// ──── Step 2: Connect Stores ────
	var rdb *redis.Client
	if cfg.RedisURL != "" && (cfg.ProfileStore == "redis" || cfg.RateLimitStore == "redis") {
		rdb, err = database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			logger.Fatal("Redis connection failed", zap.Error(err))
		}
		defer rdb.Close()
		logger.Info("Redis connected")
	}

	var profileStore services.ProfileStore
	switch cfg.ProfileStore {
	case "postgres":
		pool, err := database.NewPostgresPool(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("PostgreSQL connection failed", zap.Error(err))
		}
		defer pool.Close()

		if err := database.RunMigrations(context.Background(), pool, logger); err != nil {
			logger.Fatal("database migration failed", zap.Error(err))
		}
		profileStore = repository.NewProfileRepo(pool)
	case "redis":
		profileStore = repository.NewRedisProfileRepo(rdb, 0)
	default:
		profileStore = repository.NewMemoryProfileRepo()
	}
	logger.Info("profile store ready", zap.String("store", cfg.ProfileStore))

	// ──── Step 3: Initialize Gemini Client ────
	var provider services.ChatProvider
	if cfg.GeminiConfigured() {
		gemini, err := services.NewGeminiProvider(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiConcurrentReqs, logger)
		if err != nil {
			logger.Fatal("Gemini client initialization failed", zap.Error(err))
		}
		defer gemini.Close()
		provider = gemini
		logger.Info("Gemini client initialized", zap.String("model", cfg.GeminiModel))
	} else {
		// The server still starts so /api/health can report the problem.
		logger.Error("GEMINI_API_KEY is not configured; chat requests will fail with API_CONFIG_ERROR")
	}

	// ──── Step 4: Initialize Services ────
	chatTimeout := time.Duration(cfg.ChatTimeoutSeconds) * time.Second
	relay := services.NewRelayService(provider, chatTimeout, cfg.IsProduction(), logger)
	profiles := services.NewProfileService(profileStore, logger)
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)

	rateWindow := time.Duration(cfg.RateLimitWindowMinutes) * time.Minute
	var limiter middleware.Limiter
	if cfg.RateLimitStore == "redis" {
		limiter = middleware.NewRedisSlidingWindow(rdb, cfg.RateLimitMax, rateWindow)
	} else {
		memLimiter := middleware.NewSlidingWindow(cfg.RateLimitMax, rateWindow)
		defer memLimiter.Stop()
		limiter = memLimiter
	}

	// ──── Step 5: Initialize Handlers ────
	chatHandler := handlers.NewChatHandler(relay, logger)
	profileHandler := handlers.NewProfileHandler(profiles, jwtAuth, logger)
	contentHandler := handlers.NewContentHandler()
	rateLimiter := middleware.NewRateLimiter(limiter, rateWindow, logger)
	wsHub := websocket.NewHub(relay, rateLimiter, []string{cfg.FrontendURL}, cfg.MaxBodyBytes, logger)

	// ──── Step 6: Start HTTP Server ────
	r := router.New(
		logger,
		jwtAuth,
		rateLimiter,
		chatHandler,
		profileHandler,
		contentHandler,
		wsHub,
		cfg.MaxBodyBytes,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: chatTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down")
		wsHub.CloseAll()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	logger.Info("Zen backend ready",
		zap.String("api", fmt.Sprintf("http://localhost:%s/api", cfg.Port)),
		zap.String("ws", fmt.Sprintf("ws://localhost:%s/api/chat/ws", cfg.Port)),
		zap.String("frontend", cfg.FrontendURL),
		zap.Bool("gemini_configured", cfg.GeminiConfigured()),
	)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
