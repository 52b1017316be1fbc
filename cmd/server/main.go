package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"chatstore/internal/api"
	"chatstore/internal/api/handlers"
	"chatstore/internal/api/middleware"
	"chatstore/internal/engine/apikeys"
	"chatstore/internal/engine/chat"
	"chatstore/internal/engine/ratelimit"
	"chatstore/internal/pkg/logger"
	"chatstore/internal/platform/config"
	"chatstore/internal/platform/database"
	"chatstore/internal/platform/repositories"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Logging)

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  cfg.Redis.Timeout,
		ReadTimeout:  cfg.Redis.Timeout,
		WriteTimeout: cfg.Redis.Timeout,
	})
	defer redisClient.Close()

	// Repositories
	apiKeyRepo := repositories.NewAPIKeyRepository(db)
	chatRepo := chat.NewRepository(db)

	// Services
	hasher := apikeys.NewHasher(cfg.Security.APIKeyPepper)
	keySvc := apikeys.NewService(apiKeyRepo, hasher)
	chatSvc := chat.NewService(chatRepo)
	limiter := ratelimit.NewLimiter(
		redisClient,
		cfg.RateLimit.RequestsPerWindow,
		time.Duration(cfg.RateLimit.WindowSeconds)*time.Second,
		cfg.RateLimit.FailOpen,
	)

	// Handlers
	apiKeyHandler := handlers.NewAPIKeyHandler(keySvc)
	sessionHandler := handlers.NewSessionHandler(chatSvc)
	messageHandler := handlers.NewMessageHandler(chatSvc)
	healthHandler := handlers.NewHealthHandler(db, redisClient)

	// Middleware
	corsMiddleware := middleware.NewCORSMiddleware(cfg.CORS)
	authMiddleware := middleware.NewAuthMiddleware(keySvc, cfg.Security.AdminKey, cfg.Security.ExemptPaths)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(limiter, cfg.Security.ExemptPaths)

	deps := &api.Dependencies{
		APIKeyHandler:       apiKeyHandler,
		SessionHandler:      sessionHandler,
		MessageHandler:      messageHandler,
		HealthHandler:       healthHandler,
		CORSMiddleware:      corsMiddleware,
		AuthMiddleware:      authMiddleware,
		RateLimitMiddleware: rateLimitMiddleware,
	}
	router := api.NewRouter(deps)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	log.Printf("Server starting on %s", addr)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
