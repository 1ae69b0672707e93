package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"belajarbahasa/config"
	"belajarbahasa/handlers"
	"belajarbahasa/middleware"
	"belajarbahasa/models"
	"belajarbahasa/routes"
	"belajarbahasa/services"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database models
	if err := models.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize Redis (optional)
	redisClient := config.InitRedis(cfg)
	if redisClient == nil {
		log.Printf("REDIS_HOST not set, user cache disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize WebSocket hub
	hub := services.NewHub()
	go hub.Run(ctx)

	// Initialize services
	answerService := services.NewAnswerService(db, hub)
	userService := services.NewUserService(db, answerService, services.NewUserCache(redisClient, cfg.UserCacheTTL))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService)
	answerHandler := handlers.NewAnswerHandler(answerService)
	feedHandler := handlers.NewFeedHandler(hub)

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS(cfg.CORSOrigins))
	router.Use(middleware.BodyLimit(cfg.BodyLimit))

	routes.SetupRoutes(router, userHandler, answerHandler, feedHandler)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server running on %s", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	if redisClient != nil {
		_ = redisClient.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
