package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/storerate/storerate-backend/config"
	"github.com/storerate/storerate-backend/internal/app/controller"
	"github.com/storerate/storerate-backend/internal/app/repository"
	"github.com/storerate/storerate-backend/internal/app/service"
	"github.com/storerate/storerate-backend/internal/db"
	"github.com/storerate/storerate-backend/internal/middleware"
	"github.com/storerate/storerate-backend/internal/router"
	"github.com/storerate/storerate-backend/internal/scheduler"
	"github.com/storerate/storerate-backend/internal/storage"
	"github.com/storerate/storerate-backend/pkg/logger"
	"github.com/storerate/storerate-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting StoreRate Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Connect to the database
	database, err := db.Connect(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", err)
	}
	defer func() {
		if err := db.Close(database); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations and ensure the admin account exists
	if err := db.Migrate(database); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}
	if err := db.EnsureAdmin(database, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		logger.Fatal("Failed to ensure admin account", err)
	}

	// Redis is optional; without it logout tokens simply age out
	if cfg.Redis.Enabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Warn("Redis unavailable, token revocation disabled", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer redis.Close()
		}
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(database)
	storeRepo := repository.NewStoreRepository(database)
	ratingRepo := repository.NewRatingRepository(database)

	// Image uploads go to S3 when configured, otherwise inline fallback
	var uploader storage.ImageUploader = storage.NewNullUploader()
	if cfg.S3.Bucket != "" && cfg.S3.AccessKeyID != "" {
		uploader = storage.NewS3Uploader(
			cfg.S3.Region,
			cfg.S3.Bucket,
			cfg.S3.AccessKeyID,
			cfg.S3.SecretAccessKey,
			cfg.S3.BaseURL,
		)
		logger.Info("S3 image uploads enabled", map[string]interface{}{
			"bucket": cfg.S3.Bucket,
			"region": cfg.S3.Region,
		})
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.TokenExpiry)
	ratingService := service.NewRatingService(ratingRepo, storeRepo)
	storeService := service.NewStoreService(storeRepo, ratingRepo, userRepo, uploader,
		service.NewTempPasswordProvisioner(userRepo))
	adminService := service.NewAdminService(userRepo, storeRepo, ratingRepo)

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	storeController := controller.NewStoreController(storeService)
	ratingController := controller.NewRatingController(ratingService)
	ownerController := controller.NewOwnerController(storeService)
	adminController := controller.NewAdminController(adminService)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, userRepo)

	// Setup router
	r := router.NewRouter(
		authController,
		storeController,
		ratingController,
		ownerController,
		adminController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Daily stats snapshot
	statsScheduler := scheduler.NewStatsScheduler(adminService)
	if err := statsScheduler.Start(); err != nil {
		logger.Warn("Stats scheduler failed to start", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer statsScheduler.Stop()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
