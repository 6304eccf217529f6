package main

import (
	"alcyxob/boxing-app/internal/api"
	"alcyxob/boxing-app/internal/config"
	"alcyxob/boxing-app/internal/logger"
	"alcyxob/boxing-app/internal/repository"
	"alcyxob/boxing-app/internal/repository/memory"
	"alcyxob/boxing-app/internal/repository/mongo"
	"alcyxob/boxing-app/internal/service"
	"alcyxob/boxing-app/internal/storage"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// @title Boxing Training API
// @version 1.0
// @description Programs, movements and day-by-day training progress for a boxing app.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}

	appLogger, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("FATAL: Could not build logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	if err := run(cfg, appLogger); err != nil {
		appLogger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, appLogger *zap.Logger) error {
	appLogger.Info("starting boxing app server",
		zap.String("address", cfg.Server.Address),
		zap.String("driver", cfg.Database.Driver))

	// --- Repositories ---
	repos, closeDB, err := openRepositories(cfg, appLogger)
	if err != nil {
		return err
	}
	defer closeDB()

	// --- Storage ---
	var fileStorage storage.FileStorage
	if cfg.S3.BucketName != "" {
		fileStorage, err = storage.NewS3Storage(context.Background(), cfg.S3, appLogger)
		if err != nil {
			return fmt.Errorf("init s3 storage: %w", err)
		}
	} else {
		appLogger.Warn("no s3 bucket configured, media is kept in memory")
		fileStorage = storage.NewMemoryStorage()
	}

	// --- Services ---
	authService := service.NewAuthService(repos.Users, cfg.JWT, appLogger)
	progressService := service.NewProgressService(repos, fileStorage, appLogger)
	services := api.Services{
		Auth:      authService,
		Progress:  progressService,
		Programs:  service.NewProgramService(repos, progressService, fileStorage, appLogger, cfg.Upload.MaxBytes),
		Movements: service.NewMovementService(repos.Movements, fileStorage, appLogger, cfg.Upload.MaxBytes),
	}

	if cfg.Admin.Email != "" && cfg.Admin.Password != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := authService.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password)
		cancel()
		if err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
	}

	// --- Router ---
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(logger.GinMiddleware(appLogger), gin.Recovery())
	router.MaxMultipartMemory = cfg.Upload.MaxBytes
	api.SetupRoutes(router, cfg, services, appLogger)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  60 * time.Second, // media uploads
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info("server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}
	appLogger.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	appLogger.Info("server exited")
	return nil
}

// openRepositories selects the storage driver. The returned func releases it.
func openRepositories(cfg config.Config, appLogger *zap.Logger) (repository.Repositories, func(), error) {
	if cfg.Database.Driver == config.DriverMemory {
		appLogger.Warn("using in-memory database, data is lost on restart")
		return memory.NewRepositories(memory.NewStore()), func() {}, nil
	}

	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		return repository.Repositories{}, nil, fmt.Errorf("connect mongodb: %w", err)
	}
	appDB := dbClient.Database(cfg.Database.Name)
	appLogger.Info("database connection established", zap.String("database", cfg.Database.Name))

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		mongo.EnsureIndexes(ctx, appDB, appLogger)
		appLogger.Info("index creation completed")
	}()

	closeDB := func() {
		if err := mongo.DisconnectDB(dbClient); err != nil {
			appLogger.Error("failed to disconnect mongodb", zap.Error(err))
		}
	}
	return mongo.NewRepositories(appDB), closeDB, nil
}
