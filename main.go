// main.go
package main

import (
	"context"
	"log"
	"time"

	"account-service/cmd"
	"account-service/internal/data/repository"
	"account-service/internal/usecase"
	"account-service/internal/wire"
	"account-service/internal/worker"
	"account-service/pkg/database"
	"account-service/pkg/mailer"
	"account-service/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Initialize repositories and services
	repos := repository.NewRepository(db, logger)
	mail := mailer.NewMailer(config, logger)
	services := usecase.NewService(repos, mail, config, logger)

	// Purge stale OTP records and never-activated accounts before serving
	scheduler := worker.NewCleanupScheduler(
		services.OTP,
		time.Duration(config.OTP.CleanupInterval)*time.Second,
		logger,
	)
	scheduler.RunOnce(context.Background())
	scheduler.Start(context.Background())
	defer scheduler.Stop()

	// Wire handlers and routes
	app := wire.Wiring(services, config, logger)

	// Start server; blocks until shutdown signal
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	if err := cmd.APIServer(app.Router, config.App.Port); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
	}

	logger.Info("Shutting down")
}
