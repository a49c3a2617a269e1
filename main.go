package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/skanerxe/nutrition-helper/internal/config"
	"github.com/skanerxe/nutrition-helper/internal/logger"
	"github.com/skanerxe/nutrition-helper/internal/repository"
	"github.com/skanerxe/nutrition-helper/internal/services"
	"github.com/skanerxe/nutrition-helper/internal/storage"
)

// The storage layer itself is a library; this binary wires it up, verifies
// the document store is serviceable and runs the maintenance scheduler.
func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting Nutrition Helper storage service...")

	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.InitWithConfig(logger.Config{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	ctx := context.Background()

	db, err := storage.OpenFallbackDB(ctx, cfg.Fallback.DBPath)
	if err != nil {
		logger.Fatalf("Failed to open fallback database: %v", err)
	}
	defer db.Close()

	remote := storage.NewGitHubStore(cfg.GitHub)
	cache := storage.NewTTLCache(cfg.Cache.TTL)
	store := storage.NewDocumentStore(remote, storage.NewFallbackStore(db), cache)

	users := repository.NewUserRepository(store)
	analyses := repository.NewAnalysisRepository(store)
	payments := repository.NewPaymentRepository(store)
	settings := repository.NewSettingsRepository(store)

	// Establishes missing documents remotely on first run and proves the
	// store is reachable (or degraded but serviceable) before starting work.
	if _, err := settings.Get(ctx); err != nil {
		logger.Fatalf("Failed to read settings document: %v", err)
	}

	statsService := services.NewStatsService(users, analyses, payments)
	stats, err := statsService.Stats(ctx)
	if err != nil {
		logger.Fatalf("Failed to aggregate stats: %v", err)
	}
	logger.Info("Document store ready",
		"total_users", stats.TotalUsers,
		"total_analyses", stats.TotalAnalyses,
		"pending_payments", stats.PendingPayments)

	maintenance := services.NewMaintenanceService(analyses, payments)
	runner := services.NewMaintenanceRunner(maintenance, cfg.Maintenance.Schedule, cfg.Maintenance.RetentionDays)
	if err := runner.Start(); err != nil {
		logger.Fatalf("Failed to start maintenance scheduler: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	runner.Stop()
}
