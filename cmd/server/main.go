// cmd/server/main.go
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

	"github.com/gin-gonic/gin"

	"github.com/horizonglow/marketplace-backend/internal/config"
	"github.com/horizonglow/marketplace-backend/internal/database"
	"github.com/horizonglow/marketplace-backend/internal/router"
	"github.com/horizonglow/marketplace-backend/internal/services"
	"github.com/horizonglow/marketplace-backend/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize database
	db, err := database.Initialize(cfg.Database)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer database.Close(db)

	// Run database migrations
	if err := database.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}
	if err := database.SeedInitialData(db); err != nil {
		log.Fatal("Failed to seed initial data:", err)
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// One storage backend for the whole process; the HTTP surface and the
	// retention pruner must never point at different stores.
	backend, err := storage.New(cfg.Storage)
	if err != nil {
		log.Fatal("Failed to initialize storage backend:", err)
	}

	// Initialize router
	r := router.Initialize(db, cfg, backend)

	// Background retention sweep for sold product files
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()

	retention := services.NewRetentionService(
		db,
		services.NewProductFileService(db, backend),
		time.Duration(cfg.Files.RetentionHours)*time.Hour,
	)
	go retention.Run(sweepCtx, time.Duration(cfg.Files.PruneIntervalHours)*time.Hour)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	stopSweep()

	// Create a deadline for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown server
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
