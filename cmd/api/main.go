package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/joshua-takyi/carhire/internal/config"
	"github.com/joshua-takyi/carhire/internal/connect"
	"github.com/joshua-takyi/carhire/internal/container"
	"github.com/joshua-takyi/carhire/internal/helpers"
	"github.com/joshua-takyi/carhire/internal/models"
	"github.com/joshua-takyi/carhire/internal/routes"
)

func main() {
	// Load environment variables
	_ = godotenv.Load(".env.local")

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg)
	slog.SetDefault(logger)
	logger.Info("Starting car hire API server",
		"environment", cfg.Environment,
		"car_status_policy", cfg.CarStatusPolicy,
		"booking_boundary", cfg.BookingBoundary,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cld, err := connect.CloudinaryCredentials(cfg)
	if err != nil {
		logger.Error("Failed to connect to Cloudinary", "error", err)
		os.Exit(1)
	}
	if cld == nil {
		logger.Info("Cloudinary not configured, car images stored as submitted")
	}

	mongoClient, err := connect.MongoDBConnect(ctx, cfg)
	if err != nil {
		logger.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to MongoDB successfully", "database", cfg.MongoDBDatabase)

	repo := models.MongodbNewRepo(mongoClient, cfg.MongoDBDatabase)
	if err := repo.EnsureIndexes(ctx); err != nil {
		logger.Error("Failed to create indexes", "error", err)
		_ = connect.MongoDBDisconnect(mongoClient)
		os.Exit(1)
	}

	tokens, err := helpers.NewTokenValidator(ctx, []byte(cfg.JWTSecret), cfg.JWKSURL)
	if err != nil {
		logger.Error("Failed to set up token validation", "error", err)
		_ = connect.MongoDBDisconnect(mongoClient)
		os.Exit(1)
	}
	defer tokens.Close()

	appContainer := container.NewContainer(cfg, logger, container.MongoStores(repo), cld, tokens)
	router := routes.SetupRoutes(appContainer)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Server is shutting down...")
	case err := <-serverErr:
		logger.Error("Server failed to start", "error", err)
	}

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	if err := connect.MongoDBDisconnect(mongoClient); err != nil {
		logger.Error("Error disconnecting from MongoDB", "error", err)
	}

	logger.Info("Server exited")
}

func setupLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler

	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: cfg.SlogLevel(),
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level:     cfg.SlogLevel(),
			AddSource: cfg.IsDevelopment(),
		})
	}

	return slog.New(handler)
}
