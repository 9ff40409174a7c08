package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joshua-takyi/carhire/internal/models"
	"github.com/joshua-takyi/carhire/internal/services"
)

type Config struct {
	Port            string
	Environment     string
	LogLevel        string
	MongoDBURI      string
	MongoDBPassword string
	MongoDBDatabase string
	JWTSecret       string
	JWTTTL          time.Duration
	JWKSURL         string
	CORSOrigins     []string

	CarStatusPolicy    services.CarStatusPolicy
	BookingBoundary    models.BoundaryMode
	BookingMaxAttempts int

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:                getEnvWithDefault("PORT", "8080"),
		Environment:         getEnvWithDefault("ENVIRONMENT", "development"),
		LogLevel:            getEnvWithDefault("LOG_LEVEL", "info"),
		MongoDBURI:          os.Getenv("MONGODB_URI"),
		MongoDBPassword:     os.Getenv("MONGODB_PASSWORD"),
		MongoDBDatabase:     getEnvWithDefault("MONGODB_DATABASE", "carhire"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		JWKSURL:             os.Getenv("JWKS_URL"),
		CORSOrigins:         splitList(getEnvWithDefault("CORS_ORIGINS", "http://localhost:3000")),
		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),
	}

	// Validate required fields
	if cfg.MongoDBURI == "" {
		return nil, fmt.Errorf("MONGODB_URI is required")
	}
	if strings.Contains(cfg.MongoDBURI, "<password>") && cfg.MongoDBPassword == "" {
		return nil, fmt.Errorf("MONGODB_PASSWORD is required when MONGODB_URI has a <password> placeholder")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	var err error
	if cfg.JWTTTL, err = time.ParseDuration(getEnvWithDefault("JWT_TTL", "168h")); err != nil || cfg.JWTTTL <= 0 {
		return nil, fmt.Errorf("JWT_TTL must be a positive duration, got %q", os.Getenv("JWT_TTL"))
	}
	if cfg.CarStatusPolicy, err = services.ParseCarStatusPolicy(os.Getenv("CAR_STATUS_POLICY")); err != nil {
		return nil, fmt.Errorf("CAR_STATUS_POLICY: %w", err)
	}
	if cfg.BookingBoundary, err = models.ParseBoundaryMode(os.Getenv("BOOKING_BOUNDARY")); err != nil {
		return nil, fmt.Errorf("BOOKING_BOUNDARY: %w", err)
	}
	cfg.BookingMaxAttempts, err = strconv.Atoi(getEnvWithDefault("BOOKING_MAX_ATTEMPTS", strconv.Itoa(services.DefaultBookingAttempts)))
	if err != nil || cfg.BookingMaxAttempts < 1 {
		return nil, fmt.Errorf("BOOKING_MAX_ATTEMPTS must be a positive integer")
	}

	return cfg, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// MongoURI returns MONGODB_URI with the password placeholder filled in.
func (c *Config) MongoURI() string {
	return strings.Replace(c.MongoDBURI, "<password>", c.MongoDBPassword, 1)
}

func (c *Config) HasCloudinary() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

func (c *Config) BookingPolicy() services.BookingPolicy {
	return services.BookingPolicy{
		CarStatus:   c.CarStatusPolicy,
		MaxAttempts: c.BookingMaxAttempts,
	}
}

func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
