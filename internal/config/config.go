// Package config loads the roster service configuration from the environment
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	EnvironmentProduction  = "production"
	EnvironmentDevelopment = "development"

	defaultClientURL = "http://localhost:5173"
)

// Config holds all configuration for the roster service
type Config struct {
	Environment     string
	Port            string
	LogLevel        string
	UploadsDir      string
	ShutdownTimeout time.Duration
	Security        SecurityConfig
	Redis           RedisConfig
}

// SecurityConfig holds CORS and rate limit configuration
type SecurityConfig struct {
	// AllowedOrigins is a comma separated origin list
	AllowedOrigins  string
	CORSMaxAge      int
	RateLimit       int
	RateLimitWindow time.Duration
}

// RedisConfig holds the optional Redis connection used for rate limiting and member events
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	EventsStream string
}

// Enabled reports whether a Redis address was configured
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// IsProduction reports whether error details must be hidden from clients
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, EnvironmentProduction)
}

// Load reads the configuration from environment variables
func Load() *Config {
	cfg := &Config{
		Environment:     GetEnvOrDefault("ENV", GetEnvOrDefault("NODE_ENV", EnvironmentDevelopment)),
		Port:            GetEnvOrDefault("PORT", "5000"),
		LogLevel:        GetEnvOrDefault("LOG_LEVEL", "info"),
		UploadsDir:      GetEnvOrDefault("UPLOADS_DIR", "./uploads"),
		ShutdownTimeout: ParseDurationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
		Security: SecurityConfig{
			AllowedOrigins:  GetEnvOrDefault("CLIENT_URL", GetEnvOrDefault("VITE_CLIENT_URL", defaultClientURL)),
			CORSMaxAge:      ParseIntOrDefault("CORS_MAX_AGE", 86400),
			RateLimit:       ParseIntOrDefault("RATE_LIMIT_REQUESTS", 30),
			RateLimitWindow: ParseDurationOrDefault("RATE_LIMIT_WINDOW", time.Minute),
		},
		Redis: RedisConfig{
			Addr:         os.Getenv("REDIS_ADDR"),
			Password:     os.Getenv("REDIS_PASSWORD"),
			DB:           ParseIntOrDefault("REDIS_DB", 0),
			EventsStream: GetEnvOrDefault("MEMBER_EVENTS_STREAM", "roster:member-events"),
		},
	}

	slog.Info("Service configuration",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"uploads_dir", cfg.UploadsDir,
		"allowed_origins", cfg.Security.AllowedOrigins,
		"rate_limit", cfg.Security.RateLimit,
		"rate_limit_window", cfg.Security.RateLimitWindow,
		"redis_enabled", cfg.Redis.Enabled(),
	)
	return cfg
}

// GetEnvOrDefault returns the environment variable value or a default
func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// ParseIntOrDefault parses an integer from environment variable or returns default
func ParseIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
		slog.Warn("Invalid integer format, using default", "key", key, "value", value, "default", defaultValue)
	}
	return defaultValue
}

// ParseDurationOrDefault parses a duration from environment variable or returns default
// Accepts formats like "1h", "30m", "15s", etc.
func ParseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
		slog.Warn("Invalid duration format, using default", "key", key, "value", value, "default", defaultValue)
	}
	return defaultValue
}
