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

	"github.com/gov-dx-sandbox/team-roster/internal/config"
	"github.com/gov-dx-sandbox/team-roster/internal/database"
	"github.com/gov-dx-sandbox/team-roster/internal/events"
	"github.com/gov-dx-sandbox/team-roster/internal/handlers"
	"github.com/gov-dx-sandbox/team-roster/internal/logger"
	"github.com/gov-dx-sandbox/team-roster/internal/middleware"
	"github.com/gov-dx-sandbox/team-roster/internal/monitoring"
	roredis "github.com/gov-dx-sandbox/team-roster/internal/redis"
	"github.com/gov-dx-sandbox/team-roster/internal/repository"
	"github.com/gov-dx-sandbox/team-roster/internal/services"
	"github.com/gov-dx-sandbox/team-roster/internal/uploads"
	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
)

const serviceName = "team-roster"

func main() {
	// Load .env file if it exists (optional - fails silently if not found)
	_ = godotenv.Load()

	appLogger := logger.Setup(serviceName, config.GetEnvOrDefault("LOG_LEVEL", "info"))
	cfg := config.Load()

	slog.Info("Starting team roster service", "environment", cfg.Environment)

	ctx := context.Background()

	shutdownMetrics, err := monitoring.Setup(ctx, monitoring.Config{
		ServiceName:   serviceName,
		ResourceAttrs: map[string]string{"deployment.environment": cfg.Environment},
	})
	if err != nil {
		slog.Error("Failed to initialise metrics", "error", err)
		os.Exit(1)
	}

	dbConfig := database.NewDatabaseConfig()
	repo, err := repository.Open(ctx, dbConfig)
	if err != nil {
		slog.Error("Failed to connect to member store", "type", dbConfig.Type, "error", err)
		os.Exit(1)
	}

	store, err := uploads.NewStore(cfg.UploadsDir)
	if err != nil {
		slog.Error("Failed to prepare uploads directory", "dir", cfg.UploadsDir, "error", err)
		os.Exit(1)
	}
	slog.Info("Uploads directory ready", "dir", store.Dir())

	var redisClient *goredis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = roredis.NewClient(&roredis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			// rate limiting and events degrade to their in-process variants
			slog.Warn("Redis unavailable, continuing without it", "addr", cfg.Redis.Addr, "error", err)
			redisClient = nil
		}
	}

	var limiter middleware.RateLimiter
	if redisClient != nil {
		limiter = middleware.NewRedisRateLimiter(redisClient)
	} else {
		limiter = middleware.NewMemoryRateLimiter()
	}
	defer limiter.Close()

	service := services.NewMemberService(repo, store,
		services.WithPublisher(events.NewPublisher(redisClient, cfg.Redis.EventsStream)),
		services.WithDatastoreName(string(dbConfig.Type)),
	)

	router := handlers.NewRouter(handlers.RouterDeps{
		Service:           service,
		Uploads:           store,
		Logger:            appLogger,
		ExposeErrorDetail: !cfg.IsProduction(),
		AllowedOrigins:    cfg.Security.AllowedOrigins,
		CORSMaxAge:        cfg.Security.CORSMaxAge,
		RateLimiter:       limiter,
		RateLimit:         cfg.Security.RateLimit,
		RateLimitWindow:   cfg.Security.RateLimitWindow,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("Team roster service listening",
			"addr", server.Addr,
			"api", "http://localhost:"+cfg.Port+"/api",
			"allowed_origins", cfg.Security.AllowedOrigins,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down team roster service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	if err := repo.Close(shutdownCtx); err != nil {
		slog.Error("Failed to close member store", "error", err)
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			slog.Error("Failed to close redis client", "error", err)
		}
	}
	if err := shutdownMetrics(shutdownCtx); err != nil {
		slog.Error("Failed to flush metrics", "error", err)
	}

	slog.Info("Team roster service exited")
}
