package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/gov-dx-sandbox/team-roster/internal/config"
	"github.com/gov-dx-sandbox/team-roster/internal/database"
	"github.com/gov-dx-sandbox/team-roster/internal/logger"
	"github.com/gov-dx-sandbox/team-roster/internal/repository"
	"github.com/gov-dx-sandbox/team-roster/internal/services"
	"github.com/gov-dx-sandbox/team-roster/internal/uploads"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	file := flag.String("file", "", "YAML seed file (defaults to the built-in demo team)")
	flag.Parse()

	logger.Setup("team-roster-seed", config.GetEnvOrDefault("LOG_LEVEL", "info"))

	data := defaultMembers
	if *file != "" {
		var err error
		if data, err = os.ReadFile(*file); err != nil {
			slog.Error("Failed to read seed file", "file", *file, "error", err)
			os.Exit(1)
		}
	}
	members, err := parseSeedFile(data)
	if err != nil {
		slog.Error("Invalid seed file", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	cfg := config.Load()

	dbConfig := database.NewDatabaseConfig()
	repo, err := repository.Open(ctx, dbConfig)
	if err != nil {
		slog.Error("Failed to connect to member store", "type", dbConfig.Type, "error", err)
		os.Exit(1)
	}
	defer repo.Close(context.Background())

	store, err := uploads.NewStore(cfg.UploadsDir)
	if err != nil {
		slog.Error("Failed to prepare uploads directory", "dir", cfg.UploadsDir, "error", err)
		os.Exit(1)
	}

	service := services.NewMemberService(repo, store, services.WithDatastoreName(string(dbConfig.Type)))
	report, err := seedMembers(ctx, service, store, members)
	if err != nil {
		slog.Error("Seeding failed", "error", err, "created", report.Created, "skipped", report.Skipped)
		repo.Close(context.Background())
		os.Exit(1)
	}

	slog.Info("Seeding completed successfully", "created", report.Created, "skipped", report.Skipped)
}
