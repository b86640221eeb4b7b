package repository

import (
	"context"
	"fmt"

	"github.com/gov-dx-sandbox/team-roster/internal/database"
)

// Open connects to the configured backend, ensures its schema and returns the member store.
// The caller owns the store and must Close it.
func Open(ctx context.Context, cfg *database.Config) (MemberRepository, error) {
	var repo MemberRepository
	switch cfg.Type {
	case database.DatabaseTypeSQLite, database.DatabaseTypePostgres:
		db, err := database.ConnectGormDB(cfg)
		if err != nil {
			return nil, err
		}
		repo = NewGormRepository(db)
	default:
		client, db, err := database.ConnectMongo(ctx, cfg)
		if err != nil {
			return nil, err
		}
		repo = NewMongoRepository(client, db)
	}

	if err := repo.EnsureSchema(ctx); err != nil {
		_ = repo.Close(context.Background())
		return nil, fmt.Errorf("failed to prepare member store: %w", err)
	}
	return repo, nil
}
