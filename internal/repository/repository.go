package repository

import (
	"context"

	"github.com/gov-dx-sandbox/team-roster/internal/models"
)

// MemberRepository defines the database-agnostic interface for member persistence.
// Implementations exist for MongoDB and for GORM (PostgreSQL, SQLite).
type MemberRepository interface {
	// EnsureSchema creates the collection indexes or tables the repository relies on
	EnsureSchema(ctx context.Context) error

	// ListMembers returns every member, most recently created first
	ListMembers(ctx context.Context) ([]models.Member, error)

	// GetMember returns the member with the given id or a NotFound error
	GetMember(ctx context.Context, id string) (*models.Member, error)

	// CreateMember inserts a member, failing with a Duplicate error on email collision
	CreateMember(ctx context.Context, member *models.Member) (*models.Member, error)

	// Ping verifies the store is reachable
	Ping(ctx context.Context) error

	// Close releases the underlying connection
	Close(ctx context.Context) error
}

const (
	memberNotFound     = "Member"
	duplicateEmailText = "Member with this email already exists"
)
