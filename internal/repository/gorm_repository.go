package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/gov-dx-sandbox/team-roster/internal/apperrors"
	"github.com/gov-dx-sandbox/team-roster/internal/models"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// postgres unique_violation
const pgUniqueViolation = "23505"

// GormRepository implements MemberRepository using GORM (works with SQLite or PostgreSQL)
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new repository (works with SQLite or PostgreSQL)
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// EnsureSchema auto-migrates the members table and its unique email index
func (r *GormRepository) EnsureSchema(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&models.Member{}); err != nil {
		return fmt.Errorf("failed to migrate members table: %w", err)
	}
	return nil
}

// ListMembers retrieves all members ordered by creation time, newest first
func (r *GormRepository) ListMembers(ctx context.Context) ([]models.Member, error) {
	var members []models.Member
	result := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&members)
	if result.Error != nil {
		return nil, translateGormError("list members", result.Error)
	}
	if members == nil {
		members = []models.Member{}
	}
	return members, nil
}

// GetMember retrieves a member by id
func (r *GormRepository) GetMember(ctx context.Context, id string) (*models.Member, error) {
	if !models.IsValidMemberID(id) {
		return nil, apperrors.NotFound(memberNotFound)
	}

	var member models.Member
	result := r.db.WithContext(ctx).Where("id = ?", id).Take(&member)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound(memberNotFound)
		}
		return nil, translateGormError("get member", result.Error)
	}
	return &member, nil
}

// CreateMember inserts a new member row
func (r *GormRepository) CreateMember(ctx context.Context, member *models.Member) (*models.Member, error) {
	if member.ID == "" {
		member.ID = models.NewMemberID()
	}
	result := r.db.WithContext(ctx).Create(member)
	if result.Error != nil {
		return nil, translateGormError("create member", result.Error)
	}
	return member, nil
}

// Ping verifies the database connection
func (r *GormRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return apperrors.Unavailable("ping", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return apperrors.Unavailable("ping", err)
	}
	return nil
}

// Close closes the underlying sql.DB
func (r *GormRepository) Close(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func translateGormError(operation string, err error) error {
	if isDuplicateKey(err) {
		return apperrors.Duplicate(duplicateEmailText, err)
	}
	if isConnectionError(err) {
		return apperrors.Unavailable(operation, err)
	}
	return apperrors.Unknown(operation, err)
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isConnectionError(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var connectErr *pgconn.ConnectError
	return errors.As(err, &connectErr)
}
