package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/gov-dx-sandbox/team-roster/internal/apperrors"
	"github.com/gov-dx-sandbox/team-roster/internal/events"
	"github.com/gov-dx-sandbox/team-roster/internal/models"
	"github.com/gov-dx-sandbox/team-roster/internal/monitoring"
	"github.com/gov-dx-sandbox/team-roster/internal/repository"
)

// UploadChecker reports whether a profile image has been stored
type UploadChecker interface {
	Exists(filename string) bool
}

// MemberService validates member submissions and coordinates persistence
type MemberService struct {
	repo      repository.MemberRepository
	uploads   UploadChecker
	publisher events.Publisher
	datastore string
	now       func() time.Time
}

// Option configures a MemberService
type Option func(*MemberService)

// WithPublisher sets the member event publisher
func WithPublisher(p events.Publisher) Option {
	return func(s *MemberService) {
		s.publisher = p
	}
}

// WithDatastoreName labels store metrics with the backing database
func WithDatastoreName(name string) Option {
	return func(s *MemberService) {
		s.datastore = name
	}
}

// WithClock overrides the timestamp source
func WithClock(now func() time.Time) Option {
	return func(s *MemberService) {
		s.now = now
	}
}

// NewMemberService creates a new member service instance
func NewMemberService(repo repository.MemberRepository, uploads UploadChecker, opts ...Option) *MemberService {
	s := &MemberService{
		repo:      repo,
		uploads:   uploads,
		publisher: events.Discard,
		datastore: "members",
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListMembers returns all members, newest first
func (s *MemberService) ListMembers(ctx context.Context) ([]models.Member, error) {
	start := time.Now()
	members, err := s.repo.ListMembers(ctx)
	s.observe(ctx, "list_members", start, err)
	if err != nil {
		return nil, err
	}
	return members, nil
}

// GetMember returns one member; malformed ids are reported as not found without a store round trip
func (s *MemberService) GetMember(ctx context.Context, id string) (*models.Member, error) {
	if !models.IsValidMemberID(id) {
		return nil, apperrors.NotFound("Member")
	}

	start := time.Now()
	member, err := s.repo.GetMember(ctx, id)
	s.observe(ctx, "get_member", start, err)
	return member, err
}

// CreateMember validates req and persists a member referencing the stored profileImage
func (s *MemberService) CreateMember(ctx context.Context, req *models.CreateMemberRequest, profileImage string) (*models.Member, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		monitoring.RecordBusinessEvent(ctx, "member.validation_failed", false)
		return nil, err
	}
	if profileImage == "" || (s.uploads != nil && !s.uploads.Exists(profileImage)) {
		monitoring.RecordBusinessEvent(ctx, "member.validation_failed", false)
		return nil, apperrors.Validation("Profile image is required", "profileImage")
	}

	member := req.ToMember(profileImage)
	member.ID = models.NewMemberID()
	// millisecond precision is what every backing store round-trips
	member.Touch(s.now().UTC().Truncate(time.Millisecond))

	start := time.Now()
	created, err := s.repo.CreateMember(ctx, member)
	s.observe(ctx, "create_member", start, err)
	monitoring.RecordBusinessEvent(ctx, events.EventMemberCreated, err == nil)
	if err != nil {
		return nil, err
	}

	if err := s.publisher.PublishMemberEvent(ctx, events.NewMemberCreated(created)); err != nil {
		slog.Warn("Failed to publish member event", "member_id", created.ID, "error", err)
	}

	slog.Info("Member created", "member_id", created.ID, "profile_image", created.ProfileImage)
	return created, nil
}

// Ping verifies the member store is reachable
func (s *MemberService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *MemberService) observe(ctx context.Context, operation string, start time.Time, err error) {
	errKind := ""
	if err != nil {
		kind := apperrors.KindOf(err)
		errKind = string(kind)
		if kind == apperrors.KindUnknown || kind == apperrors.KindUnavailable {
			slog.Error("Member store operation failed", "operation", operation, "error", err)
		}
	}
	monitoring.RecordDBLatency(ctx, s.datastore, operation, time.Since(start), errKind)
}
