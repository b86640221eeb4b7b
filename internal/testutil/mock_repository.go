package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/gov-dx-sandbox/team-roster/internal/apperrors"
	"github.com/gov-dx-sandbox/team-roster/internal/events"
	"github.com/gov-dx-sandbox/team-roster/internal/models"
)

// MockRepository is an in-memory implementation of repository.MemberRepository for testing
type MockRepository struct {
	mu      sync.Mutex
	members map[string]models.Member
	emails  map[string]string

	// Err, when set, is returned by every operation
	Err error
}

// NewMockRepository creates a new MockRepository instance
func NewMockRepository() *MockRepository {
	return &MockRepository{
		members: make(map[string]models.Member),
		emails:  make(map[string]string),
	}
}

func (m *MockRepository) EnsureSchema(ctx context.Context) error {
	return m.Err
}

// ListMembers returns stored members newest first
func (m *MockRepository) ListMembers(ctx context.Context) ([]models.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	members := make([]models.Member, 0, len(m.members))
	for _, member := range m.members {
		members = append(members, member)
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].CreatedAt.Equal(members[j].CreatedAt) {
			return members[i].ID > members[j].ID
		}
		return members[i].CreatedAt.After(members[j].CreatedAt)
	})
	return members, nil
}

func (m *MockRepository) GetMember(ctx context.Context, id string) (*models.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	member, ok := m.members[id]
	if !ok {
		return nil, apperrors.NotFound("Member")
	}
	return &member, nil
}

// CreateMember stores the member, enforcing email uniqueness
func (m *MockRepository) CreateMember(ctx context.Context, member *models.Member) (*models.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	if _, taken := m.emails[member.Email]; taken {
		return nil, apperrors.Duplicate("Member with this email already exists", nil)
	}
	if member.ID == "" {
		member.ID = models.NewMemberID()
	}
	m.members[member.ID] = *member
	m.emails[member.Email] = member.ID
	return member, nil
}

func (m *MockRepository) Ping(ctx context.Context) error {
	return m.Err
}

func (m *MockRepository) Close(ctx context.Context) error {
	return nil
}

// Count returns the number of stored members (useful for test assertions)
func (m *MockRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.members)
}

// RecordingPublisher captures published member events
type RecordingPublisher struct {
	mu     sync.Mutex
	events []events.MemberEvent
	Err    error
}

func (p *RecordingPublisher) PublishMemberEvent(ctx context.Context, event events.MemberEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.Err
}

// Events returns a copy of the captured events
func (p *RecordingPublisher) Events() []events.MemberEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.MemberEvent(nil), p.events...)
}

// StaticUploads is an UploadChecker backed by a fixed set of filenames
type StaticUploads map[string]bool

func (u StaticUploads) Exists(filename string) bool {
	return u[filename]
}
