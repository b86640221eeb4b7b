package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gov-dx-sandbox/team-roster/internal/models"
	"github.com/redis/go-redis/v9"
)

// EventMemberCreated is emitted after a member is persisted
const EventMemberCreated = "member.created"

// MemberEvent describes a change to the roster
type MemberEvent struct {
	Type         string
	MemberID     string
	Name         string
	Role         string
	Email        string
	ProfileImage string
	OccurredAt   time.Time
}

// NewMemberCreated builds the event for a freshly created member
func NewMemberCreated(member *models.Member) MemberEvent {
	return MemberEvent{
		Type:         EventMemberCreated,
		MemberID:     member.ID,
		Name:         member.Name,
		Role:         member.Role,
		Email:        member.Email,
		ProfileImage: member.ProfileImage,
		OccurredAt:   member.CreatedAt,
	}
}

// Publisher delivers member events to downstream consumers
type Publisher interface {
	PublishMemberEvent(ctx context.Context, event MemberEvent) error
}

// NewPublisher returns a Redis stream publisher, or a no-op publisher when client is nil
func NewPublisher(client *redis.Client, stream string) Publisher {
	if client == nil {
		slog.Info("Redis not configured, member events are disabled")
		return Discard
	}
	return &RedisPublisher{client: client, stream: stream}
}

// Discard is a Publisher that drops every event
var Discard Publisher = noOpPublisher{}

type noOpPublisher struct{}

func (noOpPublisher) PublishMemberEvent(ctx context.Context, event MemberEvent) error {
	return nil
}

// RedisPublisher appends member events to a Redis stream with XADD
type RedisPublisher struct {
	client *redis.Client
	stream string
}

// PublishMemberEvent adds the event to the stream using an auto-generated entry ID
func (p *RedisPublisher) PublishMemberEvent(ctx context.Context, event MemberEvent) error {
	occurred := event.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now()
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"type":         event.Type,
			"memberId":     event.MemberID,
			"name":         event.Name,
			"role":         event.Role,
			"email":        event.Email,
			"profileImage": event.ProfileImage,
			"occurredAt":   occurred.UTC().Format(time.RFC3339Nano),
		},
	}

	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("failed to XADD to stream %s: %w", p.stream, err)
	}
	return nil
}
