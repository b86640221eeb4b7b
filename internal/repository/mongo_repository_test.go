package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gov-dx-sandbox/team-roster/internal/apperrors"
	"github.com/gov-dx-sandbox/team-roster/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func memberBSON(oid primitive.ObjectID, email string, createdAt time.Time) bson.D {
	return bson.D{
		{Key: "_id", Value: oid},
		{Key: "name", Value: "Ada Lovelace"},
		{Key: "role", Value: "Engineer"},
		{Key: "email", Value: email},
		{Key: "profileImage", Value: "1714557600000-ada.png"},
		{Key: "createdAt", Value: primitive.NewDateTimeFromTime(createdAt)},
		{Key: "updatedAt", Value: primitive.NewDateTimeFromTime(createdAt)},
	}
}

func TestMongoRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("ensure schema", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Client, mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		assert.NoError(mt, repo.EnsureSchema(ctx))
	})

	mt.Run("create member", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Client, mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		member := newTestMember("ada@example.com", time.Now().UTC())
		created, err := repo.CreateMember(ctx, member)
		require.NoError(mt, err)
		assert.Equal(mt, member.ID, created.ID)
	})

	mt.Run("create member duplicate email", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Client, mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: test.members index: email_1",
		}))

		_, err := repo.CreateMember(ctx, newTestMember("ada@example.com", time.Now().UTC()))
		tagged, ok := apperrors.As(err)
		require.True(mt, ok)
		assert.Equal(mt, apperrors.KindDuplicate, tagged.Kind)
		assert.Equal(mt, "Member with this email already exists", tagged.Message)
	})

	mt.Run("get member", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Client, mt.DB)
		oid := primitive.NewObjectID()
		created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
		ns := mt.DB.Name() + "." + membersCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, memberBSON(oid, "ada@example.com", created)))

		member, err := repo.GetMember(ctx, oid.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, oid.Hex(), member.ID)
		assert.Equal(mt, "ada@example.com", member.Email)
		assert.True(mt, created.Equal(member.CreatedAt))
	})

	mt.Run("get member unknown id", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Client, mt.DB)
		ns := mt.DB.Name() + "." + membersCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		member, err := repo.GetMember(ctx, primitive.NewObjectID().Hex())
		assert.Nil(mt, member)
		assert.Equal(mt, apperrors.KindNotFound, apperrors.KindOf(err))
	})

	mt.Run("get member malformed id", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Client, mt.DB)

		member, err := repo.GetMember(ctx, "12345")
		assert.Nil(mt, member)
		assert.Equal(mt, apperrors.KindNotFound, apperrors.KindOf(err))
	})

	mt.Run("list members", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Client, mt.DB)
		ns := mt.DB.Name() + "." + membersCollection
		newer := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
		older := newer.Add(-24 * time.Hour)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			memberBSON(primitive.NewObjectID(), "new@example.com", newer),
			memberBSON(primitive.NewObjectID(), "old@example.com", older),
		))

		members, err := repo.ListMembers(ctx)
		require.NoError(mt, err)
		require.Len(mt, members, 2)
		assert.Equal(mt, "new@example.com", members[0].Email)
		assert.Equal(mt, "old@example.com", members[1].Email)
	})

	mt.Run("list members empty", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Client, mt.DB)
		ns := mt.DB.Name() + "." + membersCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		members, err := repo.ListMembers(ctx)
		require.NoError(mt, err)
		assert.NotNil(mt, members)
		assert.Empty(mt, members)
	})

	mt.Run("list members command error", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.Client, mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "bad sort",
		}))

		_, err := repo.ListMembers(ctx)
		assert.Equal(mt, apperrors.KindUnknown, apperrors.KindOf(err))
	})
}

func TestTranslateMongoError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperrors.Kind
	}{
		{
			name: "duplicate key write exception",
			err:  mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "dup"}}},
			want: apperrors.KindDuplicate,
		},
		{
			name: "network error label",
			err:  mongo.CommandError{Code: 6, Message: "host unreachable", Labels: []string{"NetworkError"}},
			want: apperrors.KindUnavailable,
		},
		{
			name: "deadline exceeded",
			err:  context.DeadlineExceeded,
			want: apperrors.KindUnavailable,
		},
		{
			name: "client disconnected",
			err:  mongo.ErrClientDisconnected,
			want: apperrors.KindUnavailable,
		},
		{
			name: "anything else",
			err:  errors.New("boom"),
			want: apperrors.KindUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apperrors.KindOf(translateMongoError("op", tt.err)))
		})
	}
}

func TestMemberDocument_ToModel(t *testing.T) {
	oid := primitive.NewObjectID()
	local := time.Date(2024, 5, 1, 15, 30, 0, 0, time.FixedZone("IST", 19800))

	member := memberDocument{ID: oid, Name: "Ada", Email: "ada@example.com", CreatedAt: local, UpdatedAt: local}.toModel()

	assert.Equal(t, oid.Hex(), member.ID)
	assert.Equal(t, time.UTC, member.CreatedAt.Location())
	assert.True(t, models.IsValidMemberID(member.ID))
}
