package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gov-dx-sandbox/team-roster/internal/apperrors"
	"github.com/gov-dx-sandbox/team-roster/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"
)

const membersCollection = "members"

// memberDocument is the BSON shape of a member
type memberDocument struct {
	ID           primitive.ObjectID `bson:"_id"`
	Name         string             `bson:"name"`
	Role         string             `bson:"role"`
	Email        string             `bson:"email"`
	Phone        string             `bson:"phone,omitempty"`
	Bio          string             `bson:"bio,omitempty"`
	ProfileImage string             `bson:"profileImage"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

func (d memberDocument) toModel() models.Member {
	return models.Member{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Role:         d.Role,
		Email:        d.Email,
		Phone:        d.Phone,
		Bio:          d.Bio,
		ProfileImage: d.ProfileImage,
		BaseModel: models.BaseModel{
			CreatedAt: d.CreatedAt.UTC(),
			UpdatedAt: d.UpdatedAt.UTC(),
		},
	}
}

// MongoRepository implements MemberRepository on a MongoDB collection
type MongoRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoRepository creates a repository over the members collection of db
func NewMongoRepository(client *mongo.Client, db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		client:     client,
		collection: db.Collection(membersCollection),
	}
}

// EnsureSchema creates the unique email index and the createdAt sort index
func (r *MongoRepository) EnsureSchema(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_1"),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName("createdAt_-1__id_-1"),
		},
	}
	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create member indexes: %w", translateMongoError("ensure indexes", err))
	}
	return nil
}

// ListMembers returns all members sorted by createdAt descending
func (r *MongoRepository) ListMembers(ctx context.Context) ([]models.Member, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, translateMongoError("list members", err)
	}
	defer cursor.Close(ctx)

	var docs []memberDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, translateMongoError("list members", err)
	}

	members := make([]models.Member, 0, len(docs))
	for _, doc := range docs {
		members = append(members, doc.toModel())
	}
	return members, nil
}

// GetMember returns the member with the given hex ObjectID
func (r *MongoRepository) GetMember(ctx context.Context, id string) (*models.Member, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.NotFound(memberNotFound)
	}

	var doc memberDocument
	err = r.collection.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound(memberNotFound)
		}
		return nil, translateMongoError("get member", err)
	}

	member := doc.toModel()
	return &member, nil
}

// CreateMember inserts a member document; the unique email index rejects duplicates atomically
func (r *MongoRepository) CreateMember(ctx context.Context, member *models.Member) (*models.Member, error) {
	if member.ID == "" {
		member.ID = models.NewMemberID()
	}
	oid, err := primitive.ObjectIDFromHex(member.ID)
	if err != nil {
		return nil, apperrors.Unknown("create member", fmt.Errorf("invalid member id %q: %w", member.ID, err))
	}

	doc := memberDocument{
		ID:           oid,
		Name:         member.Name,
		Role:         member.Role,
		Email:        member.Email,
		Phone:        member.Phone,
		Bio:          member.Bio,
		ProfileImage: member.ProfileImage,
		CreatedAt:    member.CreatedAt,
		UpdatedAt:    member.UpdatedAt,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return nil, translateMongoError("create member", err)
	}
	return member, nil
}

// Ping checks the primary is reachable
func (r *MongoRepository) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx, readpref.Primary()); err != nil {
		return apperrors.Unavailable("ping", err)
	}
	return nil
}

// Close disconnects the client
func (r *MongoRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func translateMongoError(operation string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.Duplicate(duplicateEmailText, err)
	}
	var selectionErr topology.ServerSelectionError
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) ||
		errors.Is(err, mongo.ErrClientDisconnected) || errors.As(err, &selectionErr) {
		return apperrors.Unavailable(operation, err)
	}
	return apperrors.Unknown(operation, err)
}
