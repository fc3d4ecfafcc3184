package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spec-kit/teamchat-service/internal/domain"
	apperrors "github.com/spec-kit/teamchat-service/pkg/util"
)

// MembershipRepository defines persistence access for workspace
// memberships. The store enforces one membership per (workspace, user).
type MembershipRepository interface {
	Create(ctx context.Context, membership *domain.Membership) error
	// Get returns (nil, nil) when the user has no membership in the
	// workspace.
	Get(ctx context.Context, workspaceID, userID string) (*domain.Membership, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Membership, error)
	ListByWorkspace(ctx context.Context, workspaceID string, page, limit int) ([]domain.Membership, int64, error)
	CountOwners(ctx context.Context, workspaceID string) (int64, error)
	UpdateRole(ctx context.Context, workspaceID, userID string, role domain.Role) (*domain.Membership, error)
	Delete(ctx context.Context, workspaceID, userID string) error
}

type membershipRepository struct {
	col *mongo.Collection
}

// NewMembershipRepository returns a Mongo-backed implementation.
func NewMembershipRepository(col *mongo.Collection) MembershipRepository {
	return &membershipRepository{col: col}
}

func (r *membershipRepository) Create(ctx context.Context, membership *domain.Membership) error {
	now := time.Now().UTC()
	membership.ID = uuid.NewString()
	membership.CreatedAt = now
	membership.UpdatedAt = now

	if _, err := r.col.InsertOne(ctx, membership); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.NewConflict("already a member of this workspace", nil)
		}
		return err
	}
	return nil
}

func (r *membershipRepository) Get(ctx context.Context, workspaceID, userID string) (*domain.Membership, error) {
	var membership domain.Membership
	err := r.col.FindOne(ctx, bson.M{"workspaceId": workspaceID, "userId": userID}).Decode(&membership)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

func (r *membershipRepository) ListByUser(ctx context.Context, userID string) ([]domain.Membership, error) {
	cursor, err := r.col.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, err
	}
	memberships := []domain.Membership{}
	if err := cursor.All(ctx, &memberships); err != nil {
		return nil, err
	}
	return memberships, nil
}

func (r *membershipRepository) ListByWorkspace(ctx context.Context, workspaceID string, page, limit int) ([]domain.Membership, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	filter := bson.M{"workspaceId": workspaceID}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	memberships := []domain.Membership{}
	if err := cursor.All(ctx, &memberships); err != nil {
		return nil, 0, err
	}
	return memberships, total, nil
}

func (r *membershipRepository) CountOwners(ctx context.Context, workspaceID string) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"workspaceId": workspaceID, "role": domain.RoleOwner})
}

func (r *membershipRepository) UpdateRole(ctx context.Context, workspaceID, userID string, role domain.Role) (*domain.Membership, error) {
	update := bson.M{"$set": bson.M{"role": role, "updatedAt": time.Now().UTC()}}
	result, err := r.col.UpdateOne(ctx, bson.M{"workspaceId": workspaceID, "userId": userID}, update)
	if err != nil {
		return nil, err
	}
	if result.MatchedCount == 0 {
		return nil, apperrors.NewNotFound("membership", nil)
	}
	return r.Get(ctx, workspaceID, userID)
}

func (r *membershipRepository) Delete(ctx context.Context, workspaceID, userID string) error {
	result, err := r.col.DeleteOne(ctx, bson.M{"workspaceId": workspaceID, "userId": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return apperrors.NewNotFound("membership", nil)
	}
	return nil
}
