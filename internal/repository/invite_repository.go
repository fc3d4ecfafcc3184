package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/spec-kit/teamchat-service/internal/domain"
	apperrors "github.com/spec-kit/teamchat-service/pkg/util"
)

// InviteRepository defines persistence access for workspace invites.
type InviteRepository interface {
	Create(ctx context.Context, invite *domain.Invite) error
	// GetByToken returns (nil, nil) when no invite carries the token.
	GetByToken(ctx context.Context, token string) (*domain.Invite, error)
	// GetPending returns (nil, nil) when no unaccepted invite exists
	// for the email in the workspace.
	GetPending(ctx context.Context, workspaceID, email string) (*domain.Invite, error)
	UpdateRole(ctx context.Context, id string, role domain.Role) error
	MarkAccepted(ctx context.Context, id string) error
	MarkSendResult(ctx context.Context, id string, status domain.InviteStatus) error
	DeletePending(ctx context.Context, workspaceID, email string) error
}

type inviteRepository struct {
	col *mongo.Collection
}

// NewInviteRepository returns a Mongo-backed implementation.
func NewInviteRepository(col *mongo.Collection) InviteRepository {
	return &inviteRepository{col: col}
}

func (r *inviteRepository) Create(ctx context.Context, invite *domain.Invite) error {
	now := time.Now().UTC()
	invite.ID = uuid.NewString()
	invite.Email = strings.ToLower(invite.Email)
	invite.Status = domain.InviteStatusPending
	invite.CreatedAt = now
	invite.UpdatedAt = now

	if _, err := r.col.InsertOne(ctx, invite); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.NewConflict("invite already exists for this email", nil)
		}
		return err
	}
	return nil
}

func (r *inviteRepository) GetByToken(ctx context.Context, token string) (*domain.Invite, error) {
	var invite domain.Invite
	err := r.col.FindOne(ctx, bson.M{"token": token}).Decode(&invite)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

func (r *inviteRepository) GetPending(ctx context.Context, workspaceID, email string) (*domain.Invite, error) {
	var invite domain.Invite
	filter := bson.M{"workspaceId": workspaceID, "email": strings.ToLower(email), "accepted": false}
	err := r.col.FindOne(ctx, filter).Decode(&invite)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

func (r *inviteRepository) UpdateRole(ctx context.Context, id string, role domain.Role) error {
	update := bson.M{"$set": bson.M{"role": role, "updatedAt": time.Now().UTC()}}
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

func (r *inviteRepository) MarkAccepted(ctx context.Context, id string) error {
	update := bson.M{"$set": bson.M{
		"accepted":  true,
		"status":    domain.InviteStatusAccepted,
		"updatedAt": time.Now().UTC(),
	}}
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

func (r *inviteRepository) MarkSendResult(ctx context.Context, id string, status domain.InviteStatus) error {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{"status": status, "lastSentAt": now, "updatedAt": now},
		"$inc": bson.M{"sendCount": 1},
	}
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

func (r *inviteRepository) DeletePending(ctx context.Context, workspaceID, email string) error {
	filter := bson.M{"workspaceId": workspaceID, "email": strings.ToLower(email), "accepted": false}
	_, err := r.col.DeleteMany(ctx, filter)
	return err
}
