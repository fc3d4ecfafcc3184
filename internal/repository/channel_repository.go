package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/spec-kit/teamchat-service/internal/domain"
	apperrors "github.com/spec-kit/teamchat-service/pkg/util"
)

// ChannelRepository defines persistence access for channels.
type ChannelRepository interface {
	Create(ctx context.Context, channel *domain.Channel) error
	GetByID(ctx context.Context, id string) (*domain.Channel, error)
	// GetByName returns (nil, nil) when the workspace has no channel
	// with that name.
	GetByName(ctx context.Context, workspaceID, name string) (*domain.Channel, error)
	ListByWorkspace(ctx context.Context, workspaceID string) ([]domain.Channel, error)
	Rename(ctx context.Context, workspaceID, channelID, name string) (*domain.Channel, error)
	Delete(ctx context.Context, workspaceID, channelID string) error
}

type channelRepository struct {
	col *mongo.Collection
}

// NewChannelRepository returns a Mongo-backed implementation.
func NewChannelRepository(col *mongo.Collection) ChannelRepository {
	return &channelRepository{col: col}
}

func (r *channelRepository) Create(ctx context.Context, channel *domain.Channel) error {
	now := time.Now().UTC()
	channel.ID = uuid.NewString()
	channel.CreatedAt = now
	channel.UpdatedAt = now

	if _, err := r.col.InsertOne(ctx, channel); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.NewConflict("channel name already exists", nil)
		}
		return err
	}
	return nil
}

func (r *channelRepository) GetByID(ctx context.Context, id string) (*domain.Channel, error) {
	var channel domain.Channel
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&channel); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NewNotFound("channel", nil)
		}
		return nil, err
	}
	return &channel, nil
}

func (r *channelRepository) GetByName(ctx context.Context, workspaceID, name string) (*domain.Channel, error) {
	var channel domain.Channel
	err := r.col.FindOne(ctx, bson.M{"workspaceId": workspaceID, "name": name}).Decode(&channel)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &channel, nil
}

func (r *channelRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]domain.Channel, error) {
	cursor, err := r.col.Find(ctx, bson.M{"workspaceId": workspaceID})
	if err != nil {
		return nil, err
	}
	channels := []domain.Channel{}
	if err := cursor.All(ctx, &channels); err != nil {
		return nil, err
	}
	return channels, nil
}

func (r *channelRepository) Rename(ctx context.Context, workspaceID, channelID, name string) (*domain.Channel, error) {
	update := bson.M{"$set": bson.M{"name": name, "updatedAt": time.Now().UTC()}}
	result, err := r.col.UpdateOne(ctx, bson.M{"_id": channelID, "workspaceId": workspaceID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.NewConflict("channel name already exists", nil)
		}
		return nil, err
	}
	if result.MatchedCount == 0 {
		return nil, apperrors.NewNotFound("channel", nil)
	}
	return r.GetByID(ctx, channelID)
}

func (r *channelRepository) Delete(ctx context.Context, workspaceID, channelID string) error {
	result, err := r.col.DeleteOne(ctx, bson.M{"_id": channelID, "workspaceId": workspaceID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return apperrors.NewNotFound("channel", nil)
	}
	return nil
}
