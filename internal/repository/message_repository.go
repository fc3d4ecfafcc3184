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

// MessageRepository defines persistence access for messages.
type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) error
	GetByID(ctx context.Context, id string) (*domain.Message, error)
	// ListByChannel returns top-level messages newest first, up to
	// limit, optionally only those created before the cursor.
	ListByChannel(ctx context.Context, channelID string, before *time.Time, limit int) ([]domain.Message, error)
	UpdateBody(ctx context.Context, id, body string) (*domain.Message, error)
	Delete(ctx context.Context, id string) error
	DeleteByChannel(ctx context.Context, channelID string) error
}

type messageRepository struct {
	col *mongo.Collection
}

// NewMessageRepository returns a Mongo-backed implementation.
func NewMessageRepository(col *mongo.Collection) MessageRepository {
	return &messageRepository{col: col}
}

func (r *messageRepository) Create(ctx context.Context, message *domain.Message) error {
	now := time.Now().UTC()
	message.ID = uuid.NewString()
	message.CreatedAt = now
	message.UpdatedAt = now
	_, err := r.col.InsertOne(ctx, message)
	return err
}

func (r *messageRepository) GetByID(ctx context.Context, id string) (*domain.Message, error) {
	var message domain.Message
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&message); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NewNotFound("message", nil)
		}
		return nil, err
	}
	return &message, nil
}

func (r *messageRepository) ListByChannel(ctx context.Context, channelID string, before *time.Time, limit int) ([]domain.Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	filter := bson.M{"channelId": channelID, "parentMessageId": nil}
	if before != nil {
		filter["createdAt"] = bson.M{"$lt": *before}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	messages := []domain.Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *messageRepository) UpdateBody(ctx context.Context, id, body string) (*domain.Message, error) {
	update := bson.M{"$set": bson.M{"body": body, "updatedAt": time.Now().UTC()}}
	result, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return nil, err
	}
	if result.MatchedCount == 0 {
		return nil, apperrors.NewNotFound("message", nil)
	}
	return r.GetByID(ctx, id)
}

func (r *messageRepository) Delete(ctx context.Context, id string) error {
	result, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return apperrors.NewNotFound("message", nil)
	}
	return nil
}

func (r *messageRepository) DeleteByChannel(ctx context.Context, channelID string) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"channelId": channelID})
	return err
}
