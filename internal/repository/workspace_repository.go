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

// WorkspaceRepository defines persistence access for workspaces.
type WorkspaceRepository interface {
	Create(ctx context.Context, workspace *domain.Workspace) error
	GetByID(ctx context.Context, id string) (*domain.Workspace, error)
	ListByIDs(ctx context.Context, ids []string) ([]domain.Workspace, error)
}

type workspaceRepository struct {
	col *mongo.Collection
}

// NewWorkspaceRepository returns a Mongo-backed implementation.
func NewWorkspaceRepository(col *mongo.Collection) WorkspaceRepository {
	return &workspaceRepository{col: col}
}

func (r *workspaceRepository) Create(ctx context.Context, workspace *domain.Workspace) error {
	now := time.Now().UTC()
	workspace.ID = uuid.NewString()
	workspace.CreatedAt = now
	workspace.UpdatedAt = now

	if _, err := r.col.InsertOne(ctx, workspace); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.NewConflict("workspace slug conflict, try a different name", nil)
		}
		return err
	}
	return nil
}

func (r *workspaceRepository) GetByID(ctx context.Context, id string) (*domain.Workspace, error) {
	var workspace domain.Workspace
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&workspace); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NewNotFound("workspace", nil)
		}
		return nil, err
	}
	return &workspace, nil
}

func (r *workspaceRepository) ListByIDs(ctx context.Context, ids []string) ([]domain.Workspace, error) {
	if len(ids) == 0 {
		return []domain.Workspace{}, nil
	}
	cursor, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var workspaces []domain.Workspace
	if err := cursor.All(ctx, &workspaces); err != nil {
		return nil, err
	}
	return workspaces, nil
}
