package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/teamchat-service/internal/domain"
	"github.com/spec-kit/teamchat-service/internal/repository"
	apperrors "github.com/spec-kit/teamchat-service/pkg/util"
)

// WorkspaceService coordinates workspace lifecycle. Creating a
// workspace also creates the owner membership and a default channel so
// a fresh workspace is immediately usable.
type WorkspaceService struct {
	workspaces  repository.WorkspaceRepository
	memberships repository.MembershipRepository
	channels    repository.ChannelRepository
	logger      *zap.Logger
}

// WorkspaceDependencies bundles repositories for WorkspaceService.
type WorkspaceDependencies struct {
	WorkspaceRepo  repository.WorkspaceRepository
	MembershipRepo repository.MembershipRepository
	ChannelRepo    repository.ChannelRepository
	Logger         *zap.Logger
}

// NewWorkspaceService constructs the service.
func NewWorkspaceService(deps WorkspaceDependencies) *WorkspaceService {
	return &WorkspaceService{
		workspaces:  deps.WorkspaceRepo,
		memberships: deps.MembershipRepo,
		channels:    deps.ChannelRepo,
		logger:      deps.Logger,
	}
}

// Create provisions a workspace with the creator as owner and a
// "general" channel.
func (s *WorkspaceService) Create(ctx context.Context, ownerID, name string) (*domain.Workspace, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("workspace name is required", nil)
	}

	workspace := &domain.Workspace{
		Name:    name,
		Slug:    slugify(name),
		OwnerID: ownerID,
	}
	if err := s.workspaces.Create(ctx, workspace); err != nil {
		return nil, err
	}

	membership := &domain.Membership{
		WorkspaceID: workspace.ID,
		UserID:      ownerID,
		Role:        domain.RoleOwner,
	}
	if err := s.memberships.Create(ctx, membership); err != nil {
		return nil, err
	}

	channel := &domain.Channel{
		WorkspaceID: workspace.ID,
		Name:        "general",
		CreatedBy:   ownerID,
	}
	if err := s.channels.Create(ctx, channel); err != nil {
		return nil, err
	}

	s.logger.Info("workspace created",
		zap.String("workspace_id", workspace.ID),
		zap.String("owner_id", ownerID))
	return workspace, nil
}

// ListForUser returns every workspace the user belongs to.
func (s *WorkspaceService) ListForUser(ctx context.Context, userID string) ([]domain.Workspace, error) {
	memberships, err := s.memberships.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(memberships) == 0 {
		return []domain.Workspace{}, nil
	}

	ids := make([]string, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.WorkspaceID)
	}
	return s.workspaces.ListByIDs(ctx, ids)
}

// Get returns a single workspace by id.
func (s *WorkspaceService) Get(ctx context.Context, id string) (*domain.Workspace, error) {
	return s.workspaces.GetByID(ctx, id)
}

// slugify lowercases the name, collapses non-alphanumerics to hyphens,
// and appends a uuid fragment to keep slugs unique without a retry loop.
func slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	suffix := uuid.NewString()[:8]
	if slug == "" {
		return suffix
	}
	return slug + "-" + suffix
}
