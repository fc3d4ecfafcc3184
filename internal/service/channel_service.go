package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/teamchat-service/internal/domain"
	"github.com/spec-kit/teamchat-service/internal/repository"
	apperrors "github.com/spec-kit/teamchat-service/pkg/util"
)

// ChannelService coordinates channel lifecycle within a workspace.
type ChannelService struct {
	channels repository.ChannelRepository
	messages repository.MessageRepository
	logger   *zap.Logger
}

// ChannelDependencies bundles repositories for ChannelService.
type ChannelDependencies struct {
	ChannelRepo repository.ChannelRepository
	MessageRepo repository.MessageRepository
	Logger      *zap.Logger
}

// NewChannelService constructs the service.
func NewChannelService(deps ChannelDependencies) *ChannelService {
	return &ChannelService{
		channels: deps.ChannelRepo,
		messages: deps.MessageRepo,
		logger:   deps.Logger,
	}
}

// Create adds a channel with a workspace-unique name.
func (s *ChannelService) Create(ctx context.Context, workspaceID, creatorID, name string) (*domain.Channel, error) {
	name, err := normalizeChannelName(name)
	if err != nil {
		return nil, err
	}

	existing, err := s.channels.GetByName(ctx, workspaceID, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.NewConflict("channel name already in use", map[string]any{"name": name})
	}

	channel := &domain.Channel{
		WorkspaceID: workspaceID,
		Name:        name,
		CreatedBy:   creatorID,
	}
	if err := s.channels.Create(ctx, channel); err != nil {
		return nil, err
	}
	s.logger.Info("channel created",
		zap.String("workspace_id", workspaceID),
		zap.String("channel_id", channel.ID))
	return channel, nil
}

// List returns the workspace's channels.
func (s *ChannelService) List(ctx context.Context, workspaceID string) ([]domain.Channel, error) {
	return s.channels.ListByWorkspace(ctx, workspaceID)
}

// Get returns a single channel by id.
func (s *ChannelService) Get(ctx context.Context, id string) (*domain.Channel, error) {
	return s.channels.GetByID(ctx, id)
}

// Rename changes the channel name, keeping per-workspace uniqueness.
func (s *ChannelService) Rename(ctx context.Context, workspaceID, channelID, name string) (*domain.Channel, error) {
	name, err := normalizeChannelName(name)
	if err != nil {
		return nil, err
	}

	existing, err := s.channels.GetByName(ctx, workspaceID, name)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.ID != channelID {
		return nil, apperrors.NewConflict("channel name already in use", map[string]any{"name": name})
	}

	return s.channels.Rename(ctx, workspaceID, channelID, name)
}

// Delete removes the channel and all of its messages.
func (s *ChannelService) Delete(ctx context.Context, workspaceID, channelID string) error {
	if err := s.messages.DeleteByChannel(ctx, channelID); err != nil {
		return err
	}
	if err := s.channels.Delete(ctx, workspaceID, channelID); err != nil {
		return err
	}
	s.logger.Info("channel deleted",
		zap.String("workspace_id", workspaceID),
		zap.String("channel_id", channelID))
	return nil
}

func normalizeChannelName(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || len(name) > 64 {
		return "", apperrors.NewValidationError("channel name must be 1-64 characters", nil)
	}
	return name, nil
}
