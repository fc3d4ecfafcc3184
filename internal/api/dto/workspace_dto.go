package dto

import (
	"time"

	"github.com/spec-kit/teamchat-service/internal/domain"
)

// WorkspaceCreateRequest payload for a new workspace.
type WorkspaceCreateRequest struct {
	Name string `json:"name"`
}

// WorkspaceResponse is the public workspace shape.
type WorkspaceResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewWorkspaceResponse maps the domain model.
func NewWorkspaceResponse(w domain.Workspace) WorkspaceResponse {
	return WorkspaceResponse{
		ID:        w.ID,
		Name:      w.Name,
		Slug:      w.Slug,
		OwnerID:   w.OwnerID,
		CreatedAt: w.CreatedAt,
	}
}

// ChannelCreateRequest payload for a new channel.
type ChannelCreateRequest struct {
	Name string `json:"name"`
}

// ChannelRenameRequest payload for renaming a channel.
type ChannelRenameRequest struct {
	Name string `json:"name"`
}

// ChannelResponse is the public channel shape.
type ChannelResponse struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspace_id"`
	Name        string    `json:"name"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewChannelResponse maps the domain model.
func NewChannelResponse(c domain.Channel) ChannelResponse {
	return ChannelResponse{
		ID:          c.ID,
		WorkspaceID: c.WorkspaceID,
		Name:        c.Name,
		CreatedBy:   c.CreatedBy,
		CreatedAt:   c.CreatedAt,
	}
}
