package dto

import (
	"time"

	"github.com/spec-kit/teamchat-service/internal/domain"
	"github.com/spec-kit/teamchat-service/internal/service"
)

// MemberRoleRequest payload for changing a member's role.
type MemberRoleRequest struct {
	Role domain.Role `json:"role"`
}

// MemberResponse joins membership and profile.
type MemberResponse struct {
	UserID   string      `json:"user_id"`
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`
	JoinedAt time.Time   `json:"joined_at"`
}

// NewMemberResponse maps the service view.
func NewMemberResponse(v service.MemberView) MemberResponse {
	return MemberResponse{
		UserID:   v.Membership.UserID,
		Name:     v.Name,
		Email:    v.Email,
		Role:     v.Membership.Role,
		JoinedAt: v.Membership.CreatedAt,
	}
}

// InviteCreateRequest payload for inviting an email to a workspace.
type InviteCreateRequest struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// InviteRevokeRequest withdraws a pending invite by email.
type InviteRevokeRequest struct {
	Email string `json:"email"`
}

// InviteResponse is the public invite shape. The token is only
// returned to the inviter at creation time.
type InviteResponse struct {
	ID        string              `json:"id"`
	Email     string              `json:"email"`
	Role      domain.Role         `json:"role"`
	Status    domain.InviteStatus `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
}

// NewInviteResponse maps the domain model.
func NewInviteResponse(i domain.Invite) InviteResponse {
	return InviteResponse{
		ID:        i.ID,
		Email:     i.Email,
		Role:      i.Role,
		Status:    i.Status,
		CreatedAt: i.CreatedAt,
	}
}
