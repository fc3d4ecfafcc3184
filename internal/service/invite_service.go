package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/teamchat-service/internal/domain"
	"github.com/spec-kit/teamchat-service/internal/events"
	"github.com/spec-kit/teamchat-service/internal/repository"
	apperrors "github.com/spec-kit/teamchat-service/pkg/util"
)

// InviteService coordinates workspace invitations.
type InviteService struct {
	invites     repository.InviteRepository
	memberships repository.MembershipRepository
	workspaces  repository.WorkspaceRepository
	users       repository.UserRepository
	dispatcher  events.Dispatcher
	logger      *zap.Logger
}

// InviteDependencies bundles collaborators for InviteService.
type InviteDependencies struct {
	InviteRepo     repository.InviteRepository
	MembershipRepo repository.MembershipRepository
	WorkspaceRepo  repository.WorkspaceRepository
	UserRepo       repository.UserRepository
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
}

// NewInviteService constructs the service.
func NewInviteService(deps InviteDependencies) *InviteService {
	return &InviteService{
		invites:     deps.InviteRepo,
		memberships: deps.MembershipRepo,
		workspaces:  deps.WorkspaceRepo,
		users:       deps.UserRepo,
		dispatcher:  deps.Dispatcher,
		logger:      deps.Logger,
	}
}

// Create issues an invite, or re-sends the existing pending invite for
// the same email. Re-inviting with a different role updates the pending
// invite's role instead of stacking a second one.
func (s *InviteService) Create(ctx context.Context, actor domain.Membership, inviter domain.Identity, email string, role domain.Role) (*domain.Invite, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperrors.NewValidationError("a valid email is required", nil)
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": role})
	}
	if role == domain.RoleOwner && actor.Role != domain.RoleOwner {
		return nil, apperrors.NewForbidden("only an owner can invite another owner")
	}

	if user, err := s.users.GetByEmail(ctx, email); err != nil {
		return nil, err
	} else if user != nil {
		existing, err := s.memberships.Get(ctx, actor.WorkspaceID, user.ID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, apperrors.NewConflict("user is already a member", map[string]any{"email": email})
		}
	}

	invite, err := s.invites.GetPending(ctx, actor.WorkspaceID, email)
	if err != nil {
		return nil, err
	}
	if invite != nil {
		if invite.Role != role {
			if err := s.invites.UpdateRole(ctx, invite.ID, role); err != nil {
				return nil, err
			}
			invite.Role = role
		}
	} else {
		invite = &domain.Invite{
			WorkspaceID: actor.WorkspaceID,
			InviterID:   inviter.ID,
			Email:       email,
			Role:        role,
			Token:       uuid.NewString(),
			Status:      domain.InviteStatusPending,
		}
		if err := s.invites.Create(ctx, invite); err != nil {
			return nil, err
		}
	}

	s.publishCreated(ctx, invite, inviter)
	return invite, nil
}

// Accept redeems an invite token for the authenticated user. The
// invite is bound to its email: a different account cannot redeem it.
func (s *InviteService) Accept(ctx context.Context, identity domain.Identity, token string) (*domain.Membership, error) {
	invite, err := s.invites.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if invite == nil {
		return nil, apperrors.NewNotFound("invite", nil)
	}
	if invite.Accepted {
		return nil, apperrors.NewConflict("invite already accepted", nil)
	}
	if !strings.EqualFold(invite.Email, identity.Email) {
		return nil, apperrors.NewForbidden("invite was issued to a different email")
	}

	membership := &domain.Membership{
		WorkspaceID: invite.WorkspaceID,
		UserID:      identity.ID,
		Role:        invite.Role,
	}
	if err := s.memberships.Create(ctx, membership); err != nil {
		return nil, err
	}
	if err := s.invites.MarkAccepted(ctx, invite.ID); err != nil {
		return nil, err
	}

	s.logger.Info("invite accepted",
		zap.String("workspace_id", invite.WorkspaceID),
		zap.String("user_id", identity.ID))
	return membership, nil
}

// Revoke withdraws any pending invite for the email.
func (s *InviteService) Revoke(ctx context.Context, workspaceID, email string) error {
	return s.invites.DeletePending(ctx, workspaceID, strings.ToLower(strings.TrimSpace(email)))
}

func (s *InviteService) publishCreated(ctx context.Context, invite *domain.Invite, inviter domain.Identity) {
	workspaceName := invite.WorkspaceID
	if workspace, err := s.workspaces.GetByID(ctx, invite.WorkspaceID); err == nil {
		workspaceName = workspace.Name
	}

	err := s.dispatcher.Publish(ctx, events.Event{
		ID:          uuid.NewString(),
		Type:        events.EventInviteCreated,
		WorkspaceID: invite.WorkspaceID,
		ActorID:     inviter.ID,
		Timestamp:   time.Now().UTC(),
		Payload: events.InviteCreatedPayload{
			InviteID:      invite.ID,
			Email:         invite.Email,
			Role:          invite.Role,
			Token:         invite.Token,
			WorkspaceName: workspaceName,
			InviterName:   inviter.Name,
		},
	})
	if err != nil {
		s.logger.Warn("event publish failed",
			zap.String("event_type", string(events.EventInviteCreated)),
			zap.Error(err))
	}
}
