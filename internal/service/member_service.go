package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/teamchat-service/internal/domain"
	"github.com/spec-kit/teamchat-service/internal/repository"
	apperrors "github.com/spec-kit/teamchat-service/pkg/util"
)

// MemberView joins a membership with the user's public profile.
type MemberView struct {
	Membership domain.Membership
	Name       string
	Email      string
}

// MemberService coordinates workspace membership management. Every
// mutation that touches an owner re-checks the owner count so the
// workspace cannot lose its last owner.
type MemberService struct {
	memberships repository.MembershipRepository
	users       repository.UserRepository
	logger      *zap.Logger
}

// MemberDependencies bundles repositories for MemberService.
type MemberDependencies struct {
	MembershipRepo repository.MembershipRepository
	UserRepo       repository.UserRepository
	Logger         *zap.Logger
}

// NewMemberService constructs the service.
func NewMemberService(deps MemberDependencies) *MemberService {
	return &MemberService{
		memberships: deps.MembershipRepo,
		users:       deps.UserRepo,
		logger:      deps.Logger,
	}
}

// List returns a page of members with their profiles plus the total
// member count.
func (s *MemberService) List(ctx context.Context, workspaceID string, page, limit int) ([]MemberView, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	memberships, total, err := s.memberships.ListByWorkspace(ctx, workspaceID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	views := make([]MemberView, 0, len(memberships))
	for _, m := range memberships {
		view := MemberView{Membership: m}
		user, err := s.users.GetByID(ctx, m.UserID)
		if err == nil {
			view.Name = user.Name
			view.Email = user.Email
		}
		views = append(views, view)
	}
	return views, total, nil
}

// UpdateRole changes a member's role. Granting or revoking the owner
// role takes an owner actor; other changes take admin or above. The
// last owner can never be demoted.
func (s *MemberService) UpdateRole(ctx context.Context, actor domain.Membership, targetUserID string, role domain.Role) (*domain.Membership, error) {
	if !role.Valid() {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": role})
	}
	if actor.UserID == targetUserID {
		return nil, apperrors.NewForbidden("cannot change your own role")
	}

	target, err := s.memberships.Get(ctx, actor.WorkspaceID, targetUserID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, apperrors.NewNotFound("membership", nil)
	}

	ownerInvolved := role == domain.RoleOwner || target.Role == domain.RoleOwner
	if ownerInvolved && actor.Role != domain.RoleOwner {
		return nil, apperrors.NewForbidden("only an owner can grant or revoke the owner role")
	}

	if target.Role == domain.RoleOwner && role != domain.RoleOwner {
		owners, err := s.memberships.CountOwners(ctx, actor.WorkspaceID)
		if err != nil {
			return nil, err
		}
		if owners <= 1 {
			return nil, apperrors.NewConflict("workspace must keep at least one owner", nil)
		}
	}

	updated, err := s.memberships.UpdateRole(ctx, actor.WorkspaceID, targetUserID, role)
	if err != nil {
		return nil, err
	}
	s.logger.Info("member role updated",
		zap.String("workspace_id", actor.WorkspaceID),
		zap.String("user_id", targetUserID),
		zap.String("role", string(role)))
	return updated, nil
}

// Remove deletes a membership. A member may always remove themselves;
// removing someone else takes a strictly higher role. The last owner
// cannot leave or be removed.
func (s *MemberService) Remove(ctx context.Context, actor domain.Membership, targetUserID string) error {
	target, err := s.memberships.Get(ctx, actor.WorkspaceID, targetUserID)
	if err != nil {
		return err
	}
	if target == nil {
		return apperrors.NewNotFound("membership", nil)
	}

	if actor.UserID != targetUserID && actor.Role.Rank() <= target.Role.Rank() {
		return apperrors.NewForbidden("not allowed to remove this member")
	}

	if target.Role == domain.RoleOwner {
		owners, err := s.memberships.CountOwners(ctx, actor.WorkspaceID)
		if err != nil {
			return err
		}
		if owners <= 1 {
			return apperrors.NewConflict("workspace must keep at least one owner", nil)
		}
	}

	if err := s.memberships.Delete(ctx, actor.WorkspaceID, targetUserID); err != nil {
		return err
	}
	s.logger.Info("member removed",
		zap.String("workspace_id", actor.WorkspaceID),
		zap.String("user_id", targetUserID))
	return nil
}
