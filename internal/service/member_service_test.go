package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/teamchat-service/internal/domain"
	apperrors "github.com/spec-kit/teamchat-service/pkg/util"
)

type fakeMembershipRepo struct {
	byKey map[string]*domain.Membership
}

func newFakeMembershipRepo() *fakeMembershipRepo {
	return &fakeMembershipRepo{byKey: map[string]*domain.Membership{}}
}

func membershipKey(workspaceID, userID string) string {
	return workspaceID + "/" + userID
}

func (r *fakeMembershipRepo) Create(_ context.Context, m *domain.Membership) error {
	key := membershipKey(m.WorkspaceID, m.UserID)
	if _, ok := r.byKey[key]; ok {
		return apperrors.NewConflict("already a member", nil)
	}
	m.ID = uuid.NewString()
	m.CreatedAt = time.Now()
	copied := *m
	r.byKey[key] = &copied
	return nil
}

func (r *fakeMembershipRepo) Get(_ context.Context, workspaceID, userID string) (*domain.Membership, error) {
	m, ok := r.byKey[membershipKey(workspaceID, userID)]
	if !ok {
		return nil, nil
	}
	copied := *m
	return &copied, nil
}

func (r *fakeMembershipRepo) ListByUser(_ context.Context, userID string) ([]domain.Membership, error) {
	var out []domain.Membership
	for _, m := range r.byKey {
		if m.UserID == userID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakeMembershipRepo) ListByWorkspace(_ context.Context, workspaceID string, _, _ int) ([]domain.Membership, int64, error) {
	var out []domain.Membership
	for _, m := range r.byKey {
		if m.WorkspaceID == workspaceID {
			out = append(out, *m)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeMembershipRepo) CountOwners(_ context.Context, workspaceID string) (int64, error) {
	var n int64
	for _, m := range r.byKey {
		if m.WorkspaceID == workspaceID && m.Role == domain.RoleOwner {
			n++
		}
	}
	return n, nil
}

func (r *fakeMembershipRepo) UpdateRole(_ context.Context, workspaceID, userID string, role domain.Role) (*domain.Membership, error) {
	m, ok := r.byKey[membershipKey(workspaceID, userID)]
	if !ok {
		return nil, apperrors.NewNotFound("membership", nil)
	}
	m.Role = role
	copied := *m
	return &copied, nil
}

func (r *fakeMembershipRepo) Delete(_ context.Context, workspaceID, userID string) error {
	key := membershipKey(workspaceID, userID)
	if _, ok := r.byKey[key]; !ok {
		return apperrors.NewNotFound("membership", nil)
	}
	delete(r.byKey, key)
	return nil
}

func seedMember(t *testing.T, repo *fakeMembershipRepo, workspaceID, userID string, role domain.Role) domain.Membership {
	t.Helper()
	m := &domain.Membership{WorkspaceID: workspaceID, UserID: userID, Role: role}
	require.NoError(t, repo.Create(context.Background(), m))
	return *m
}

func newMemberFixture(t *testing.T) (*MemberService, *fakeMembershipRepo) {
	t.Helper()
	repo := newFakeMembershipRepo()
	svc := NewMemberService(MemberDependencies{
		MembershipRepo: repo,
		UserRepo:       newFakeUserRepo(),
		Logger:         zap.NewNop(),
	})
	return svc, repo
}

func TestUpdateRolePromotesMember(t *testing.T) {
	svc, repo := newMemberFixture(t)
	ctx := context.Background()

	owner := seedMember(t, repo, "ws", "owner", domain.RoleOwner)
	seedMember(t, repo, "ws", "bob", domain.RoleMember)

	updated, err := svc.UpdateRole(ctx, owner, "bob", domain.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, updated.Role)
}

func TestUpdateRoleOwnerChangesNeedOwner(t *testing.T) {
	svc, repo := newMemberFixture(t)
	ctx := context.Background()

	seedMember(t, repo, "ws", "owner", domain.RoleOwner)
	admin := seedMember(t, repo, "ws", "admin", domain.RoleAdmin)
	seedMember(t, repo, "ws", "bob", domain.RoleMember)

	_, err := svc.UpdateRole(ctx, admin, "bob", domain.RoleOwner)
	require.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)

	_, err = svc.UpdateRole(ctx, admin, "owner", domain.RoleAdmin)
	require.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
}

func TestUpdateRoleKeepsLastOwner(t *testing.T) {
	svc, repo := newMemberFixture(t)
	ctx := context.Background()

	ownerA := seedMember(t, repo, "ws", "owner-a", domain.RoleOwner)
	ownerB := seedMember(t, repo, "ws", "owner-b", domain.RoleOwner)

	// With two owners a demotion goes through.
	_, err := svc.UpdateRole(ctx, ownerA, "owner-b", domain.RoleAdmin)
	require.NoError(t, err)

	// Demoting the last owner does not.
	_, err = svc.UpdateRole(ctx, ownerB, "owner-a", domain.RoleMember)
	require.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
}

func TestUpdateRoleRejectsSelfChange(t *testing.T) {
	svc, repo := newMemberFixture(t)
	ctx := context.Background()

	owner := seedMember(t, repo, "ws", "owner", domain.RoleOwner)

	_, err := svc.UpdateRole(ctx, owner, "owner", domain.RoleAdmin)
	require.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
}

func TestRemoveMember(t *testing.T) {
	svc, repo := newMemberFixture(t)
	ctx := context.Background()

	admin := seedMember(t, repo, "ws", "admin", domain.RoleAdmin)
	seedMember(t, repo, "ws", "bob", domain.RoleMember)

	require.NoError(t, svc.Remove(ctx, admin, "bob"))

	got, err := repo.Get(ctx, "ws", "bob")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestRemoveNeedsHigherRole(t *testing.T) {
	svc, repo := newMemberFixture(t)
	ctx := context.Background()

	adminA := seedMember(t, repo, "ws", "admin-a", domain.RoleAdmin)
	seedMember(t, repo, "ws", "admin-b", domain.RoleAdmin)
	member := seedMember(t, repo, "ws", "bob", domain.RoleMember)

	err := svc.Remove(ctx, adminA, "admin-b")
	require.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)

	err = svc.Remove(ctx, member, "admin-a")
	require.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
}

func TestMemberMayLeave(t *testing.T) {
	svc, repo := newMemberFixture(t)
	ctx := context.Background()

	seedMember(t, repo, "ws", "owner", domain.RoleOwner)
	bob := seedMember(t, repo, "ws", "bob", domain.RoleMember)

	require.NoError(t, svc.Remove(ctx, bob, "bob"))
}

func TestLastOwnerCannotLeave(t *testing.T) {
	svc, repo := newMemberFixture(t)
	ctx := context.Background()

	owner := seedMember(t, repo, "ws", "owner", domain.RoleOwner)

	err := svc.Remove(ctx, owner, "owner")
	require.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
}
