package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/teamchat-service/internal/domain"
	"github.com/spec-kit/teamchat-service/internal/events"
	apperrors "github.com/spec-kit/teamchat-service/pkg/util"
)

type fakeWorkspaceRepo struct {
	byID map[string]*domain.Workspace
}

func (r *fakeWorkspaceRepo) Create(_ context.Context, w *domain.Workspace) error {
	w.ID = uuid.NewString()
	copied := *w
	r.byID[w.ID] = &copied
	return nil
}

func (r *fakeWorkspaceRepo) GetByID(_ context.Context, id string) (*domain.Workspace, error) {
	w, ok := r.byID[id]
	if !ok {
		return nil, apperrors.NewNotFound("workspace", nil)
	}
	copied := *w
	return &copied, nil
}

func (r *fakeWorkspaceRepo) ListByIDs(_ context.Context, ids []string) ([]domain.Workspace, error) {
	var out []domain.Workspace
	for _, id := range ids {
		if w, ok := r.byID[id]; ok {
			out = append(out, *w)
		}
	}
	return out, nil
}

type fakeInviteRepo struct {
	byID map[string]*domain.Invite
}

func newFakeInviteRepo() *fakeInviteRepo {
	return &fakeInviteRepo{byID: map[string]*domain.Invite{}}
}

func (r *fakeInviteRepo) Create(_ context.Context, i *domain.Invite) error {
	i.ID = uuid.NewString()
	i.CreatedAt = time.Now()
	copied := *i
	r.byID[i.ID] = &copied
	return nil
}

func (r *fakeInviteRepo) GetByToken(_ context.Context, token string) (*domain.Invite, error) {
	for _, i := range r.byID {
		if i.Token == token {
			copied := *i
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeInviteRepo) GetPending(_ context.Context, workspaceID, email string) (*domain.Invite, error) {
	for _, i := range r.byID {
		if i.WorkspaceID == workspaceID && i.Email == email && !i.Accepted {
			copied := *i
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeInviteRepo) UpdateRole(_ context.Context, id string, role domain.Role) error {
	if i, ok := r.byID[id]; ok {
		i.Role = role
	}
	return nil
}

func (r *fakeInviteRepo) MarkAccepted(_ context.Context, id string) error {
	if i, ok := r.byID[id]; ok {
		i.Accepted = true
		i.Status = domain.InviteStatusAccepted
	}
	return nil
}

func (r *fakeInviteRepo) MarkSendResult(_ context.Context, id string, status domain.InviteStatus) error {
	if i, ok := r.byID[id]; ok {
		i.Status = status
		i.SendCount++
	}
	return nil
}

func (r *fakeInviteRepo) DeletePending(_ context.Context, workspaceID, email string) error {
	for id, i := range r.byID {
		if i.WorkspaceID == workspaceID && i.Email == email && !i.Accepted {
			delete(r.byID, id)
		}
	}
	return nil
}

type inviteFixture struct {
	service     *InviteService
	invites     *fakeInviteRepo
	memberships *fakeMembershipRepo
	users       *fakeUserRepo
	published   []events.Event
}

func newInviteFixture(t *testing.T) *inviteFixture {
	t.Helper()
	fix := &inviteFixture{
		invites:     newFakeInviteRepo(),
		memberships: newFakeMembershipRepo(),
		users:       newFakeUserRepo(),
	}

	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	dispatcher.Subscribe(events.EventInviteCreated, func(_ context.Context, event events.Event) error {
		fix.published = append(fix.published, event)
		return nil
	})

	fix.service = NewInviteService(InviteDependencies{
		InviteRepo:     fix.invites,
		MembershipRepo: fix.memberships,
		WorkspaceRepo:  &fakeWorkspaceRepo{byID: map[string]*domain.Workspace{}},
		UserRepo:       fix.users,
		Dispatcher:     dispatcher,
		Logger:         zap.NewNop(),
	})
	return fix
}

func inviteActor() domain.Membership {
	return domain.Membership{WorkspaceID: "ws", UserID: "admin", Role: domain.RoleAdmin}
}

func inviter() domain.Identity {
	return domain.Identity{ID: "admin", Email: "admin@example.com", Name: "Admin"}
}

func TestInviteCreatePublishesEvent(t *testing.T) {
	fix := newInviteFixture(t)
	ctx := context.Background()

	invite, err := fix.service.Create(ctx, inviteActor(), inviter(), "Bob@Example.com", domain.RoleMember)
	require.NoError(t, err)
	require.Equal(t, "bob@example.com", invite.Email)
	require.NotEmpty(t, invite.Token)

	require.Len(t, fix.published, 1)
	payload, ok := fix.published[0].Payload.(events.InviteCreatedPayload)
	require.True(t, ok)
	require.Equal(t, invite.Token, payload.Token)
}

func TestInviteCreateIsIdempotentPerEmail(t *testing.T) {
	fix := newInviteFixture(t)
	ctx := context.Background()

	first, err := fix.service.Create(ctx, inviteActor(), inviter(), "bob@example.com", domain.RoleMember)
	require.NoError(t, err)

	// A second invite re-sends the first instead of stacking, and a
	// changed role sticks.
	second, err := fix.service.Create(ctx, inviteActor(), inviter(), "bob@example.com", domain.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, first.Token, second.Token)
	require.Equal(t, domain.RoleAdmin, second.Role)
	require.Len(t, fix.published, 2)
}

func TestInviteCreateRejectsExistingMember(t *testing.T) {
	fix := newInviteFixture(t)
	ctx := context.Background()

	user := &domain.User{Name: "Bob", Email: "bob@example.com"}
	require.NoError(t, fix.users.Create(ctx, user))
	seedMember(t, fix.memberships, "ws", user.ID, domain.RoleMember)

	_, err := fix.service.Create(ctx, inviteActor(), inviter(), "bob@example.com", domain.RoleMember)
	require.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
}

func TestInviteCreateOwnerRoleNeedsOwner(t *testing.T) {
	fix := newInviteFixture(t)
	ctx := context.Background()

	_, err := fix.service.Create(ctx, inviteActor(), inviter(), "bob@example.com", domain.RoleOwner)
	require.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
}

func TestInviteAccept(t *testing.T) {
	fix := newInviteFixture(t)
	ctx := context.Background()

	invite, err := fix.service.Create(ctx, inviteActor(), inviter(), "bob@example.com", domain.RoleMember)
	require.NoError(t, err)

	bob := domain.Identity{ID: "bob-id", Email: "bob@example.com", Name: "Bob"}
	membership, err := fix.service.Accept(ctx, bob, invite.Token)
	require.NoError(t, err)
	require.Equal(t, "ws", membership.WorkspaceID)
	require.Equal(t, domain.RoleMember, membership.Role)

	// A second redemption fails.
	_, err = fix.service.Accept(ctx, bob, invite.Token)
	require.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
}

func TestInviteAcceptBoundToEmail(t *testing.T) {
	fix := newInviteFixture(t)
	ctx := context.Background()

	invite, err := fix.service.Create(ctx, inviteActor(), inviter(), "bob@example.com", domain.RoleMember)
	require.NoError(t, err)

	mallory := domain.Identity{ID: "mallory-id", Email: "mallory@example.com"}
	_, err = fix.service.Accept(ctx, mallory, invite.Token)
	require.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
}

func TestInviteAcceptUnknownToken(t *testing.T) {
	fix := newInviteFixture(t)

	bob := domain.Identity{ID: "bob-id", Email: "bob@example.com"}
	_, err := fix.service.Accept(context.Background(), bob, "no-such-token")
	require.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}
