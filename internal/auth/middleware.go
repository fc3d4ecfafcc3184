package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/teamchat-service/internal/domain"
	"github.com/spec-kit/teamchat-service/internal/repository"
	apperrors "github.com/spec-kit/teamchat-service/pkg/util"
)

const (
	identityKey   = "auth_identity"
	membershipKey = "auth_membership"
)

// Middleware authenticates bearer tokens and loads workspace membership
// context for downstream role checks.
type Middleware struct {
	tokens      *TokenManager
	denylist    *DenylistGuard
	memberships repository.MembershipRepository
	channels    repository.ChannelRepository
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens *TokenManager, denylist *DenylistGuard, memberships repository.MembershipRepository, channels repository.ChannelRepository) *Middleware {
	return &Middleware{tokens: tokens, denylist: denylist, memberships: memberships, channels: channels}
}

// BearerToken extracts the credential from an Authorization header
// value, or returns "".
func BearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// Handle enforces authentication for protected routes: verify signature
// and expiry, then consult the denylist. A denylist store failure fails
// closed with 503 rather than admitting a possibly revoked token.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	token := BearerToken(c.Get("Authorization"))
	if token == "" {
		return apperrors.NewUnauthorized("missing bearer token")
	}

	claims, err := m.tokens.VerifyAccess(token)
	if err != nil {
		return err
	}

	if claims.ID != "" {
		revoked, err := m.denylist.IsRevoked(c.UserContext(), claims.ID)
		if err != nil {
			return apperrors.NewDependencyUnavailable("auth store", err)
		}
		if revoked {
			return apperrors.NewRevoked()
		}
	}

	c.Locals(identityKey, claims.Identity())
	return c.Next()
}

// IdentityFromContext retrieves the authenticated principal.
func IdentityFromContext(c *fiber.Ctx) (domain.Identity, bool) {
	identity, ok := c.Locals(identityKey).(domain.Identity)
	return identity, ok
}

// LoadWorkspaceMembership resolves the caller's membership for the
// :workspaceId route parameter. Non-members get 403 before any handler
// runs.
func (m *Middleware) LoadWorkspaceMembership(c *fiber.Ctx) error {
	workspaceID := c.Params("workspaceId")
	if workspaceID == "" {
		return apperrors.NewValidationError("workspaceId is required", nil)
	}
	return m.attachMembership(c, workspaceID)
}

// LoadChannelMembership resolves membership through the :channelId route
// parameter, looking up the channel's owning workspace first.
func (m *Middleware) LoadChannelMembership(c *fiber.Ctx) error {
	channelID := c.Params("channelId")
	if channelID == "" {
		return apperrors.NewValidationError("channelId is required", nil)
	}
	channel, err := m.channels.GetByID(c.UserContext(), channelID)
	if err != nil {
		return err
	}
	c.Locals("channel", channel)
	return m.attachMembership(c, channel.WorkspaceID)
}

func (m *Middleware) attachMembership(c *fiber.Ctx, workspaceID string) error {
	identity, ok := IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	membership, err := m.memberships.Get(c.UserContext(), workspaceID, identity.ID)
	if err != nil {
		return err
	}
	if membership == nil {
		return apperrors.NewForbidden("not a member of this workspace")
	}

	c.Locals(membershipKey, membership)
	return c.Next()
}

// MembershipFromContext retrieves the loaded workspace membership.
func MembershipFromContext(c *fiber.Ctx) (*domain.Membership, bool) {
	membership, ok := c.Locals(membershipKey).(*domain.Membership)
	return membership, ok
}

// ChannelFromContext retrieves the channel loaded by
// LoadChannelMembership.
func ChannelFromContext(c *fiber.Ctx) (*domain.Channel, bool) {
	channel, ok := c.Locals("channel").(*domain.Channel)
	return channel, ok
}

// RequireRole ensures the loaded membership ranks at or above required.
func RequireRole(required domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		membership, ok := MembershipFromContext(c)
		if !ok {
			return apperrors.NewForbidden("no membership context")
		}
		if !RoleAtLeast(membership.Role, required) {
			return apperrors.NewForbidden("requires " + string(required) + " role")
		}
		return c.Next()
	}
}
