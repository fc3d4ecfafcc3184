package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/teamchat-service/internal/api/dto"
	"github.com/spec-kit/teamchat-service/internal/auth"
	"github.com/spec-kit/teamchat-service/internal/service"
	apperrors "github.com/spec-kit/teamchat-service/pkg/util"
)

// InvitesHandler exposes invite endpoints.
type InvitesHandler struct {
	invites *service.InviteService
}

// NewInvitesHandler constructs the handler.
func NewInvitesHandler(invites *service.InviteService) *InvitesHandler {
	return &InvitesHandler{invites: invites}
}

// Create handles POST /workspaces/:workspaceId/invites.
func (h *InvitesHandler) Create(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	membership, ok := auth.MembershipFromContext(c)
	if !ok {
		return apperrors.NewForbidden("workspace membership required")
	}

	var req dto.InviteCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Role == "" {
		req.Role = "member"
	}

	invite, err := h.invites.Create(c.UserContext(), *membership, identity, req.Email, req.Role)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewInviteResponse(*invite)})
}

// Revoke handles DELETE /workspaces/:workspaceId/invites.
func (h *InvitesHandler) Revoke(c *fiber.Ctx) error {
	var req dto.InviteRevokeRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return apperrors.NewValidationError("email is required", nil)
	}

	if err := h.invites.Revoke(c.UserContext(), c.Params("workspaceId"), req.Email); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Accept handles POST /invites/:token/accept.
func (h *InvitesHandler) Accept(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	membership, err := h.invites.Accept(c.UserContext(), identity, c.Params("token"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"workspace_id": membership.WorkspaceID,
		"role":         membership.Role,
	}})
}
